package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"olexvol/liftlog/internal/domain"
	"olexvol/liftlog/internal/repository"
)

const supersetCollectionName = "supersets"

// mongoSupersetRepository implements repository.SupersetRepository
type mongoSupersetRepository struct {
	collection *mongo.Collection
}

// NewMongoSupersetRepository creates a new superset repository.
func NewMongoSupersetRepository(db *mongo.Database) repository.SupersetRepository {
	return &mongoSupersetRepository{
		collection: db.Collection(supersetCollectionName),
	}
}

// Create inserts a new superset.
func (r *mongoSupersetRepository) Create(ctx context.Context, superset *domain.Superset) (primitive.ObjectID, error) {
	if superset.WorkoutID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("superset requires workoutId")
	}
	superset.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	superset.CreatedAt = now
	superset.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, superset)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted superset ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single superset by its ID.
func (r *mongoSupersetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Superset, error) {
	var superset domain.Superset
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&superset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &superset, nil
}

// GetByWorkoutID retrieves the supersets of a workout, sorted by order.
func (r *mongoSupersetRepository) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Superset, error) {
	var supersets []domain.Superset
	filter := bson.M{"workoutId": workoutID}
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &supersets); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return supersets, nil
}

// Update replaces the mutable fields of a superset.
func (r *mongoSupersetRepository) Update(ctx context.Context, superset *domain.Superset) error {
	if superset.ID == primitive.NilObjectID {
		return errors.New("superset ID is required for update")
	}

	filter := bson.M{"_id": superset.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"notes":     superset.Notes,
			"order":     superset.Order,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a single superset row.
func (r *mongoSupersetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByWorkoutID removes every superset of a workout.
func (r *mongoSupersetRepository) DeleteByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"workoutId": workoutID})
	return err
}

// EnsureSupersetIndexes creates necessary indexes. Call during startup.
func EnsureSupersetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
