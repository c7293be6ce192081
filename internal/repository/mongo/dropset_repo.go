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

const dropsetCollectionName = "dropsets"

// mongoDropsetRepository implements repository.DropsetRepository
type mongoDropsetRepository struct {
	collection *mongo.Collection
}

// NewMongoDropsetRepository creates a new dropset repository.
func NewMongoDropsetRepository(db *mongo.Database) repository.DropsetRepository {
	return &mongoDropsetRepository{
		collection: db.Collection(dropsetCollectionName),
	}
}

// Create inserts a new dropset.
func (r *mongoDropsetRepository) Create(ctx context.Context, dropset *domain.Dropset) (primitive.ObjectID, error) {
	if dropset.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("dropset requires exerciseId")
	}
	dropset.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	dropset.CreatedAt = now
	dropset.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, dropset)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted dropset ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single dropset by its ID.
func (r *mongoDropsetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Dropset, error) {
	var dropset domain.Dropset
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&dropset)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &dropset, nil
}

// GetByExerciseID retrieves the dropsets of an exercise, sorted by order.
func (r *mongoDropsetRepository) GetByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.Dropset, error) {
	var dropsets []domain.Dropset
	filter := bson.M{"exerciseId": exerciseID}
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &dropsets); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return dropsets, nil
}

// Update replaces the mutable fields of a dropset.
func (r *mongoDropsetRepository) Update(ctx context.Context, dropset *domain.Dropset) error {
	if dropset.ID == primitive.NilObjectID {
		return errors.New("dropset ID is required for update")
	}

	filter := bson.M{"_id": dropset.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"notes":     dropset.Notes,
			"order":     dropset.Order,
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

// Delete removes a single dropset row.
func (r *mongoDropsetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByExerciseID removes every dropset of an exercise.
func (r *mongoDropsetRepository) DeleteByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"exerciseId": exerciseID})
	return err
}

// EnsureDropsetIndexes creates necessary indexes. Call during startup.
func EnsureDropsetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
