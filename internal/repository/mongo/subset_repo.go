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

const subSetCollectionName = "subsets"

// mongoSubSetRepository implements repository.SubSetRepository
type mongoSubSetRepository struct {
	collection *mongo.Collection
}

// NewMongoSubSetRepository creates a new sub-set repository.
func NewMongoSubSetRepository(db *mongo.Database) repository.SubSetRepository {
	return &mongoSubSetRepository{
		collection: db.Collection(subSetCollectionName),
	}
}

// Create inserts a new sub-set.
func (r *mongoSubSetRepository) Create(ctx context.Context, subSet *domain.DropsetSubSet) (primitive.ObjectID, error) {
	if subSet.DropsetID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("sub-set requires dropsetId")
	}
	subSet.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	subSet.CreatedAt = now
	subSet.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, subSet)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted sub-set ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single sub-set by its ID.
func (r *mongoSubSetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DropsetSubSet, error) {
	var subSet domain.DropsetSubSet
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&subSet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &subSet, nil
}

// GetByDropsetID retrieves the sub-sets of a dropset, sorted by order.
func (r *mongoSubSetRepository) GetByDropsetID(ctx context.Context, dropsetID primitive.ObjectID) ([]domain.DropsetSubSet, error) {
	var subSets []domain.DropsetSubSet
	filter := bson.M{"dropsetId": dropsetID}
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &subSets); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return subSets, nil
}

// Update replaces the mutable fields of a sub-set.
func (r *mongoSubSetRepository) Update(ctx context.Context, subSet *domain.DropsetSubSet) error {
	if subSet.ID == primitive.NilObjectID {
		return errors.New("sub-set ID is required for update")
	}

	filter := bson.M{"_id": subSet.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"weight":    subSet.Weight,
			"reps":      subSet.Reps,
			"order":     subSet.Order,
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

// Delete removes a single sub-set row.
func (r *mongoSubSetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByDropsetID removes every sub-set of a dropset.
func (r *mongoSubSetRepository) DeleteByDropsetID(ctx context.Context, dropsetID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"dropsetId": dropsetID})
	return err
}

// EnsureSubSetIndexes creates necessary indexes. Call during startup.
func EnsureSubSetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dropsetId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
