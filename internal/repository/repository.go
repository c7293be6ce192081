package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"olexvol/liftlog/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercise rows.
// An exercise row carries either a workoutId or a supersetId, never both.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Exercise, error)
	GetBySupersetID(ctx context.Context, supersetID primitive.ObjectID) ([]domain.Exercise, error)
	CountBySupersetID(ctx context.Context, supersetID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error
	DeleteBySupersetID(ctx context.Context, supersetID primitive.ObjectID) error
}

// SupersetRepository defines the interface for interacting with superset rows.
type SupersetRepository interface {
	Create(ctx context.Context, superset *domain.Superset) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Superset, error)
	GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Superset, error)
	Update(ctx context.Context, superset *domain.Superset) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error
}

// SetRepository defines the interface for interacting with exercise set rows.
type SetRepository interface {
	Create(ctx context.Context, set *domain.ExerciseSet) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseSet, error)
	GetByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.ExerciseSet, error)
	Update(ctx context.Context, set *domain.ExerciseSet) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) error
}

// DropsetRepository defines the interface for interacting with dropset rows.
type DropsetRepository interface {
	Create(ctx context.Context, dropset *domain.Dropset) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Dropset, error)
	GetByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.Dropset, error)
	Update(ctx context.Context, dropset *domain.Dropset) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) error
}

// SubSetRepository defines the interface for interacting with dropset sub-set rows.
type SubSetRepository interface {
	Create(ctx context.Context, subSet *domain.DropsetSubSet) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DropsetSubSet, error)
	GetByDropsetID(ctx context.Context, dropsetID primitive.ObjectID) ([]domain.DropsetSubSet, error)
	Update(ctx context.Context, subSet *domain.DropsetSubSet) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByDropsetID(ctx context.Context, dropsetID primitive.ObjectID) error
}
