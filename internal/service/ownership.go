package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"olexvol/liftlog/internal/domain"
	"olexvol/liftlog/internal/repository"
)

// Ownership resolution. Every entity below a workout reaches its owning user
// through a unique parent chain, and the chain is not type-uniform: an
// exercise hangs either directly off a workout or off a superset that hangs
// off a workout. Every mutation path resolves ownership through these
// helpers instead of re-encoding the two-parent shape at each call site.
//
// A missing link anywhere in the chain, and an owner that is not the caller,
// both come back as ErrNotFound.

// foldNotFound maps repository misses into the service's opaque ErrNotFound.
func foldNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ownedWorkout loads a workout and verifies the caller owns it.
func (s *workoutService) ownedWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return nil, foldNotFound(err)
	}
	if workout.UserID != userID {
		return nil, ErrNotFound
	}
	return workout, nil
}

// resolveExerciseOwner walks exercise → {workout | superset → workout} and
// returns the owning user together with the root workout id.
func (s *workoutService) resolveExerciseOwner(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, primitive.ObjectID, error) {
	switch {
	case exercise.WorkoutID != nil:
		workout, err := s.workoutRepo.GetByID(ctx, *exercise.WorkoutID)
		if err != nil {
			return primitive.NilObjectID, primitive.NilObjectID, foldNotFound(err)
		}
		return workout.UserID, workout.ID, nil
	case exercise.SupersetID != nil:
		superset, err := s.supersetRepo.GetByID(ctx, *exercise.SupersetID)
		if err != nil {
			return primitive.NilObjectID, primitive.NilObjectID, foldNotFound(err)
		}
		workout, err := s.workoutRepo.GetByID(ctx, superset.WorkoutID)
		if err != nil {
			return primitive.NilObjectID, primitive.NilObjectID, foldNotFound(err)
		}
		return workout.UserID, workout.ID, nil
	}
	// Orphan row; treat the broken link like absence.
	return primitive.NilObjectID, primitive.NilObjectID, ErrNotFound
}

// ownedSuperset loads a superset and verifies the caller owns its workout.
func (s *workoutService) ownedSuperset(ctx context.Context, userID, supersetID primitive.ObjectID) (*domain.Superset, error) {
	superset, err := s.supersetRepo.GetByID(ctx, supersetID)
	if err != nil {
		return nil, foldNotFound(err)
	}
	if _, err := s.ownedWorkout(ctx, userID, superset.WorkoutID); err != nil {
		return nil, err
	}
	return superset, nil
}

// ownedExercise loads an exercise, resolves its owner through the parent
// chain and verifies it is the caller. The root workout id is returned for
// event addressing.
func (s *workoutService) ownedExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) (*domain.Exercise, primitive.ObjectID, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, primitive.NilObjectID, foldNotFound(err)
	}
	owner, workoutID, err := s.resolveExerciseOwner(ctx, exercise)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if owner != userID {
		return nil, primitive.NilObjectID, ErrNotFound
	}
	return exercise, workoutID, nil
}

// ownedSet resolves set → exercise → owner.
func (s *workoutService) ownedSet(ctx context.Context, userID, setID primitive.ObjectID) (*domain.ExerciseSet, *domain.Exercise, error) {
	set, err := s.setRepo.GetByID(ctx, setID)
	if err != nil {
		return nil, nil, foldNotFound(err)
	}
	exercise, _, err := s.ownedExercise(ctx, userID, set.ExerciseID)
	if err != nil {
		return nil, nil, err
	}
	return set, exercise, nil
}

// ownedDropset resolves dropset → exercise → owner.
func (s *workoutService) ownedDropset(ctx context.Context, userID, dropsetID primitive.ObjectID) (*domain.Dropset, *domain.Exercise, error) {
	dropset, err := s.dropsetRepo.GetByID(ctx, dropsetID)
	if err != nil {
		return nil, nil, foldNotFound(err)
	}
	exercise, _, err := s.ownedExercise(ctx, userID, dropset.ExerciseID)
	if err != nil {
		return nil, nil, err
	}
	return dropset, exercise, nil
}

// ownedSubSet resolves sub-set → dropset → exercise → owner.
func (s *workoutService) ownedSubSet(ctx context.Context, userID, subSetID primitive.ObjectID) (*domain.DropsetSubSet, *domain.Dropset, error) {
	subSet, err := s.subSetRepo.GetByID(ctx, subSetID)
	if err != nil {
		return nil, nil, foldNotFound(err)
	}
	dropset, _, err := s.ownedDropset(ctx, userID, subSet.DropsetID)
	if err != nil {
		return nil, nil, err
	}
	return subSet, dropset, nil
}
