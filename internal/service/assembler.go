package service

import (
	"sort"

	"olexvol/liftlog/internal/domain"
)

// Aggregate assembly. Storage is flat (one collection per entity); readers
// get the nested tree. Assembly is deterministic: the same storage snapshot
// always yields the same tree, with every level sorted by order and ties
// broken by creation time.

// assembleWorkout merges the independently fetched top-level exercises and
// supersets (with their exercises already attached) into the workout's
// ordered items list, and sorts all nested children.
func assembleWorkout(workout *domain.Workout, exercises []domain.Exercise, supersets []domain.Superset) *domain.Workout {
	items := make([]domain.WorkoutItem, 0, len(exercises)+len(supersets))
	for i := range exercises {
		sortExerciseChildren(&exercises[i])
		items = append(items, &exercises[i])
	}
	for i := range supersets {
		sortSupersetExercises(&supersets[i])
		items = append(items, &supersets[i])
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ItemOrder() != items[j].ItemOrder() {
			return items[i].ItemOrder() < items[j].ItemOrder()
		}
		return items[i].ItemCreatedAt().Before(items[j].ItemCreatedAt())
	})
	workout.Items = items
	return workout
}

func sortSupersetExercises(superset *domain.Superset) {
	for i := range superset.Exercises {
		sortExerciseChildren(&superset.Exercises[i])
	}
	sort.SliceStable(superset.Exercises, func(i, j int) bool {
		a, b := &superset.Exercises[i], &superset.Exercises[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func sortExerciseChildren(exercise *domain.Exercise) {
	if exercise.Sets == nil {
		exercise.Sets = []domain.ExerciseSet{}
	}
	if exercise.Dropsets == nil {
		exercise.Dropsets = []domain.Dropset{}
	}
	sort.SliceStable(exercise.Sets, func(i, j int) bool {
		a, b := &exercise.Sets[i], &exercise.Sets[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	sort.SliceStable(exercise.Dropsets, func(i, j int) bool {
		a, b := &exercise.Dropsets[i], &exercise.Dropsets[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	for i := range exercise.Dropsets {
		dropset := &exercise.Dropsets[i]
		if dropset.SubSets == nil {
			dropset.SubSets = []domain.DropsetSubSet{}
		}
		sort.SliceStable(dropset.SubSets, func(i, j int) bool {
			a, b := &dropset.SubSets[i], &dropset.SubSets[j]
			if a.Order != b.Order {
				return a.Order < b.Order
			}
			return a.CreatedAt.Before(b.CreatedAt)
		})
	}
}
