package service

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"olexvol/liftlog/internal/domain"
)

func TestAssembleWorkoutIsDeterministic(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	workout := &domain.Workout{ID: primitive.NewObjectID(), Name: "W"}
	exercises := []domain.Exercise{
		{ID: primitive.NewObjectID(), Name: "later", Order: 1, CreatedAt: base.Add(2 * time.Minute)},
		{ID: primitive.NewObjectID(), Name: "earlier", Order: 1, CreatedAt: base.Add(1 * time.Minute)},
	}
	supersets := []domain.Superset{
		{ID: primitive.NewObjectID(), Order: 0, CreatedAt: base},
	}

	assembled := assembleWorkout(workout, exercises, supersets)
	assert.Equal(t, len(assembled.Items), 3)
	assert.Equal(t, assembled.Items[0].ItemType(), domain.ItemTypeSuperset)
	assert.Equal(t, assembled.Items[1].(*domain.Exercise).Name, "earlier")
	assert.Equal(t, assembled.Items[2].(*domain.Exercise).Name, "later")

	// Same snapshot, same tree.
	again := assembleWorkout(workout, exercises, supersets)
	for i := range assembled.Items {
		assert.Equal(t, assembled.Items[i].ItemType(), again.Items[i].ItemType())
		assert.Equal(t, assembled.Items[i].ItemOrder(), again.Items[i].ItemOrder())
	}
}

func TestSortExerciseChildrenNormalizesNilSlices(t *testing.T) {
	exercise := &domain.Exercise{ID: primitive.NewObjectID()}
	sortExerciseChildren(exercise)
	assert.NotEqual(t, exercise.Sets, nil)
	assert.NotEqual(t, exercise.Dropsets, nil)
	assert.Equal(t, len(exercise.Sets), 0)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	exercise.Dropsets = []domain.Dropset{{
		ID: primitive.NewObjectID(),
		SubSets: []domain.DropsetSubSet{
			{Order: 1, CreatedAt: base},
			{Order: 0, CreatedAt: base.Add(time.Minute)},
		},
	}}
	sortExerciseChildren(exercise)
	assert.Equal(t, exercise.Dropsets[0].SubSets[0].Order, 0)
	assert.Equal(t, exercise.Dropsets[0].SubSets[1].Order, 1)
}
