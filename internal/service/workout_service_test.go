package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"olexvol/liftlog/internal/domain"
	"olexvol/liftlog/internal/realtime"
)

func TestCreateWorkoutPublishesOnUserKey(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	workout, err := env.service.CreateWorkout(ctx, userID, "Push Day", "")
	assert.Equal(t, err, nil)
	assert.NotEqual(t, workout.ID, primitive.NilObjectID)
	assert.Equal(t, len(workout.Items), 0)

	events := env.publisher.all()
	assert.Equal(t, len(events), 1)
	assert.Equal(t, events[0].Key, realtime.NewKey(realtime.KindUsers, userID.Hex()))
	assert.Equal(t, events[0].Event.Action, "created")
	assert.Equal(t, events[0].Event.Kind, "workout")
	assert.Equal(t, events[0].Event.ID, workout.ID.Hex())
}

func TestWorkoutStartEndSequencing(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	workout, err := env.service.CreateWorkout(ctx, userID, "Legs", "")
	assert.Equal(t, err, nil)

	// Ending before starting is a sequencing violation.
	_, err = env.service.EndWorkout(ctx, userID, workout.ID)
	assert.Equal(t, errors.Is(err, ErrWorkoutNotStarted), true)
	assert.Equal(t, IsConflict(err), true)

	started, err := env.service.StartWorkout(ctx, userID, workout.ID)
	assert.Equal(t, err, nil)
	assert.NotEqual(t, started.StartTime, nil)
	assert.Equal(t, started.Completed, false)

	_, err = env.service.StartWorkout(ctx, userID, workout.ID)
	assert.Equal(t, errors.Is(err, ErrWorkoutAlreadyStarted), true)

	ended, err := env.service.EndWorkout(ctx, userID, workout.ID)
	assert.Equal(t, err, nil)
	assert.NotEqual(t, ended.EndTime, nil)
	assert.Equal(t, ended.Completed, true)

	_, err = env.service.EndWorkout(ctx, userID, workout.ID)
	assert.Equal(t, errors.Is(err, ErrWorkoutAlreadyEnded), true)
}

func TestWorkoutCompletionIndependentOfSets(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	workout, _ := env.service.CreateWorkout(ctx, userID, "Pull", "")
	exercise, err := env.service.AddExerciseToWorkout(ctx, userID, workout.ID, ExerciseInput{Name: "Row", Order: 0})
	assert.Equal(t, err, nil)
	set, err := env.service.AddSetToExercise(ctx, userID, exercise.ID, SetInput{Weight: 60, Reps: 8, Order: 0})
	assert.Equal(t, err, nil)

	// Workout completion does not touch its sets.
	_, err = env.service.StartWorkout(ctx, userID, workout.ID)
	assert.Equal(t, err, nil)
	_, err = env.service.EndWorkout(ctx, userID, workout.ID)
	assert.Equal(t, err, nil)

	assembled, err := env.service.GetWorkout(ctx, userID, workout.ID)
	assert.Equal(t, err, nil)
	assert.Equal(t, assembled.Completed, true)
	item := assembled.Items[0].(*domain.Exercise)
	assert.Equal(t, item.Sets[0].Completed, false)

	// And completing a set does not reopen or alter the workout.
	completed := true
	_, err = env.service.UpdateSet(ctx, userID, set.ID, SetUpdateInput{Completed: &completed})
	assert.Equal(t, err, nil)
	assembled, err = env.service.GetWorkout(ctx, userID, workout.ID)
	assert.Equal(t, err, nil)
	assert.Equal(t, assembled.Completed, true)
}

func TestOwnershipFoldsToNotFound(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	intruder := primitive.NewObjectID()

	workout, _ := env.service.CreateWorkout(ctx, owner, "Private", "")
	superset, _ := env.service.AddSupersetToWorkout(ctx, owner, workout.ID, SupersetInput{Order: 0})
	exercise, _ := env.service.AddExerciseToSuperset(ctx, owner, superset.ID, ExerciseInput{Name: "Dip", Order: 0})
	dropset, _ := env.service.AddDropsetToExercise(ctx, owner, exercise.ID, DropsetInput{
		Order:   0,
		SubSets: []SubSetInput{{Weight: 20, Reps: 10, Order: 0}},
	})

	setupEvents := len(env.publisher.all())

	// Another user's probe and a missing id are indistinguishable.
	_, err := env.service.GetWorkout(ctx, intruder, workout.ID)
	assert.Equal(t, errors.Is(err, ErrNotFound), true)
	_, err = env.service.GetWorkout(ctx, owner, primitive.NewObjectID())
	assert.Equal(t, errors.Is(err, ErrNotFound), true)

	_, err = env.service.AddExerciseToSuperset(ctx, intruder, superset.ID, ExerciseInput{Name: "X", Order: 1})
	assert.Equal(t, errors.Is(err, ErrNotFound), true)

	_, err = env.service.UpdateExercise(ctx, intruder, exercise.ID, ExerciseUpdateInput{})
	assert.Equal(t, errors.Is(err, ErrNotFound), true)

	err = env.service.DeleteDropset(ctx, intruder, dropset.ID)
	assert.Equal(t, errors.Is(err, ErrNotFound), true)

	subSetID := dropset.SubSets[0].ID
	_, err = env.service.UpdateSubSet(ctx, intruder, subSetID, SubSetUpdateInput{})
	assert.Equal(t, errors.Is(err, ErrNotFound), true)

	// Nothing the intruder touched produced an event.
	assert.Equal(t, len(env.publisher.all()), setupEvents)
}

func TestGetWorkoutAssemblesOrderedTree(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	workout, _ := env.service.CreateWorkout(ctx, userID, "Full Session", "")

	// Created out of order on purpose; assembly must sort by order with
	// createdAt breaking the tie.
	second, _ := env.service.AddExerciseToWorkout(ctx, userID, workout.ID, ExerciseInput{Name: "Bench", Order: 1})
	superset, _ := env.service.AddSupersetToWorkout(ctx, userID, workout.ID, SupersetInput{Order: 0})
	tiedLater, _ := env.service.AddExerciseToWorkout(ctx, userID, workout.ID, ExerciseInput{Name: "Curl B", Order: 1})

	inSuperset, _ := env.service.AddExerciseToSuperset(ctx, userID, superset.ID, ExerciseInput{Name: "Pullup", Order: 0})

	env.service.AddSetToExercise(ctx, userID, second.ID, SetInput{Weight: 80, Reps: 5, Order: 1})
	env.service.AddSetToExercise(ctx, userID, second.ID, SetInput{Weight: 60, Reps: 10, Order: 0})
	dropset, _ := env.service.AddDropsetToExercise(ctx, userID, second.ID, DropsetInput{
		Order: 2,
		SubSets: []SubSetInput{
			{Weight: 50, Reps: 8, Order: 0},
			{Weight: 40, Reps: 8, Order: 1},
		},
	})

	assembled, err := env.service.GetWorkout(ctx, userID, workout.ID)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(assembled.Items), 3)

	// Superset first (order 0), then the two order-1 exercises by creation.
	assert.Equal(t, assembled.Items[0].ItemType(), domain.ItemTypeSuperset)
	gotSuperset := assembled.Items[0].(*domain.Superset)
	assert.Equal(t, gotSuperset.ID, superset.ID)
	assert.Equal(t, len(gotSuperset.Exercises), 1)
	assert.Equal(t, gotSuperset.Exercises[0].ID, inSuperset.ID)

	assert.Equal(t, assembled.Items[1].ItemType(), domain.ItemTypeExercise)
	assert.Equal(t, assembled.Items[1].(*domain.Exercise).ID, second.ID)
	assert.Equal(t, assembled.Items[2].(*domain.Exercise).ID, tiedLater.ID)

	// Nested children are sorted too.
	bench := assembled.Items[1].(*domain.Exercise)
	assert.Equal(t, len(bench.Sets), 2)
	assert.Equal(t, bench.Sets[0].Order, 0)
	assert.Equal(t, bench.Sets[1].Order, 1)
	assert.Equal(t, len(bench.Dropsets), 1)
	assert.Equal(t, bench.Dropsets[0].ID, dropset.ID)
	assert.Equal(t, len(bench.Dropsets[0].SubSets), 2)
	assert.Equal(t, bench.Dropsets[0].SubSets[0].Order, 0)

	// Exercises never expose a nil child list.
	assert.Equal(t, len(gotSuperset.Exercises[0].Sets), 0)
	assert.NotEqual(t, gotSuperset.Exercises[0].Sets, nil)
}

func TestMutationEventAddressing(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	workout, _ := env.service.CreateWorkout(ctx, userID, "W", "")
	env.publisher.reset()

	exercise, _ := env.service.AddExerciseToWorkout(ctx, userID, workout.ID, ExerciseInput{Name: "Squat", Order: 0})
	set, _ := env.service.AddSetToExercise(ctx, userID, exercise.ID, SetInput{Weight: 100, Reps: 5, Order: 0})
	dropset, _ := env.service.AddDropsetToExercise(ctx, userID, exercise.ID, DropsetInput{
		Order:   1,
		SubSets: []SubSetInput{{Weight: 80, Reps: 5, Order: 0}},
	})
	subSet, _ := env.service.AddSubSetToDropset(ctx, userID, dropset.ID, SubSetInput{Weight: 60, Reps: 5, Order: 1})

	notes := "pause reps"
	env.service.UpdateSet(ctx, userID, set.ID, SetUpdateInput{Notes: &notes})
	env.service.UpdateSubSet(ctx, userID, subSet.ID, SubSetUpdateInput{})
	env.service.DeleteSet(ctx, userID, set.ID)

	events := env.publisher.all()
	assert.Equal(t, len(events), 7)

	workoutKey := realtime.NewKey(realtime.KindWorkouts, workout.ID.Hex())
	exerciseKey := realtime.NewKey(realtime.KindExercises, exercise.ID.Hex())

	// Creates land on the parent's key.
	assert.Equal(t, events[0].Key, workoutKey)
	assert.Equal(t, events[0].Event.Kind, "exercise")
	assert.Equal(t, events[1].Key, exerciseKey)
	assert.Equal(t, events[1].Event.Kind, "set")
	assert.Equal(t, events[2].Key, exerciseKey)
	assert.Equal(t, events[2].Event.Kind, "dropset")
	assert.Equal(t, events[3].Key, realtime.NewKey(realtime.KindSets, dropset.ID.Hex()))
	assert.Equal(t, events[3].Event.Kind, "subset")

	// Updates land on the entity's own key.
	assert.Equal(t, events[4].Key, realtime.NewKey(realtime.KindSets, set.ID.Hex()))
	assert.Equal(t, events[4].Event.Action, "updated")
	assert.Equal(t, events[5].Key, realtime.NewKey(realtime.KindSubSets, subSet.ID.Hex()))

	// Deletes land back on the parent's key.
	assert.Equal(t, events[6].Key, exerciseKey)
	assert.Equal(t, events[6].Event.Action, "deleted")
	assert.Equal(t, events[6].Event.ID, set.ID.Hex())
}

func TestDeleteExerciseCascades(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	workout, _ := env.service.CreateWorkout(ctx, userID, "W", "")
	exercise, _ := env.service.AddExerciseToWorkout(ctx, userID, workout.ID, ExerciseInput{Name: "Press", Order: 0})
	set, _ := env.service.AddSetToExercise(ctx, userID, exercise.ID, SetInput{Weight: 40, Reps: 10, Order: 0})
	dropset, _ := env.service.AddDropsetToExercise(ctx, userID, exercise.ID, DropsetInput{
		Order:   1,
		SubSets: []SubSetInput{{Weight: 30, Reps: 10, Order: 0}},
	})

	err := env.service.DeleteExercise(ctx, userID, exercise.ID)
	assert.Equal(t, err, nil)

	_, err = env.exerciseRepo.GetByID(ctx, exercise.ID)
	assert.NotEqual(t, err, nil)
	_, err = env.setRepo.GetByID(ctx, set.ID)
	assert.NotEqual(t, err, nil)
	_, err = env.dropsetRepo.GetByID(ctx, dropset.ID)
	assert.NotEqual(t, err, nil)
	_, err = env.subSetRepo.GetByID(ctx, dropset.SubSets[0].ID)
	assert.NotEqual(t, err, nil)
}

func TestDeleteLastExerciseRemovesSuperset(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	workout, _ := env.service.CreateWorkout(ctx, userID, "W", "")
	superset, _ := env.service.AddSupersetToWorkout(ctx, userID, workout.ID, SupersetInput{Order: 0})
	first, _ := env.service.AddExerciseToSuperset(ctx, userID, superset.ID, ExerciseInput{Name: "A", Order: 0})
	second, _ := env.service.AddExerciseToSuperset(ctx, userID, superset.ID, ExerciseInput{Name: "B", Order: 1})
	env.publisher.reset()

	err := env.service.DeleteExercise(ctx, userID, first.ID)
	assert.Equal(t, err, nil)
	_, err = env.supersetRepo.GetByID(ctx, superset.ID)
	assert.Equal(t, err, nil) // still one exercise left

	err = env.service.DeleteExercise(ctx, userID, second.ID)
	assert.Equal(t, err, nil)
	_, err = env.supersetRepo.GetByID(ctx, superset.ID)
	assert.NotEqual(t, err, nil)

	// Both deletions announce on the workout key; the second also announces
	// the superset's removal.
	events := env.publisher.all()
	assert.Equal(t, len(events), 3)
	workoutKey := realtime.NewKey(realtime.KindWorkouts, workout.ID.Hex())
	for _, event := range events {
		assert.Equal(t, event.Key, workoutKey)
		assert.Equal(t, event.Event.Action, "deleted")
	}
	assert.Equal(t, events[2].Event.Kind, "superset")
	assert.Equal(t, events[2].Event.ID, superset.ID.Hex())
}

func TestDeleteLastSubSetRemovesDropset(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	workout, _ := env.service.CreateWorkout(ctx, userID, "W", "")
	exercise, _ := env.service.AddExerciseToWorkout(ctx, userID, workout.ID, ExerciseInput{Name: "Fly", Order: 0})
	dropset, _ := env.service.AddDropsetToExercise(ctx, userID, exercise.ID, DropsetInput{
		Order: 0,
		SubSets: []SubSetInput{
			{Weight: 20, Reps: 12, Order: 0},
			{Weight: 15, Reps: 12, Order: 1},
		},
	})

	err := env.service.DeleteSubSet(ctx, userID, dropset.SubSets[0].ID)
	assert.Equal(t, err, nil)
	_, err = env.dropsetRepo.GetByID(ctx, dropset.ID)
	assert.Equal(t, err, nil)

	env.publisher.reset()
	err = env.service.DeleteSubSet(ctx, userID, dropset.SubSets[1].ID)
	assert.Equal(t, err, nil)
	_, err = env.dropsetRepo.GetByID(ctx, dropset.ID)
	assert.NotEqual(t, err, nil)

	events := env.publisher.all()
	assert.Equal(t, len(events), 2)
	assert.Equal(t, events[0].Key, realtime.NewKey(realtime.KindSets, dropset.ID.Hex()))
	assert.Equal(t, events[0].Event.Kind, "subset")
	assert.Equal(t, events[1].Key, realtime.NewKey(realtime.KindExercises, exercise.ID.Hex()))
	assert.Equal(t, events[1].Event.Kind, "dropset")
}

func TestDeleteWorkoutCascades(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	workout, _ := env.service.CreateWorkout(ctx, userID, "W", "")
	exercise, _ := env.service.AddExerciseToWorkout(ctx, userID, workout.ID, ExerciseInput{Name: "Deadlift", Order: 0})
	env.service.AddSetToExercise(ctx, userID, exercise.ID, SetInput{Weight: 120, Reps: 3, Order: 0})
	superset, _ := env.service.AddSupersetToWorkout(ctx, userID, workout.ID, SupersetInput{Order: 1})
	nested, _ := env.service.AddExerciseToSuperset(ctx, userID, superset.ID, ExerciseInput{Name: "Shrug", Order: 0})
	env.service.AddDropsetToExercise(ctx, userID, nested.ID, DropsetInput{
		Order:   0,
		SubSets: []SubSetInput{{Weight: 40, Reps: 15, Order: 0}},
	})

	err := env.service.DeleteWorkout(ctx, userID, workout.ID)
	assert.Equal(t, err, nil)

	assert.Equal(t, len(env.workoutRepo.workouts), 0)
	assert.Equal(t, len(env.exerciseRepo.exercises), 0)
	assert.Equal(t, len(env.supersetRepo.supersets), 0)
	assert.Equal(t, len(env.setRepo.sets), 0)
	assert.Equal(t, len(env.dropsetRepo.dropsets), 0)
	assert.Equal(t, len(env.subSetRepo.subSets), 0)
}

func TestValidationRejectsBeforeWrite(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	workout, _ := env.service.CreateWorkout(ctx, userID, "W", "")
	exercise, _ := env.service.AddExerciseToWorkout(ctx, userID, workout.ID, ExerciseInput{Name: "Press", Order: 0})
	env.publisher.reset()

	var vErr *ValidationError

	_, err := env.service.CreateWorkout(ctx, userID, "", "")
	assert.Equal(t, errors.As(err, &vErr), true)

	_, err = env.service.AddExerciseToWorkout(ctx, userID, workout.ID, ExerciseInput{Name: "", Order: 0})
	assert.Equal(t, errors.As(err, &vErr), true)

	_, err = env.service.AddExerciseToWorkout(ctx, userID, workout.ID, ExerciseInput{Name: "X", MuscleGroup: "forearm-ish", Order: 0})
	assert.Equal(t, errors.As(err, &vErr), true)
	assert.Equal(t, vErr.Field, "muscleGroup")

	_, err = env.service.AddSetToExercise(ctx, userID, exercise.ID, SetInput{Weight: -1, Reps: 5, Order: 0})
	assert.Equal(t, errors.As(err, &vErr), true)
	assert.Equal(t, vErr.Field, "weight")

	_, err = env.service.AddSetToExercise(ctx, userID, exercise.ID, SetInput{Weight: 10, Reps: 0, Order: 0})
	assert.Equal(t, errors.As(err, &vErr), true)
	assert.Equal(t, vErr.Field, "reps")

	_, err = env.service.AddDropsetToExercise(ctx, userID, exercise.ID, DropsetInput{Order: 0})
	assert.Equal(t, errors.As(err, &vErr), true)
	assert.Equal(t, vErr.Field, "subSets")

	badReps := 0
	_, err = env.service.UpdateSet(ctx, userID, primitive.NewObjectID(), SetUpdateInput{Reps: &badReps})
	assert.Equal(t, errors.As(err, &vErr), true)

	// Rejected mutations publish nothing.
	assert.Equal(t, len(env.publisher.all()), 0)
	// And the set validation ran before any lookup or write.
	assert.Equal(t, len(env.setRepo.sets), 0)
}

func TestUpdateWorkoutPartialFields(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	workout, _ := env.service.CreateWorkout(ctx, userID, "Old Name", "old notes")

	newName := "New Name"
	updated, err := env.service.UpdateWorkout(ctx, userID, workout.ID, WorkoutUpdateInput{Name: &newName})
	assert.Equal(t, err, nil)
	assert.Equal(t, updated.Name, "New Name")
	assert.Equal(t, updated.Notes, "old notes")

	empty := ""
	_, err = env.service.UpdateWorkout(ctx, userID, workout.ID, WorkoutUpdateInput{Name: &empty})
	var vErr *ValidationError
	assert.Equal(t, errors.As(err, &vErr), true)
}
