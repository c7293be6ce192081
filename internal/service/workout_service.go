package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"olexvol/liftlog/internal/domain"
	"olexvol/liftlog/internal/realtime"
	"olexvol/liftlog/internal/repository"
	"olexvol/liftlog/internal/storage"
)

// --- Inputs ---

// ExerciseInput carries the fields for creating an exercise under either
// parent kind.
type ExerciseInput struct {
	Name        string
	MuscleGroup domain.MuscleGroup
	Notes       string
	Order       int
}

// SupersetInput carries the fields for creating a superset.
type SupersetInput struct {
	Notes string
	Order int
}

// SetInput carries the fields for creating a set.
type SetInput struct {
	Weight float64
	Reps   int
	Notes  string
	Order  int
}

// SubSetInput carries the fields for creating a dropset sub-set.
type SubSetInput struct {
	Weight float64
	Reps   int
	Order  int
}

// DropsetInput carries the fields for creating a dropset. A dropset is
// created with its sub-sets: its sub-set list is non-empty from the start.
type DropsetInput struct {
	Notes   string
	Order   int
	SubSets []SubSetInput
}

// Update inputs use pointers so absent fields are left untouched.

type WorkoutUpdateInput struct {
	Name      *string
	Notes     *string
	Completed *bool
}

type ExerciseUpdateInput struct {
	Name        *string
	MuscleGroup *domain.MuscleGroup
	Notes       *string
	Order       *int
}

type SupersetUpdateInput struct {
	Notes *string
	Order *int
}

type SetUpdateInput struct {
	Weight    *float64
	Reps      *int
	Notes     *string
	Order     *int
	Completed *bool
}

type DropsetUpdateInput struct {
	Notes *string
	Order *int
}

type SubSetUpdateInput struct {
	Weight *float64
	Reps   *int
	Order  *int
}

// --- Service Interface ---

type WorkoutService interface {
	CreateWorkout(ctx context.Context, userID primitive.ObjectID, name, notes string) (*domain.Workout, error)
	GetWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, input WorkoutUpdateInput) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error
	StartWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	EndWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)

	AddExerciseToWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	AddSupersetToWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, input SupersetInput) (*domain.Superset, error)
	AddExerciseToSuperset(ctx context.Context, userID, supersetID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	AddSetToExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, input SetInput) (*domain.ExerciseSet, error)
	AddDropsetToExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, input DropsetInput) (*domain.Dropset, error)
	AddSubSetToDropset(ctx context.Context, userID, dropsetID primitive.ObjectID, input SubSetInput) (*domain.DropsetSubSet, error)

	UpdateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, input ExerciseUpdateInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error
	UpdateSuperset(ctx context.Context, userID, supersetID primitive.ObjectID, input SupersetUpdateInput) (*domain.Superset, error)
	DeleteSuperset(ctx context.Context, userID, supersetID primitive.ObjectID) error
	UpdateSet(ctx context.Context, userID, setID primitive.ObjectID, input SetUpdateInput) (*domain.ExerciseSet, error)
	DeleteSet(ctx context.Context, userID, setID primitive.ObjectID) error
	UpdateDropset(ctx context.Context, userID, dropsetID primitive.ObjectID, input DropsetUpdateInput) (*domain.Dropset, error)
	DeleteDropset(ctx context.Context, userID, dropsetID primitive.ObjectID) error
	UpdateSubSet(ctx context.Context, userID, subSetID primitive.ObjectID, input SubSetUpdateInput) (*domain.DropsetSubSet, error)
	DeleteSubSet(ctx context.Context, userID, subSetID primitive.ObjectID) error

	AttachExerciseImage(ctx context.Context, userID, exerciseID primitive.ObjectID, fileName, contentType string, body io.Reader) (*domain.Exercise, string, error)
}

// --- Service Implementation ---

type workoutService struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	supersetRepo repository.SupersetRepository
	setRepo      repository.SetRepository
	dropsetRepo  repository.DropsetRepository
	subSetRepo   repository.SubSetRepository
	fileStorage  storage.FileStorage
	publisher    realtime.Publisher
}

// NewWorkoutService creates a new instance of workoutService. fileStorage may
// be nil when no object storage is configured; publisher may be nil to
// disable change events.
func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	exerciseRepo repository.ExerciseRepository,
	supersetRepo repository.SupersetRepository,
	setRepo repository.SetRepository,
	dropsetRepo repository.DropsetRepository,
	subSetRepo repository.SubSetRepository,
	fileStorage storage.FileStorage,
	publisher realtime.Publisher,
) WorkoutService {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	return &workoutService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		supersetRepo: supersetRepo,
		setRepo:      setRepo,
		dropsetRepo:  dropsetRepo,
		subSetRepo:   subSetRepo,
		fileStorage:  fileStorage,
		publisher:    publisher,
	}
}

// --- Validation ---

func validateExerciseInput(input ExerciseInput) error {
	if input.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if input.MuscleGroup != "" && !input.MuscleGroup.IsValid() {
		return &ValidationError{Field: "muscleGroup", Message: "unknown muscle group"}
	}
	return nil
}

func validateSetInput(input SetInput) error {
	if input.Weight < 0 {
		return &ValidationError{Field: "weight", Message: "weight must not be negative"}
	}
	if input.Reps < 1 {
		return &ValidationError{Field: "reps", Message: "reps must be at least 1"}
	}
	return nil
}

func validateSubSetInput(input SubSetInput) error {
	if input.Weight < 0 {
		return &ValidationError{Field: "weight", Message: "weight must not be negative"}
	}
	if input.Reps < 1 {
		return &ValidationError{Field: "reps", Message: "reps must be at least 1"}
	}
	return nil
}

func validateDropsetInput(input DropsetInput) error {
	if len(input.SubSets) == 0 {
		return &ValidationError{Field: "subSets", Message: "a dropset requires at least one sub-set"}
	}
	for _, sub := range input.SubSets {
		if err := validateSubSetInput(sub); err != nil {
			return err
		}
	}
	return nil
}

// --- Workout lifecycle ---

func (s *workoutService) CreateWorkout(ctx context.Context, userID primitive.ObjectID, name, notes string) (*domain.Workout, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	workout := &domain.Workout{
		UserID: userID,
		Name:   name,
		Notes:  notes,
	}
	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = workoutID
	workout.Items = []domain.WorkoutItem{}

	s.publishCreated(realtime.NewKey(realtime.KindUsers, userID.Hex()), "workout", workoutID.Hex(), workout)
	return workout, nil
}

func (s *workoutService) GetWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	return s.workoutRepo.GetByUserID(ctx, userID)
}

// GetWorkout returns the fully assembled aggregate: top-level exercises and
// supersets merged into one ordered items list, with sets, dropsets and
// sub-sets nested under their exercises.
func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	exercises, err := s.exerciseRepo.GetByWorkoutID(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	for i := range exercises {
		if err := s.loadExerciseChildren(ctx, &exercises[i]); err != nil {
			return nil, err
		}
	}

	supersets, err := s.supersetRepo.GetByWorkoutID(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	for i := range supersets {
		nested, err := s.exerciseRepo.GetBySupersetID(ctx, supersets[i].ID)
		if err != nil {
			return nil, err
		}
		for j := range nested {
			if err := s.loadExerciseChildren(ctx, &nested[j]); err != nil {
				return nil, err
			}
		}
		supersets[i].Exercises = nested
	}

	return assembleWorkout(workout, exercises, supersets), nil
}

func (s *workoutService) loadExerciseChildren(ctx context.Context, exercise *domain.Exercise) error {
	sets, err := s.setRepo.GetByExerciseID(ctx, exercise.ID)
	if err != nil {
		return err
	}
	dropsets, err := s.dropsetRepo.GetByExerciseID(ctx, exercise.ID)
	if err != nil {
		return err
	}
	for i := range dropsets {
		subSets, err := s.subSetRepo.GetByDropsetID(ctx, dropsets[i].ID)
		if err != nil {
			return err
		}
		dropsets[i].SubSets = subSets
	}
	exercise.Sets = sets
	exercise.Dropsets = dropsets
	return nil
}

func (s *workoutService) UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, input WorkoutUpdateInput) (*domain.Workout, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name must not be empty"}
	}
	workout, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		workout.Name = *input.Name
	}
	if input.Notes != nil {
		workout.Notes = *input.Notes
	}
	if input.Completed != nil {
		workout.Completed = *input.Completed
	}
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, foldNotFound(err)
	}

	s.publishUpdated(realtime.NewKey(realtime.KindWorkouts, workoutID.Hex()), "workout", workoutID.Hex(), workout)
	return workout, nil
}

// DeleteWorkout removes the workout and everything under it.
func (s *workoutService) DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	workout, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return err
	}

	exercises, err := s.exerciseRepo.GetByWorkoutID(ctx, workoutID)
	if err != nil {
		return err
	}
	for i := range exercises {
		if err := s.deleteExerciseChildren(ctx, exercises[i].ID); err != nil {
			return err
		}
	}
	if err := s.exerciseRepo.DeleteByWorkoutID(ctx, workoutID); err != nil {
		return err
	}

	supersets, err := s.supersetRepo.GetByWorkoutID(ctx, workoutID)
	if err != nil {
		return err
	}
	for i := range supersets {
		if err := s.deleteSupersetChildren(ctx, supersets[i].ID); err != nil {
			return err
		}
	}
	if err := s.supersetRepo.DeleteByWorkoutID(ctx, workoutID); err != nil {
		return err
	}

	if err := s.workoutRepo.Delete(ctx, workoutID); err != nil {
		return foldNotFound(err)
	}

	s.publishDeleted(realtime.NewKey(realtime.KindUsers, workout.UserID.Hex()), "workout", workoutID.Hex())
	return nil
}

func (s *workoutService) StartWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.StartTime != nil {
		return nil, ErrWorkoutAlreadyStarted
	}
	now := time.Now().UTC()
	workout.StartTime = &now
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, foldNotFound(err)
	}

	s.publishUpdated(realtime.NewKey(realtime.KindWorkouts, workoutID.Hex()), "workout", workoutID.Hex(), workout)
	return workout, nil
}

func (s *workoutService) EndWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.StartTime == nil {
		return nil, ErrWorkoutNotStarted
	}
	if workout.EndTime != nil {
		return nil, ErrWorkoutAlreadyEnded
	}
	now := time.Now().UTC()
	workout.EndTime = &now
	workout.Completed = true
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		return nil, foldNotFound(err)
	}

	s.publishUpdated(realtime.NewKey(realtime.KindWorkouts, workoutID.Hex()), "workout", workoutID.Hex(), workout)
	return workout, nil
}

// --- Tree creation ---

func (s *workoutService) AddExerciseToWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if err := validateExerciseInput(input); err != nil {
		return nil, err
	}
	workout, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		WorkoutID:   &workout.ID,
		Name:        input.Name,
		MuscleGroup: input.MuscleGroup,
		Notes:       input.Notes,
		Order:       input.Order,
	}
	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = exerciseID
	exercise.Sets = []domain.ExerciseSet{}
	exercise.Dropsets = []domain.Dropset{}

	s.publishCreated(realtime.NewKey(realtime.KindWorkouts, workoutID.Hex()), "exercise", exerciseID.Hex(), exercise)
	return exercise, nil
}

func (s *workoutService) AddSupersetToWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, input SupersetInput) (*domain.Superset, error) {
	workout, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	superset := &domain.Superset{
		WorkoutID: workout.ID,
		Notes:     input.Notes,
		Order:     input.Order,
	}
	supersetID, err := s.supersetRepo.Create(ctx, superset)
	if err != nil {
		return nil, err
	}
	superset.ID = supersetID
	superset.Exercises = []domain.Exercise{}

	s.publishCreated(realtime.NewKey(realtime.KindWorkouts, workoutID.Hex()), "superset", supersetID.Hex(), superset)
	return superset, nil
}

func (s *workoutService) AddExerciseToSuperset(ctx context.Context, userID, supersetID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if err := validateExerciseInput(input); err != nil {
		return nil, err
	}
	superset, err := s.ownedSuperset(ctx, userID, supersetID)
	if err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		SupersetID:  &superset.ID,
		Name:        input.Name,
		MuscleGroup: input.MuscleGroup,
		Notes:       input.Notes,
		Order:       input.Order,
	}
	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = exerciseID
	exercise.Sets = []domain.ExerciseSet{}
	exercise.Dropsets = []domain.Dropset{}

	// Supersets have no resource kind of their own; subscribers watch the
	// workout.
	s.publishCreated(realtime.NewKey(realtime.KindWorkouts, superset.WorkoutID.Hex()), "exercise", exerciseID.Hex(), exercise)
	return exercise, nil
}

func (s *workoutService) AddSetToExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, input SetInput) (*domain.ExerciseSet, error) {
	if err := validateSetInput(input); err != nil {
		return nil, err
	}
	exercise, _, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}

	set := &domain.ExerciseSet{
		ExerciseID: exercise.ID,
		Weight:     input.Weight,
		Reps:       input.Reps,
		Notes:      input.Notes,
		Order:      input.Order,
	}
	setID, err := s.setRepo.Create(ctx, set)
	if err != nil {
		return nil, err
	}
	set.ID = setID

	s.publishCreated(realtime.NewKey(realtime.KindExercises, exerciseID.Hex()), "set", setID.Hex(), set)
	return set, nil
}

func (s *workoutService) AddDropsetToExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, input DropsetInput) (*domain.Dropset, error) {
	if err := validateDropsetInput(input); err != nil {
		return nil, err
	}
	exercise, _, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}

	dropset := &domain.Dropset{
		ExerciseID: exercise.ID,
		Notes:      input.Notes,
		Order:      input.Order,
	}
	dropsetID, err := s.dropsetRepo.Create(ctx, dropset)
	if err != nil {
		return nil, err
	}
	dropset.ID = dropsetID

	dropset.SubSets = make([]domain.DropsetSubSet, 0, len(input.SubSets))
	for _, sub := range input.SubSets {
		subSet := domain.DropsetSubSet{
			DropsetID: dropsetID,
			Weight:    sub.Weight,
			Reps:      sub.Reps,
			Order:     sub.Order,
		}
		subSetID, err := s.subSetRepo.Create(ctx, &subSet)
		if err != nil {
			return nil, err
		}
		subSet.ID = subSetID
		dropset.SubSets = append(dropset.SubSets, subSet)
	}

	s.publishCreated(realtime.NewKey(realtime.KindExercises, exerciseID.Hex()), "dropset", dropsetID.Hex(), dropset)
	return dropset, nil
}

func (s *workoutService) AddSubSetToDropset(ctx context.Context, userID, dropsetID primitive.ObjectID, input SubSetInput) (*domain.DropsetSubSet, error) {
	if err := validateSubSetInput(input); err != nil {
		return nil, err
	}
	dropset, _, err := s.ownedDropset(ctx, userID, dropsetID)
	if err != nil {
		return nil, err
	}

	subSet := &domain.DropsetSubSet{
		DropsetID: dropset.ID,
		Weight:    input.Weight,
		Reps:      input.Reps,
		Order:     input.Order,
	}
	subSetID, err := s.subSetRepo.Create(ctx, subSet)
	if err != nil {
		return nil, err
	}
	subSet.ID = subSetID

	// Dropsets are addressed under the sets kind.
	s.publishCreated(realtime.NewKey(realtime.KindSets, dropsetID.Hex()), "subset", subSetID.Hex(), subSet)
	return subSet, nil
}

// --- Tree updates ---

func (s *workoutService) UpdateExercise(ctx context.Context, userID, exerciseID primitive.ObjectID, input ExerciseUpdateInput) (*domain.Exercise, error) {
	if input.Name != nil && *input.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name must not be empty"}
	}
	if input.MuscleGroup != nil && *input.MuscleGroup != "" && !input.MuscleGroup.IsValid() {
		return nil, &ValidationError{Field: "muscleGroup", Message: "unknown muscle group"}
	}
	exercise, _, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		exercise.Name = *input.Name
	}
	if input.MuscleGroup != nil {
		exercise.MuscleGroup = *input.MuscleGroup
	}
	if input.Notes != nil {
		exercise.Notes = *input.Notes
	}
	if input.Order != nil {
		exercise.Order = *input.Order
	}
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, foldNotFound(err)
	}

	s.publishUpdated(realtime.NewKey(realtime.KindExercises, exerciseID.Hex()), "exercise", exerciseID.Hex(), exercise)
	return exercise, nil
}

// DeleteExercise removes the exercise and its sets, dropsets and sub-sets.
// When the exercise was the last one of a superset, the now-empty superset is
// deleted with it.
func (s *workoutService) DeleteExercise(ctx context.Context, userID, exerciseID primitive.ObjectID) error {
	exercise, workoutID, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return err
	}

	if err := s.deleteExerciseChildren(ctx, exerciseID); err != nil {
		return err
	}
	if err := s.exerciseRepo.Delete(ctx, exerciseID); err != nil {
		return foldNotFound(err)
	}

	parentKey := realtime.NewKey(realtime.KindWorkouts, workoutID.Hex())
	s.publishDeleted(parentKey, "exercise", exerciseID.Hex())

	if exercise.SupersetID != nil {
		remaining, err := s.exerciseRepo.CountBySupersetID(ctx, *exercise.SupersetID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := s.supersetRepo.Delete(ctx, *exercise.SupersetID); err != nil {
				return foldNotFound(err)
			}
			s.publishDeleted(parentKey, "superset", exercise.SupersetID.Hex())
		}
	}
	return nil
}

func (s *workoutService) UpdateSuperset(ctx context.Context, userID, supersetID primitive.ObjectID, input SupersetUpdateInput) (*domain.Superset, error) {
	superset, err := s.ownedSuperset(ctx, userID, supersetID)
	if err != nil {
		return nil, err
	}
	if input.Notes != nil {
		superset.Notes = *input.Notes
	}
	if input.Order != nil {
		superset.Order = *input.Order
	}
	if err := s.supersetRepo.Update(ctx, superset); err != nil {
		return nil, foldNotFound(err)
	}

	// No superset key kind; announced on the workout.
	s.publishUpdated(realtime.NewKey(realtime.KindWorkouts, superset.WorkoutID.Hex()), "superset", supersetID.Hex(), superset)
	return superset, nil
}

func (s *workoutService) DeleteSuperset(ctx context.Context, userID, supersetID primitive.ObjectID) error {
	superset, err := s.ownedSuperset(ctx, userID, supersetID)
	if err != nil {
		return err
	}

	if err := s.deleteSupersetChildren(ctx, supersetID); err != nil {
		return err
	}
	if err := s.supersetRepo.Delete(ctx, supersetID); err != nil {
		return foldNotFound(err)
	}

	s.publishDeleted(realtime.NewKey(realtime.KindWorkouts, superset.WorkoutID.Hex()), "superset", supersetID.Hex())
	return nil
}

func (s *workoutService) UpdateSet(ctx context.Context, userID, setID primitive.ObjectID, input SetUpdateInput) (*domain.ExerciseSet, error) {
	if input.Weight != nil && *input.Weight < 0 {
		return nil, &ValidationError{Field: "weight", Message: "weight must not be negative"}
	}
	if input.Reps != nil && *input.Reps < 1 {
		return nil, &ValidationError{Field: "reps", Message: "reps must be at least 1"}
	}
	set, _, err := s.ownedSet(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	if input.Weight != nil {
		set.Weight = *input.Weight
	}
	if input.Reps != nil {
		set.Reps = *input.Reps
	}
	if input.Notes != nil {
		set.Notes = *input.Notes
	}
	if input.Order != nil {
		set.Order = *input.Order
	}
	if input.Completed != nil {
		set.Completed = *input.Completed
	}
	if err := s.setRepo.Update(ctx, set); err != nil {
		return nil, foldNotFound(err)
	}

	s.publishUpdated(realtime.NewKey(realtime.KindSets, setID.Hex()), "set", setID.Hex(), set)
	return set, nil
}

func (s *workoutService) DeleteSet(ctx context.Context, userID, setID primitive.ObjectID) error {
	set, _, err := s.ownedSet(ctx, userID, setID)
	if err != nil {
		return err
	}
	if err := s.setRepo.Delete(ctx, setID); err != nil {
		return foldNotFound(err)
	}

	s.publishDeleted(realtime.NewKey(realtime.KindExercises, set.ExerciseID.Hex()), "set", setID.Hex())
	return nil
}

func (s *workoutService) UpdateDropset(ctx context.Context, userID, dropsetID primitive.ObjectID, input DropsetUpdateInput) (*domain.Dropset, error) {
	dropset, _, err := s.ownedDropset(ctx, userID, dropsetID)
	if err != nil {
		return nil, err
	}
	if input.Notes != nil {
		dropset.Notes = *input.Notes
	}
	if input.Order != nil {
		dropset.Order = *input.Order
	}
	if err := s.dropsetRepo.Update(ctx, dropset); err != nil {
		return nil, foldNotFound(err)
	}

	s.publishUpdated(realtime.NewKey(realtime.KindSets, dropsetID.Hex()), "dropset", dropsetID.Hex(), dropset)
	return dropset, nil
}

func (s *workoutService) DeleteDropset(ctx context.Context, userID, dropsetID primitive.ObjectID) error {
	dropset, _, err := s.ownedDropset(ctx, userID, dropsetID)
	if err != nil {
		return err
	}
	if err := s.subSetRepo.DeleteByDropsetID(ctx, dropsetID); err != nil {
		return err
	}
	if err := s.dropsetRepo.Delete(ctx, dropsetID); err != nil {
		return foldNotFound(err)
	}

	s.publishDeleted(realtime.NewKey(realtime.KindExercises, dropset.ExerciseID.Hex()), "dropset", dropsetID.Hex())
	return nil
}

func (s *workoutService) UpdateSubSet(ctx context.Context, userID, subSetID primitive.ObjectID, input SubSetUpdateInput) (*domain.DropsetSubSet, error) {
	if input.Weight != nil && *input.Weight < 0 {
		return nil, &ValidationError{Field: "weight", Message: "weight must not be negative"}
	}
	if input.Reps != nil && *input.Reps < 1 {
		return nil, &ValidationError{Field: "reps", Message: "reps must be at least 1"}
	}
	subSet, _, err := s.ownedSubSet(ctx, userID, subSetID)
	if err != nil {
		return nil, err
	}
	if input.Weight != nil {
		subSet.Weight = *input.Weight
	}
	if input.Reps != nil {
		subSet.Reps = *input.Reps
	}
	if input.Order != nil {
		subSet.Order = *input.Order
	}
	if err := s.subSetRepo.Update(ctx, subSet); err != nil {
		return nil, foldNotFound(err)
	}

	s.publishUpdated(realtime.NewKey(realtime.KindSubSets, subSetID.Hex()), "subset", subSetID.Hex(), subSet)
	return subSet, nil
}

// DeleteSubSet removes one sub-set. Deleting the last sub-set of a dropset
// deletes the dropset, keeping its sub-set list non-empty at all times.
func (s *workoutService) DeleteSubSet(ctx context.Context, userID, subSetID primitive.ObjectID) error {
	subSet, dropset, err := s.ownedSubSet(ctx, userID, subSetID)
	if err != nil {
		return err
	}
	if err := s.subSetRepo.Delete(ctx, subSetID); err != nil {
		return foldNotFound(err)
	}

	s.publishDeleted(realtime.NewKey(realtime.KindSets, subSet.DropsetID.Hex()), "subset", subSetID.Hex())

	remaining, err := s.subSetRepo.GetByDropsetID(ctx, subSet.DropsetID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		if err := s.dropsetRepo.Delete(ctx, subSet.DropsetID); err != nil {
			return foldNotFound(err)
		}
		s.publishDeleted(realtime.NewKey(realtime.KindExercises, dropset.ExerciseID.Hex()), "dropset", subSet.DropsetID.Hex())
	}
	return nil
}

// --- Image upload ---

// AttachExerciseImage stores an image for the exercise and records its object
// key. The returned URL is a presigned download link.
func (s *workoutService) AttachExerciseImage(ctx context.Context, userID, exerciseID primitive.ObjectID, fileName, contentType string, body io.Reader) (*domain.Exercise, string, error) {
	if s.fileStorage == nil {
		return nil, "", fmt.Errorf("file storage is not configured")
	}
	exercise, _, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, "", err
	}

	objectKey := fmt.Sprintf("exercises/%s/%s%s", exerciseID.Hex(), uuid.NewString(), path.Ext(fileName))
	if err := s.fileStorage.UploadObject(ctx, objectKey, contentType, body); err != nil {
		return nil, "", err
	}

	if exercise.ImageURL != "" {
		// Old image is replaced; removal failure is not fatal.
		_ = s.fileStorage.DeleteObject(ctx, exercise.ImageURL)
	}
	exercise.ImageURL = objectKey
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, "", foldNotFound(err)
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, "", err
	}

	s.publishUpdated(realtime.NewKey(realtime.KindExercises, exerciseID.Hex()), "exercise", exerciseID.Hex(), exercise)
	return exercise, url, nil
}

// --- Cascade helpers ---

func (s *workoutService) deleteExerciseChildren(ctx context.Context, exerciseID primitive.ObjectID) error {
	if err := s.setRepo.DeleteByExerciseID(ctx, exerciseID); err != nil {
		return err
	}
	dropsets, err := s.dropsetRepo.GetByExerciseID(ctx, exerciseID)
	if err != nil {
		return err
	}
	for i := range dropsets {
		if err := s.subSetRepo.DeleteByDropsetID(ctx, dropsets[i].ID); err != nil {
			return err
		}
	}
	return s.dropsetRepo.DeleteByExerciseID(ctx, exerciseID)
}

func (s *workoutService) deleteSupersetChildren(ctx context.Context, supersetID primitive.ObjectID) error {
	exercises, err := s.exerciseRepo.GetBySupersetID(ctx, supersetID)
	if err != nil {
		return err
	}
	for i := range exercises {
		if err := s.deleteExerciseChildren(ctx, exercises[i].ID); err != nil {
			return err
		}
	}
	return s.exerciseRepo.DeleteBySupersetID(ctx, supersetID)
}
