package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"olexvol/liftlog/internal/domain"
	"olexvol/liftlog/internal/realtime"
	"olexvol/liftlog/internal/repository"
)

// In-memory repositories backing the service tests. They mirror the mongo
// layer's contract: generated ids, UTC timestamps, repository.ErrNotFound on
// misses, and list reads sorted by order with createdAt tiebreak.

// fakeClock hands out strictly increasing timestamps so createdAt tiebreaks
// are deterministic.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), step: time.Millisecond}
}

func (c *fakeClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

type fakeWorkoutRepo struct {
	clock    *fakeClock
	workouts map[primitive.ObjectID]*domain.Workout
}

func newFakeWorkoutRepo(clock *fakeClock) *fakeWorkoutRepo {
	return &fakeWorkoutRepo{clock: clock, workouts: map[primitive.ObjectID]*domain.Workout{}}
}

func (r *fakeWorkoutRepo) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	stored := *workout
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = r.clock.next()
	stored.UpdatedAt = stored.CreatedAt
	r.workouts[stored.ID] = &stored
	workout.CreatedAt = stored.CreatedAt
	workout.UpdatedAt = stored.UpdatedAt
	return stored.ID, nil
}

func (r *fakeWorkoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	workout, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *workout
	return &copied, nil
}

func (r *fakeWorkoutRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, workout := range r.workouts {
		if workout.UserID == userID {
			out = append(out, *workout)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeWorkoutRepo) Update(ctx context.Context, workout *domain.Workout) error {
	if _, ok := r.workouts[workout.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *workout
	stored.UpdatedAt = r.clock.next()
	r.workouts[workout.ID] = &stored
	return nil
}

func (r *fakeWorkoutRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

type fakeExerciseRepo struct {
	clock     *fakeClock
	exercises map[primitive.ObjectID]*domain.Exercise
}

func newFakeExerciseRepo(clock *fakeClock) *fakeExerciseRepo {
	return &fakeExerciseRepo{clock: clock, exercises: map[primitive.ObjectID]*domain.Exercise{}}
}

func (r *fakeExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	stored := *exercise
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = r.clock.next()
	stored.UpdatedAt = stored.CreatedAt
	stored.Sets = nil
	stored.Dropsets = nil
	r.exercises[stored.ID] = &stored
	exercise.CreatedAt = stored.CreatedAt
	exercise.UpdatedAt = stored.UpdatedAt
	return stored.ID, nil
}

func (r *fakeExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *exercise
	return &copied, nil
}

func (r *fakeExerciseRepo) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, exercise := range r.exercises {
		if exercise.WorkoutID != nil && *exercise.WorkoutID == workoutID {
			out = append(out, *exercise)
		}
	}
	sortExercises(out)
	return out, nil
}

func (r *fakeExerciseRepo) GetBySupersetID(ctx context.Context, supersetID primitive.ObjectID) ([]domain.Exercise, error) {
	var out []domain.Exercise
	for _, exercise := range r.exercises {
		if exercise.SupersetID != nil && *exercise.SupersetID == supersetID {
			out = append(out, *exercise)
		}
	}
	sortExercises(out)
	return out, nil
}

func (r *fakeExerciseRepo) CountBySupersetID(ctx context.Context, supersetID primitive.ObjectID) (int64, error) {
	var n int64
	for _, exercise := range r.exercises {
		if exercise.SupersetID != nil && *exercise.SupersetID == supersetID {
			n++
		}
	}
	return n, nil
}

func (r *fakeExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *exercise
	stored.UpdatedAt = r.clock.next()
	stored.Sets = nil
	stored.Dropsets = nil
	r.exercises[exercise.ID] = &stored
	return nil
}

func (r *fakeExerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

func (r *fakeExerciseRepo) DeleteByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error {
	for id, exercise := range r.exercises {
		if exercise.WorkoutID != nil && *exercise.WorkoutID == workoutID {
			delete(r.exercises, id)
		}
	}
	return nil
}

func (r *fakeExerciseRepo) DeleteBySupersetID(ctx context.Context, supersetID primitive.ObjectID) error {
	for id, exercise := range r.exercises {
		if exercise.SupersetID != nil && *exercise.SupersetID == supersetID {
			delete(r.exercises, id)
		}
	}
	return nil
}

func sortExercises(out []domain.Exercise) {
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}

type fakeSupersetRepo struct {
	clock     *fakeClock
	supersets map[primitive.ObjectID]*domain.Superset
}

func newFakeSupersetRepo(clock *fakeClock) *fakeSupersetRepo {
	return &fakeSupersetRepo{clock: clock, supersets: map[primitive.ObjectID]*domain.Superset{}}
}

func (r *fakeSupersetRepo) Create(ctx context.Context, superset *domain.Superset) (primitive.ObjectID, error) {
	stored := *superset
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = r.clock.next()
	stored.UpdatedAt = stored.CreatedAt
	stored.Exercises = nil
	r.supersets[stored.ID] = &stored
	superset.CreatedAt = stored.CreatedAt
	superset.UpdatedAt = stored.UpdatedAt
	return stored.ID, nil
}

func (r *fakeSupersetRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Superset, error) {
	superset, ok := r.supersets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *superset
	return &copied, nil
}

func (r *fakeSupersetRepo) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Superset, error) {
	var out []domain.Superset
	for _, superset := range r.supersets {
		if superset.WorkoutID == workoutID {
			out = append(out, *superset)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeSupersetRepo) Update(ctx context.Context, superset *domain.Superset) error {
	if _, ok := r.supersets[superset.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *superset
	stored.UpdatedAt = r.clock.next()
	stored.Exercises = nil
	r.supersets[superset.ID] = &stored
	return nil
}

func (r *fakeSupersetRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.supersets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.supersets, id)
	return nil
}

func (r *fakeSupersetRepo) DeleteByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error {
	for id, superset := range r.supersets {
		if superset.WorkoutID == workoutID {
			delete(r.supersets, id)
		}
	}
	return nil
}

type fakeSetRepo struct {
	clock *fakeClock
	sets  map[primitive.ObjectID]*domain.ExerciseSet
}

func newFakeSetRepo(clock *fakeClock) *fakeSetRepo {
	return &fakeSetRepo{clock: clock, sets: map[primitive.ObjectID]*domain.ExerciseSet{}}
}

func (r *fakeSetRepo) Create(ctx context.Context, set *domain.ExerciseSet) (primitive.ObjectID, error) {
	stored := *set
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = r.clock.next()
	stored.UpdatedAt = stored.CreatedAt
	r.sets[stored.ID] = &stored
	set.CreatedAt = stored.CreatedAt
	set.UpdatedAt = stored.UpdatedAt
	return stored.ID, nil
}

func (r *fakeSetRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseSet, error) {
	set, ok := r.sets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *set
	return &copied, nil
}

func (r *fakeSetRepo) GetByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.ExerciseSet, error) {
	var out []domain.ExerciseSet
	for _, set := range r.sets {
		if set.ExerciseID == exerciseID {
			out = append(out, *set)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeSetRepo) Update(ctx context.Context, set *domain.ExerciseSet) error {
	if _, ok := r.sets[set.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *set
	stored.UpdatedAt = r.clock.next()
	r.sets[set.ID] = &stored
	return nil
}

func (r *fakeSetRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.sets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sets, id)
	return nil
}

func (r *fakeSetRepo) DeleteByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) error {
	for id, set := range r.sets {
		if set.ExerciseID == exerciseID {
			delete(r.sets, id)
		}
	}
	return nil
}

type fakeDropsetRepo struct {
	clock    *fakeClock
	dropsets map[primitive.ObjectID]*domain.Dropset
}

func newFakeDropsetRepo(clock *fakeClock) *fakeDropsetRepo {
	return &fakeDropsetRepo{clock: clock, dropsets: map[primitive.ObjectID]*domain.Dropset{}}
}

func (r *fakeDropsetRepo) Create(ctx context.Context, dropset *domain.Dropset) (primitive.ObjectID, error) {
	stored := *dropset
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = r.clock.next()
	stored.UpdatedAt = stored.CreatedAt
	stored.SubSets = nil
	r.dropsets[stored.ID] = &stored
	dropset.CreatedAt = stored.CreatedAt
	dropset.UpdatedAt = stored.UpdatedAt
	return stored.ID, nil
}

func (r *fakeDropsetRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Dropset, error) {
	dropset, ok := r.dropsets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *dropset
	return &copied, nil
}

func (r *fakeDropsetRepo) GetByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.Dropset, error) {
	var out []domain.Dropset
	for _, dropset := range r.dropsets {
		if dropset.ExerciseID == exerciseID {
			out = append(out, *dropset)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeDropsetRepo) Update(ctx context.Context, dropset *domain.Dropset) error {
	if _, ok := r.dropsets[dropset.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *dropset
	stored.UpdatedAt = r.clock.next()
	stored.SubSets = nil
	r.dropsets[dropset.ID] = &stored
	return nil
}

func (r *fakeDropsetRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.dropsets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.dropsets, id)
	return nil
}

func (r *fakeDropsetRepo) DeleteByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) error {
	for id, dropset := range r.dropsets {
		if dropset.ExerciseID == exerciseID {
			delete(r.dropsets, id)
		}
	}
	return nil
}

type fakeSubSetRepo struct {
	clock   *fakeClock
	subSets map[primitive.ObjectID]*domain.DropsetSubSet
}

func newFakeSubSetRepo(clock *fakeClock) *fakeSubSetRepo {
	return &fakeSubSetRepo{clock: clock, subSets: map[primitive.ObjectID]*domain.DropsetSubSet{}}
}

func (r *fakeSubSetRepo) Create(ctx context.Context, subSet *domain.DropsetSubSet) (primitive.ObjectID, error) {
	stored := *subSet
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = r.clock.next()
	stored.UpdatedAt = stored.CreatedAt
	r.subSets[stored.ID] = &stored
	subSet.CreatedAt = stored.CreatedAt
	subSet.UpdatedAt = stored.UpdatedAt
	return stored.ID, nil
}

func (r *fakeSubSetRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DropsetSubSet, error) {
	subSet, ok := r.subSets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *subSet
	return &copied, nil
}

func (r *fakeSubSetRepo) GetByDropsetID(ctx context.Context, dropsetID primitive.ObjectID) ([]domain.DropsetSubSet, error) {
	var out []domain.DropsetSubSet
	for _, subSet := range r.subSets {
		if subSet.DropsetID == dropsetID {
			out = append(out, *subSet)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeSubSetRepo) Update(ctx context.Context, subSet *domain.DropsetSubSet) error {
	if _, ok := r.subSets[subSet.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *subSet
	stored.UpdatedAt = r.clock.next()
	r.subSets[subSet.ID] = &stored
	return nil
}

func (r *fakeSubSetRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.subSets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.subSets, id)
	return nil
}

func (r *fakeSubSetRepo) DeleteByDropsetID(ctx context.Context, dropsetID primitive.ObjectID) error {
	for id, subSet := range r.subSets {
		if subSet.DropsetID == dropsetID {
			delete(r.subSets, id)
		}
	}
	return nil
}

// recordingPublisher captures every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Key   realtime.Key
	Event ChangeEvent
}

func (p *recordingPublisher) Publish(key realtime.Key, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	event, _ := payload.(ChangeEvent)
	p.events = append(p.events, publishedEvent{Key: key, Event: event})
}

func (p *recordingPublisher) all() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// testEnv bundles a service wired to fresh fakes.
type testEnv struct {
	service   WorkoutService
	publisher *recordingPublisher

	workoutRepo  *fakeWorkoutRepo
	exerciseRepo *fakeExerciseRepo
	supersetRepo *fakeSupersetRepo
	setRepo      *fakeSetRepo
	dropsetRepo  *fakeDropsetRepo
	subSetRepo   *fakeSubSetRepo
}

func newTestEnv() *testEnv {
	clock := newFakeClock()
	env := &testEnv{
		publisher:    &recordingPublisher{},
		workoutRepo:  newFakeWorkoutRepo(clock),
		exerciseRepo: newFakeExerciseRepo(clock),
		supersetRepo: newFakeSupersetRepo(clock),
		setRepo:      newFakeSetRepo(clock),
		dropsetRepo:  newFakeDropsetRepo(clock),
		subSetRepo:   newFakeSubSetRepo(clock),
	}
	env.service = NewWorkoutService(
		env.workoutRepo, env.exerciseRepo, env.supersetRepo,
		env.setRepo, env.dropsetRepo, env.subSetRepo,
		nil, env.publisher)
	return env
}
