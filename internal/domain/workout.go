package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout is the root of the aggregate. It is created empty and filled in by
// repeated child mutations. Items is only populated on the assembled
// aggregate returned to readers; it is never stored.
type Workout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	StartTime *time.Time         `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime   *time.Time         `bson:"endTime,omitempty" json:"endTime,omitempty"`
	// Completed is set by EndWorkout and by manual toggles. It is deliberately
	// independent from "all child sets completed"; the two are never reconciled.
	Completed bool      `bson:"completed" json:"completed"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	Items []WorkoutItem `bson:"-" json:"items"`
}

// ItemType discriminates the two WorkoutItem variants.
type ItemType string

const (
	ItemTypeExercise ItemType = "exercise"
	ItemTypeSuperset ItemType = "superset"
)

// WorkoutItem is the tagged union of the two things that can sit directly
// under a workout: a plain exercise or a superset. Traversal code switches on
// ItemType(); there are exactly two variants.
type WorkoutItem interface {
	ItemType() ItemType
	ItemOrder() int
	ItemCreatedAt() time.Time
}

// MuscleGroup enumerates the supported muscle group labels for an exercise.
type MuscleGroup string

const (
	MuscleGroupChest     MuscleGroup = "chest"
	MuscleGroupBack      MuscleGroup = "back"
	MuscleGroupLegs      MuscleGroup = "legs"
	MuscleGroupShoulders MuscleGroup = "shoulders"
	MuscleGroupArms      MuscleGroup = "arms"
	MuscleGroupCore      MuscleGroup = "core"
	MuscleGroupFullBody  MuscleGroup = "full_body"
	MuscleGroupCardio    MuscleGroup = "cardio"
)

// IsValid reports whether m is one of the known muscle groups.
func (m MuscleGroup) IsValid() bool {
	switch m {
	case MuscleGroupChest, MuscleGroupBack, MuscleGroupLegs, MuscleGroupShoulders,
		MuscleGroupArms, MuscleGroupCore, MuscleGroupFullBody, MuscleGroupCardio:
		return true
	}
	return false
}

// Exercise belongs to exactly one of {a workout directly, a superset}; never
// both, never neither. Exactly one of WorkoutID / SupersetID is non-nil.
type Exercise struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	WorkoutID   *primitive.ObjectID `bson:"workoutId,omitempty" json:"workoutId,omitempty"`
	SupersetID  *primitive.ObjectID `bson:"supersetId,omitempty" json:"supersetId,omitempty"`
	Name        string              `bson:"name" json:"name"`
	MuscleGroup MuscleGroup         `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"`
	Notes       string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Order       int                 `bson:"order" json:"order"`
	ImageURL    string              `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`

	Sets     []ExerciseSet `bson:"-" json:"sets"`
	Dropsets []Dropset     `bson:"-" json:"dropsets"`
}

func (e *Exercise) ItemType() ItemType { return ItemTypeExercise }
func (e *Exercise) ItemOrder() int { return e.Order }
func (e *Exercise) ItemCreatedAt() time.Time { return e.CreatedAt }

// Superset groups exercises that are performed back to back. A superset with
// zero exercises is valid only mid-edit; removing its last exercise deletes it.
type Superset struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Order     int                `bson:"order" json:"order"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	Exercises []Exercise `bson:"-" json:"exercises"`
}

func (s *Superset) ItemType() ItemType { return ItemTypeSuperset }
func (s *Superset) ItemOrder() int { return s.Order }
func (s *Superset) ItemCreatedAt() time.Time { return s.CreatedAt }

// ExerciseSet is a single straight set of an exercise.
type ExerciseSet struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Weight     float64            `bson:"weight" json:"weight"`
	Reps       int                `bson:"reps" json:"reps"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Order      int                `bson:"order" json:"order"`
	Completed  bool               `bson:"completed" json:"completed"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Dropset sits at the same level as a set within an exercise and holds an
// ordered run of descending sub-sets. Its SubSets list is non-empty once
// created; a sub-set cannot exist without its parent dropset.
type Dropset struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Order      int                `bson:"order" json:"order"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`

	SubSets []DropsetSubSet `bson:"-" json:"subSets"`
}

// DropsetSubSet is one step of a dropset.
type DropsetSubSet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DropsetID primitive.ObjectID `bson:"dropsetId" json:"dropsetId"`
	Weight    float64            `bson:"weight" json:"weight"`
	Reps      int                `bson:"reps" json:"reps"`
	Order     int                `bson:"order" json:"order"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
