package domain

import "fmt"

// ExercisePrescription is the planned volume for one exercise on a template:
// a number of sets and a rep range. It is immutable once the template is
// saved; workouts copy it by value at snapshot time.
type ExercisePrescription struct {
	Name         string `json:"name" bson:"name"`
	TargetSets   int    `json:"target_sets" bson:"target_sets"`
	TargetRepMin int    `json:"target_rep_min" bson:"target_rep_min"`
	TargetRepMax int    `json:"target_rep_max" bson:"target_rep_max"`
}

// Validate checks the prescription shape.
func (p *ExercisePrescription) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: exercise name is required", ErrValidation)
	}
	if p.TargetSets <= 0 {
		return fmt.Errorf("%w: target_sets must be positive", ErrValidation)
	}
	if p.TargetRepMin <= 0 || p.TargetRepMax <= 0 {
		return fmt.Errorf("%w: rep targets must be positive", ErrValidation)
	}
	if p.TargetRepMin > p.TargetRepMax {
		return fmt.Errorf("%w: target_rep_min exceeds target_rep_max", ErrValidation)
	}
	return nil
}

// PerformedSet records one logged set. Reps and Weight are nil until the user
// logs them; Completed marks the set as done.
type PerformedSet struct {
	SetID     string   `json:"set_id" bson:"set_id"` // ULID, assigned at snapshot time
	Reps      *int     `json:"reps" bson:"reps"`
	Weight    *float64 `json:"weight" bson:"weight"`
	Completed bool     `json:"completed" bson:"completed"`
	Notes     string   `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Validate rejects negative reps and weight.
func (s *PerformedSet) Validate() error {
	if s.Reps != nil && *s.Reps < 0 {
		return fmt.Errorf("%w: reps must not be negative", ErrValidation)
	}
	if s.Weight != nil && *s.Weight < 0 {
		return fmt.Errorf("%w: weight must not be negative", ErrValidation)
	}
	return nil
}

// WorkoutExercise is a session-level snapshot of a prescription. The target
// fields are copied from the template when the workout starts, so later
// template edits never rewrite history. The set list may grow or shrink
// independently of TargetSets.
type WorkoutExercise struct {
	ExerciseID   string         `json:"exercise_id" bson:"exercise_id"` // ULID, assigned at snapshot time
	Name         string         `json:"name" bson:"name"`
	TargetSets   int            `json:"target_sets" bson:"target_sets"`
	TargetRepMin int            `json:"target_rep_min" bson:"target_rep_min"`
	TargetRepMax int            `json:"target_rep_max" bson:"target_rep_max"`
	Sets         []PerformedSet `json:"sets" bson:"sets"`
	Notes        string         `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Validate checks the snapshot and every set in it.
func (e *WorkoutExercise) Validate() error {
	p := ExercisePrescription{
		Name:         e.Name,
		TargetSets:   e.TargetSets,
		TargetRepMin: e.TargetRepMin,
		TargetRepMax: e.TargetRepMax,
	}
	if err := p.Validate(); err != nil {
		return err
	}
	for i := range e.Sets {
		if err := e.Sets[i].Validate(); err != nil {
			return fmt.Errorf("set %d: %w", i+1, err)
		}
	}
	return nil
}
