package domain

import (
	"context"
	"fmt"
	"time"
)

// TrainingPhase biases suggestion output. It modifies the trend-derived
// numbers, it never replaces them.
type TrainingPhase string

const (
	PhaseHypertrophy TrainingPhase = "hypertrophy"
	PhaseStrength    TrainingPhase = "strength"
	PhaseEndurance   TrainingPhase = "endurance"
	PhaseDeload      TrainingPhase = "deload"
)

// Valid reports whether the phase is one of the known values.
func (p TrainingPhase) Valid() bool {
	switch p {
	case PhaseHypertrophy, PhaseStrength, PhaseEndurance, PhaseDeload:
		return true
	}
	return false
}

// TrainingContext is optional advisory input to the suggestion engine. Notes
// is carried into rationale text verbatim and never parsed for directives.
type TrainingContext struct {
	Phase TrainingPhase `json:"training_phase,omitempty"`
	Goal  string        `json:"goal,omitempty"`
	Notes string        `json:"notes,omitempty"`
}

// Validate rejects unknown phases. An empty phase is fine.
func (c *TrainingContext) Validate() error {
	if c.Phase != "" && !c.Phase.Valid() {
		return fmt.Errorf("%w: unknown training_phase %q", ErrValidation, c.Phase)
	}
	return nil
}

// SetSuggestion is one recommended set.
type SetSuggestion struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// ExerciseSuggestion carries the recommended sets for one exercise plus the
// rationale behind them. The set count always equals the prescription's
// TargetSets.
type ExerciseSuggestion struct {
	Name  string          `json:"name"`
	Sets  []SetSuggestion `json:"sets"`
	Notes string          `json:"notes,omitempty"`
}

// Suggestion is the engine's full output for a session. It is computed, never
// persisted; applying it to a workout is a separate explicit update.
type Suggestion struct {
	Exercises    []ExerciseSuggestion `json:"exercises"`
	OverallNotes string               `json:"overall_notes,omitempty"`
}

// ExerciseSession is one completed workout's performed sets for a single
// exercise, as assembled by the history aggregator.
type ExerciseSession struct {
	Date string         `json:"date"` // DateLayout
	Sets []PerformedSet `json:"sets"`
}

// ExerciseHistory maps exercise name to date-ordered sessions (oldest first).
// A missing or empty entry means the exercise has never been performed.
type ExerciseHistory map[string][]ExerciseSession

// CacheRepository is the read/write-through cache for computed suggestions.
// A nil result with nil error is a cache miss.
type CacheRepository interface {
	GetSuggestion(ctx context.Context, workoutID string) (*Suggestion, error)
	SetSuggestion(ctx context.Context, workoutID string, s *Suggestion, ttl time.Duration) error
	InvalidateSuggestion(ctx context.Context, workoutID string) error
}
