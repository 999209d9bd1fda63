package domain

import (
	"context"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for workout dates. Dates are
// date-only; comparing them lexicographically orders them chronologically.
const DateLayout = "2006-01-02"

// WorkoutStatus is derived from the start/end timestamps, never stored.
type WorkoutStatus string

const (
	StatusScheduled  WorkoutStatus = "scheduled"
	StatusInProgress WorkoutStatus = "in_progress"
	StatusCompleted  WorkoutStatus = "completed"
)

// Workout is a single training session owned by one user. Exercises stays
// empty until the workout is started (or backfilled), at which point the
// template's prescriptions are snapshotted into it.
type Workout struct {
	ID         string            `json:"id" bson:"_id,omitempty"`
	UserID     string            `json:"user_id" bson:"user_id"`
	TemplateID string            `json:"template_id,omitempty" bson:"template_id,omitempty"`
	Date       string            `json:"date" bson:"date"` // DateLayout, date-only
	StartTime  *time.Time        `json:"start_time" bson:"start_time"`
	EndTime    *time.Time        `json:"end_time" bson:"end_time"`
	Exercises  []WorkoutExercise `json:"exercises,omitempty" bson:"exercises,omitempty"`
	Version    int64             `json:"-" bson:"version"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" bson:"updated_at"`
}

// Status derives the lifecycle state from the timestamps.
func (w *Workout) Status() WorkoutStatus {
	switch {
	case w.EndTime != nil:
		return StatusCompleted
	case w.StartTime != nil:
		return StatusInProgress
	default:
		return StatusScheduled
	}
}

// Validate checks the timestamp invariant: an end time requires a start time
// and must not precede it. Backfilled workouts may carry both at creation.
func (w *Workout) Validate() error {
	if w.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if _, err := time.Parse(DateLayout, w.Date); err != nil {
		return fmt.Errorf("%w: date must be formatted as %s", ErrValidation, DateLayout)
	}
	if w.EndTime != nil {
		if w.StartTime == nil {
			return fmt.Errorf("%w: end_time requires start_time", ErrValidation)
		}
		if w.EndTime.Before(*w.StartTime) {
			return fmt.Errorf("%w: end_time precedes start_time", ErrValidation)
		}
	}
	for i := range w.Exercises {
		if err := w.Exercises[i].Validate(); err != nil {
			return fmt.Errorf("exercise %d: %w", i+1, err)
		}
	}
	return nil
}

// WorkoutFilter narrows List queries. Date filters to a single day.
type WorkoutFilter struct {
	Date  string
	Skip  int64
	Limit int64
}

// WorkoutRepository persists workouts. Every read and write is scoped by the
// owning user id; lookups for another user's workout return ErrNotFound.
// Update applies optimistic versioning: the write matches on the version the
// caller read, increments it, and returns ErrConflict when a concurrent
// writer got there first.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *Workout) error
	GetByID(ctx context.Context, userID, id string) (*Workout, error)
	List(ctx context.Context, userID string, filter WorkoutFilter) ([]*Workout, error)
	// ListCompletedInRange returns completed workouts (end_time set) with a
	// scheduled date in the half-open range [fromDate, toDate), oldest first.
	ListCompletedInRange(ctx context.Context, userID, fromDate, toDate string) ([]*Workout, error)
	Update(ctx context.Context, workout *Workout) error
	Delete(ctx context.Context, userID, id string) error
}
