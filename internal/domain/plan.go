package domain

import (
	"context"
	"fmt"
	"time"
)

// RestDay marks a microcycle slot with no workout.
const RestDay = -1

// TrainingPlan is a weekly schedule of workouts. Microcycle maps each day to
// an index into Templates, or RestDay. Its length is a multiple of 7 so each
// template repeats on the same weekday; the week starts on Monday.
type TrainingPlan struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	UserID      string     `json:"user_id" bson:"user_id"`
	Description string     `json:"description" bson:"description"`
	Templates   []Template `json:"templates" bson:"templates"`
	Microcycle  []int      `json:"microcycle" bson:"microcycle"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// Validate checks the microcycle shape and that every index resolves.
func (p *TrainingPlan) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: plan description is required", ErrValidation)
	}
	if len(p.Microcycle) == 0 || len(p.Microcycle)%7 != 0 {
		return fmt.Errorf("%w: microcycle length must be a positive multiple of 7", ErrValidation)
	}
	for _, idx := range p.Microcycle {
		if idx == RestDay {
			continue
		}
		if idx < 0 || idx >= len(p.Templates) {
			return fmt.Errorf("%w: microcycle index %d out of range", ErrValidation, idx)
		}
	}
	return nil
}

// TrainingPlanRepository persists plans, scoped by owner.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *TrainingPlan) error
	GetByID(ctx context.Context, userID, id string) (*TrainingPlan, error)
	List(ctx context.Context, userID string, skip, limit int64) ([]*TrainingPlan, error)
	Delete(ctx context.Context, userID, id string) error
}

// OnboardingState accumulates what the intake conversation has learned about
// a new user. Nil slices and empty strings mean "not yet known".
type OnboardingState struct {
	FitnessGoals        []string `json:"fitness_goals,omitempty"`
	ExperienceLevel     string   `json:"experience_level,omitempty"`
	CurrentRoutine      string   `json:"current_routine,omitempty"`
	DaysPerWeek         int      `json:"days_per_week,omitempty"`
	EquipmentAvailable  []string `json:"equipment_available,omitempty"`
	InjuriesLimitations []string `json:"injuries_limitations,omitempty"`
	Preferences         string   `json:"preferences,omitempty"`
}

// OnboardingMessage is one turn of the intake conversation.
type OnboardingMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// OnboardingResponse is the assistant's next turn plus its current
// understanding of the user. IsComplete flips once enough is known to
// generate a plan.
type OnboardingResponse struct {
	Message    string          `json:"message"`
	IsComplete bool            `json:"is_complete"`
	State      OnboardingState `json:"state"`
}
