package domain

import (
	"context"
	"fmt"
	"time"
)

// Template is a reusable ordered list of exercise prescriptions a user can
// schedule as a workout. Order is meaningful: display and suggestion
// sequencing follow it.
type Template struct {
	ID          string                 `json:"id" bson:"_id,omitempty"`
	UserID      string                 `json:"user_id" bson:"user_id"`
	Name        string                 `json:"name" bson:"name"`
	Description string                 `json:"description,omitempty" bson:"description,omitempty"`
	Exercises   []ExercisePrescription `json:"exercises" bson:"exercises"`
	CreatedAt   time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at" bson:"updated_at"`
}

// Validate checks the template and every prescription on it.
func (t *Template) Validate() error {
	if t.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: template name is required", ErrValidation)
	}
	if len(t.Exercises) == 0 {
		return fmt.Errorf("%w: template needs at least one exercise", ErrValidation)
	}
	for i := range t.Exercises {
		if err := t.Exercises[i].Validate(); err != nil {
			return fmt.Errorf("exercise %d: %w", i+1, err)
		}
	}
	return nil
}

// TemplateRepository persists templates, scoped by owner like workouts.
type TemplateRepository interface {
	Create(ctx context.Context, template *Template) error
	GetByID(ctx context.Context, userID, id string) (*Template, error)
	List(ctx context.Context, userID string, skip, limit int64) ([]*Template, error)
	Update(ctx context.Context, template *Template) error
	Delete(ctx context.Context, userID, id string) error
}
