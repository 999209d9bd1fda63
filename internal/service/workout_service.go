package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/strengthlab/overload/internal/domain"
)

// transitionRetries bounds how often a lifecycle transition re-reads the
// workout after losing an optimistic-versioning race. Each retry re-checks
// the precondition against the winner's state, so a genuine loser gets the
// precondition failure of the resulting state rather than a raw conflict.
const transitionRetries = 3

// WorkoutService owns the workout lifecycle state machine:
// scheduled --start--> in_progress --finish--> completed, with cancel
// returning an in-progress workout to scheduled. Completed is terminal.
type WorkoutService struct {
	workoutRepo  domain.WorkoutRepository
	templateRepo domain.TemplateRepository
	cache        domain.CacheRepository
	clock        domain.Clock
	loc          *time.Location
}

// NewWorkoutService creates the lifecycle service. loc is the reference
// timezone for the "scheduled for today" check on start.
func NewWorkoutService(
	workoutRepo domain.WorkoutRepository,
	templateRepo domain.TemplateRepository,
	cache domain.CacheRepository,
	clock domain.Clock,
	loc *time.Location,
) *WorkoutService {
	if loc == nil {
		loc = time.UTC
	}
	return &WorkoutService{
		workoutRepo:  workoutRepo,
		templateRepo: templateRepo,
		cache:        cache,
		clock:        clock,
		loc:          loc,
	}
}

// generateULID creates a new ULID string
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// CreateWorkoutRequest carries the fields for scheduling a workout. Start and
// end times are optional pass-throughs for backfilled history.
type CreateWorkoutRequest struct {
	Date       string     `json:"date"`
	TemplateID string     `json:"template_id,omitempty"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
}

// Create schedules a new workout for the user.
func (s *WorkoutService) Create(ctx context.Context, userID string, req CreateWorkoutRequest) (*domain.Workout, error) {
	workout := &domain.Workout{
		UserID:     userID,
		TemplateID: req.TemplateID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	if err := workout.Validate(); err != nil {
		return nil, err
	}

	// The template reference must resolve for this user now; snapshotting at
	// start time should not be the first place a bad id surfaces.
	if req.TemplateID != "" {
		if _, err := s.templateRepo.GetByID(ctx, userID, req.TemplateID); err != nil {
			return nil, fmt.Errorf("template %s: %w", req.TemplateID, err)
		}
	}

	if err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, err
	}
	return workout, nil
}

// Get returns one workout including its exercises.
func (s *WorkoutService) Get(ctx context.Context, userID, id string) (*domain.Workout, error) {
	return s.workoutRepo.GetByID(ctx, userID, id)
}

// List returns the user's workouts. Without a date filter the result is a
// summary view: exercises are stripped to keep responses compact.
func (s *WorkoutService) List(ctx context.Context, userID string, filter domain.WorkoutFilter) ([]*domain.Workout, error) {
	workouts, err := s.workoutRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if filter.Date == "" {
		for _, w := range workouts {
			w.Exercises = nil
		}
	}
	return workouts, nil
}

// Start begins a workout: sets start_time to now and, when the workout has a
// template and no exercises yet, snapshots the template's prescriptions into
// it in the same atomic write. The snapshot only fires on an empty exercise
// list, so a retried start can never duplicate it.
func (s *WorkoutService) Start(ctx context.Context, userID, id string) (*domain.Workout, error) {
	return s.transition(ctx, userID, id, func(w *domain.Workout) error {
		if w.StartTime != nil {
			return fmt.Errorf("%w: workout already started", domain.ErrInvalidTransition)
		}
		now := s.clock.Now()
		today := now.In(s.loc).Format(domain.DateLayout)
		if w.Date != today {
			return fmt.Errorf("%w: not scheduled for today (scheduled for %s)", domain.ErrInvalidTransition, w.Date)
		}
		w.StartTime = &now
		if w.TemplateID != "" && len(w.Exercises) == 0 {
			template, err := s.templateRepo.GetByID(ctx, userID, w.TemplateID)
			if err != nil {
				return fmt.Errorf("template %s: %w", w.TemplateID, err)
			}
			w.Exercises = snapshotTemplate(template)
		}
		return nil
	})
}

// Cancel returns an in-progress workout to scheduled by clearing start_time.
// The exercise snapshot is retained: cancelling is a scheduling action, not a
// data-loss action.
func (s *WorkoutService) Cancel(ctx context.Context, userID, id string) (*domain.Workout, error) {
	return s.transition(ctx, userID, id, func(w *domain.Workout) error {
		if err := requireInProgress(w); err != nil {
			return err
		}
		w.StartTime = nil
		return nil
	})
}

// Finish completes an in-progress workout by setting end_time to now. No
// upper bound is enforced on the elapsed duration.
func (s *WorkoutService) Finish(ctx context.Context, userID, id string) (*domain.Workout, error) {
	return s.transition(ctx, userID, id, func(w *domain.Workout) error {
		if err := requireInProgress(w); err != nil {
			return err
		}
		now := s.clock.Now()
		if now.Before(*w.StartTime) {
			// Clock went backwards; pin to start so the invariant holds.
			now = *w.StartTime
		}
		w.EndTime = &now
		return nil
	})
}

// UpdateWorkoutRequest is a partial update; nil fields are left untouched.
type UpdateWorkoutRequest struct {
	Date      *string    `json:"date,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// Update patches a workout's schedule fields. Finished workouts are
// immutable.
func (s *WorkoutService) Update(ctx context.Context, userID, id string, req UpdateWorkoutRequest) (*domain.Workout, error) {
	return s.transition(ctx, userID, id, func(w *domain.Workout) error {
		if w.EndTime != nil {
			return fmt.Errorf("%w: cannot modify a finished workout", domain.ErrInvalidState)
		}
		if req.Date != nil {
			w.Date = *req.Date
		}
		if req.StartTime != nil {
			w.StartTime = req.StartTime
		}
		if req.EndTime != nil {
			w.EndTime = req.EndTime
		}
		return w.Validate()
	})
}

// UpdateExercises replaces the workout's exercise list with logged data. This
// is how set logging and suggestion application happen; the suggestion engine
// itself never writes here.
func (s *WorkoutService) UpdateExercises(ctx context.Context, userID, id string, exercises []domain.WorkoutExercise) (*domain.Workout, error) {
	return s.transition(ctx, userID, id, func(w *domain.Workout) error {
		if w.EndTime != nil {
			return fmt.Errorf("%w: cannot modify a finished workout", domain.ErrInvalidState)
		}
		for i := range exercises {
			if err := exercises[i].Validate(); err != nil {
				return fmt.Errorf("exercise %d: %w", i+1, err)
			}
			if exercises[i].ExerciseID == "" {
				exercises[i].ExerciseID = generateULID()
			}
			for j := range exercises[i].Sets {
				if exercises[i].Sets[j].SetID == "" {
					exercises[i].Sets[j].SetID = generateULID()
				}
			}
		}
		w.Exercises = exercises
		return nil
	})
}

// Delete permanently removes a workout. No precondition on state.
func (s *WorkoutService) Delete(ctx context.Context, userID, id string) error {
	if err := s.workoutRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateSuggestion(ctx, id)
	return nil
}

// transition runs one atomic read-modify-write against the workout. The
// mutation fn checks its own precondition against the freshly read state;
// on a version conflict the whole read-check-write is retried, so a racing
// caller observes the precondition failure of whichever transition won.
func (s *WorkoutService) transition(ctx context.Context, userID, id string, fn func(*domain.Workout) error) (*domain.Workout, error) {
	var lastErr error
	for attempt := 0; attempt < transitionRetries; attempt++ {
		workout, err := s.workoutRepo.GetByID(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if err := fn(workout); err != nil {
			return nil, err
		}
		if err := workout.Validate(); err != nil {
			return nil, err
		}
		err = s.workoutRepo.Update(ctx, workout)
		if errors.Is(err, domain.ErrConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		s.invalidateSuggestion(ctx, workout.ID)
		return workout, nil
	}
	return nil, fmt.Errorf("workout %s: %w", id, lastErr)
}

func requireInProgress(w *domain.Workout) error {
	if w.StartTime == nil || w.EndTime != nil {
		return fmt.Errorf("%w: workout not in progress", domain.ErrInvalidTransition)
	}
	return nil
}

// invalidateSuggestion drops any cached suggestion for the workout. Cache
// errors are logged, never surfaced: the cache is advisory.
func (s *WorkoutService) invalidateSuggestion(ctx context.Context, workoutID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSuggestion(ctx, workoutID); err != nil {
		log.Printf("Warning: failed to invalidate suggestion cache for workout %s: %v", workoutID, err)
	}
}

// snapshotTemplate copies a template's prescriptions by value into session
// exercises, each seeded with target_sets empty performed sets. The copy is
// deliberate: later template edits must never rewrite workout history.
func snapshotTemplate(t *domain.Template) []domain.WorkoutExercise {
	exercises := make([]domain.WorkoutExercise, len(t.Exercises))
	for i, p := range t.Exercises {
		sets := make([]domain.PerformedSet, p.TargetSets)
		for j := range sets {
			sets[j] = domain.PerformedSet{SetID: generateULID()}
		}
		exercises[i] = domain.WorkoutExercise{
			ExerciseID:   generateULID(),
			Name:         p.Name,
			TargetSets:   p.TargetSets,
			TargetRepMin: p.TargetRepMin,
			TargetRepMax: p.TargetRepMax,
			Sets:         sets,
		}
	}
	return exercises
}
