package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/strengthlab/overload/internal/domain"
)

// CoachService answers "what should I do in this workout": it resolves the
// prescriptions for a scheduled workout, gathers the relevant history and
// runs the suggestion engine over both. Suggestions are computed on demand
// and never persisted; applying one to a workout is an explicit exercise
// update by the client.
type CoachService struct {
	workoutRepo  domain.WorkoutRepository
	templateRepo domain.TemplateRepository
	history      *HistoryAggregator
	engine       *SuggestionEngine
	cache        domain.CacheRepository
	cacheTTL     time.Duration
}

// NewCoachService creates the suggestion orchestrator. cache may be nil to
// disable caching entirely.
func NewCoachService(
	workoutRepo domain.WorkoutRepository,
	templateRepo domain.TemplateRepository,
	history *HistoryAggregator,
	engine *SuggestionEngine,
	cache domain.CacheRepository,
	cacheTTL time.Duration,
) *CoachService {
	return &CoachService{
		workoutRepo:  workoutRepo,
		templateRepo: templateRepo,
		history:      history,
		engine:       engine,
		cache:        cache,
		cacheTTL:     cacheTTL,
	}
}

// SuggestWorkout computes set/rep/weight recommendations for every exercise
// of the given workout. The workout must reference a template; prescriptions
// come from the workout's own snapshot when one exists, otherwise from that
// template, so a suggestion for an in-progress workout always matches what
// the user is actually performing. History is read strictly before the
// workout's date.
//
// Context-free suggestions are served from cache when possible; any training
// context bypasses the cache because the context changes the output.
func (s *CoachService) SuggestWorkout(ctx context.Context, userID, workoutID string, tctx *domain.TrainingContext) (*domain.Suggestion, error) {
	if tctx != nil {
		if err := tctx.Validate(); err != nil {
			return nil, err
		}
	}

	workout, err := s.workoutRepo.GetByID(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.EndTime != nil {
		return nil, fmt.Errorf("%w: workout is completed, nothing left to suggest", domain.ErrInvalidState)
	}
	// Suggestions are anchored to a template's prescriptions. A workout with
	// only ad-hoc exercises is rejected even when a snapshot exists.
	if workout.TemplateID == "" {
		return nil, fmt.Errorf("%w: cannot generate suggestions for a workout without a template", domain.ErrInvalidState)
	}

	cacheable := s.cache != nil && contextFree(tctx)
	if cacheable {
		cached, err := s.cache.GetSuggestion(ctx, workoutID)
		if err != nil {
			log.Printf("Warning: suggestion cache read failed for workout %s: %v", workoutID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	prescriptions, err := s.resolvePrescriptions(ctx, workout)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(prescriptions))
	for _, p := range prescriptions {
		names = append(names, p.Name)
	}
	history, err := s.history.Collect(ctx, userID, names, workout.Date, DefaultLookbackDays)
	if err != nil {
		return nil, err
	}

	suggestion := s.engine.Suggest(prescriptions, history, tctx)

	if cacheable {
		if err := s.cache.SetSuggestion(ctx, workoutID, &suggestion, s.cacheTTL); err != nil {
			log.Printf("Warning: suggestion cache write failed for workout %s: %v", workoutID, err)
		}
	}
	return &suggestion, nil
}

// resolvePrescriptions prefers the workout's snapshot over the template so
// mid-session edits are respected. The caller has already checked that the
// workout carries a template.
func (s *CoachService) resolvePrescriptions(ctx context.Context, workout *domain.Workout) ([]domain.ExercisePrescription, error) {
	if len(workout.Exercises) > 0 {
		prescriptions := make([]domain.ExercisePrescription, 0, len(workout.Exercises))
		for _, ex := range workout.Exercises {
			prescriptions = append(prescriptions, domain.ExercisePrescription{
				Name:         ex.Name,
				TargetSets:   ex.TargetSets,
				TargetRepMin: ex.TargetRepMin,
				TargetRepMax: ex.TargetRepMax,
			})
		}
		return prescriptions, nil
	}

	template, err := s.templateRepo.GetByID(ctx, workout.UserID, workout.TemplateID)
	if err != nil {
		return nil, err
	}
	return template.Exercises, nil
}

func contextFree(tctx *domain.TrainingContext) bool {
	return tctx == nil || *tctx == (domain.TrainingContext{})
}
