package service

import (
	"context"
	"fmt"
	"time"

	"github.com/strengthlab/overload/internal/domain"
)

// DefaultLookbackDays is the history window the suggestion flow reads: four
// weeks is long enough to see a trend and short enough to stay relevant.
const DefaultLookbackDays = 28

// HistoryAggregator assembles a user's completed training history, grouped
// per exercise. It performs no writes; its selection policy (completed-only,
// half-open window, exact name match) is its whole contract.
type HistoryAggregator struct {
	workoutRepo domain.WorkoutRepository
}

// NewHistoryAggregator creates the aggregator.
func NewHistoryAggregator(workoutRepo domain.WorkoutRepository) *HistoryAggregator {
	return &HistoryAggregator{workoutRepo: workoutRepo}
}

// Collect returns, for each exercise name, the performed sets of every
// completed workout whose scheduled date lies in [asOf-lookbackDays, asOf),
// ordered oldest first. Exercise names match exactly and case-sensitively;
// naming consistency is the caller's responsibility. Exercises with no
// history map to an empty slice, which the suggestion engine reads as "first
// time performing this exercise".
func (a *HistoryAggregator) Collect(ctx context.Context, userID string, exerciseNames []string, asOf string, lookbackDays int) (domain.ExerciseHistory, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	asOfDate, err := time.Parse(domain.DateLayout, asOf)
	if err != nil {
		return nil, fmt.Errorf("%w: as_of must be formatted as %s", domain.ErrValidation, domain.DateLayout)
	}
	from := asOfDate.AddDate(0, 0, -lookbackDays).Format(domain.DateLayout)

	workouts, err := a.workoutRepo.ListCompletedInRange(ctx, userID, from, asOf)
	if err != nil {
		return nil, err
	}

	history := make(domain.ExerciseHistory, len(exerciseNames))
	for _, name := range exerciseNames {
		history[name] = []domain.ExerciseSession{}
	}
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			sessions, tracked := history[ex.Name]
			if !tracked {
				continue
			}
			history[ex.Name] = append(sessions, domain.ExerciseSession{
				Date: w.Date,
				Sets: ex.Sets,
			})
		}
	}
	return history, nil
}
