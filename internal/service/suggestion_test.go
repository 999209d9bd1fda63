package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strengthlab/overload/internal/domain"
)

func session(date string, weight float64, reps ...int) domain.ExerciseSession {
	sets := make([]domain.PerformedSet, len(reps))
	for i, r := range reps {
		sets[i] = domain.PerformedSet{
			SetID:     "set",
			Reps:      intPtr(r),
			Weight:    floatPtr(weight),
			Completed: true,
		}
	}
	return domain.ExerciseSession{Date: date, Sets: sets}
}

func benchPress() domain.ExercisePrescription {
	return domain.ExercisePrescription{
		Name:         "Barbell Bench Press",
		TargetSets:   3,
		TargetRepMin: 8,
		TargetRepMax: 12,
	}
}

func suggestOne(t *testing.T, p domain.ExercisePrescription, sessions []domain.ExerciseSession, tctx *domain.TrainingContext) domain.ExerciseSuggestion {
	t.Helper()
	engine := NewSuggestionEngine()
	history := domain.ExerciseHistory{p.Name: sessions}
	out := engine.Suggest([]domain.ExercisePrescription{p}, history, tctx)
	require.Len(t, out.Exercises, 1)
	return out.Exercises[0]
}

func TestSuggestFirstTime(t *testing.T) {
	p := benchPress()
	ex := suggestOne(t, p, nil, nil)

	require.Len(t, ex.Sets, p.TargetSets)
	for _, set := range ex.Sets {
		assert.GreaterOrEqual(t, set.Reps, p.TargetRepMin)
		assert.LessOrEqual(t, set.Reps, p.TargetRepMax)
		assert.Zero(t, set.Weight)
	}
	assert.Equal(t, 10, ex.Sets[0].Reps)
	assert.Contains(t, ex.Notes, "First time performing this exercise")
}

func TestSuggestProgressingAddsWeight(t *testing.T) {
	p := benchPress()
	ex := suggestOne(t, p, []domain.ExerciseSession{
		session("2026-01-05", 60, 12, 12, 12),
	}, nil)

	require.Len(t, ex.Sets, p.TargetSets)
	for _, set := range ex.Sets {
		assert.Equal(t, 62.5, set.Weight)
		assert.Greater(t, set.Weight, 60.0)
	}
	assert.Equal(t, []int{10, 9, 8}, []int{ex.Sets[0].Reps, ex.Sets[1].Reps, ex.Sets[2].Reps})
	assert.Contains(t, ex.Notes, "Adding 2.5")
}

func TestSuggestMaintainingRepeatsWeight(t *testing.T) {
	p := benchPress()
	ex := suggestOne(t, p, []domain.ExerciseSession{
		session("2026-01-05", 60, 10, 10, 10),
	}, nil)

	require.Len(t, ex.Sets, p.TargetSets)
	for _, set := range ex.Sets {
		assert.Equal(t, 60.0, set.Weight)
	}
	// One rep past last session's average, then the fatigue decay.
	assert.Equal(t, 11, ex.Sets[0].Reps)
	assert.Equal(t, 10, ex.Sets[1].Reps)
	assert.Equal(t, 9, ex.Sets[2].Reps)
}

func TestSuggestBelowRangeReducesWeight(t *testing.T) {
	p := benchPress()
	ex := suggestOne(t, p, []domain.ExerciseSession{
		session("2026-01-05", 60, 6, 6, 5),
	}, nil)

	for _, set := range ex.Sets {
		assert.Equal(t, 57.5, set.Weight)
		assert.Equal(t, p.TargetRepMin, set.Reps)
	}
	assert.Contains(t, ex.Notes, "fell below 8 reps")
}

func TestSuggestWeightNeverNegative(t *testing.T) {
	p := benchPress()
	ex := suggestOne(t, p, []domain.ExerciseSession{
		session("2026-01-05", 1, 5, 5, 5),
	}, nil)

	for _, set := range ex.Sets {
		assert.Zero(t, set.Weight)
	}
}

func TestSuggestDetrainingGapHoldsWeight(t *testing.T) {
	p := benchPress()
	ex := suggestOne(t, p, []domain.ExerciseSession{
		session("2026-01-01", 60, 12, 12, 12),
		session("2026-01-15", 60, 12, 12, 12),
	}, nil)

	// 14 days between sessions exceeds the detraining threshold, so the
	// top-of-range reps do not trigger a weight increase.
	for _, set := range ex.Sets {
		assert.Equal(t, 60.0, set.Weight)
		assert.Equal(t, p.TargetRepMin, set.Reps)
	}
	assert.Contains(t, ex.Notes, "14 days since the previous session")
}

func TestSuggestDeloadNeverExceedsLastWeight(t *testing.T) {
	p := benchPress()
	tctx := &domain.TrainingContext{Phase: domain.PhaseDeload}
	ex := suggestOne(t, p, []domain.ExerciseSession{
		session("2026-01-05", 60, 12, 12, 12),
	}, tctx)

	for _, set := range ex.Sets {
		assert.LessOrEqual(t, set.Weight, 60.0)
		assert.Equal(t, p.TargetRepMin, set.Reps)
	}
	assert.Contains(t, ex.Notes, "Deload")
}

func TestSuggestEnduranceExtendsReps(t *testing.T) {
	p := benchPress()
	tctx := &domain.TrainingContext{Phase: domain.PhaseEndurance}
	ex := suggestOne(t, p, []domain.ExerciseSession{
		session("2026-01-05", 60, 10, 10, 10),
	}, tctx)

	assert.Equal(t, p.TargetRepMax+DefaultEnduranceRepBonus, ex.Sets[0].Reps)
	for _, set := range ex.Sets {
		assert.Equal(t, 60.0, set.Weight)
	}
}

func TestSuggestStrengthAndHypertrophyBiasReps(t *testing.T) {
	p := benchPress()
	history := []domain.ExerciseSession{session("2026-01-05", 60, 10, 10, 10)}

	strength := suggestOne(t, p, history, &domain.TrainingContext{Phase: domain.PhaseStrength})
	assert.Equal(t, p.TargetRepMin, strength.Sets[0].Reps)

	hypertrophy := suggestOne(t, p, history, &domain.TrainingContext{Phase: domain.PhaseHypertrophy})
	assert.Equal(t, p.TargetRepMax, hypertrophy.Sets[0].Reps)
}

func TestSuggestSetCountMatchesPrescription(t *testing.T) {
	p := benchPress()
	// History logged five sets; the prescription asks for three.
	ex := suggestOne(t, p, []domain.ExerciseSession{
		session("2026-01-05", 60, 10, 10, 10, 9, 9),
	}, nil)
	assert.Len(t, ex.Sets, p.TargetSets)
}

func TestSuggestFatigueDecayFloorsAtMinimum(t *testing.T) {
	p := domain.ExercisePrescription{
		Name:         "Overhead Press",
		TargetSets:   5,
		TargetRepMin: 8,
		TargetRepMax: 12,
	}
	ex := suggestOne(t, p, []domain.ExerciseSession{
		session("2026-01-05", 40, 10, 10, 10, 10, 10),
	}, nil)

	require.Len(t, ex.Sets, 5)
	assert.Equal(t, []int{11, 10, 9, 8, 8},
		[]int{ex.Sets[0].Reps, ex.Sets[1].Reps, ex.Sets[2].Reps, ex.Sets[3].Reps, ex.Sets[4].Reps})
}

func TestSuggestIgnoresIncompleteSets(t *testing.T) {
	p := benchPress()
	planned := domain.ExerciseSession{
		Date: "2026-01-05",
		Sets: []domain.PerformedSet{
			{SetID: "a", Reps: intPtr(12), Weight: floatPtr(100)},
			{SetID: "b"},
		},
	}
	ex := suggestOne(t, p, []domain.ExerciseSession{planned}, nil)

	// No completed set means no usable history.
	assert.Contains(t, ex.Notes, "First time performing this exercise")
}

func TestSuggestBodyweightHistory(t *testing.T) {
	p := domain.ExercisePrescription{
		Name:         "Pull Up",
		TargetSets:   3,
		TargetRepMin: 5,
		TargetRepMax: 10,
	}
	sess := domain.ExerciseSession{
		Date: "2026-01-05",
		Sets: []domain.PerformedSet{
			{SetID: "a", Reps: intPtr(10), Completed: true},
			{SetID: "b", Reps: intPtr(10), Completed: true},
		},
	}
	ex := suggestOne(t, p, []domain.ExerciseSession{sess}, nil)

	// Progressing on bodyweight work starts the load from the increment.
	for _, set := range ex.Sets {
		assert.Equal(t, DefaultWeightIncrement, set.Weight)
	}
}

func TestSuggestOverallNotesCarryContext(t *testing.T) {
	engine := NewSuggestionEngine()
	tctx := &domain.TrainingContext{
		Phase: domain.PhaseHypertrophy,
		Goal:  "build muscle",
		Notes: "Right shoulder felt tight last week.",
	}
	out := engine.Suggest([]domain.ExercisePrescription{benchPress()}, domain.ExerciseHistory{}, tctx)

	assert.Contains(t, out.OverallNotes, "Goal: build muscle.")
	assert.Contains(t, out.OverallNotes, "Right shoulder felt tight last week.")
}

func TestSuggestPreservesPrescriptionOrder(t *testing.T) {
	engine := NewSuggestionEngine()
	prescriptions := []domain.ExercisePrescription{
		{Name: "Squat", TargetSets: 3, TargetRepMin: 5, TargetRepMax: 8},
		{Name: "Leg Press", TargetSets: 3, TargetRepMin: 10, TargetRepMax: 15},
		{Name: "Leg Curl", TargetSets: 2, TargetRepMin: 10, TargetRepMax: 15},
	}
	out := engine.Suggest(prescriptions, domain.ExerciseHistory{}, nil)

	require.Len(t, out.Exercises, 3)
	for i, p := range prescriptions {
		assert.Equal(t, p.Name, out.Exercises[i].Name)
	}
}
