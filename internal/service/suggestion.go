package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/strengthlab/overload/internal/domain"
)

// Tunable defaults for the progressive-overload policy. The exact numbers
// are coaching opinion, not spec; keep them adjustable on the engine.
const (
	// DefaultWeightIncrement is the standard load jump applied after a
	// progressing session, in the user's weight unit (smallest common
	// plate pair).
	DefaultWeightIncrement = 2.5

	// DefaultDetrainingGapDays flags a layoff: with sessions expected
	// roughly weekly, a gap longer than this suggests detraining and the
	// trend is treated as regressing.
	DefaultDetrainingGapDays = 10

	// DefaultFatigueRepDrop is how many reps later sets lose relative to
	// the first set at the same weight.
	DefaultFatigueRepDrop = 1

	// DefaultEnduranceRepBonus is how far an endurance phase may push reps
	// beyond the prescribed maximum when the trend supports it.
	DefaultEnduranceRepBonus = 2
)

// trendClass is the engine's read of recent performance for one exercise.
// Classification is a separate step from set construction and from rationale
// rendering so the numeric policy and the wording stay independently
// testable.
type trendClass int

const (
	trendProgressing trendClass = iota
	trendMaintaining
	trendRegressing
)

func (t trendClass) String() string {
	switch t {
	case trendProgressing:
		return "progressing"
	case trendMaintaining:
		return "maintaining"
	default:
		return "regressing"
	}
}

// SuggestionEngine derives concrete set/rep/weight recommendations from a
// template prescription and aggregated history. It is pure: no I/O, no
// mutation of its inputs, safe to call concurrently.
type SuggestionEngine struct {
	WeightIncrement   float64
	DetrainingGapDays int
	FatigueRepDrop    int
	EnduranceRepBonus int
}

// NewSuggestionEngine returns an engine with the documented defaults.
func NewSuggestionEngine() *SuggestionEngine {
	return &SuggestionEngine{
		WeightIncrement:   DefaultWeightIncrement,
		DetrainingGapDays: DefaultDetrainingGapDays,
		FatigueRepDrop:    DefaultFatigueRepDrop,
		EnduranceRepBonus: DefaultEnduranceRepBonus,
	}
}

// Suggest produces one recommendation per prescription, in prescription
// order. The suggested set count always equals the prescription's
// TargetSets, whatever was logged historically. tctx may be nil.
func (e *SuggestionEngine) Suggest(prescriptions []domain.ExercisePrescription, history domain.ExerciseHistory, tctx *domain.TrainingContext) domain.Suggestion {
	var phase domain.TrainingPhase
	if tctx != nil {
		phase = tctx.Phase
	}

	suggestion := domain.Suggestion{
		Exercises: make([]domain.ExerciseSuggestion, 0, len(prescriptions)),
	}
	for _, p := range prescriptions {
		suggestion.Exercises = append(suggestion.Exercises, e.suggestExercise(p, history[p.Name], phase))
	}
	suggestion.OverallNotes = renderOverallNotes(tctx)
	return suggestion
}

func (e *SuggestionEngine) suggestExercise(p domain.ExercisePrescription, sessions []domain.ExerciseSession, phase domain.TrainingPhase) domain.ExerciseSuggestion {
	stats, ok := summarizeSessions(sessions)
	if !ok {
		return e.seedFirstTime(p, phase)
	}
	trend := e.classify(p, stats)
	return domain.ExerciseSuggestion{
		Name:  p.Name,
		Sets:  e.buildSets(p, trend, stats, phase),
		Notes: renderRationale(p, trend, stats, phase, e.WeightIncrement),
	}
}

// seedFirstTime handles exercises with no usable history: reps at the
// midpoint of the prescribed range, weight left neutral because there is no
// number to anchor to. Only the template prescription informs this.
func (e *SuggestionEngine) seedFirstTime(p domain.ExercisePrescription, phase domain.TrainingPhase) domain.ExerciseSuggestion {
	repStart := (p.TargetRepMin + p.TargetRepMax) / 2
	switch phase {
	case domain.PhaseDeload, domain.PhaseStrength:
		repStart = p.TargetRepMin
	case domain.PhaseHypertrophy, domain.PhaseEndurance:
		// No trend to justify exceeding the range on a first exposure.
		repStart = p.TargetRepMax
	}

	sets := make([]domain.SetSuggestion, p.TargetSets)
	reps := repStart
	for i := range sets {
		sets[i] = domain.SetSuggestion{Reps: clampInt(reps, p.TargetRepMin, p.TargetRepMax)}
		reps -= e.FatigueRepDrop
	}
	return domain.ExerciseSuggestion{
		Name:  p.Name,
		Sets:  sets,
		Notes: "First time performing this exercise: focus on form and find a comfortable starting weight.",
	}
}

// exerciseStats summarizes the most recent informative session (the latest
// one with at least one completed, rep-counted set) plus spacing data.
type exerciseStats struct {
	lastDate    string
	lastWeight  float64 // average weight of completed sets; 0 for bodyweight work
	lastAvgReps float64
	lastMinReps int
	lastMaxReps int
	gapDays     int // days between the two most recent sessions; 0 if unknown
	sessions    int
}

// summarizeSessions reduces history to exerciseStats. ok is false when no
// session contains a completed set with logged reps, which the caller treats
// the same as empty history.
func summarizeSessions(sessions []domain.ExerciseSession) (exerciseStats, bool) {
	var stats exerciseStats
	stats.sessions = len(sessions)

	// Walk newest to oldest for the most recent session with real data.
	last := -1
	for i := len(sessions) - 1; i >= 0; i-- {
		if len(completedSets(sessions[i].Sets)) > 0 {
			last = i
			break
		}
	}
	if last == -1 {
		return stats, false
	}

	done := completedSets(sessions[last].Sets)
	stats.lastDate = sessions[last].Date
	stats.lastMinReps = *done[0].Reps
	stats.lastMaxReps = *done[0].Reps
	var repSum int
	var weightSum float64
	var weighted int
	for _, s := range done {
		repSum += *s.Reps
		if *s.Reps < stats.lastMinReps {
			stats.lastMinReps = *s.Reps
		}
		if *s.Reps > stats.lastMaxReps {
			stats.lastMaxReps = *s.Reps
		}
		if s.Weight != nil {
			weightSum += *s.Weight
			weighted++
		}
	}
	stats.lastAvgReps = float64(repSum) / float64(len(done))
	if weighted > 0 {
		stats.lastWeight = weightSum / float64(weighted)
	}

	if last > 0 {
		stats.gapDays = daysBetween(sessions[last-1].Date, sessions[last].Date)
	}
	return stats, true
}

// classify maps the stats onto a trend. Detraining gaps dominate; otherwise
// the most recent session's reps are read against the prescribed range.
func (e *SuggestionEngine) classify(p domain.ExercisePrescription, stats exerciseStats) trendClass {
	if stats.gapDays > e.DetrainingGapDays {
		return trendRegressing
	}
	if stats.lastMinReps < p.TargetRepMin {
		return trendRegressing
	}
	if stats.lastMinReps >= p.TargetRepMax {
		return trendProgressing
	}
	return trendMaintaining
}

// buildSets is the numeric policy: a base weight and first-set rep target per
// trend, an advisory phase modifier on top, then a set-to-set fatigue decay
// bounded by the prescribed floor.
func (e *SuggestionEngine) buildSets(p domain.ExercisePrescription, trend trendClass, stats exerciseStats, phase domain.TrainingPhase) []domain.SetSuggestion {
	var weight float64
	var repStart int
	repCeil := p.TargetRepMax

	switch trend {
	case trendProgressing:
		weight = stats.lastWeight + e.WeightIncrement
		repStart = (p.TargetRepMin + p.TargetRepMax) / 2
	case trendMaintaining:
		weight = stats.lastWeight
		repStart = clampInt(int(math.Round(stats.lastAvgReps))+1, p.TargetRepMin, p.TargetRepMax)
	case trendRegressing:
		weight = stats.lastWeight
		if stats.lastMinReps < p.TargetRepMin {
			weight = math.Max(0, stats.lastWeight-e.WeightIncrement)
		}
		repStart = p.TargetRepMin
	}

	switch phase {
	case domain.PhaseDeload:
		weight = math.Min(weight, stats.lastWeight)
		repStart = p.TargetRepMin
	case domain.PhaseStrength:
		repStart = p.TargetRepMin
	case domain.PhaseHypertrophy:
		repStart = p.TargetRepMax
	case domain.PhaseEndurance:
		if trend != trendRegressing {
			repStart = p.TargetRepMax + e.EnduranceRepBonus
			repCeil = repStart
		}
	}

	sets := make([]domain.SetSuggestion, p.TargetSets)
	reps := repStart
	for i := range sets {
		sets[i] = domain.SetSuggestion{
			Reps:   clampInt(reps, p.TargetRepMin, repCeil),
			Weight: roundToHalf(weight),
		}
		reps -= e.FatigueRepDrop
	}
	return sets
}

// renderRationale is the textual policy, kept apart from the numbers.
func renderRationale(p domain.ExercisePrescription, trend trendClass, stats exerciseStats, phase domain.TrainingPhase, increment float64) string {
	var b strings.Builder

	switch trend {
	case trendProgressing:
		fmt.Fprintf(&b, "Hit %d reps on every set at %.1f last session (%s). Adding %.1f for the next one.",
			p.TargetRepMax, stats.lastWeight, stats.lastDate, increment)
	case trendMaintaining:
		fmt.Fprintf(&b, "Last session averaged %.0f reps at %.1f, inside the %d-%d range. Repeat the weight and work toward %d reps.",
			stats.lastAvgReps, stats.lastWeight, p.TargetRepMin, p.TargetRepMax, p.TargetRepMax)
	case trendRegressing:
		if stats.gapDays > 0 && stats.lastMinReps >= p.TargetRepMin {
			fmt.Fprintf(&b, "%d days since the previous session. Holding the weight and rebuilding volume from %d reps.",
				stats.gapDays, p.TargetRepMin)
		} else {
			fmt.Fprintf(&b, "Last session fell below %d reps. Easing the load to rebuild.",
				p.TargetRepMin)
		}
	}

	switch phase {
	case domain.PhaseDeload:
		b.WriteString(" Deload: load capped at the last session's weight, reps kept easy.")
	case domain.PhaseStrength:
		b.WriteString(" Strength focus: lower reps, heavier loading.")
	case domain.PhaseHypertrophy:
		b.WriteString(" Hypertrophy focus: chasing the top of the rep range.")
	case domain.PhaseEndurance:
		b.WriteString(" Endurance focus: extended rep targets.")
	}
	return b.String()
}

// renderOverallNotes builds the session-level note. Context notes and goal
// pass through verbatim; they are color for a human, never directives.
func renderOverallNotes(tctx *domain.TrainingContext) string {
	parts := []string{"Based on your completed sessions from the last training block. Leave one or two reps in reserve on every set."}
	if tctx != nil {
		if tctx.Goal != "" {
			parts = append(parts, "Goal: "+tctx.Goal+".")
		}
		if tctx.Notes != "" {
			parts = append(parts, tctx.Notes)
		}
	}
	return strings.Join(parts, " ")
}

func completedSets(sets []domain.PerformedSet) []domain.PerformedSet {
	out := make([]domain.PerformedSet, 0, len(sets))
	for _, s := range sets {
		if s.Completed && s.Reps != nil {
			out = append(out, s)
		}
	}
	return out
}

func daysBetween(earlier, later string) int {
	a, errA := time.Parse(domain.DateLayout, earlier)
	b, errB := time.Parse(domain.DateLayout, later)
	if errA != nil || errB != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundToHalf snaps a weight to the nearest 0.5, matching plate math.
func roundToHalf(w float64) float64 {
	return math.Round(w*2) / 2
}
