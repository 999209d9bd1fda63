package domain

import (
	"errors"
	"testing"
	"time"
)

func TestWorkoutStatus(t *testing.T) {
	start := time.Date(2025, 12, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name      string
		startTime *time.Time
		endTime   *time.Time
		want      WorkoutStatus
	}{
		{"no timestamps - scheduled", nil, nil, StatusScheduled},
		{"start only - in progress", &start, nil, StatusInProgress},
		{"both timestamps - completed", &start, &end, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Workout{StartTime: tt.startTime, EndTime: tt.endTime}
			if got := w.Status(); got != tt.want {
				t.Errorf("Status() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorkoutValidate(t *testing.T) {
	start := time.Date(2025, 12, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	before := start.Add(-time.Hour)

	tests := []struct {
		name    string
		workout Workout
		wantErr bool
	}{
		{
			name:    "valid scheduled workout",
			workout: Workout{UserID: "u1", Date: "2025-12-10"},
		},
		{
			name:    "valid completed workout",
			workout: Workout{UserID: "u1", Date: "2025-12-10", StartTime: &start, EndTime: &end},
		},
		{
			name:    "missing user id",
			workout: Workout{Date: "2025-12-10"},
			wantErr: true,
		},
		{
			name:    "bad date format",
			workout: Workout{UserID: "u1", Date: "10/12/2025"},
			wantErr: true,
		},
		{
			name:    "end without start",
			workout: Workout{UserID: "u1", Date: "2025-12-10", EndTime: &end},
			wantErr: true,
		},
		{
			name:    "end before start",
			workout: Workout{UserID: "u1", Date: "2025-12-10", StartTime: &start, EndTime: &before},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.workout.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestExercisePrescriptionValidate(t *testing.T) {
	tests := []struct {
		name         string
		prescription ExercisePrescription
		wantErr      bool
	}{
		{"valid", ExercisePrescription{Name: "Squat", TargetSets: 3, TargetRepMin: 8, TargetRepMax: 12}, false},
		{"equal min and max", ExercisePrescription{Name: "Squat", TargetSets: 3, TargetRepMin: 10, TargetRepMax: 10}, false},
		{"missing name", ExercisePrescription{TargetSets: 3, TargetRepMin: 8, TargetRepMax: 12}, true},
		{"zero sets", ExercisePrescription{Name: "Squat", TargetRepMin: 8, TargetRepMax: 12}, true},
		{"min above max", ExercisePrescription{Name: "Squat", TargetSets: 3, TargetRepMin: 12, TargetRepMax: 8}, true},
		{"zero rep min", ExercisePrescription{Name: "Squat", TargetSets: 3, TargetRepMax: 12}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.prescription.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPerformedSetValidate(t *testing.T) {
	negReps := -1
	negWeight := -5.0
	reps := 10
	weight := 60.0

	tests := []struct {
		name    string
		set     PerformedSet
		wantErr bool
	}{
		{"empty set", PerformedSet{}, false},
		{"logged set", PerformedSet{Reps: &reps, Weight: &weight, Completed: true}, false},
		{"bodyweight set without weight", PerformedSet{Reps: &reps, Completed: true}, false},
		{"negative reps", PerformedSet{Reps: &negReps}, true},
		{"negative weight", PerformedSet{Weight: &negWeight}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.set.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrainingPlanValidate(t *testing.T) {
	tpl := Template{
		Name:   "Day A",
		UserID: "u1",
		Exercises: []ExercisePrescription{
			{Name: "Squat", TargetSets: 3, TargetRepMin: 8, TargetRepMax: 12},
		},
	}

	tests := []struct {
		name    string
		plan    TrainingPlan
		wantErr bool
	}{
		{
			name: "valid one week plan",
			plan: TrainingPlan{
				UserID:      "u1",
				Description: "one day a week",
				Templates:   []Template{tpl},
				Microcycle:  []int{0, RestDay, RestDay, RestDay, RestDay, RestDay, RestDay},
			},
		},
		{
			name: "two week microcycle",
			plan: TrainingPlan{
				UserID:      "u1",
				Description: "alternating weeks",
				Templates:   []Template{tpl},
				Microcycle: []int{
					0, RestDay, RestDay, RestDay, RestDay, RestDay, RestDay,
					RestDay, 0, RestDay, RestDay, RestDay, RestDay, RestDay,
				},
			},
		},
		{
			name: "length not a multiple of seven",
			plan: TrainingPlan{
				UserID:      "u1",
				Description: "bad length",
				Templates:   []Template{tpl},
				Microcycle:  []int{0, RestDay, RestDay},
			},
			wantErr: true,
		},
		{
			name: "index out of range",
			plan: TrainingPlan{
				UserID:      "u1",
				Description: "dangling index",
				Templates:   []Template{tpl},
				Microcycle:  []int{1, RestDay, RestDay, RestDay, RestDay, RestDay, RestDay},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.plan.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
