package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/strengthlab/overload/internal/domain"
)

// fixedClock pins Now for deterministic lifecycle tests.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// memWorkoutRepo is an in-memory WorkoutRepository with the same optimistic
// versioning semantics as the Mongo implementation.
type memWorkoutRepo struct {
	mu       sync.Mutex
	seq      int
	workouts map[string]*domain.Workout
}

func newMemWorkoutRepo() *memWorkoutRepo {
	return &memWorkoutRepo{workouts: make(map[string]*domain.Workout)}
}

func (r *memWorkoutRepo) Create(ctx context.Context, workout *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if workout.ID == "" {
		r.seq++
		workout.ID = fmt.Sprintf("workout-%d", r.seq)
	}
	workout.Version = 1
	workout.CreatedAt = time.Now()
	workout.UpdatedAt = workout.CreatedAt
	r.workouts[workout.ID] = cloneWorkout(workout)
	return nil
}

func (r *memWorkoutRepo) GetByID(ctx context.Context, userID, id string) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return cloneWorkout(w), nil
}

func (r *memWorkoutRepo) List(ctx context.Context, userID string, filter domain.WorkoutFilter) ([]*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Workout
	for _, w := range r.workouts {
		if w.UserID != userID {
			continue
		}
		if filter.Date != "" && w.Date != filter.Date {
			continue
		}
		out = append(out, cloneWorkout(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (r *memWorkoutRepo) ListCompletedInRange(ctx context.Context, userID, fromDate, toDate string) ([]*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Workout
	for _, w := range r.workouts {
		if w.UserID != userID || w.EndTime == nil {
			continue
		}
		if w.Date < fromDate || w.Date >= toDate {
			continue
		}
		out = append(out, cloneWorkout(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *memWorkoutRepo) Update(ctx context.Context, workout *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.workouts[workout.ID]
	if !ok || stored.UserID != workout.UserID {
		return domain.ErrNotFound
	}
	if stored.Version != workout.Version {
		return domain.ErrConflict
	}
	workout.Version++
	workout.UpdatedAt = time.Now()
	r.workouts[workout.ID] = cloneWorkout(workout)
	return nil
}

func (r *memWorkoutRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

func cloneWorkout(w *domain.Workout) *domain.Workout {
	c := *w
	if w.StartTime != nil {
		t := *w.StartTime
		c.StartTime = &t
	}
	if w.EndTime != nil {
		t := *w.EndTime
		c.EndTime = &t
	}
	c.Exercises = make([]domain.WorkoutExercise, len(w.Exercises))
	for i, ex := range w.Exercises {
		cx := ex
		cx.Sets = append([]domain.PerformedSet(nil), ex.Sets...)
		c.Exercises[i] = cx
	}
	return &c
}

// memTemplateRepo is an in-memory TemplateRepository.
type memTemplateRepo struct {
	mu        sync.Mutex
	seq       int
	templates map[string]*domain.Template
}

func newMemTemplateRepo() *memTemplateRepo {
	return &memTemplateRepo{templates: make(map[string]*domain.Template)}
}

func (r *memTemplateRepo) Create(ctx context.Context, template *domain.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if template.ID == "" {
		r.seq++
		template.ID = fmt.Sprintf("template-%d", r.seq)
	}
	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt
	c := *template
	r.templates[template.ID] = &c
	return nil
}

func (r *memTemplateRepo) GetByID(ctx context.Context, userID, id string) (*domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (r *memTemplateRepo) List(ctx context.Context, userID string, skip, limit int64) ([]*domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Template
	for _, t := range r.templates {
		if t.UserID == userID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memTemplateRepo) Update(ctx context.Context, template *domain.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[template.ID]
	if !ok || t.UserID != template.UserID {
		return domain.ErrNotFound
	}
	c := *template
	r.templates[template.ID] = &c
	return nil
}

func (r *memTemplateRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok || t.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

// memCache records suggestion cache traffic.
type memCache struct {
	mu           sync.Mutex
	entries      map[string]*domain.Suggestion
	invalidation []string
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*domain.Suggestion)}
}

func (c *memCache) GetSuggestion(ctx context.Context, workoutID string) (*domain.Suggestion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[workoutID], nil
}

func (c *memCache) SetSuggestion(ctx context.Context, workoutID string, s *domain.Suggestion, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[workoutID] = s
	return nil
}

func (c *memCache) InvalidateSuggestion(ctx context.Context, workoutID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, workoutID)
	c.invalidation = append(c.invalidation, workoutID)
	return nil
}

func benchTemplate(userID string) *domain.Template {
	return &domain.Template{
		UserID: userID,
		Name:   "Push Day",
		Exercises: []domain.ExercisePrescription{
			{Name: "Barbell Bench Press", TargetSets: 3, TargetRepMin: 8, TargetRepMax: 12},
			{Name: "Overhead Press", TargetSets: 3, TargetRepMin: 6, TargetRepMax: 10},
			{Name: "Tricep Pushdown", TargetSets: 2, TargetRepMin: 10, TargetRepMax: 15},
		},
	}
}

func intPtr(v int) *int              { return &v }
func floatPtr(v float64) *float64    { return &v }
func timePtr(t time.Time) *time.Time { return &t }
