package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/strengthlab/overload/internal/domain"
)

// exportWindowDays bounds the export to the last year of training. Older
// sessions are rarely useful and keep the archive small.
const exportWindowDays = 365

// maxExportTemplates caps the template page pulled into an archive.
const maxExportTemplates = 500

// TrainingExport is the archive document written to object storage.
type TrainingExport struct {
	UserID      string             `json:"user_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	FromDate    string             `json:"from_date"`
	ToDate      string             `json:"to_date"`
	Workouts    []*domain.Workout  `json:"workouts"`
	Templates   []*domain.Template `json:"templates"`
}

// ExportService assembles a user's completed training history plus their
// templates into a single JSON archive and uploads it to object storage.
type ExportService struct {
	workoutRepo  domain.WorkoutRepository
	templateRepo domain.TemplateRepository
	fileRepo     domain.FileRepository
	clock        domain.Clock
	loc          *time.Location
}

// NewExportService creates the export service.
func NewExportService(
	workoutRepo domain.WorkoutRepository,
	templateRepo domain.TemplateRepository,
	fileRepo domain.FileRepository,
	clock domain.Clock,
	loc *time.Location,
) *ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{
		workoutRepo:  workoutRepo,
		templateRepo: templateRepo,
		fileRepo:     fileRepo,
		clock:        clock,
		loc:          loc,
	}
}

// Export builds and uploads the archive, returning its URL. Workouts and
// templates are fetched concurrently; either failure aborts the export.
func (s *ExportService) Export(ctx context.Context, userID string) (string, error) {
	now := s.clock.Now().In(s.loc)
	to := now.AddDate(0, 0, 1).Format(domain.DateLayout)
	from := now.AddDate(0, 0, -exportWindowDays).Format(domain.DateLayout)

	var workouts []*domain.Workout
	var templates []*domain.Template

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		workouts, err = s.workoutRepo.ListCompletedInRange(gctx, userID, from, to)
		if err != nil {
			return fmt.Errorf("export workouts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		templates, err = s.templateRepo.List(gctx, userID, 0, maxExportTemplates)
		if err != nil {
			return fmt.Errorf("export templates: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	export := TrainingExport{
		UserID:      userID,
		GeneratedAt: now,
		FromDate:    from,
		ToDate:      to,
		Workouts:    workouts,
		Templates:   templates,
	}
	payload, err := json.Marshal(export)
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", userID, now.Format("20060102T150405"))
	url, err := s.fileRepo.Upload(ctx, payload, key, "application/json")
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	return url, nil
}
