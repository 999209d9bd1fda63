package service

import (
	"context"

	"github.com/strengthlab/overload/internal/domain"
)

// TemplateService owns workout template CRUD. Templates are the reusable
// prescriptions that workouts snapshot on start, so edits here never touch
// already-started workouts.
type TemplateService struct {
	templateRepo domain.TemplateRepository
}

// NewTemplateService creates the template service.
func NewTemplateService(templateRepo domain.TemplateRepository) *TemplateService {
	return &TemplateService{templateRepo: templateRepo}
}

// Create validates and stores a new template for the user.
func (s *TemplateService) Create(ctx context.Context, userID string, template *domain.Template) (*domain.Template, error) {
	template.UserID = userID
	if err := template.Validate(); err != nil {
		return nil, err
	}
	if err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// Get returns one template owned by the user.
func (s *TemplateService) Get(ctx context.Context, userID, id string) (*domain.Template, error) {
	return s.templateRepo.GetByID(ctx, userID, id)
}

// List returns a page of the user's templates.
func (s *TemplateService) List(ctx context.Context, userID string, skip, limit int64) ([]*domain.Template, error) {
	return s.templateRepo.List(ctx, userID, skip, limit)
}

// Update replaces a template's contents. The stored template keeps its ID
// and owner regardless of what the payload claims.
func (s *TemplateService) Update(ctx context.Context, userID, id string, template *domain.Template) (*domain.Template, error) {
	existing, err := s.templateRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	template.ID = existing.ID
	template.UserID = existing.UserID
	template.CreatedAt = existing.CreatedAt
	if err := template.Validate(); err != nil {
		return nil, err
	}
	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// Delete removes a template. Existing workouts that already snapshotted it
// are unaffected; scheduled ones referencing it will fail to start.
func (s *TemplateService) Delete(ctx context.Context, userID, id string) error {
	return s.templateRepo.Delete(ctx, userID, id)
}
