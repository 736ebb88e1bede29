package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whopgrid/service-catalog/internal/domain/whop"
)

// CreateWhopRequest holds data to create a catalog listing.
type CreateWhopRequest struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
	Description  string `json:"description"`
	LogoURL      string `json:"logo_url"`
	Price        string `json:"price"`
	DisplayOrder int    `json:"display_order"`
}

// UpdateWhopRequest holds data to update a catalog listing.
type UpdateWhopRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	LogoURL      string `json:"logo_url"`
	Price        string `json:"price"`
	DisplayOrder int    `json:"display_order"`
}

// WhopDTO is the API representation of a listing.
type WhopDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description,omitempty"`
	LogoURL      string     `json:"logo_url,omitempty"`
	Price        string     `json:"price,omitempty"`
	Rating       float64    `json:"rating"`
	DisplayOrder int        `json:"display_order"`
	CreatedAt    time.Time  `json:"created_at"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
}

// WhopService handles catalog listing use cases.
type WhopService struct {
	repo   whop.WhopRepository
	logger *zap.Logger
}

// NewWhopService creates a new WhopService.
func NewWhopService(repo whop.WhopRepository, logger *zap.Logger) *WhopService {
	return &WhopService{repo: repo, logger: logger}
}

// CreateWhop creates a new, unpublished listing (admin).
func (s *WhopService) CreateWhop(ctx context.Context, req CreateWhopRequest) (*WhopDTO, error) {
	w, err := whop.NewWhop(req.Name, req.Slug, req.Description, req.LogoURL, req.Price, req.DisplayOrder)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, w); err != nil {
		return nil, err
	}

	s.logger.Info("whop created", zap.String("slug", w.Slug()))
	dto := toWhopDTO(w)
	return &dto, nil
}

// UpdateWhop updates the mutable fields of a listing (admin).
func (s *WhopService) UpdateWhop(ctx context.Context, id uuid.UUID, req UpdateWhopRequest) (*WhopDTO, error) {
	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := w.UpdateDetails(req.Name, req.Description, req.LogoURL, req.Price, req.DisplayOrder); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to update whop: %w", err)
	}

	dto := toWhopDTO(w)
	return &dto, nil
}

// DeleteWhop removes a listing and all dependent rows (admin).
func (s *WhopService) DeleteWhop(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("whop deleted", zap.String("id", id.String()))
	return nil
}

// GetBySlug returns a single listing by slug.
func (s *WhopService) GetBySlug(ctx context.Context, slug string) (*WhopDTO, error) {
	w, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	dto := toWhopDTO(w)
	return &dto, nil
}

// ListPublished returns the public catalog.
func (s *WhopService) ListPublished(ctx context.Context) ([]WhopDTO, error) {
	whops, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	return toWhopDTOs(whops), nil
}

// ListAll returns all listings with pagination (admin).
func (s *WhopService) ListAll(ctx context.Context, page, limit int) ([]WhopDTO, int64, error) {
	whops, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toWhopDTOs(whops), total, nil
}

func toWhopDTO(w *whop.Whop) WhopDTO {
	return WhopDTO{
		ID:           w.ID(),
		Name:         w.Name(),
		Slug:         w.Slug(),
		Description:  w.Description(),
		LogoURL:      w.LogoURL(),
		Price:        w.Price(),
		Rating:       w.Rating(),
		DisplayOrder: w.DisplayOrder(),
		CreatedAt:    w.CreatedAt(),
		PublishedAt:  w.PublishedAt(),
	}
}

func toWhopDTOs(whops []*whop.Whop) []WhopDTO {
	dtos := make([]WhopDTO, len(whops))
	for i, w := range whops {
		dtos[i] = toWhopDTO(w)
	}
	return dtos
}
