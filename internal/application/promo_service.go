package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/whopgrid/service-catalog/internal/domain/promo"
	"github.com/whopgrid/service-catalog/internal/domain/whop"
)

// CreatePromoRequest holds data to create a promo code.
type CreatePromoRequest struct {
	WhopID      uuid.UUID `json:"whop_id" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Code        *string   `json:"code"`
	OfferType   string    `json:"offer_type" binding:"required"`
	Value       string    `json:"value"`
}

// UpdatePromoRequest holds data to update a promo code.
type UpdatePromoRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Code        *string `json:"code"`
	OfferType   string  `json:"offer_type" binding:"required"`
	Value       string  `json:"value"`
}

// PromoDTO is the API representation of a promo code.
type PromoDTO struct {
	ID          uuid.UUID `json:"id"`
	WhopID      uuid.UUID `json:"whop_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Code        *string   `json:"code"`
	OfferType   string    `json:"offer_type"`
	Value       string    `json:"value,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PromoService handles promo code use cases.
type PromoService struct {
	repo     promo.PromoRepository
	whopRepo whop.WhopRepository
	logger   *zap.Logger
}

// NewPromoService creates a new PromoService.
func NewPromoService(repo promo.PromoRepository, whopRepo whop.WhopRepository, logger *zap.Logger) *PromoService {
	return &PromoService{repo: repo, whopRepo: whopRepo, logger: logger}
}

// CreatePromo creates a promo code for an existing whop (admin).
func (s *PromoService) CreatePromo(ctx context.Context, req CreatePromoRequest) (*PromoDTO, error) {
	if _, err := s.whopRepo.FindByID(ctx, req.WhopID); err != nil {
		return nil, err
	}

	p, err := promo.NewPromoCode(req.WhopID, req.Title, req.Description, req.Code, req.OfferType, req.Value)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("promo code created",
		zap.String("whop_id", req.WhopID.String()),
		zap.String("title", p.Title()),
	)
	dto := toPromoDTO(p)
	return &dto, nil
}

// UpdatePromo updates a promo code (admin).
func (s *PromoService) UpdatePromo(ctx context.Context, id uuid.UUID, req UpdatePromoRequest) (*PromoDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := p.UpdateDetails(req.Title, req.Description, req.Code, req.OfferType, req.Value); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	dto := toPromoDTO(p)
	return &dto, nil
}

// DeletePromo removes a promo code (admin).
func (s *PromoService) DeletePromo(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// GetPromo returns a promo code by ID.
func (s *PromoService) GetPromo(ctx context.Context, id uuid.UUID) (*PromoDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toPromoDTO(p)
	return &dto, nil
}

// ListByWhop returns all promo codes for a whop.
func (s *PromoService) ListByWhop(ctx context.Context, whopID uuid.UUID) ([]PromoDTO, error) {
	promos, err := s.repo.ListByWhop(ctx, whopID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PromoDTO, len(promos))
	for i, p := range promos {
		dtos[i] = toPromoDTO(p)
	}
	return dtos, nil
}

func toPromoDTO(p *promo.PromoCode) PromoDTO {
	return PromoDTO{
		ID:          p.ID(),
		WhopID:      p.WhopID(),
		Title:       p.Title(),
		Description: p.Description(),
		Code:        p.Code(),
		OfferType:   string(p.OfferType()),
		Value:       p.Value(),
		CreatedAt:   p.CreatedAt(),
	}
}
