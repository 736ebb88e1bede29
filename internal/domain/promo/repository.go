package promo

import (
	"context"

	"github.com/google/uuid"
)

// PromoRepository defines persistence operations for promo codes.
type PromoRepository interface {
	Save(ctx context.Context, p *PromoCode) error
	Update(ctx context.Context, p *PromoCode) error
	FindByID(ctx context.Context, id uuid.UUID) (*PromoCode, error)
	ListByWhop(ctx context.Context, whopID uuid.UUID) ([]*PromoCode, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Exists reports whether a promo code row exists. The tracking write path
	// uses this to coerce dangling references to null instead of rejecting.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
