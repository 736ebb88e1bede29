package review

import (
	"context"

	"github.com/google/uuid"
)

// ReviewRepository defines persistence operations for reviews. Verify and
// Delete recompute the parent whop's rating as the mean of verified reviews,
// inside the same transaction as the review write.
type ReviewRepository interface {
	Save(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	ListByWhop(ctx context.Context, whopID uuid.UUID, verifiedOnly bool) ([]*Review, error)
	ListAll(ctx context.Context, page, limit int) ([]*Review, int64, error)

	// Verify flips the verified flag and recomputes the parent whop's rating.
	// Returns the updated review and the new rating.
	Verify(ctx context.Context, id uuid.UUID) (*Review, float64, error)

	// Delete removes a review; if it was verified, the parent whop's rating
	// is recomputed over the remaining verified reviews.
	Delete(ctx context.Context, id uuid.UUID) error
}
