package whop

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PublicationCounts is a consistent snapshot of the catalog's publish state.
type PublicationCounts struct {
	Published   int64
	Unpublished int64
	Total       int64
}

// WhopRepository defines persistence operations for whops, including the
// set-based batch publication updates. Each batch operation must be a single
// atomic update; a partial batch must never be observable.
type WhopRepository interface {
	Save(ctx context.Context, w *Whop) error
	Update(ctx context.Context, w *Whop) error
	FindByID(ctx context.Context, id uuid.UUID) (*Whop, error)
	FindBySlug(ctx context.Context, slug string) (*Whop, error)

	// ListPublished returns publicly visible whops ordered by display order
	// then creation time.
	ListPublished(ctx context.Context) ([]*Whop, error)

	// ListAll returns all whops with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Whop, int64, error)

	// Delete removes a whop and all dependent rows (promo codes, reviews,
	// tracking events) in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error

	// PublishBatch stamps publishedAt on the oldest `limit` unpublished whops,
	// ordered by (created_at, id). Returns how many rows were touched.
	PublishBatch(ctx context.Context, limit int, at time.Time) (int64, error)

	// UnpublishBatch clears publishedAt on the `limit` most recently published
	// whops, ordered by (published_at DESC, id DESC).
	UnpublishBatch(ctx context.Context, limit int) (int64, error)

	// ResetPublication unpublishes everything and republishes the oldest
	// `limit` whops, both steps inside one transaction.
	ResetPublication(ctx context.Context, limit int, at time.Time) error

	// CountByPublication returns published/unpublished/total from one
	// consistent read.
	CountByPublication(ctx context.Context) (PublicationCounts, error)
}
