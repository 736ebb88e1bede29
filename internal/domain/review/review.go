package review

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/whopgrid/service-catalog/internal/domain"
)

// Review is a user review of a whop. It starts unverified and only counts
// toward the whop's rating once verified. Verification is one-way.
type Review struct {
	id        uuid.UUID
	whopID    uuid.UUID
	author    string
	rating    int
	content   string
	verified  bool
	createdAt time.Time
}

// NewReview creates an unverified review.
func NewReview(whopID uuid.UUID, author string, rating int, content string) (*Review, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, domain.NewValidationError("author is required")
	}
	if rating < 1 || rating > 5 {
		return nil, domain.NewValidationError("rating must be between 1 and 5")
	}
	if whopID == uuid.Nil {
		return nil, domain.NewValidationError("whop id is required")
	}

	return &Review{
		id:        uuid.New(),
		whopID:    whopID,
		author:    author,
		rating:    rating,
		content:   content,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Review from persistence.
func Reconstruct(id, whopID uuid.UUID, author string, rating int, content string, verified bool, createdAt time.Time) *Review {
	return &Review{
		id: id, whopID: whopID, author: author, rating: rating,
		content: content, verified: verified, createdAt: createdAt,
	}
}

// Verify marks the review verified. Already-verified reviews cannot be
// verified again.
func (r *Review) Verify() error {
	if r.verified {
		return domain.NewInvalidStateError("verified", "verified")
	}
	r.verified = true
	return nil
}

// Getters.
func (r *Review) ID() uuid.UUID        { return r.id }
func (r *Review) WhopID() uuid.UUID    { return r.whopID }
func (r *Review) Author() string       { return r.author }
func (r *Review) Rating() int          { return r.rating }
func (r *Review) Content() string      { return r.content }
func (r *Review) Verified() bool       { return r.verified }
func (r *Review) CreatedAt() time.Time { return r.createdAt }
