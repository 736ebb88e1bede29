package whop

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/whopgrid/service-catalog/internal/domain"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Whop is the aggregate root for a listed product/community.
type Whop struct {
	id           uuid.UUID
	name         string
	slug         string
	description  string
	logoURL      string
	price        string
	rating       float64
	displayOrder int
	createdAt    time.Time
	publishedAt  *time.Time
}

// NewWhop creates a new, unpublished Whop.
func NewWhop(name, slug, description, logoURL, price string, displayOrder int) (*Whop, error) {
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))
	if name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	if slug == "" {
		return nil, domain.NewValidationError("slug is required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, domain.NewValidationError("slug must be lowercase alphanumeric with hyphens")
	}

	return &Whop{
		id:           uuid.New(),
		name:         name,
		slug:         slug,
		description:  description,
		logoURL:      logoURL,
		price:        price,
		displayOrder: displayOrder,
		createdAt:    time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Whop from persistence.
func Reconstruct(id uuid.UUID, name, slug, description, logoURL, price string, rating float64, displayOrder int, createdAt time.Time, publishedAt *time.Time) *Whop {
	return &Whop{
		id: id, name: name, slug: slug, description: description,
		logoURL: logoURL, price: price, rating: rating,
		displayOrder: displayOrder, createdAt: createdAt, publishedAt: publishedAt,
	}
}

// Publish marks the whop publicly visible at the given instant.
// publishedAt may never precede createdAt.
func (w *Whop) Publish(at time.Time) error {
	if at.Before(w.createdAt) {
		return domain.NewValidationError("publish time cannot precede creation time")
	}
	w.publishedAt = &at
	return nil
}

// Unpublish removes the whop from public visibility.
func (w *Whop) Unpublish() {
	w.publishedAt = nil
}

// IsPublished reports whether the whop is publicly visible.
func (w *Whop) IsPublished() bool {
	return w.publishedAt != nil
}

// SetRating records the derived mean rating from verified reviews.
func (w *Whop) SetRating(rating float64) {
	w.rating = rating
}

// UpdateDetails changes the mutable catalog fields.
func (w *Whop) UpdateDetails(name, description, logoURL, price string, displayOrder int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NewValidationError("name is required")
	}
	w.name = name
	w.description = description
	w.logoURL = logoURL
	w.price = price
	w.displayOrder = displayOrder
	return nil
}

// Getters.
func (w *Whop) ID() uuid.UUID           { return w.id }
func (w *Whop) Name() string            { return w.name }
func (w *Whop) Slug() string            { return w.slug }
func (w *Whop) Description() string     { return w.description }
func (w *Whop) LogoURL() string         { return w.logoURL }
func (w *Whop) Price() string           { return w.price }
func (w *Whop) Rating() float64         { return w.rating }
func (w *Whop) DisplayOrder() int       { return w.displayOrder }
func (w *Whop) CreatedAt() time.Time    { return w.createdAt }
func (w *Whop) PublishedAt() *time.Time { return w.publishedAt }
