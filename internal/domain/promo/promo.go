package promo

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/whopgrid/service-catalog/internal/domain"
)

// OfferType classifies what a promo code grants.
type OfferType string

const (
	OfferDiscount        OfferType = "discount"
	OfferFreeTrial       OfferType = "free_trial"
	OfferExclusiveAccess OfferType = "exclusive_access"
	OfferOther           OfferType = "other"
)

// ParseOfferType validates a raw offer type string.
func ParseOfferType(s string) (OfferType, error) {
	switch OfferType(s) {
	case OfferDiscount, OfferFreeTrial, OfferExclusiveAccess, OfferOther:
		return OfferType(s), nil
	default:
		return "", domain.NewValidationError("invalid offer type: " + s)
	}
}

// PromoCode is a redeemable offer belonging to exactly one whop.
// The code itself is optional: "no code needed" offers are valid.
type PromoCode struct {
	id          uuid.UUID
	whopID      uuid.UUID
	title       string
	description string
	code        *string
	offerType   OfferType
	value       string
	createdAt   time.Time
}

// NewPromoCode creates a promo code for a whop.
func NewPromoCode(whopID uuid.UUID, title, description string, code *string, offerType string, value string) (*PromoCode, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if whopID == uuid.Nil {
		return nil, domain.NewValidationError("whop id is required")
	}
	parsed, err := ParseOfferType(offerType)
	if err != nil {
		return nil, err
	}
	if code != nil {
		trimmed := strings.ToUpper(strings.TrimSpace(*code))
		if trimmed == "" {
			code = nil
		} else {
			code = &trimmed
		}
	}

	return &PromoCode{
		id:          uuid.New(),
		whopID:      whopID,
		title:       title,
		description: description,
		code:        code,
		offerType:   parsed,
		value:       value,
		createdAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a PromoCode from persistence.
func Reconstruct(id, whopID uuid.UUID, title, description string, code *string, offerType OfferType, value string, createdAt time.Time) *PromoCode {
	return &PromoCode{
		id: id, whopID: whopID, title: title, description: description,
		code: code, offerType: offerType, value: value, createdAt: createdAt,
	}
}

// UpdateDetails changes the mutable fields of the offer.
func (p *PromoCode) UpdateDetails(title, description string, code *string, offerType string, value string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.NewValidationError("title is required")
	}
	parsed, err := ParseOfferType(offerType)
	if err != nil {
		return err
	}
	p.title = title
	p.description = description
	p.code = code
	p.offerType = parsed
	p.value = value
	return nil
}

// Getters.
func (p *PromoCode) ID() uuid.UUID        { return p.id }
func (p *PromoCode) WhopID() uuid.UUID    { return p.whopID }
func (p *PromoCode) Title() string        { return p.title }
func (p *PromoCode) Description() string  { return p.description }
func (p *PromoCode) Code() *string        { return p.code }
func (p *PromoCode) OfferType() OfferType { return p.offerType }
func (p *PromoCode) Value() string        { return p.value }
func (p *PromoCode) CreatedAt() time.Time { return p.createdAt }
