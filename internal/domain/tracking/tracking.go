package tracking

import (
	"time"

	"github.com/google/uuid"

	"github.com/whopgrid/service-catalog/internal/domain"
)

// ActionType classifies a recorded user action.
type ActionType string

const (
	ActionCodeCopy    ActionType = "code_copy"
	ActionOfferClick  ActionType = "offer_click"
	ActionButtonClick ActionType = "button_click"
)

// ParseActionType validates a raw action type string at the write boundary.
func ParseActionType(s string) (ActionType, error) {
	switch ActionType(s) {
	case ActionCodeCopy, ActionOfferClick, ActionButtonClick:
		return ActionType(s), nil
	default:
		return "", domain.NewValidationError("invalid action type: " + s)
	}
}

// Event is an immutable, append-only record of a single user action.
// Events are never updated; aggregates over them are always derived on read.
type Event struct {
	id          uuid.UUID
	whopID      uuid.UUID
	promoCodeID *uuid.UUID
	actionType  ActionType
	path        string
	createdAt   time.Time
}

// NewEvent creates a tracking event. The promo reference is optional; a click
// with no associated code is still a meaningful fact.
func NewEvent(whopID uuid.UUID, promoCodeID *uuid.UUID, actionType string, path string) (*Event, error) {
	parsed, err := ParseActionType(actionType)
	if err != nil {
		return nil, err
	}
	if whopID == uuid.Nil {
		return nil, domain.NewValidationError("whop id is required")
	}

	return &Event{
		id:          uuid.New(),
		whopID:      whopID,
		promoCodeID: promoCodeID,
		actionType:  parsed,
		path:        path,
		createdAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds an Event from persistence.
func Reconstruct(id, whopID uuid.UUID, promoCodeID *uuid.UUID, actionType ActionType, path string, createdAt time.Time) *Event {
	return &Event{
		id: id, whopID: whopID, promoCodeID: promoCodeID,
		actionType: actionType, path: path, createdAt: createdAt,
	}
}

// ClearPromoReference drops a promo reference that failed to resolve.
func (e *Event) ClearPromoReference() {
	e.promoCodeID = nil
}

// Getters.
func (e *Event) ID() uuid.UUID           { return e.id }
func (e *Event) WhopID() uuid.UUID       { return e.whopID }
func (e *Event) PromoCodeID() *uuid.UUID { return e.promoCodeID }
func (e *Event) ActionType() ActionType  { return e.actionType }
func (e *Event) Path() string            { return e.path }
func (e *Event) CreatedAt() time.Time    { return e.createdAt }
