package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicCatalogEvents  = "catalog.events"
	TopicTrackingEvents = "tracking.events"
)

// Event types.
const (
	CatalogBatchPublished   = "catalog.batch_published"
	CatalogBatchUnpublished = "catalog.batch_unpublished"
	CatalogReset            = "catalog.reset"
	TrackingRecorded        = "tracking.recorded"
	TrackingClientAction    = "tracking.client_action"
)

// BatchPublishedEvent is emitted after a successful publish or unpublish
// batch.
type BatchPublishedEvent struct {
	Action     string    `json:"action"`
	BatchSize  int       `json:"batch_size"`
	Affected   int64     `json:"affected"`
	Remaining  int64     `json:"remaining"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CatalogResetEvent is emitted after a successful publication reset.
type CatalogResetEvent struct {
	BatchSize  int       `json:"batch_size"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TrackingRecordedEvent is emitted after an engagement event lands in the
// ledger.
type TrackingRecordedEvent struct {
	TrackingID  uuid.UUID  `json:"tracking_id"`
	WhopID      uuid.UUID  `json:"whop_id"`
	PromoCodeID *uuid.UUID `json:"promo_code_id,omitempty"`
	ActionType  string     `json:"action_type"`
	Path        string     `json:"path,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// ClientActionEvent is a user action forwarded by an edge collector for
// ingestion into the ledger.
type ClientActionEvent struct {
	WhopID      uuid.UUID  `json:"whop_id"`
	PromoCodeID *uuid.UUID `json:"promo_code_id,omitempty"`
	ActionType  string     `json:"action_type"`
	Path        string     `json:"path,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}
