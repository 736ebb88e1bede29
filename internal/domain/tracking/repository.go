package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UsageCounts holds per-promo-code copy statistics.
type UsageCounts struct {
	TodayCount int64
	TotalCount int64
	LastUsedAt *time.Time
}

// TopEntry is the leader of a grouped count query.
type TopEntry struct {
	ID    uuid.UUID
	Count int64
}

// EventRepository defines persistence for the append-only tracking ledger.
// No stored aggregate exists; every read computes over the current ledger.
type EventRepository interface {
	// Append inserts exactly one event row. Events are never updated.
	Append(ctx context.Context, e *Event) error

	// UsageStats counts code_copy events for a promo code: within
	// [dayStart, dayEnd) for today, all-time for total, plus the latest
	// event timestamp.
	UsageStats(ctx context.Context, promoCodeID uuid.UUID, dayStart, dayEnd time.Time) (UsageCounts, error)

	// ClickCount counts offer_click and button_click events for a whop
	// within [dayStart, dayEnd).
	ClickCount(ctx context.Context, whopID uuid.UUID, dayStart, dayEnd time.Time) (int64, error)

	// TopPromoByCopies returns the promo code with the highest all-time
	// code_copy count, ties broken by lowest id. ErrNotFound when no
	// code_copy event carries a promo reference.
	TopPromoByCopies(ctx context.Context) (TopEntry, error)

	// TopWhopByAnyEvent returns the whop with the highest all-time event
	// count of any type, ties broken by lowest id. ErrNotFound on an empty
	// ledger.
	TopWhopByAnyEvent(ctx context.Context) (TopEntry, error)

	// DistinctPathCount counts distinct path values ever recorded.
	DistinctPathCount(ctx context.Context) (int64, error)

	// TotalCopyCount counts all code_copy events system-wide.
	TotalCopyCount(ctx context.Context) (int64, error)
}
