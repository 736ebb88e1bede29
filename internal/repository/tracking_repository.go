package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/whopgrid/service-catalog/internal/domain"
	trackingDomain "github.com/whopgrid/service-catalog/internal/domain/tracking"
)

// TrackingEventModel is the GORM model for the append-only tracking_events
// table. Rows are never updated.
type TrackingEventModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WhopID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	PromoCodeID *uuid.UUID `gorm:"type:uuid;index"`
	ActionType  string     `gorm:"type:varchar(30);not null;index"`
	Path        string     `gorm:"type:text"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;not null;index"`
}

// TableName sets the table name.
func (TrackingEventModel) TableName() string { return "tracking_events" }

// GormTrackingRepository implements EventRepository using GORM.
type GormTrackingRepository struct {
	db *gorm.DB
}

// NewGormTrackingRepository creates a new GormTrackingRepository.
func NewGormTrackingRepository(db *gorm.DB) *GormTrackingRepository {
	return &GormTrackingRepository{db: db}
}

// Append inserts exactly one event row.
func (r *GormTrackingRepository) Append(ctx context.Context, e *trackingDomain.Event) error {
	model := TrackingEventModel{
		ID:          e.ID(),
		WhopID:      e.WhopID(),
		PromoCodeID: e.PromoCodeID(),
		ActionType:  string(e.ActionType()),
		Path:        e.Path(),
		CreatedAt:   e.CreatedAt(),
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// UsageStats counts code_copy events for a promo code.
func (r *GormTrackingRepository) UsageStats(ctx context.Context, promoCodeID uuid.UUID, dayStart, dayEnd time.Time) (trackingDomain.UsageCounts, error) {
	base := r.db.WithContext(ctx).Model(&TrackingEventModel{}).
		Where("promo_code_id = ? AND action_type = ?", promoCodeID, string(trackingDomain.ActionCodeCopy))

	var counts trackingDomain.UsageCounts
	if err := base.Session(&gorm.Session{}).Count(&counts.TotalCount).Error; err != nil {
		return trackingDomain.UsageCounts{}, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Count(&counts.TodayCount).Error; err != nil {
		return trackingDomain.UsageCounts{}, err
	}

	var last sql.NullTime
	if err := base.Session(&gorm.Session{}).
		Select("MAX(created_at)").
		Scan(&last).Error; err != nil {
		return trackingDomain.UsageCounts{}, err
	}
	if last.Valid {
		t := last.Time
		counts.LastUsedAt = &t
	}
	return counts, nil
}

// ClickCount counts offer_click and button_click events for a whop within
// the window.
func (r *GormTrackingRepository) ClickCount(ctx context.Context, whopID uuid.UUID, dayStart, dayEnd time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&TrackingEventModel{}).
		Where("whop_id = ?", whopID).
		Where("action_type IN ?", []string{
			string(trackingDomain.ActionOfferClick),
			string(trackingDomain.ActionButtonClick),
		}).
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Count(&count).Error
	return count, err
}

// TopPromoByCopies returns the promo code with the highest all-time
// code_copy count. Ties break toward the lowest promo code id so the result
// is deterministic.
func (r *GormTrackingRepository) TopPromoByCopies(ctx context.Context) (trackingDomain.TopEntry, error) {
	var row struct {
		PromoCodeID uuid.UUID
		Count       int64
	}
	err := r.db.WithContext(ctx).Model(&TrackingEventModel{}).
		Select("promo_code_id, COUNT(*) AS count").
		Where("action_type = ? AND promo_code_id IS NOT NULL", string(trackingDomain.ActionCodeCopy)).
		Group("promo_code_id").
		Order("count DESC, promo_code_id ASC").
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return trackingDomain.TopEntry{}, err
	}
	if row.PromoCodeID == uuid.Nil {
		return trackingDomain.TopEntry{}, domain.NewNotFoundError("TopPromo", "none")
	}
	return trackingDomain.TopEntry{ID: row.PromoCodeID, Count: row.Count}, nil
}

// TopWhopByAnyEvent returns the whop with the highest all-time event count
// across all action types.
func (r *GormTrackingRepository) TopWhopByAnyEvent(ctx context.Context) (trackingDomain.TopEntry, error) {
	var row struct {
		WhopID uuid.UUID
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&TrackingEventModel{}).
		Select("whop_id, COUNT(*) AS count").
		Group("whop_id").
		Order("count DESC, whop_id ASC").
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return trackingDomain.TopEntry{}, err
	}
	if row.WhopID == uuid.Nil {
		return trackingDomain.TopEntry{}, domain.NewNotFoundError("TopWhop", "none")
	}
	return trackingDomain.TopEntry{ID: row.WhopID, Count: row.Count}, nil
}

// DistinctPathCount counts distinct referrer paths ever recorded. This is a
// weak proxy for unique visitors, not a session count.
func (r *GormTrackingRepository) DistinctPathCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&TrackingEventModel{}).
		Distinct("path").
		Count(&count).Error
	return count, err
}

// TotalCopyCount counts all code_copy events system-wide.
func (r *GormTrackingRepository) TotalCopyCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&TrackingEventModel{}).
		Where("action_type = ?", string(trackingDomain.ActionCodeCopy)).
		Count(&count).Error
	return count, err
}
