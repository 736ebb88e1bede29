package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/whopgrid/service-catalog/internal/domain"
	whopDomain "github.com/whopgrid/service-catalog/internal/domain/whop"
)

// WhopModel is the GORM model for the whops table.
type WhopModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name         string     `gorm:"type:varchar(255);not null"`
	Slug         string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description  string     `gorm:"type:text"`
	LogoURL      string     `gorm:"type:text"`
	Price        string     `gorm:"type:varchar(100)"`
	Rating       float64    `gorm:"not null;default:0"`
	DisplayOrder int        `gorm:"not null;default:0"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null;index:idx_whops_created_at"`
	PublishedAt  *time.Time `gorm:"type:timestamptz;index:idx_whops_published_at"`
}

// TableName sets the table name.
func (WhopModel) TableName() string { return "whops" }

// GormWhopRepository implements WhopRepository using GORM.
type GormWhopRepository struct {
	db *gorm.DB
}

// NewGormWhopRepository creates a new GormWhopRepository.
func NewGormWhopRepository(db *gorm.DB) *GormWhopRepository {
	return &GormWhopRepository{db: db}
}

// Save persists a new whop.
func (r *GormWhopRepository) Save(ctx context.Context, w *whopDomain.Whop) error {
	model := toWhopModel(w)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return domain.NewConflictError("slug already in use: " + w.Slug())
		}
		return err
	}
	return nil
}

// Update updates an existing whop.
func (r *GormWhopRepository) Update(ctx context.Context, w *whopDomain.Whop) error {
	model := toWhopModel(w)
	// Save would skip zero values with Updates; use Select("*") to persist
	// cleared fields like a nulled published_at.
	return r.db.WithContext(ctx).Model(&WhopModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id", "created_at").
		Updates(&model).Error
}

// FindByID returns a whop by ID.
func (r *GormWhopRepository) FindByID(ctx context.Context, id uuid.UUID) (*whopDomain.Whop, error) {
	var model WhopModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Whop", id.String())
		}
		return nil, err
	}
	return toWhopDomain(&model), nil
}

// FindBySlug returns a whop by its slug.
func (r *GormWhopRepository) FindBySlug(ctx context.Context, slug string) (*whopDomain.Whop, error) {
	var model WhopModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Whop", slug)
		}
		return nil, err
	}
	return toWhopDomain(&model), nil
}

// ListPublished returns publicly visible whops in display order.
func (r *GormWhopRepository) ListPublished(ctx context.Context) ([]*whopDomain.Whop, error) {
	var models []WhopModel
	if err := r.db.WithContext(ctx).
		Where("published_at IS NOT NULL").
		Order("display_order ASC, created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toWhopDomains(models), nil
}

// ListAll returns all whops with pagination (admin).
func (r *GormWhopRepository) ListAll(ctx context.Context, page, limit int) ([]*whopDomain.Whop, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&WhopModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []WhopModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}
	return toWhopDomains(models), total, nil
}

// Delete removes a whop and its dependent rows in one transaction.
// Referential integrity is enforced here, not by the store.
func (r *GormWhopRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model WhopModel
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Whop", id.String())
			}
			return err
		}

		if err := tx.Where("whop_id = ?", id).Delete(&TrackingEventModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("whop_id = ?", id).Delete(&ReviewModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("whop_id = ?", id).Delete(&PromoCodeModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model).Error
	})
}

// PublishBatch stamps publishedAt on the oldest `limit` unpublished whops.
// The subselect keeps the whole batch in one statement so a crash can never
// leave a subset flipped.
func (r *GormWhopRepository) PublishBatch(ctx context.Context, limit int, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE whops SET published_at = ?
		WHERE id IN (
			SELECT id FROM whops
			WHERE published_at IS NULL
			ORDER BY created_at ASC, id ASC
			LIMIT ?
		)`, at, limit)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// UnpublishBatch clears publishedAt on the most recently published whops,
// LIFO rollback order.
func (r *GormWhopRepository) UnpublishBatch(ctx context.Context, limit int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE whops SET published_at = NULL
		WHERE id IN (
			SELECT id FROM whops
			WHERE published_at IS NOT NULL
			ORDER BY published_at DESC, id DESC
			LIMIT ?
		)`, limit)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ResetPublication unpublishes everything, then republishes the oldest
// `limit` whops. Both steps run in one transaction: either the full reset
// lands or nothing changes.
func (r *GormWhopRepository) ResetPublication(ctx context.Context, limit int, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`UPDATE whops SET published_at = NULL WHERE published_at IS NOT NULL`).Error; err != nil {
			return err
		}
		return tx.Exec(`
			UPDATE whops SET published_at = ?
			WHERE id IN (
				SELECT id FROM whops
				ORDER BY created_at ASC, id ASC
				LIMIT ?
			)`, at, limit).Error
	})
}

// CountByPublication returns the publish-state snapshot from a single query.
func (r *GormWhopRepository) CountByPublication(ctx context.Context) (whopDomain.PublicationCounts, error) {
	var row struct {
		Total     int64
		Published int64
	}
	err := r.db.WithContext(ctx).Model(&WhopModel{}).
		Select("COUNT(*) AS total, COUNT(published_at) AS published").
		Scan(&row).Error
	if err != nil {
		return whopDomain.PublicationCounts{}, err
	}
	return whopDomain.PublicationCounts{
		Published:   row.Published,
		Unpublished: row.Total - row.Published,
		Total:       row.Total,
	}, nil
}

func toWhopModel(w *whopDomain.Whop) WhopModel {
	return WhopModel{
		ID:           w.ID(),
		Name:         w.Name(),
		Slug:         w.Slug(),
		Description:  w.Description(),
		LogoURL:      w.LogoURL(),
		Price:        w.Price(),
		Rating:       w.Rating(),
		DisplayOrder: w.DisplayOrder(),
		CreatedAt:    w.CreatedAt(),
		PublishedAt:  w.PublishedAt(),
	}
}

func toWhopDomain(m *WhopModel) *whopDomain.Whop {
	return whopDomain.Reconstruct(
		m.ID, m.Name, m.Slug, m.Description, m.LogoURL, m.Price,
		m.Rating, m.DisplayOrder, m.CreatedAt, m.PublishedAt,
	)
}

func toWhopDomains(models []WhopModel) []*whopDomain.Whop {
	whops := make([]*whopDomain.Whop, len(models))
	for i := range models {
		whops[i] = toWhopDomain(&models[i])
	}
	return whops
}
