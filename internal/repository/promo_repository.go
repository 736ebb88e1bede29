package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/whopgrid/service-catalog/internal/domain"
	promoDomain "github.com/whopgrid/service-catalog/internal/domain/promo"
)

// PromoCodeModel is the GORM model for the promo_codes table.
type PromoCodeModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WhopID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Code        *string   `gorm:"type:varchar(100)"`
	OfferType   string    `gorm:"type:varchar(30);not null"`
	Value       string    `gorm:"type:varchar(100)"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (PromoCodeModel) TableName() string { return "promo_codes" }

// GormPromoRepository implements PromoRepository using GORM.
type GormPromoRepository struct {
	db *gorm.DB
}

// NewGormPromoRepository creates a new GormPromoRepository.
func NewGormPromoRepository(db *gorm.DB) *GormPromoRepository {
	return &GormPromoRepository{db: db}
}

// Save persists a new promo code.
func (r *GormPromoRepository) Save(ctx context.Context, p *promoDomain.PromoCode) error {
	model := toPromoModel(p)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update updates a promo code.
func (r *GormPromoRepository) Update(ctx context.Context, p *promoDomain.PromoCode) error {
	model := toPromoModel(p)
	return r.db.WithContext(ctx).Model(&PromoCodeModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id", "whop_id", "created_at").
		Updates(&model).Error
}

// FindByID returns a promo code by ID.
func (r *GormPromoRepository) FindByID(ctx context.Context, id uuid.UUID) (*promoDomain.PromoCode, error) {
	var model PromoCodeModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("PromoCode", id.String())
		}
		return nil, err
	}
	return toPromoDomain(&model), nil
}

// ListByWhop returns all promo codes for a whop, newest first.
func (r *GormPromoRepository) ListByWhop(ctx context.Context, whopID uuid.UUID) ([]*promoDomain.PromoCode, error) {
	var models []PromoCodeModel
	if err := r.db.WithContext(ctx).
		Where("whop_id = ?", whopID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	promos := make([]*promoDomain.PromoCode, len(models))
	for i := range models {
		promos[i] = toPromoDomain(&models[i])
	}
	return promos, nil
}

// Delete removes a promo code.
func (r *GormPromoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PromoCodeModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("PromoCode", id.String())
	}
	return nil
}

// Exists reports whether a promo code row exists.
func (r *GormPromoRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PromoCodeModel{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func toPromoModel(p *promoDomain.PromoCode) PromoCodeModel {
	return PromoCodeModel{
		ID:          p.ID(),
		WhopID:      p.WhopID(),
		Title:       p.Title(),
		Description: p.Description(),
		Code:        p.Code(),
		OfferType:   string(p.OfferType()),
		Value:       p.Value(),
		CreatedAt:   p.CreatedAt(),
	}
}

func toPromoDomain(m *PromoCodeModel) *promoDomain.PromoCode {
	return promoDomain.Reconstruct(
		m.ID, m.WhopID, m.Title, m.Description, m.Code,
		promoDomain.OfferType(m.OfferType), m.Value, m.CreatedAt,
	)
}
