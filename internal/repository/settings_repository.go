package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	settingsDomain "github.com/whopgrid/service-catalog/internal/domain/settings"
)

// SiteSettingsModel is the GORM model for the single-row site_settings table.
type SiteSettingsModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	SiteName        string    `gorm:"type:varchar(255);not null"`
	FaviconURL      string    `gorm:"type:text"`
	LogoURL         string    `gorm:"type:text"`
	MetaDescription string    `gorm:"type:text"`
	UpdatedAt       time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (SiteSettingsModel) TableName() string { return "site_settings" }

// GormSettingsRepository implements SettingsRepository using GORM.
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository.
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// GetOrCreateDefault returns the singleton settings row, inserting the
// default under the fixed id when absent. The upsert makes concurrent
// first-reads safe.
func (r *GormSettingsRepository) GetOrCreateDefault(ctx context.Context) (*settingsDomain.SiteSettings, error) {
	var model SiteSettingsModel
	err := r.db.WithContext(ctx).Where("id = ?", settingsDomain.SingletonID).First(&model).Error
	if err == nil {
		return toSettingsDomain(&model), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	def := settingsDomain.Default()
	model = toSettingsModel(def)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error; err != nil {
		return nil, err
	}
	// Re-read so a concurrent create still yields the winning row.
	if err := r.db.WithContext(ctx).Where("id = ?", settingsDomain.SingletonID).First(&model).Error; err != nil {
		return nil, err
	}
	return toSettingsDomain(&model), nil
}

// Update persists changes to the settings row.
func (r *GormSettingsRepository) Update(ctx context.Context, s *settingsDomain.SiteSettings) error {
	s.ID = settingsDomain.SingletonID
	s.UpdatedAt = time.Now().UTC()
	model := toSettingsModel(s)
	return r.db.WithContext(ctx).Model(&SiteSettingsModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id").
		Updates(&model).Error
}

func toSettingsModel(s *settingsDomain.SiteSettings) SiteSettingsModel {
	return SiteSettingsModel{
		ID:              s.ID,
		SiteName:        s.SiteName,
		FaviconURL:      s.FaviconURL,
		LogoURL:         s.LogoURL,
		MetaDescription: s.MetaDescription,
		UpdatedAt:       s.UpdatedAt,
	}
}

func toSettingsDomain(m *SiteSettingsModel) *settingsDomain.SiteSettings {
	return &settingsDomain.SiteSettings{
		ID:              m.ID,
		SiteName:        m.SiteName,
		FaviconURL:      m.FaviconURL,
		LogoURL:         m.LogoURL,
		MetaDescription: m.MetaDescription,
		UpdatedAt:       m.UpdatedAt,
	}
}
