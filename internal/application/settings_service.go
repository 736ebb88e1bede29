package application

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/whopgrid/service-catalog/internal/domain"
	"github.com/whopgrid/service-catalog/internal/domain/settings"
)

// UpdateSettingsRequest holds data to update the site settings.
type UpdateSettingsRequest struct {
	SiteName        string `json:"site_name" binding:"required"`
	FaviconURL      string `json:"favicon_url"`
	LogoURL         string `json:"logo_url"`
	MetaDescription string `json:"meta_description"`
}

// SettingsService handles the singleton site settings record.
type SettingsService struct {
	repo   settings.SettingsRepository
	logger *zap.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(repo settings.SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, logger: logger}
}

// Get returns the site settings, creating the default row on first access.
func (s *SettingsService) Get(ctx context.Context) (*settings.SiteSettings, error) {
	return s.repo.GetOrCreateDefault(ctx)
}

// Update changes the site settings (admin).
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*settings.SiteSettings, error) {
	name := strings.TrimSpace(req.SiteName)
	if name == "" {
		return nil, domain.NewValidationError("site name is required")
	}

	current, err := s.repo.GetOrCreateDefault(ctx)
	if err != nil {
		return nil, err
	}

	current.SiteName = name
	current.FaviconURL = req.FaviconURL
	current.LogoURL = req.LogoURL
	current.MetaDescription = req.MetaDescription

	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}

	s.logger.Info("site settings updated", zap.String("site_name", name))
	return current, nil
}
