package settings

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SingletonID is the fixed id of the one settings row. Making the singleton
// explicit avoids racing creates against a "first row" convention.
var SingletonID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// SiteSettings is the global site configuration record.
type SiteSettings struct {
	ID              uuid.UUID `json:"id"`
	SiteName        string    `json:"site_name"`
	FaviconURL      string    `json:"favicon_url"`
	LogoURL         string    `json:"logo_url"`
	MetaDescription string    `json:"meta_description"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Default returns the settings used when no row exists yet.
func Default() *SiteSettings {
	return &SiteSettings{
		ID:        SingletonID,
		SiteName:  "WhopGrid",
		UpdatedAt: time.Now().UTC(),
	}
}

// SettingsRepository defines the singleton settings contract.
type SettingsRepository interface {
	// GetOrCreateDefault returns the settings row, creating the default one
	// if it does not exist yet.
	GetOrCreateDefault(ctx context.Context) (*SiteSettings, error)
	Update(ctx context.Context, s *SiteSettings) error
}
