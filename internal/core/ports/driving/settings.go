package driving

import "github.com/custodia-labs/tala-knowledge/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings, validated.
	Get() (*domain.AppSettings, error)

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Keys returns every settable key.
	Keys() []string

	// Display returns a key's stored value with secrets masked.
	Display(key string) string

	// Set parses and persists one key.
	Set(key, raw string) error
}
