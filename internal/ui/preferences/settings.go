package preferences

import (
	"time"

	"gohome/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	ConfirmRequired bool
	TickInterval    time.Duration

	Listen         string
	LogLevel       string
	MetricsEnabled bool
}

// DefaultSettings returns default settings for gohome.
func DefaultSettings() Settings {
	return Settings{
		ConfirmRequired: true,
		TickInterval:    time.Second,
		Listen:          "127.0.0.1:7465",
		LogLevel:        "info",
		MetricsEnabled:  true,
	}
}

// TrackerConfig converts settings to TrackerConfig.
func (settings Settings) TrackerConfig() model.TrackerConfig {
	return model.TrackerConfig{
		ConfirmRequired: settings.ConfirmRequired,
	}
}
