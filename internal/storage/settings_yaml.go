package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gohome/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	ConfirmRequired *bool  `yaml:"confirm_required"`
	TickIntervalMS  int    `yaml:"tick_interval_ms"`
	Listen          string `yaml:"listen"`
	LogLevel        string `yaml:"log_level"`
	MetricsEnabled  *bool  `yaml:"metrics_enabled"`
}

// LoadSettingsFile reads user preferences from path.
// If the file does not exist, default settings are returned.
func LoadSettingsFile(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettingsFile writes user preferences to path, creating its directory.
func SaveSettingsFile(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	confirm := settings.ConfirmRequired
	metrics := settings.MetricsEnabled
	fileData := yamlSettings{
		ConfirmRequired: &confirm,
		TickIntervalMS:  int(settings.TickInterval / time.Millisecond),
		Listen:          settings.Listen,
		LogLevel:        settings.LogLevel,
		MetricsEnabled:  &metrics,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// SettingsPath returns the settings file location for appName.
func SettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.ConfirmRequired != nil {
		settings.ConfirmRequired = *fileData.ConfirmRequired
	}
	if fileData.TickIntervalMS > 0 {
		settings.TickInterval = time.Duration(fileData.TickIntervalMS) * time.Millisecond
	}
	if fileData.Listen != "" {
		settings.Listen = fileData.Listen
	}
	if fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}
	if fileData.MetricsEnabled != nil {
		settings.MetricsEnabled = *fileData.MetricsEnabled
	}
}
