package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gohome/internal/storage"
	"gohome/internal/ui/preferences"
)

const appName = "gohome"

var (
	configPath string
	listenAddr string
	logLevel   string
	tick       time.Duration
	confirm    bool
	noMetrics  bool
)

var rootCmd = &cobra.Command{
	Use:   "gohome",
	Short: "gohome - when can I go home?",
	Long: `gohome tracks timed events that repeat for a number of loops and run in
ordered batches, and projects when all of them will be finished.

Without a subcommand it starts the desktop app with its system tray icon.`,
	SilenceUsage: true,
	RunE:         runDesktop,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Settings file (default: user config dir)")
	flags.StringVar(&listenAddr, "listen", "", "HTTP API listen address")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.DurationVar(&tick, "tick", 0, "Timer evaluation interval")
	flags.BoolVar(&confirm, "confirm", true, "Require confirmation after each loop")
	flags.BoolVar(&noMetrics, "no-metrics", false, "Do not expose /metrics")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// settingsFile resolves the settings path from --config or the user config dir.
func settingsFile() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return storage.SettingsPath(appName)
}

// loadSettings reads the settings file and applies flags set on cmd.
func loadSettings(cmd *cobra.Command) (preferences.Settings, error) {
	path, err := settingsFile()
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	settings, err := storage.LoadSettingsFile(path)
	if err != nil {
		return settings, fmt.Errorf("load settings: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		settings.Listen = listenAddr
	}
	if flags.Changed("log-level") {
		settings.LogLevel = logLevel
	}
	if flags.Changed("tick") && tick > 0 {
		settings.TickInterval = tick
	}
	if flags.Changed("confirm") {
		settings.ConfirmRequired = confirm
	}
	if flags.Changed("no-metrics") {
		settings.MetricsEnabled = !noMetrics
	}
	return settings, nil
}
