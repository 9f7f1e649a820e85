package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gohome/internal/logging"
	"gohome/internal/platform"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tracker headless",
	Long:  "Run the time keeper and the HTTP API without the desktop UI, until interrupted.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := logging.Setup(settings.LogLevel)

	guard, err := platform.AcquireSingleInstance(settings.Listen)
	if err != nil {
		return fmt.Errorf("single instance: %w", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	t, err := newTracker(settings, logger)
	if err != nil {
		return fmt.Errorf("initialize tracker: %w", err)
	}
	t.start(guard.Listener())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down gracefully...")
	t.stop()
	logger.Info().Msg("gohome stopped")
	return nil
}
