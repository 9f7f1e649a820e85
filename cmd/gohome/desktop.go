package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gohome/internal/core/model"
	"gohome/internal/core/timekeeper"
	"gohome/internal/logging"
	"gohome/internal/platform"
	"gohome/internal/storage"
	"gohome/internal/ui/animation"
	"gohome/internal/ui/board"
	"gohome/internal/ui/overlay"
	"gohome/internal/ui/preferences"
	"gohome/internal/ui/tray"
	"gohome/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

const promptOpacity = 235

func runDesktop(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := logging.Setup(settings.LogLevel)

	guard, err := platform.AcquireSingleInstance(settings.Listen)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			logger.Warn().Err(err).Msg("gohome is already running")
			return nil
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	t, err := newTracker(settings, logger)
	if err != nil {
		return fmt.Errorf("initialize tracker: %w", err)
	}
	keeper := t.keeper

	fyneApp := app.NewWithID("io.gohome.app")
	fyneApp.SetIcon(resources.MustIcon(resources.IconDefault))

	boardWindow := board.New(fyneApp, keeper)
	prompt := overlay.New(fyneApp, overlay.Config{Opacity: promptOpacity}, animation.DefaultConfig())
	prompt.SetOnConfirm(func(id model.EventID) {
		if err := keeper.ConfirmLoop(id); err != nil {
			logger.Warn().Err(err).Str("event_id", string(id)).Msg("confirm failed")
		}
	})
	prompt.SetOnSkip(func(id model.EventID) {
		if err := keeper.SkipLoop(id); err != nil {
			logger.Warn().Err(err).Str("event_id", string(id)).Msg("skip failed")
		}
	})

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		settings = updated
		keeper.UpdateConfig(settings.TrackerConfig())
		path, err := settingsFile()
		if err == nil {
			err = storage.SaveSettingsFile(path, settings)
		}
		if err != nil {
			logger.Error().Err(err).Msg("failed to save settings")
		}
	})

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		icons := tray.Icons{
			Default: resources.MustIcon(resources.IconDefault),
			Waiting: resources.MustIcon(resources.IconWaiting),
		}
		trayManager = tray.New(desktopApp, icons, tray.Callbacks{
			OnShowEvents: func() {
				boardWindow.Show()
			},
			OnPreferences: func() {
				prefsWindow.Show()
			},
			OnQuit: func() {
				fyneApp.Quit()
			},
		})
	} else {
		logger.Warn().Msg("system tray unsupported on this platform")
	}

	render := func(report timekeeper.Report) {
		boardWindow.Update(report)
		prompt.Update(report.Pending())
		if trayManager != nil {
			trayManager.Update(report)
		}
	}

	updates := keeper.Subscribe(16)
	go func() {
		for update := range updates {
			if update.Report == nil {
				continue
			}
			report := *update.Report
			fyne.Do(func() {
				render(report)
			})
		}
	}()

	t.start(guard.Listener())
	defer t.stop()

	render(keeper.Snapshot(keeper.Now()))
	boardWindow.Show()
	fyneApp.Run()
	return nil
}
