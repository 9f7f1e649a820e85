package tray

import (
	"fmt"

	"gohome/internal/core/timekeeper"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowEvents  func()
	OnPreferences func()
	OnQuit        func()
}

// Icons are the tray icons. Waiting is shown while a loop awaits confirmation.
type Icons struct {
	Default fyne.Resource
	Waiting fyne.Resource
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	callbacks   Callbacks
	icons       Icons
	statusLabel string
	waiting     bool
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		callbacks:   callbacks,
		icons:       icons,
		statusLabel: "starting...",
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true
	manager.refreshStatus()
	manager.setIcon(icons.Default)

	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	if status == manager.statusLabel {
		return
	}
	manager.statusLabel = status
	manager.refreshStatus()
}

// Update derives the status label and icon from report.
func (manager *Manager) Update(report timekeeper.Report) {
	manager.SetStatus(StatusLabel(report))

	waiting := len(report.Pending()) > 0
	if waiting == manager.waiting {
		return
	}
	manager.waiting = waiting
	if waiting {
		manager.setIcon(manager.icons.Waiting)
	} else {
		manager.setIcon(manager.icons.Default)
	}
}

// Status returns the current label.
func (manager *Manager) Status() string {
	return manager.statusLabel
}

// StatusLabel summarises report for the tray menu.
func StatusLabel(report timekeeper.Report) string {
	if !report.HasWork {
		return "All done"
	}
	label := "Done at " + report.Completion.Local().Format("15:04:05")
	if pending := len(report.Pending()); pending > 0 {
		label = fmt.Sprintf("%s, %d waiting", label, pending)
	}
	return label
}

func (manager *Manager) refreshStatus() {
	manager.statusItem.Label = manager.statusLabel
	manager.refreshMenu()
}

func (manager *Manager) setIcon(icon fyne.Resource) {
	if manager.app != nil && icon != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("gohome",
		manager.statusItem,
		fyne.NewMenuItem("Show events", func() {
			if manager.callbacks.OnShowEvents != nil {
				manager.callbacks.OnShowEvents()
			}
		}),
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
