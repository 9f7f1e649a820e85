package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window   fyne.Window
	settings Settings
	onSave   func(Settings)
	confirm  *widget.Check
	tick     *widget.Entry
	listen   *widget.Entry
	logLevel *widget.Select
	metrics  *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("gohome Settings")

	confirm := widget.NewCheck("Enable check-in confirmation", nil)
	tick := widget.NewEntry()
	listen := widget.NewEntry()
	logLevel := widget.NewSelect([]string{"debug", "info", "warn", "error"}, nil)
	metrics := widget.NewCheck("Expose /metrics", nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Tracking", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		confirm,
		container.NewHBox(widget.NewLabel("Refresh every"), tick, widget.NewLabel("ms")),
		widget.NewLabelWithStyle("API", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Listen on"), listen),
		container.NewHBox(widget.NewLabel("Log level"), logLevel),
		metrics,
		widget.NewLabel("Only the confirmation setting applies without a restart."),
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(380, 320))

	prefs := &Window{
		window:   window,
		onSave:   onSave,
		confirm:  confirm,
		tick:     tick,
		listen:   listen,
		logLevel: logLevel,
		metrics:  metrics,
	}
	prefs.UpdateSettings(settings)

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	}
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// Settings returns the last saved settings.
func (prefs *Window) Settings() Settings {
	return prefs.settings
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.confirm.SetChecked(settings.ConfirmRequired)
	prefs.tick.SetText(fmt.Sprintf("%d", settings.TickInterval.Milliseconds()))
	prefs.listen.SetText(settings.Listen)
	prefs.logLevel.SetSelected(settings.LogLevel)
	prefs.metrics.SetChecked(settings.MetricsEnabled)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	settings.ConfirmRequired = prefs.confirm.Checked
	if millis, ok := parsePositiveInt(prefs.tick.Text); ok {
		settings.TickInterval = time.Duration(millis) * time.Millisecond
	}
	if listen := strings.TrimSpace(prefs.listen.Text); listen != "" {
		settings.Listen = listen
	}
	if prefs.logLevel.Selected != "" {
		settings.LogLevel = prefs.logLevel.Selected
	}
	settings.MetricsEnabled = prefs.metrics.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
