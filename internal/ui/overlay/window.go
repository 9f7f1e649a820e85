package overlay

import (
	"context"
	"fmt"
	"image/color"

	"gohome/internal/core/model"
	"gohome/internal/core/schedule"
	"gohome/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Config defines overlay visuals.
type Config struct {
	Opacity uint8
}

// Window is the checkpoint prompt shown while loops wait for confirmation.
type Window struct {
	app           fyne.App
	window        fyne.Window
	background    *canvas.Rectangle
	accent        *canvas.Rectangle
	titleLabel    *canvas.Text
	messageLabel  *widget.Label
	moreLabel     *widget.Label
	confirmButton *widget.Button
	skipButton    *widget.Button
	engine        *animation.Engine
	current       model.EventID
	visible       bool
	onConfirm     func(model.EventID)
	onSkip        func(model.EventID)
}

var (
	accentOn  = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	accentOff = color.NRGBA{R: 90, G: 90, B: 90, A: 255}
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the prompt window. The window stays hidden until Update
// receives a pending checkpoint.
func New(app fyne.App, config Config, pulse animation.Config) *Window {
	window := app.NewWindow("gohome")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	background := canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: config.Opacity})
	accent := canvas.NewRectangle(accentOff)
	accent.SetMinSize(fyne.NewSize(0, 6))

	titleLabel := canvas.NewText("Checkpoint", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 20

	messageLabel := widget.NewLabel("")
	messageLabel.Wrapping = fyne.TextWrapWord
	moreLabel := widget.NewLabel("")

	confirmButton := widget.NewButton("Confirm", nil)
	confirmButton.Importance = widget.HighImportance
	skipButton := widget.NewButton("Skip", nil)

	buttons := container.NewHBox(layout.NewSpacer(), skipButton, confirmButton)
	body := container.NewVBox(accent, titleLabel, messageLabel, moreLabel)
	root := container.NewStack(background, container.NewPadded(container.NewBorder(nil, buttons, nil, nil, body)))

	window.SetContent(root)
	window.Resize(fyne.NewSize(360, 180))

	overlay := &Window{
		app:           app,
		window:        window,
		background:    background,
		accent:        accent,
		titleLabel:    titleLabel,
		messageLabel:  messageLabel,
		moreLabel:     moreLabel,
		confirmButton: confirmButton,
		skipButton:    skipButton,
	}
	overlay.engine = animation.New(pulse, func(highlighted bool) {
		fyne.Do(func() {
			overlay.setHighlightUnsafe(highlighted)
		})
	})

	// Closing dismisses the prompt until every pending checkpoint is resolved.
	window.SetCloseIntercept(func() {
		overlay.engine.Stop()
		window.Hide()
	})

	confirmButton.OnTapped = func() {
		if overlay.onConfirm != nil && overlay.current != "" {
			overlay.onConfirm(overlay.current)
		}
	}
	skipButton.OnTapped = func() {
		if overlay.onSkip != nil && overlay.current != "" {
			overlay.onSkip(overlay.current)
		}
	}

	return overlay
}

// SetOnConfirm sets the confirm handler.
func (overlay *Window) SetOnConfirm(handler func(model.EventID)) {
	overlay.onConfirm = handler
}

// SetOnSkip sets the skip handler.
func (overlay *Window) SetOnSkip(handler func(model.EventID)) {
	overlay.onSkip = handler
}

// Update shows the first pending checkpoint, or hides the prompt when none
// is left. Must run on the UI goroutine.
func (overlay *Window) Update(pending []schedule.EventStatus) {
	if len(pending) == 0 {
		overlay.Hide()
		return
	}

	first := pending[0]
	overlay.current = first.ID
	overlay.messageLabel.SetText(Message(first))
	if len(pending) > 1 {
		overlay.moreLabel.SetText(fmt.Sprintf("%d more waiting", len(pending)-1))
	} else {
		overlay.moreLabel.SetText("")
	}

	if overlay.visible {
		return
	}
	overlay.visible = true
	overlay.window.Show()
	overlay.window.RequestFocus()
	overlay.engine.Start(context.Background())
}

// Hide closes the prompt and stops the pulse.
func (overlay *Window) Hide() {
	overlay.current = ""
	if !overlay.visible {
		return
	}
	overlay.visible = false
	overlay.engine.Stop()
	overlay.window.Hide()
}

// Current returns the event the prompt refers to, if any.
func (overlay *Window) Current() model.EventID {
	return overlay.current
}

// Visible reports whether the prompt is shown.
func (overlay *Window) Visible() bool {
	return overlay.visible
}

// Message is the prompt text for an expired loop.
func Message(status schedule.EventStatus) string {
	return fmt.Sprintf("Loop %d/%d of %s finished. Please confirm.", status.CurrentLoop+1, status.Loops, status.Name)
}

func (overlay *Window) setHighlightUnsafe(highlighted bool) {
	if highlighted {
		overlay.accent.FillColor = accentOn
	} else {
		overlay.accent.FillColor = accentOff
	}
	canvas.Refresh(overlay.accent)
}
