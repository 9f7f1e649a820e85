package board

import (
	"strconv"

	"gohome/internal/core/model"
	"gohome/internal/core/schedule"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

type row struct {
	id            model.EventID
	content       fyne.CanvasObject
	name          *widget.Label
	state         *widget.Label
	progress      *widget.ProgressBar
	order         *widget.Entry
	confirmButton *widget.Button
	skipButton    *widget.Button
	removeButton  *widget.Button
	lastOrder     int
}

func newRow(id model.EventID, board *Window) *row {
	current := &row{
		id:       id,
		name:     widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		state:    widget.NewLabel(""),
		progress: widget.NewProgressBar(),
		order:    widget.NewEntry(),
	}

	current.confirmButton = widget.NewButton("Confirm", func() {
		board.report(board.actions.ConfirmLoop(id))
	})
	current.skipButton = widget.NewButton("Skip", func() {
		board.report(board.actions.SkipLoop(id))
	})
	current.removeButton = widget.NewButton("Remove", func() {
		board.report(board.actions.RemoveEvent(id))
	})
	current.order.OnSubmitted = func(text string) {
		order, err := parseInt(text)
		if err != nil {
			board.report(err)
			current.order.SetText(strconv.Itoa(current.lastOrder))
			return
		}
		board.report(board.actions.Reorder(id, order))
	}

	controls := container.NewHBox(
		widget.NewLabel("Order"), current.order,
		layout.NewSpacer(),
		current.confirmButton, current.skipButton, current.removeButton,
	)
	current.content = container.NewVBox(
		container.NewHBox(current.name, layout.NewSpacer(), current.state),
		current.progress,
		controls,
		widget.NewSeparator(),
	)
	return current
}

func (current *row) update(status schedule.EventStatus) {
	current.name.SetText(status.Name)
	current.state.SetText(StateText(status))
	progress := status.Progress
	if status.State == model.StateCompleted || status.State == model.StateExpired {
		progress = 1
	}
	current.progress.SetValue(progress)

	if status.Order != current.lastOrder || current.order.Text == "" {
		current.lastOrder = status.Order
		current.order.SetText(strconv.Itoa(status.Order))
	}

	active := status.State == model.StateCounting || status.State == model.StateExpired
	setEnabled(current.skipButton, active)
	setEnabled(current.confirmButton, status.State == model.StateExpired)
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled {
		button.Enable()
		return
	}
	button.Disable()
}
