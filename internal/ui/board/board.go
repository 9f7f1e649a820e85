// Package board is the main window: the event list with its add form.
package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gohome/internal/core/model"
	"gohome/internal/core/schedule"
	"gohome/internal/core/store"
	"gohome/internal/core/timekeeper"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Actions is what the board asks of the tracker.
type Actions interface {
	AddEvent(params store.AddParams) (model.EventID, error)
	ConfirmLoop(id model.EventID) error
	SkipLoop(id model.EventID) error
	Reorder(id model.EventID, order int) error
	RemoveEvent(id model.EventID) error
}

// Window shows every event and the projected completion time.
type Window struct {
	window     fyne.Window
	actions    Actions
	name       *widget.Entry
	duration   *widget.Entry
	loops      *widget.Entry
	elapsed    *widget.Entry
	order      *widget.Entry
	addButton  *widget.Button
	errorLabel *widget.Label
	finish     *widget.Label
	list       *fyne.Container
	rows       map[model.EventID]*row
	sequence   []model.EventID
}

var errInvalidNumber = errors.New("numbers must be whole minutes or counts")

// New creates the board window.
func New(app fyne.App, actions Actions) *Window {
	window := app.NewWindow("gohome")

	board := &Window{
		window:     window,
		actions:    actions,
		name:       widget.NewEntry(),
		duration:   widget.NewEntry(),
		loops:      widget.NewEntry(),
		elapsed:    widget.NewEntry(),
		order:      widget.NewEntry(),
		errorLabel: widget.NewLabel(""),
		finish:     widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		list:       container.NewVBox(),
		rows:       make(map[model.EventID]*row),
	}
	board.name.SetPlaceHolder("Name")
	board.duration.SetPlaceHolder("Minutes per loop")
	board.loops.SetText("1")
	board.elapsed.SetText("0")
	board.order.SetText("0")
	board.addButton = widget.NewButton("Add", board.handleAdd)
	board.errorLabel.Importance = widget.DangerImportance

	form := widget.NewForm(
		widget.NewFormItem("Event", board.name),
		widget.NewFormItem("Duration (min)", board.duration),
		widget.NewFormItem("Loops", board.loops),
		widget.NewFormItem("Already elapsed (min)", board.elapsed),
		widget.NewFormItem("Order", board.order),
	)
	header := container.NewVBox(form, container.NewHBox(board.addButton, board.errorLabel), widget.NewSeparator(), board.finish)

	window.SetContent(container.NewBorder(header, nil, nil, nil, container.NewVScroll(board.list)))
	window.Resize(fyne.NewSize(560, 520))
	window.SetCloseIntercept(func() {
		window.Hide()
	})
	board.setFinish(timekeeper.Report{})

	return board
}

// Show displays the board.
func (board *Window) Show() {
	board.window.Show()
	board.window.RequestFocus()
}

// Update renders report. Rows are rebuilt only when the set or order of
// events changes, so entries being edited keep their focus. Must run on the
// UI goroutine.
func (board *Window) Update(report timekeeper.Report) {
	sequence := make([]model.EventID, 0, len(report.Statuses))
	for _, status := range report.Statuses {
		sequence = append(sequence, status.ID)
	}

	if !sameSequence(sequence, board.sequence) {
		board.rebuild(report.Statuses)
	}
	for _, status := range report.Statuses {
		board.rows[status.ID].update(status)
	}
	board.setFinish(report)
}

func (board *Window) rebuild(statuses []schedule.EventStatus) {
	rows := make(map[model.EventID]*row, len(statuses))
	objects := make([]fyne.CanvasObject, 0, len(statuses))
	sequence := make([]model.EventID, 0, len(statuses))
	for _, status := range statuses {
		current, ok := board.rows[status.ID]
		if !ok {
			current = newRow(status.ID, board)
		}
		rows[status.ID] = current
		objects = append(objects, current.content)
		sequence = append(sequence, status.ID)
	}
	board.rows = rows
	board.sequence = sequence
	board.list.Objects = objects
	board.list.Refresh()
}

func (board *Window) setFinish(report timekeeper.Report) {
	if !report.HasWork {
		board.finish.SetText("All events completed")
		return
	}
	board.finish.SetText("Finish at " + report.Completion.Local().Format("15:04:05"))
}

func (board *Window) handleAdd() {
	params, err := board.params()
	if err == nil {
		_, err = board.actions.AddEvent(params)
	}
	if err != nil {
		board.errorLabel.SetText(err.Error())
		return
	}
	board.errorLabel.SetText("")
	board.name.SetText("")
	board.duration.SetText("")
	board.loops.SetText("1")
	board.elapsed.SetText("0")
}

func (board *Window) params() (store.AddParams, error) {
	duration, err := parseInt(board.duration.Text)
	if err != nil {
		return store.AddParams{}, err
	}
	loops, err := parseInt(board.loops.Text)
	if err != nil {
		return store.AddParams{}, err
	}
	elapsed, err := parseInt(board.elapsed.Text)
	if err != nil {
		return store.AddParams{}, err
	}
	order, err := parseInt(board.order.Text)
	if err != nil {
		return store.AddParams{}, err
	}
	return store.AddParams{
		Name:         strings.TrimSpace(board.name.Text),
		Duration:     duration,
		Loops:        loops,
		ElapsedFirst: elapsed,
		Order:        order,
	}, nil
}

func (board *Window) report(err error) {
	if err != nil {
		board.errorLabel.SetText(err.Error())
		return
	}
	board.errorLabel.SetText("")
}

// StateText describes an event's state in the list.
func StateText(status schedule.EventStatus) string {
	switch status.State {
	case model.StateCounting:
		return fmt.Sprintf("Remaining: %s (loop %d/%d)", formatRemaining(status.Remaining), status.CurrentLoop+1, status.Loops)
	case model.StateExpired:
		return "Waiting for confirmation"
	case model.StateIdle:
		return fmt.Sprintf("Waiting to start (loop %d/%d)", status.CurrentLoop, status.Loops)
	case model.StateCompleted:
		return "All loops completed"
	default:
		return ""
	}
}

func formatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining.Seconds())
	return fmt.Sprintf("%d min %d sec", seconds/60, seconds%60)
}

func parseInt(value string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errInvalidNumber
	}
	return parsed, nil
}

func sameSequence(a, b []model.EventID) bool {
	if len(a) != len(b) {
		return false
	}
	for index := range a {
		if a[index] != b[index] {
			return false
		}
	}
	return true
}
