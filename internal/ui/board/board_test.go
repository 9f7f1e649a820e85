package board

import (
	"errors"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gohome/internal/core/model"
	"gohome/internal/core/schedule"
	"gohome/internal/core/store"
	"gohome/internal/core/timekeeper"
)

type fakeActions struct {
	added     []store.AddParams
	confirmed []model.EventID
	skipped   []model.EventID
	removed   []model.EventID
	reordered map[model.EventID]int
	addErr    error
}

func (actions *fakeActions) AddEvent(params store.AddParams) (model.EventID, error) {
	if actions.addErr != nil {
		return "", actions.addErr
	}
	actions.added = append(actions.added, params)
	return model.EventID(params.Name), nil
}

func (actions *fakeActions) ConfirmLoop(id model.EventID) error {
	actions.confirmed = append(actions.confirmed, id)
	return nil
}

func (actions *fakeActions) SkipLoop(id model.EventID) error {
	actions.skipped = append(actions.skipped, id)
	return nil
}

func (actions *fakeActions) Reorder(id model.EventID, order int) error {
	if actions.reordered == nil {
		actions.reordered = make(map[model.EventID]int)
	}
	actions.reordered[id] = order
	return nil
}

func (actions *fakeActions) RemoveEvent(id model.EventID) error {
	actions.removed = append(actions.removed, id)
	return nil
}

func TestStateText(t *testing.T) {
	tests := []struct {
		name   string
		status schedule.EventStatus
		want   string
	}{
		{"counting", schedule.EventStatus{State: model.StateCounting, Remaining: 4*time.Minute + 5*time.Second, CurrentLoop: 1, Loops: 3}, "Remaining: 4 min 5 sec (loop 2/3)"},
		{"expired", schedule.EventStatus{State: model.StateExpired}, "Waiting for confirmation"},
		{"idle", schedule.EventStatus{State: model.StateIdle, Loops: 2}, "Waiting to start (loop 0/2)"},
		{"idle after a skip", schedule.EventStatus{State: model.StateIdle, CurrentLoop: 1, Loops: 2}, "Waiting to start (loop 1/2)"},
		{"completed", schedule.EventStatus{State: model.StateCompleted}, "All loops completed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateText(tt.status))
		})
	}
}

func TestAddForm(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	actions := &fakeActions{}
	board := New(app, actions)

	test.Type(board.name, "tea")
	test.Type(board.duration, "5")
	board.loops.SetText("2")
	board.order.SetText("1")
	test.Tap(board.addButton)

	require.Len(t, actions.added, 1)
	assert.Equal(t, store.AddParams{Name: "tea", Duration: 5, Loops: 2, ElapsedFirst: 0, Order: 1}, actions.added[0])
	assert.Empty(t, board.errorLabel.Text)
	assert.Empty(t, board.name.Text)

	board.duration.SetText("five")
	test.Tap(board.addButton)
	assert.Len(t, actions.added, 1)
	assert.Equal(t, errInvalidNumber.Error(), board.errorLabel.Text)

	actions.addErr = errors.New("duration must be at least one minute")
	board.duration.SetText("0")
	test.Tap(board.addButton)
	assert.Equal(t, "duration must be at least one minute", board.errorLabel.Text)
}

func TestUpdateRendersRowsAndRoutesActions(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	actions := &fakeActions{}
	board := New(app, actions)
	assert.Equal(t, "All events completed", board.finish.Text)

	finish := time.Date(2026, 3, 2, 9, 5, 0, 0, time.Local)
	report := timekeeper.Report{
		HasWork:    true,
		Completion: finish,
		Statuses: []schedule.EventStatus{
			{ID: "a", Name: "tea", State: model.StateExpired, Loops: 2},
			{ID: "b", Name: "rice", State: model.StateIdle, Loops: 1, Order: 1},
		},
	}
	board.Update(report)

	require.Len(t, board.list.Objects, 2)
	assert.Equal(t, "Finish at 09:05:00", board.finish.Text)

	first := board.rows["a"]
	assert.Equal(t, "Waiting for confirmation", first.state.Text)
	assert.False(t, first.confirmButton.Disabled())
	second := board.rows["b"]
	assert.True(t, second.confirmButton.Disabled())
	assert.True(t, second.skipButton.Disabled())
	assert.Equal(t, "1", second.order.Text)

	test.Tap(first.confirmButton)
	test.Tap(second.removeButton)
	assert.Equal(t, []model.EventID{"a"}, actions.confirmed)
	assert.Equal(t, []model.EventID{"b"}, actions.removed)

	second.order.SetText("0")
	second.order.OnSubmitted(second.order.Text)
	assert.Equal(t, 0, actions.reordered["b"])

	board.Update(report)
	assert.Same(t, first, board.rows["a"])

	board.Update(timekeeper.Report{})
	assert.Empty(t, board.list.Objects)
	assert.Equal(t, "All events completed", board.finish.Text)
}
