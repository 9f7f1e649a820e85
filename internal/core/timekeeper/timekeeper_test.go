package timekeeper

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gohome/internal/core/model"
	"gohome/internal/core/store"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	return clock.now
}

func (clock *fakeClock) Advance(delta time.Duration) time.Time {
	clock.now = clock.now.Add(delta)
	return clock.now
}

func newKeeper(t *testing.T, confirm bool) (*TimeKeeper, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: t0}
	keeper := New(store.New(), model.TrackerConfig{ConfirmRequired: confirm}, Config{Clock: clock.Now}, zerolog.Nop())
	return keeper, clock
}

func drain(ch <-chan Update) []Update {
	updates := make([]Update, 0)
	for {
		select {
		case update := <-ch:
			updates = append(updates, update)
		default:
			return updates
		}
	}
}

func typesOf(updates []Update) []UpdateType {
	out := make([]UpdateType, 0, len(updates))
	for _, update := range updates {
		out = append(out, update.Type)
	}
	return out
}

func statusOf(t *testing.T, report Report, id model.EventID) model.State {
	t.Helper()
	for _, status := range report.Statuses {
		if status.ID == id {
			return status.State
		}
	}
	t.Fatalf("event %s missing from report", id)
	return ""
}

func TestCheckpointScenario(t *testing.T) {
	keeper, clock := newKeeper(t, true)
	updates := keeper.Subscribe(32)

	id, err := keeper.AddEvent(store.AddParams{Name: "steep", Duration: 10, Loops: 1})
	require.NoError(t, err)

	report := keeper.Snapshot(t0)
	require.True(t, report.HasWork)
	assert.Equal(t, t0.Add(10*time.Minute), report.Completion)
	assert.Equal(t, model.StateCounting, statusOf(t, report, id))

	at := clock.Advance(10 * time.Minute)
	report = keeper.Tick(at)
	assert.Equal(t, model.StateExpired, statusOf(t, report, id))
	assert.Equal(t, at, report.Completion)
	require.Len(t, report.Pending(), 1)

	got := drain(updates)
	assert.Contains(t, typesOf(got), UpdateLoopExpired)

	require.NoError(t, keeper.ConfirmLoop(id))
	report = keeper.Snapshot(at)
	assert.False(t, report.HasWork)
	assert.Equal(t, model.StateCompleted, statusOf(t, report, id))
	assert.Zero(t, report.Remaining())

	got = drain(updates)
	assert.Equal(t, []UpdateType{UpdateEventCompleted, UpdateChanged, UpdateAllDone}, typesOf(got))
}

func TestAutoAdvanceWithoutConfirmation(t *testing.T) {
	keeper, clock := newKeeper(t, false)
	id, err := keeper.AddEvent(store.AddParams{Name: "reps", Duration: 2, Loops: 3, ElapsedFirst: 1})
	require.NoError(t, err)

	at := clock.Advance(time.Minute)
	report := keeper.Tick(at)
	assert.Equal(t, model.StateCounting, statusOf(t, report, id))
	assert.Equal(t, at.Add(4*time.Minute), report.Completion)

	event, err := keeper.store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 1, event.CurrentLoop)
	assert.Equal(t, t0.Add(3*time.Minute), *event.NextTime)
}

func TestTickAdvancesAtMostOneLoop(t *testing.T) {
	keeper, clock := newKeeper(t, false)
	id, err := keeper.AddEvent(store.AddParams{Name: "lagging", Duration: 1, Loops: 10})
	require.NoError(t, err)

	keeper.Tick(clock.Advance(time.Hour))
	event, _ := keeper.store.Get(id)
	assert.Equal(t, 1, event.CurrentLoop)
}

func TestTickOnlyTouchesActiveBatch(t *testing.T) {
	keeper, clock := newKeeper(t, true)
	first, err := keeper.AddEvent(store.AddParams{Name: "first", Duration: 5, Loops: 1, Order: 0})
	require.NoError(t, err)
	second, err := keeper.AddEvent(store.AddParams{Name: "second", Duration: 1, Loops: 1, Order: 1})
	require.NoError(t, err)

	report := keeper.Tick(clock.Advance(2 * time.Minute))
	assert.Equal(t, model.StateCounting, statusOf(t, report, first))
	assert.Equal(t, model.StateIdle, statusOf(t, report, second))

	event, _ := keeper.store.Get(second)
	assert.False(t, event.WaitingConfirm)
	assert.Equal(t, 0, event.CurrentLoop)
}

func TestSkipAndReorder(t *testing.T) {
	keeper, _ := newKeeper(t, true)
	a, err := keeper.AddEvent(store.AddParams{Name: "a", Duration: 5, Loops: 1, Order: 0})
	require.NoError(t, err)
	c, err := keeper.AddEvent(store.AddParams{Name: "c", Duration: 4, Loops: 1, Order: 1})
	require.NoError(t, err)

	assert.Equal(t, t0.Add(9*time.Minute), keeper.Snapshot(t0).Completion)

	require.NoError(t, keeper.Reorder(c, 0))
	report := keeper.Snapshot(t0)
	assert.Equal(t, t0.Add(5*time.Minute), report.Completion)
	require.Len(t, report.Batches, 1)

	require.NoError(t, keeper.SkipLoop(a))
	assert.Equal(t, t0.Add(4*time.Minute), keeper.Snapshot(t0).Completion)

	require.ErrorIs(t, keeper.ConfirmLoop(c), store.ErrNotAwaitingConfirmation)
	require.ErrorIs(t, keeper.SkipLoop("nope"), store.ErrEventNotFound)
}

func TestRemoveLastEventReportsNoWork(t *testing.T) {
	keeper, _ := newKeeper(t, true)
	updates := keeper.Subscribe(8)
	id, err := keeper.AddEvent(store.AddParams{Name: "a", Duration: 1, Loops: 1})
	require.NoError(t, err)

	require.NoError(t, keeper.RemoveEvent(id))
	assert.False(t, keeper.Snapshot(t0).HasWork)
	assert.Contains(t, typesOf(drain(updates)), UpdateAllDone)
}

func TestInvalidAddIsRejected(t *testing.T) {
	keeper, _ := newKeeper(t, true)
	_, err := keeper.AddEvent(store.AddParams{Name: "bad", Duration: 0, Loops: 1})
	require.ErrorIs(t, err, store.ErrInvalidEventParameters)
	assert.Empty(t, keeper.Events())
}

func TestUpdateConfigSwitchesBranch(t *testing.T) {
	keeper, clock := newKeeper(t, true)
	id, err := keeper.AddEvent(store.AddParams{Name: "a", Duration: 1, Loops: 2})
	require.NoError(t, err)

	at := clock.Advance(time.Minute)
	report := keeper.Tick(at)
	assert.Equal(t, model.StateExpired, statusOf(t, report, id))

	keeper.UpdateConfig(model.TrackerConfig{ConfirmRequired: false})
	assert.False(t, keeper.Config().ConfirmRequired)

	report = keeper.Tick(at)
	assert.Equal(t, model.StateCounting, statusOf(t, report, id))
	event, _ := keeper.store.Get(id)
	assert.Equal(t, 1, event.CurrentLoop)
}

func TestSubscribersDoNotBlock(t *testing.T) {
	keeper, clock := newKeeper(t, true)
	slow := keeper.Subscribe(1)
	_, err := keeper.AddEvent(store.AddParams{Name: "a", Duration: 1, Loops: 1})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		keeper.Tick(clock.Advance(time.Second))
	}
	assert.Len(t, drain(slow), 1)

	keeper.Unsubscribe(slow)
	_, open := <-slow
	assert.False(t, open)
}

func TestStartStop(t *testing.T) {
	clock := &fakeClock{now: t0}
	keeper := New(store.New(), model.TrackerConfig{}, Config{TickInterval: 5 * time.Millisecond, Clock: clock.Now}, zerolog.Nop())
	updates := keeper.Subscribe(4)

	keeper.Start()
	keeper.Start()

	select {
	case update := <-updates:
		assert.Equal(t, UpdateProgress, update.Type)
		require.NotNil(t, update.Report)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick observed")
	}

	keeper.Stop()
	keeper.Stop()
	for range updates {
	}
}
