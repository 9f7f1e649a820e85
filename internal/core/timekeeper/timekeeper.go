package timekeeper

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gohome/internal/core/model"
	"gohome/internal/core/schedule"
	"gohome/internal/core/store"
)

// Config contains runtime options for TimeKeeper.
type Config struct {
	TickInterval time.Duration
	Clock        func() time.Time
}

// TimeKeeper drives an event store: it applies timer transitions on every
// tick, forwards user actions and notifies observers.
type TimeKeeper struct {
	mu      sync.Mutex
	store   *store.Store
	config  model.TrackerConfig
	options Config
	logger  zerolog.Logger
	events  []chan Update
	stopCh  chan struct{}
	running bool
	hadWork bool
}

// New creates a TimeKeeper over events with the provided configuration.
func New(events *store.Store, config model.TrackerConfig, options Config, logger zerolog.Logger) *TimeKeeper {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}

	return &TimeKeeper{
		store:   events,
		config:  config,
		options: options,
		logger:  logger.With().Str("component", "timekeeper").Logger(),
	}
}

// Subscribe registers a new observer channel.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Update {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Update, buffer)
	keeper.mu.Lock()
	keeper.events = append(keeper.events, ch)
	keeper.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes an observer channel.
func (keeper *TimeKeeper) Unsubscribe(ch <-chan Update) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	for index, candidate := range keeper.events {
		if candidate == ch {
			keeper.events = append(keeper.events[:index], keeper.events[index+1:]...)
			close(candidate)
			return
		}
	}
}

// Start launches the ticking loop.
func (keeper *TimeKeeper) Start() {
	keeper.mu.Lock()
	if keeper.running {
		keeper.mu.Unlock()
		return
	}
	keeper.running = true
	keeper.stopCh = make(chan struct{})
	stopCh := keeper.stopCh
	keeper.mu.Unlock()

	keeper.logger.Info().Dur("tick", keeper.options.TickInterval).Msg("time keeper started")
	go keeper.run(stopCh)
}

// Stop terminates the ticking loop and closes observers.
func (keeper *TimeKeeper) Stop() {
	keeper.mu.Lock()
	if !keeper.running {
		keeper.mu.Unlock()
		return
	}
	close(keeper.stopCh)
	keeper.running = false
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
	keeper.logger.Info().Msg("time keeper stopped")
}

// Config returns the current tracker configuration.
func (keeper *TimeKeeper) Config() model.TrackerConfig {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.config
}

// UpdateConfig replaces the tracker configuration. It takes effect on the next tick.
func (keeper *TimeKeeper) UpdateConfig(config model.TrackerConfig) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.config = config
	keeper.logger.Info().Bool("confirm_required", config.ConfirmRequired).Msg("tracker config updated")
	keeper.publishLocked(keeper.options.Clock(), Update{Type: UpdateChanged})
}

// Now reads the configured clock.
func (keeper *TimeKeeper) Now() time.Time {
	return keeper.options.Clock()
}

// Snapshot reports statuses and the projected completion at now.
func (keeper *TimeKeeper) Snapshot(now time.Time) Report {
	return BuildReport(keeper.store.Snapshot(), now)
}

// Events returns a copy of the stored events.
func (keeper *TimeKeeper) Events() []model.Event {
	return keeper.store.Snapshot()
}

// Tick evaluates every active-batch timer at now. The confirmation flag is
// read once per call and each event crosses at most one loop boundary.
func (keeper *TimeKeeper) Tick(now time.Time) Report {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	confirmRequired := keeper.config.ConfirmRequired
	snapshot := keeper.store.Snapshot()
	byID := make(map[model.EventID]model.Event, len(snapshot))
	for _, event := range snapshot {
		byID[event.ID] = event
	}

	updates := make([]Update, 0)
	for _, id := range schedule.Due(snapshot, now, confirmRequired) {
		state, err := keeper.store.Elapse(now, id, confirmRequired)
		if err != nil {
			keeper.logger.Error().Err(err).Str("event_id", string(id)).Msg("elapse failed")
			continue
		}
		before := byID[id]
		update := Update{
			EventID: id,
			Name:    before.Name,
			Loop:    before.CurrentLoop + 1,
			Loops:   before.Loops,
			At:      now,
		}
		switch state {
		case model.StateExpired:
			update.Type = UpdateLoopExpired
			keeper.logger.Info().Str("event", before.Name).Int("loop", update.Loop).Int("loops", before.Loops).Msg("loop finished, waiting for confirmation")
		case model.StateCompleted:
			update.Type = UpdateEventCompleted
			keeper.logger.Info().Str("event", before.Name).Msg("all loops completed")
		default:
			update.Type = UpdateLoopAdvanced
			keeper.logger.Debug().Str("event", before.Name).Int("loop", update.Loop).Msg("loop advanced")
		}
		updates = append(updates, update)
	}

	updates = append(updates, Update{Type: UpdateProgress})
	return keeper.publishLocked(now, updates...)
}

// AddEvent creates a new event whose first loop starts now.
func (keeper *TimeKeeper) AddEvent(params store.AddParams) (model.EventID, error) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	now := keeper.options.Clock()
	id, err := keeper.store.Add(now, params)
	if err != nil {
		return "", err
	}
	keeper.logger.Info().
		Str("event_id", string(id)).
		Str("event", params.Name).
		Int("duration_min", params.Duration).
		Int("loops", params.Loops).
		Int("order", params.Order).
		Msg("event added")
	keeper.publishLocked(now, Update{Type: UpdateChanged, EventID: id, Name: params.Name, Loops: params.Loops})
	return id, nil
}

// ConfirmLoop acknowledges an expired loop.
func (keeper *TimeKeeper) ConfirmLoop(id model.EventID) error {
	return keeper.advance(id, "confirmed", keeper.store.Confirm)
}

// SkipLoop counts the running loop immediately.
func (keeper *TimeKeeper) SkipLoop(id model.EventID) error {
	return keeper.advance(id, "skipped", keeper.store.Skip)
}

// Reorder moves an event to another batch.
func (keeper *TimeKeeper) Reorder(id model.EventID, order int) error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	if err := keeper.store.Reorder(id, order); err != nil {
		return err
	}
	keeper.logger.Info().Str("event_id", string(id)).Int("order", order).Msg("event reordered")
	keeper.publishLocked(keeper.options.Clock(), Update{Type: UpdateChanged, EventID: id})
	return nil
}

// RemoveEvent drops an event from the store.
func (keeper *TimeKeeper) RemoveEvent(id model.EventID) error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	if err := keeper.store.Remove(id); err != nil {
		return err
	}
	keeper.logger.Info().Str("event_id", string(id)).Msg("event removed")
	keeper.publishLocked(keeper.options.Clock(), Update{Type: UpdateChanged, EventID: id})
	return nil
}

func (keeper *TimeKeeper) advance(id model.EventID, verb string, apply func(time.Time, model.EventID) error) error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	now := keeper.options.Clock()
	if err := apply(now, id); err != nil {
		return err
	}

	event, err := keeper.store.Get(id)
	if err != nil {
		return err
	}
	update := Update{
		Type:    UpdateLoopAdvanced,
		EventID: id,
		Name:    event.Name,
		Loop:    event.CurrentLoop,
		Loops:   event.Loops,
		At:      now,
	}
	if event.IsCompleted() {
		update.Type = UpdateEventCompleted
	}
	keeper.logger.Info().Str("event", event.Name).Int("loop", event.CurrentLoop).Int("loops", event.Loops).Msg("loop " + verb)
	keeper.publishLocked(now, update, Update{Type: UpdateChanged, EventID: id})
	return nil
}

func (keeper *TimeKeeper) run(stopCh chan struct{}) {
	ticker := time.NewTicker(keeper.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			keeper.Tick(keeper.options.Clock())
		}
	}
}

// publishLocked builds the report at now, attaches it to updates that carry
// one and fans everything out. An all_done update follows the last completion.
func (keeper *TimeKeeper) publishLocked(now time.Time, updates ...Update) Report {
	report := BuildReport(keeper.store.Snapshot(), now)

	for _, update := range updates {
		if update.At.IsZero() {
			update.At = now
		}
		if update.Type == UpdateProgress || update.Type == UpdateChanged {
			update.Report = &report
		}
		keeper.emitLocked(update)
	}

	if keeper.hadWork && !report.HasWork {
		keeper.logger.Info().Msg("all events completed")
		keeper.emitLocked(Update{Type: UpdateAllDone, Report: &report, At: now})
	}
	keeper.hadWork = report.HasWork
	return report
}

func (keeper *TimeKeeper) emitLocked(update Update) {
	events := append([]chan Update(nil), keeper.events...)
	for _, ch := range events {
		select {
		case ch <- update:
		default:
		}
	}
}
