package store

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gohome/internal/core/model"
)

var (
	// ErrInvalidEventParameters rejects an Add or Reorder outside the allowed ranges.
	ErrInvalidEventParameters = errors.New("invalid event parameters")
	// ErrNotAwaitingConfirmation rejects a Confirm on a loop that has not expired.
	ErrNotAwaitingConfirmation = errors.New("event is not awaiting confirmation")
	// ErrEventNotFound indicates the id does not belong to this store.
	ErrEventNotFound = errors.New("event not found")
)

// AddParams describes a new event. Durations are whole minutes.
type AddParams struct {
	Name         string
	Duration     int
	Loops        int
	ElapsedFirst int
	Order        int
}

// MaxTotalMinutes bounds Duration*Loops so every remaining time fits in a
// time.Duration.
const MaxTotalMinutes = math.MaxInt64 / int64(time.Minute)

// Validate checks the ranges accepted by Add.
func (params AddParams) Validate() error {
	switch {
	case params.Duration < 1:
		return fmt.Errorf("%w: duration %d < 1", ErrInvalidEventParameters, params.Duration)
	case params.Loops < 1:
		return fmt.Errorf("%w: loops %d < 1", ErrInvalidEventParameters, params.Loops)
	case int64(params.Duration) > MaxTotalMinutes:
		return fmt.Errorf("%w: duration %d > %d", ErrInvalidEventParameters, params.Duration, MaxTotalMinutes)
	case int64(params.Loops) > MaxTotalMinutes/int64(params.Duration):
		return fmt.Errorf("%w: duration %d x loops %d > %d minutes", ErrInvalidEventParameters, params.Duration, params.Loops, MaxTotalMinutes)
	case params.ElapsedFirst < 0:
		return fmt.Errorf("%w: elapsed first %d < 0", ErrInvalidEventParameters, params.ElapsedFirst)
	case params.Order < 0:
		return fmt.Errorf("%w: order %d < 0", ErrInvalidEventParameters, params.Order)
	}
	return nil
}

// Store owns an ordered collection of events. The collection is kept sorted
// by Order; events with equal Order keep their insertion order.
type Store struct {
	mu      sync.RWMutex
	records []*record
	nextSeq uint64
	newID   func() model.EventID
}

type record struct {
	event model.Event
	seq   uint64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		newID: func() model.EventID {
			return model.EventID(uuid.NewString())
		},
	}
}

// Add appends a new event whose first loop ends at now + Duration - ElapsedFirst.
func (store *Store) Add(now time.Time, params AddParams) (model.EventID, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	first := params.Duration - params.ElapsedFirst
	if first < 0 {
		first = 0
	}
	next := now.Add(time.Duration(first) * time.Minute)

	store.mu.Lock()
	defer store.mu.Unlock()

	entry := &record{
		event: model.Event{
			ID:           store.newID(),
			Name:         params.Name,
			Duration:     params.Duration,
			Loops:        params.Loops,
			ElapsedFirst: params.ElapsedFirst,
			Order:        params.Order,
			NextTime:     &next,
		},
		seq: store.nextSeq,
	}
	store.nextSeq++
	store.records = append(store.records, entry)
	store.sortLocked()
	return entry.event.ID, nil
}

// Confirm counts a loop that expired and is waiting for confirmation.
func (store *Store) Confirm(now time.Time, id model.EventID) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	event, err := store.findLocked(id)
	if err != nil {
		return err
	}
	if !event.WaitingConfirm {
		return fmt.Errorf("confirm %s: %w", id, ErrNotAwaitingConfirmation)
	}
	advanceLocked(event, now)
	return nil
}

// Skip counts the running loop regardless of its timer.
// Skipping a completed event changes nothing.
func (store *Store) Skip(now time.Time, id model.EventID) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	event, err := store.findLocked(id)
	if err != nil {
		return err
	}
	if event.IsCompleted() {
		return nil
	}
	advanceLocked(event, now)
	return nil
}

// Elapse applies the timer transition of a single event at now and returns
// the resulting state. A Counting event whose NextTime has been reached expires
// when confirmRequired is set and advances otherwise; an expired event advances
// once confirmation is no longer required. At most one loop is counted per call.
func (store *Store) Elapse(now time.Time, id model.EventID, confirmRequired bool) (model.State, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	event, err := store.findLocked(id)
	if err != nil {
		return "", err
	}

	switch {
	case event.IsCompleted():
		return model.StateCompleted, nil
	case event.WaitingConfirm:
		if confirmRequired {
			return model.StateExpired, nil
		}
		advanceLocked(event, now)
	case event.NextTime != nil && !now.Before(*event.NextTime):
		if confirmRequired {
			event.WaitingConfirm = true
			event.NextTime = nil
			return model.StateExpired, nil
		}
		advanceLocked(event, now)
	}

	if event.IsCompleted() {
		return model.StateCompleted, nil
	}
	return model.StateCounting, nil
}

// Reorder moves an event to another batch.
func (store *Store) Reorder(id model.EventID, order int) error {
	if order < 0 {
		return fmt.Errorf("%w: order %d < 0", ErrInvalidEventParameters, order)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	event, err := store.findLocked(id)
	if err != nil {
		return err
	}
	event.Order = order
	store.sortLocked()
	return nil
}

// Remove deletes an event from the collection.
func (store *Store) Remove(id model.EventID) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for index, entry := range store.records {
		if entry.event.ID == id {
			store.records = append(store.records[:index], store.records[index+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove %s: %w", id, ErrEventNotFound)
}

// Get returns a copy of one event.
func (store *Store) Get(id model.EventID) (model.Event, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	event, err := store.findLocked(id)
	if err != nil {
		return model.Event{}, err
	}
	return event.Clone(), nil
}

// Snapshot returns copies of all events in store order.
func (store *Store) Snapshot() []model.Event {
	store.mu.RLock()
	defer store.mu.RUnlock()

	snapshot := make([]model.Event, 0, len(store.records))
	for _, entry := range store.records {
		snapshot = append(snapshot, entry.event.Clone())
	}
	return snapshot
}

// Len returns the number of events.
func (store *Store) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.records)
}

func (store *Store) findLocked(id model.EventID) (*model.Event, error) {
	for _, entry := range store.records {
		if entry.event.ID == id {
			return &entry.event, nil
		}
	}
	return nil, fmt.Errorf("event %s: %w", id, ErrEventNotFound)
}

func (store *Store) sortLocked() {
	sort.Slice(store.records, func(i, j int) bool {
		left, right := store.records[i], store.records[j]
		if left.event.Order != right.event.Order {
			return left.event.Order < right.event.Order
		}
		return left.seq < right.seq
	})
}

// advanceLocked is the single place where CurrentLoop, NextTime and
// WaitingConfirm change together.
func advanceLocked(event *model.Event, now time.Time) {
	event.WaitingConfirm = false
	event.CurrentLoop++
	if event.CurrentLoop < event.Loops {
		next := now.Add(event.LoopDuration())
		event.NextTime = &next
		return
	}
	event.CurrentLoop = event.Loops
	event.NextTime = nil
}
