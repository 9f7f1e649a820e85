package model

import "time"

// EventID identifies an event inside a store.
type EventID string

// State is the classification of an event at a given instant.
type State string

const (
	StateIdle      State = "idle"
	StateCounting  State = "counting"
	StateExpired   State = "expired"
	StateCompleted State = "completed"
)

// Event is one repeating activity made of Loops loops of Duration minutes each.
type Event struct {
	ID   EventID
	Name string

	Duration     int
	Loops        int
	CurrentLoop  int
	ElapsedFirst int
	Order        int

	// NextTime is when the running loop's countdown reaches zero.
	// Nil once completed and while a finished loop waits for confirmation.
	NextTime       *time.Time
	WaitingConfirm bool
}

// LoopDuration returns the nominal length of one loop.
func (event Event) LoopDuration() time.Duration {
	return time.Duration(event.Duration) * time.Minute
}

// IsCompleted reports whether every loop has been counted.
func (event Event) IsCompleted() bool {
	return event.CurrentLoop >= event.Loops
}

// RemainingLoops returns the number of loops not yet counted, including the running one.
func (event Event) RemainingLoops() int {
	if event.IsCompleted() {
		return 0
	}
	return event.Loops - event.CurrentLoop
}

// Clone returns a copy that shares no pointers with event.
func (event Event) Clone() Event {
	if event.NextTime != nil {
		next := *event.NextTime
		event.NextTime = &next
	}
	return event
}
