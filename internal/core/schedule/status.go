package schedule

import (
	"time"

	"gohome/internal/core/model"
)

// EventStatus is the per-event view returned by Status.
// Remaining and Progress are only meaningful while Counting.
type EventStatus struct {
	ID          model.EventID
	Name        string
	State       model.State
	CurrentLoop int
	Loops       int
	Order       int
	Remaining   time.Duration
	Progress    float64
}

// Classify places an event in the state machine given the active batch order.
func Classify(event model.Event, activeOrder int, hasActive bool) model.State {
	switch {
	case event.IsCompleted():
		return model.StateCompleted
	case !hasActive || event.Order != activeOrder:
		return model.StateIdle
	case event.WaitingConfirm:
		return model.StateExpired
	default:
		return model.StateCounting
	}
}

// Status reports every event in snapshot order.
func Status(events []model.Event, now time.Time) []EventStatus {
	order, hasActive := activeOrder(events)
	statuses := make([]EventStatus, 0, len(events))
	for _, event := range events {
		status := EventStatus{
			ID:          event.ID,
			Name:        event.Name,
			State:       Classify(event, order, hasActive),
			CurrentLoop: event.CurrentLoop,
			Loops:       event.Loops,
			Order:       event.Order,
		}
		if status.State == model.StateCounting {
			status.Remaining = CurrentLoopRemaining(event, now)
			status.Progress = loopProgress(event, status.Remaining)
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func loopProgress(event model.Event, remaining time.Duration) float64 {
	total := event.LoopDuration()
	if total <= 0 {
		return 1
	}
	progress := float64(total-remaining) / float64(total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
