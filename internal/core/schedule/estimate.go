package schedule

import (
	"errors"
	"time"

	"gohome/internal/core/model"
)

// ErrNoActiveWork means every event is completed or there are no events.
// It is not a zero-length batch.
var ErrNoActiveWork = errors.New("no active work")

// BatchPlan is one step of the forward simulation.
type BatchPlan struct {
	Order     int
	EventIDs  []model.EventID
	Start     time.Time
	End       time.Time
	Remaining time.Duration
}

// Remaining returns how long an event still needs at now: what is left of the
// running loop plus every later loop at its full duration.
func Remaining(event model.Event, now time.Time) time.Duration {
	loops := event.RemainingLoops()
	if loops == 0 {
		return 0
	}
	return CurrentLoopRemaining(event, now) + time.Duration(loops-1)*event.LoopDuration()
}

// CurrentLoopRemaining returns the time left on the running loop, clamped at zero.
func CurrentLoopRemaining(event model.Event, now time.Time) time.Duration {
	if event.NextTime == nil {
		return 0
	}
	left := event.NextTime.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Plan walks the pending batches in order. Each batch lasts as long as its
// slowest member and starts when the previous one ends.
func Plan(events []model.Event, now time.Time) []BatchPlan {
	orders := PendingOrders(events)
	plans := make([]BatchPlan, 0, len(orders))
	cursor := now
	for _, order := range orders {
		batch := batchFor(events, order)
		if len(batch) == 0 {
			continue
		}

		var slowest time.Duration
		ids := make([]model.EventID, 0, len(batch))
		for _, event := range batch {
			ids = append(ids, event.ID)
			if remaining := Remaining(event, now); remaining > slowest {
				slowest = remaining
			}
		}

		end := cursor.Add(slowest)
		plans = append(plans, BatchPlan{
			Order:     order,
			EventIDs:  ids,
			Start:     cursor,
			End:       end,
			Remaining: slowest,
		})
		cursor = end
	}
	return plans
}

// EstimateCompletion returns the instant at which every batch will be done.
func EstimateCompletion(events []model.Event, now time.Time) (time.Time, error) {
	plans := Plan(events, now)
	if len(plans) == 0 {
		return time.Time{}, ErrNoActiveWork
	}
	return plans[len(plans)-1].End, nil
}
