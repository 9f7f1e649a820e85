// Package schedule derives batch, status and completion projections from a
// snapshot of events. Nothing here mutates an event.
package schedule

import (
	"sort"
	"time"

	"gohome/internal/core/model"
)

// ActiveBatch returns the pending events that share the smallest order.
// The boolean is false when every event is completed.
func ActiveBatch(events []model.Event) ([]model.Event, bool) {
	order, ok := activeOrder(events)
	if !ok {
		return nil, false
	}
	return batchFor(events, order), true
}

// PendingOrders returns the distinct orders of pending events in ascending order.
func PendingOrders(events []model.Event) []int {
	seen := make(map[int]struct{})
	orders := make([]int, 0)
	for _, event := range events {
		if event.IsCompleted() {
			continue
		}
		if _, ok := seen[event.Order]; ok {
			continue
		}
		seen[event.Order] = struct{}{}
		orders = append(orders, event.Order)
	}
	sort.Ints(orders)
	return orders
}

// Due returns the active-batch events whose timer transition fires at now:
// running loops whose deadline has been reached, and expired loops when
// confirmation is no longer required.
func Due(events []model.Event, now time.Time, confirmRequired bool) []model.EventID {
	batch, ok := ActiveBatch(events)
	if !ok {
		return nil
	}

	due := make([]model.EventID, 0, len(batch))
	for _, event := range batch {
		switch {
		case event.WaitingConfirm:
			if !confirmRequired {
				due = append(due, event.ID)
			}
		case event.NextTime != nil && !now.Before(*event.NextTime):
			due = append(due, event.ID)
		}
	}
	return due
}

func activeOrder(events []model.Event) (int, bool) {
	found := false
	order := 0
	for _, event := range events {
		if event.IsCompleted() {
			continue
		}
		if !found || event.Order < order {
			order = event.Order
			found = true
		}
	}
	return order, found
}

func batchFor(events []model.Event, order int) []model.Event {
	batch := make([]model.Event, 0)
	for _, event := range events {
		if event.Order == order && !event.IsCompleted() {
			batch = append(batch, event)
		}
	}
	return batch
}
