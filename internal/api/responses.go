package api

import (
	"time"

	"gohome/internal/core/timekeeper"
)

type eventResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	State            string  `json:"state"`
	Loop             int     `json:"loop"`
	Loops            int     `json:"loops"`
	Order            int     `json:"order"`
	RemainingSeconds int64   `json:"remaining_seconds"`
	Progress         float64 `json:"progress"`
}

type batchResponse struct {
	Order            int       `json:"order"`
	EventIDs         []string  `json:"event_ids"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

type completionResponse struct {
	Done             bool       `json:"done"`
	FinishAt         *time.Time `json:"finish_at,omitempty"`
	RemainingSeconds int64      `json:"remaining_seconds"`
}

type statusResponse struct {
	At         time.Time          `json:"at"`
	Events     []eventResponse    `json:"events"`
	Batches    []batchResponse    `json:"batches"`
	Completion completionResponse `json:"completion"`
}

type streamMessage struct {
	Type    string          `json:"type"`
	EventID string          `json:"event_id,omitempty"`
	Name    string          `json:"name,omitempty"`
	Loop    int             `json:"loop,omitempty"`
	Loops   int             `json:"loops,omitempty"`
	At      time.Time       `json:"at"`
	Status  *statusResponse `json:"status,omitempty"`
}

func newCompletionResponse(report timekeeper.Report) completionResponse {
	if !report.HasWork {
		return completionResponse{Done: true}
	}
	finish := report.Completion
	return completionResponse{
		FinishAt:         &finish,
		RemainingSeconds: int64(report.Remaining().Seconds()),
	}
}

func newStatusResponse(report timekeeper.Report) statusResponse {
	events := make([]eventResponse, 0, len(report.Statuses))
	for _, status := range report.Statuses {
		events = append(events, eventResponse{
			ID:               string(status.ID),
			Name:             status.Name,
			State:            string(status.State),
			Loop:             status.CurrentLoop,
			Loops:            status.Loops,
			Order:            status.Order,
			RemainingSeconds: int64(status.Remaining.Seconds()),
			Progress:         status.Progress,
		})
	}

	batches := make([]batchResponse, 0, len(report.Batches))
	for _, plan := range report.Batches {
		ids := make([]string, 0, len(plan.EventIDs))
		for _, id := range plan.EventIDs {
			ids = append(ids, string(id))
		}
		batches = append(batches, batchResponse{
			Order:            plan.Order,
			EventIDs:         ids,
			Start:            plan.Start,
			End:              plan.End,
			RemainingSeconds: int64(plan.Remaining.Seconds()),
		})
	}

	return statusResponse{
		At:         report.At,
		Events:     events,
		Batches:    batches,
		Completion: newCompletionResponse(report),
	}
}

func newStreamMessage(update timekeeper.Update) streamMessage {
	msg := streamMessage{
		Type:    string(update.Type),
		EventID: string(update.EventID),
		Name:    update.Name,
		Loop:    update.Loop,
		Loops:   update.Loops,
		At:      update.At,
	}
	if update.Report != nil {
		status := newStatusResponse(*update.Report)
		msg.Status = &status
	}
	return msg
}
