package timekeeper

import (
	"time"

	"gohome/internal/core/model"
	"gohome/internal/core/schedule"
)

// UpdateType defines the type of TimeKeeper update.
type UpdateType string

const (
	UpdateProgress       UpdateType = "progress"
	UpdateLoopExpired    UpdateType = "loop_expired"
	UpdateLoopAdvanced   UpdateType = "loop_advanced"
	UpdateEventCompleted UpdateType = "event_completed"
	UpdateAllDone        UpdateType = "all_done"
	UpdateChanged        UpdateType = "changed"
)

// Update is a TimeKeeper notification for observers. Loop is the 1-based
// number of the loop the update refers to.
type Update struct {
	Type    UpdateType
	EventID model.EventID
	Name    string
	Loop    int
	Loops   int
	Report  *Report
	At      time.Time
}

// Report is a consistent view of the tracker at one instant.
type Report struct {
	At         time.Time
	Statuses   []schedule.EventStatus
	Batches    []schedule.BatchPlan
	Completion time.Time
	HasWork    bool
}

// Remaining returns the time left until Completion, or zero without work.
func (report Report) Remaining() time.Duration {
	if !report.HasWork {
		return 0
	}
	left := report.Completion.Sub(report.At)
	if left < 0 {
		return 0
	}
	return left
}

// Pending returns the statuses of events waiting for a confirmation.
func (report Report) Pending() []schedule.EventStatus {
	pending := make([]schedule.EventStatus, 0)
	for _, status := range report.Statuses {
		if status.State == model.StateExpired {
			pending = append(pending, status)
		}
	}
	return pending
}

// BuildReport evaluates a snapshot at now without mutating anything.
func BuildReport(events []model.Event, now time.Time) Report {
	report := Report{
		At:       now,
		Statuses: schedule.Status(events, now),
		Batches:  schedule.Plan(events, now),
	}
	if completion, err := schedule.EstimateCompletion(events, now); err == nil {
		report.Completion = completion
		report.HasWork = true
	}
	return report
}
