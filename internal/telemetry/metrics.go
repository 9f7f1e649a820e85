// Package telemetry exposes tracker state as Prometheus metrics.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gohome/internal/core/model"
	"gohome/internal/core/timekeeper"
)

// Source is the part of the time keeper the collector reads.
type Source interface {
	Now() time.Time
	Snapshot(now time.Time) timekeeper.Report
}

// Collector reports gauges computed from a fresh report on every scrape.
type Collector struct {
	source Source

	events      *prometheus.Desc
	activeOrder *prometheus.Desc
	remaining   *prometheus.Desc
	completion  *prometheus.Desc
	transitions *prometheus.CounterVec
}

// NewCollector creates a collector over source.
func NewCollector(source Source) *Collector {
	return &Collector{
		source: source,
		events: prometheus.NewDesc(
			"gohome_events",
			"Number of events by state.",
			[]string{"state"}, nil,
		),
		activeOrder: prometheus.NewDesc(
			"gohome_active_batch_order",
			"Order of the batch currently running, -1 when idle.",
			nil, nil,
		),
		remaining: prometheus.NewDesc(
			"gohome_projected_remaining_seconds",
			"Seconds until every batch is projected to finish.",
			nil, nil,
		),
		completion: prometheus.NewDesc(
			"gohome_projected_completion_timestamp_seconds",
			"Unix time at which every batch is projected to finish, 0 when idle.",
			nil, nil,
		),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gohome_loop_transitions_total",
			Help: "Loop transitions observed by the time keeper.",
		}, []string{"type"}),
	}
}

// Describe implements prometheus.Collector.
func (collector *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.events
	ch <- collector.activeOrder
	ch <- collector.remaining
	ch <- collector.completion
	collector.transitions.Describe(ch)
}

// Collect implements prometheus.Collector.
func (collector *Collector) Collect(ch chan<- prometheus.Metric) {
	report := collector.source.Snapshot(collector.source.Now())

	counts := map[model.State]int{
		model.StateIdle:      0,
		model.StateCounting:  0,
		model.StateExpired:   0,
		model.StateCompleted: 0,
	}
	for _, status := range report.Statuses {
		counts[status.State]++
	}
	for state, count := range counts {
		ch <- prometheus.MustNewConstMetric(collector.events, prometheus.GaugeValue, float64(count), string(state))
	}

	order := -1.0
	completion := 0.0
	if len(report.Batches) > 0 {
		order = float64(report.Batches[0].Order)
	}
	if report.HasWork {
		completion = float64(report.Completion.Unix())
	}
	ch <- prometheus.MustNewConstMetric(collector.activeOrder, prometheus.GaugeValue, order)
	ch <- prometheus.MustNewConstMetric(collector.remaining, prometheus.GaugeValue, report.Remaining().Seconds())
	ch <- prometheus.MustNewConstMetric(collector.completion, prometheus.GaugeValue, completion)
	collector.transitions.Collect(ch)
}

// Observe counts loop transitions from updates until ctx is done or updates closes.
func (collector *Collector) Observe(ctx context.Context, updates <-chan timekeeper.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			switch update.Type {
			case timekeeper.UpdateLoopExpired, timekeeper.UpdateLoopAdvanced, timekeeper.UpdateEventCompleted:
				collector.transitions.WithLabelValues(string(update.Type)).Inc()
			}
		}
	}
}

// Handler registers collector on a fresh registry and returns its scrape handler.
func Handler(collector *Collector) (http.Handler, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(collector); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
