// Package prom provides a Prometheus-backed watcher.Observer.
package prom

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/NetPo4ki/go-watcher/watcher"
)

// Metrics implements watcher.Observer with Prometheus collectors. Every
// series carries a constant watcher=<name> label, so several Watchers can
// share one registry.
type Metrics struct {
	tasksStarted  prometheus.Counter
	tasksFinished *prometheus.CounterVec
	activeTasks   prometheus.Gauge
	taskDuration  prometheus.Histogram
	stopWait      prometheus.Histogram
	cancellations prometheus.Counter
}

var _ watcher.Observer = (*Metrics)(nil)

// New creates the collectors and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, name string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := prometheus.Labels{"watcher": name}
	m := &Metrics{
		tasksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "watcher_tasks_started_total",
			Help:        "Total number of work items started.",
			ConstLabels: labels,
		}),
		tasksFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "watcher_tasks_finished_total",
			Help:        "Total number of work items finished, labeled by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		activeTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "watcher_tasks_active",
			Help:        "Number of work items currently running.",
			ConstLabels: labels,
		}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "watcher_task_duration_seconds",
			Help:        "Histogram of work item run time.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}),
		stopWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "watcher_stop_wait_seconds",
			Help:        "Histogram of time spent draining in Stop.",
			Buckets:     []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
			ConstLabels: labels,
		}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "watcher_cancellations_total",
			Help:        "Number of times a Stop deadline cancelled tracked work.",
			ConstLabels: labels,
		}),
	}
	collectors := []prometheus.Collector{
		m.tasksStarted, m.tasksFinished, m.activeTasks, m.taskDuration, m.stopWait, m.cancellations,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			for _, done := range collectors[:i] {
				reg.Unregister(done)
			}
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				return nil, fmt.Errorf("prom: watcher %q already registered: %w", name, err)
			}
			return nil, fmt.Errorf("prom: register collector: %w", err)
		}
	}
	for _, k := range []watcher.OutcomeKind{
		watcher.OutcomeValue, watcher.OutcomeError, watcher.OutcomePanic, watcher.OutcomeCancelled,
	} {
		m.tasksFinished.WithLabelValues(k.String())
	}
	return m, nil
}

func (m *Metrics) WatcherStarted(context.Context) {}

func (m *Metrics) WatcherCancelled(context.Context, error) {
	m.cancellations.Inc()
}

func (m *Metrics) WatcherStopped(_ context.Context, wait time.Duration) {
	m.stopWait.Observe(wait.Seconds())
}

func (m *Metrics) TaskStarted(context.Context, string) {
	m.activeTasks.Inc()
	m.tasksStarted.Inc()
}

func (m *Metrics) TaskFinished(_ context.Context, _ string, dur time.Duration, kind watcher.OutcomeKind) {
	m.activeTasks.Dec()
	m.tasksFinished.WithLabelValues(kind.String()).Inc()
	m.taskDuration.Observe(dur.Seconds())
}
