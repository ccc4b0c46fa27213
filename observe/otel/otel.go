package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NetPo4ki/go-watcher/watcher"
)

const (
	attrTaskID   = attribute.Key("watcher.task.id")
	attrOutcome  = attribute.Key("watcher.task.outcome")
	attrDuration = attribute.Key("watcher.task.duration_ms")
	attrWait     = attribute.Key("watcher.stop.wait_ms")
	attrName     = attribute.Key("watcher.name")
)

// Observer records watcher lifecycle as span events. Spans are looked up from
// the hook's context, so only work started under a recording span is traced.
type Observer struct {
	name string
}

var _ watcher.Observer = (*Observer)(nil)

// New returns an Observer that tags events with the watcher name.
func New(name string) *Observer { return &Observer{name: name} }

func (o *Observer) WatcherStarted(ctx context.Context) {
	o.event(ctx, "watcher.started")
}

func (o *Observer) WatcherCancelled(ctx context.Context, cause error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(cause, trace.WithAttributes(attrName.String(o.name)))
	span.AddEvent("watcher.cancelled", trace.WithAttributes(attrName.String(o.name)))
}

func (o *Observer) WatcherStopped(ctx context.Context, wait time.Duration) {
	o.event(ctx, "watcher.stopped", attrWait.Int64(wait.Milliseconds()))
}

func (o *Observer) TaskStarted(ctx context.Context, id string) {
	o.event(ctx, "watcher.task.started", attrTaskID.String(id))
}

func (o *Observer) TaskFinished(ctx context.Context, id string, dur time.Duration, kind watcher.OutcomeKind) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("watcher.task.finished", trace.WithAttributes(
		attrName.String(o.name),
		attrTaskID.String(id),
		attrOutcome.String(kind.String()),
		attrDuration.Int64(dur.Milliseconds()),
	))
	if kind == watcher.OutcomePanic {
		span.SetStatus(codes.Error, "watched task panicked")
	}
}

func (o *Observer) event(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs = append(attrs, attrName.String(o.name))
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
