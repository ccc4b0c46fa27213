// Package otel provides an OpenTelemetry observer for the watcher library.
// It emits span events (started, task finished, cancelled, stopped) on the
// span carried by the context passed to Watcher.Start.
package otel
