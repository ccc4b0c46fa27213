package watcher

import (
	"context"
	"time"
)

// Observer receives lifecycle hooks. Task hooks run on task goroutines, so
// implementations must be safe for concurrent use. Observers must not call
// back into the Watcher.
type Observer interface {
	WatcherStarted(ctx context.Context)
	WatcherCancelled(ctx context.Context, cause error)
	WatcherStopped(ctx context.Context, wait time.Duration)
	TaskStarted(ctx context.Context, id string)
	TaskFinished(ctx context.Context, id string, dur time.Duration, kind OutcomeKind)
}

// NopObserver ignores every hook.
type NopObserver struct{}

func (NopObserver) WatcherStarted(context.Context)                                   {}
func (NopObserver) WatcherCancelled(context.Context, error)                          {}
func (NopObserver) WatcherStopped(context.Context, time.Duration)                    {}
func (NopObserver) TaskStarted(context.Context, string)                              {}
func (NopObserver) TaskFinished(context.Context, string, time.Duration, OutcomeKind) {}

type multiObserver []Observer

// MultiObserver returns an Observer that forwards every hook to each non-nil
// observer in order.
func MultiObserver(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multiObserver) WatcherStarted(ctx context.Context) {
	for _, o := range m {
		o.WatcherStarted(ctx)
	}
}

func (m multiObserver) WatcherCancelled(ctx context.Context, cause error) {
	for _, o := range m {
		o.WatcherCancelled(ctx, cause)
	}
}

func (m multiObserver) WatcherStopped(ctx context.Context, wait time.Duration) {
	for _, o := range m {
		o.WatcherStopped(ctx, wait)
	}
}

func (m multiObserver) TaskStarted(ctx context.Context, id string) {
	for _, o := range m {
		o.TaskStarted(ctx, id)
	}
}

func (m multiObserver) TaskFinished(ctx context.Context, id string, dur time.Duration, kind OutcomeKind) {
	for _, o := range m {
		o.TaskFinished(ctx, id, dur, kind)
	}
}
