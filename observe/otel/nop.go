package otel

import (
	"context"
	"time"

	"github.com/NetPo4ki/go-watcher/watcher"
)

// Nop is a no-op implementation of the watcher.Observer interface.
type Nop struct{}

// NewNop returns a no-op observer.
func NewNop() *Nop { return &Nop{} }

func (*Nop) WatcherStarted(context.Context)                                           {}
func (*Nop) WatcherCancelled(context.Context, error)                                  {}
func (*Nop) WatcherStopped(context.Context, time.Duration)                            {}
func (*Nop) TaskStarted(context.Context, string)                                      {}
func (*Nop) TaskFinished(context.Context, string, time.Duration, watcher.OutcomeKind) {}
