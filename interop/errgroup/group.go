// Package errgroup provides an adapter that mimics golang.org/x/sync/errgroup
// semantics on top of watcher.Watcher. Every function runs as a watched task;
// the first error is kept and cancels the derived context.
package errgroup

import (
	"context"
	"sync"

	"github.com/NetPo4ki/go-watcher/watcher"
)

// Group is an errgroup-like wrapper over watcher.Watcher. The zero value is
// usable and does not cancel on error.
type Group struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	mu sync.Mutex
	w  *watcher.Watcher[struct{}]

	errOnce sync.Once
	err     error
}

// WithContext creates a Group bound to ctx. The returned context is canceled
// when any function passed to Go returns a non-nil error or when Wait returns.
func WithContext(ctx context.Context) (*Group, context.Context) {
	ctx, cancel := context.WithCancelCause(ctx)
	return &Group{ctx: ctx, cancel: cancel}, ctx
}

// Go runs f on a watched goroutine.
func (g *Group) Go(f func() error) {
	if f == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.w == nil {
		g.w = watcher.New[struct{}](firstError{g})
		ctx := g.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		// a fresh watcher always starts
		_ = g.w.Start(ctx)
	}
	_ = g.w.StartAndWatch(func(context.Context) (struct{}, error) {
		return struct{}{}, f()
	})
}

// Wait blocks until all functions have returned, then returns the first
// non-nil error, if any. Functions may call Go while Wait drains; those calls
// land on a fresh watcher that Wait picks up before returning. Go may be
// called again after Wait returns.
func (g *Group) Wait() error {
	for {
		g.mu.Lock()
		w := g.w
		g.w = nil
		g.mu.Unlock()
		if w == nil {
			break
		}
		_ = w.Stop(context.Background())
	}
	if g.cancel != nil {
		g.cancel(g.err)
	}
	return g.err
}

type firstError struct{ g *Group }

func (f firstError) RecordValue(struct{}) {}

func (f firstError) RecordError(err error) {
	f.g.errOnce.Do(func() {
		f.g.err = err
		if f.g.cancel != nil {
			f.g.cancel(err)
		}
	})
}
