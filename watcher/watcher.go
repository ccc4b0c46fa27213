package watcher

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkItem is a unit of asynchronous work. ctx is derived from the context
// given to Start and is only cancelled by the Watcher when a Stop deadline
// expires.
type WorkItem[T any] func(ctx context.Context) (T, error)

// Watcher runs submitted work items concurrently and delivers exactly one
// outcome per item to its Registrator.
//
// Submissions made after Stop has begun are rejected with ErrStopping or
// ErrStopped and the work item is never run.
type Watcher[T any] struct {
	reg  Registrator[T]
	opts Options
	obs  Observer
	exec Executor
	log  *zap.Logger

	mu     sync.Mutex
	state  State
	ctx    context.Context
	cancel context.CancelCauseFunc
	live   map[string]*trackedTask[T]
	wg     sync.WaitGroup

	deliverMu sync.Mutex
}

type trackedTask[T any] struct {
	id        string
	work      WorkItem[T]
	submitted time.Time
}

type outcome[T any] struct {
	kind  OutcomeKind
	value T
	err   error
}

// New returns a Watcher in the created state. It panics if reg is nil.
func New[T any](reg Registrator[T], optFns ...Option) *Watcher[T] {
	if reg == nil {
		panic("watcher: nil Registrator")
	}
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	exec := opts.Executor
	switch {
	case exec != nil:
	case opts.Name != "":
		exec = LabeledExecutor("watcher", opts.Name)
	default:
		exec = GoExecutor()
	}
	if opts.Name != "" {
		logger = logger.With(zap.String("watcher", opts.Name))
	}
	return &Watcher[T]{
		reg:  reg,
		opts: opts,
		obs:  opts.Observer,
		exec: exec,
		log:  logger,
		live: make(map[string]*trackedTask[T]),
	}
}

// Name returns the name set with WithName.
func (w *Watcher[T]) Name() string { return w.opts.Name }

// State reports the current lifecycle stage.
func (w *Watcher[T]) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Len reports the number of tracked tasks whose outcome is not yet delivered.
func (w *Watcher[T]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.live)
}

// Start moves the Watcher into the accepting state. Work contexts derive
// from ctx.
func (w *Watcher[T]) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateCreated:
	case StateStopped:
		return ErrStopped
	default:
		return ErrAlreadyStarted
	}
	w.ctx, w.cancel = context.WithCancelCause(ctx)
	w.state = StateStarted
	if w.obs != nil {
		w.obs.WatcherStarted(w.ctx)
	}
	w.log.Debug("watcher started")
	return nil
}

// StartAndWatch schedules work on its own goroutine and returns immediately.
// Errors only report misuse; the work's own failure goes to the Registrator.
func (w *Watcher[T]) StartAndWatch(work WorkItem[T]) error {
	if work == nil {
		return ErrNilWork
	}
	w.mu.Lock()
	switch w.state {
	case StateStarted:
	case StateCreated:
		w.mu.Unlock()
		return ErrNotStarted
	case StateStopping:
		w.mu.Unlock()
		return ErrStopping
	default:
		w.mu.Unlock()
		return ErrStopped
	}
	t := &trackedTask[T]{id: newTaskID(), work: work, submitted: time.Now()}
	w.live[t.id] = t
	w.wg.Add(1)
	ctx := w.ctx
	w.mu.Unlock()

	w.exec.Go(func() { w.run(ctx, t) })
	return nil
}

// Stop waits until every tracked task has finished and its outcome has been
// delivered. If ctx ends first, the work context is cancelled with
// ErrStopDeadline and Stop keeps waiting for the drain; the returned error
// then wraps ErrStopDeadline. Stop is not re-entrant.
func (w *Watcher[T]) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w.mu.Lock()
	switch w.state {
	case StateStarted:
	case StateCreated:
		w.mu.Unlock()
		return ErrNotStarted
	default:
		w.mu.Unlock()
		return ErrStopped
	}
	w.state = StateStopping
	pending := len(w.live)
	w.mu.Unlock()

	w.log.Debug("watcher stopping", zap.Int("pending", pending))
	start := time.Now()

	drained := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(drained)
	}()

	var stopErr error
	if pending == 0 {
		<-drained
	} else {
		select {
		case <-drained:
		case <-ctx.Done():
			select {
			case <-drained:
			default:
				stopErr = w.cancelAndDrain(ctx, drained)
			}
		}
	}

	w.mu.Lock()
	w.state = StateStopped
	w.mu.Unlock()
	w.cancel(nil)

	wait := time.Since(start)
	if w.obs != nil {
		w.obs.WatcherStopped(w.ctx, wait)
	}
	w.log.Debug("watcher stopped", zap.Duration("wait", wait))
	return stopErr
}

// cancelAndDrain cancels outstanding work unless the live set emptied in the
// meantime; untrack removes a task only after its outcome is delivered.
func (w *Watcher[T]) cancelAndDrain(ctx context.Context, drained <-chan struct{}) error {
	if w.Len() == 0 {
		<-drained
		return nil
	}
	w.cancel(ErrStopDeadline)
	w.log.Warn("stop deadline reached, cancelling tracked work",
		zap.Int("pending", w.Len()), zap.Error(context.Cause(ctx)))
	if w.obs != nil {
		w.obs.WatcherCancelled(w.ctx, ErrStopDeadline)
	}
	<-drained
	return fmt.Errorf("watcher: stop: %w", errors.Join(ErrStopDeadline, context.Cause(ctx)))
}

func (w *Watcher[T]) run(parent context.Context, t *trackedTask[T]) {
	ctx := withTaskID(parent, t.id)
	start := time.Now()
	if w.obs != nil {
		w.obs.TaskStarted(ctx, t.id)
	}
	w.log.Debug("watched task started", zap.String("task_id", t.id), zap.Duration("queued", start.Sub(t.submitted)))
	defer w.untrack(t)

	returned := false
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if returned || !w.opts.PanicAsError {
			if !returned {
				w.log.Error("watched task panicked", zap.String("task_id", t.id), zap.Any("panic", r))
				w.finished(ctx, t, start, OutcomePanic)
			}
			panic(r)
		}
		w.deliver(ctx, t, start, outcome[T]{kind: OutcomePanic, err: &PanicError{Value: r, Stack: debug.Stack()}})
	}()

	v, err := t.work(ctx)
	returned = true
	w.deliver(ctx, t, start, classify(ctx, v, err))
}

func classify[T any](ctx context.Context, v T, err error) outcome[T] {
	switch {
	case err == nil:
		return outcome[T]{kind: OutcomeValue, value: v}
	case errors.Is(err, context.Canceled) && errors.Is(context.Cause(ctx), ErrStopDeadline):
		return outcome[T]{kind: OutcomeCancelled, err: err}
	default:
		return outcome[T]{kind: OutcomeError, err: err}
	}
}

func (w *Watcher[T]) deliver(ctx context.Context, t *trackedTask[T], start time.Time, o outcome[T]) {
	w.record(o)
	switch o.kind {
	case OutcomeValue:
		w.log.Debug("watched task finished", zap.String("task_id", t.id))
	case OutcomeCancelled:
		w.log.Info("watched task cancelled", zap.String("task_id", t.id), zap.Error(o.err))
	case OutcomePanic:
		w.log.Error("watched task panicked", zap.String("task_id", t.id), zap.Error(o.err))
	default:
		w.log.Debug("watched task failed", zap.String("task_id", t.id), zap.Error(o.err))
	}
	w.finished(ctx, t, start, o.kind)
}

func (w *Watcher[T]) record(o outcome[T]) {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()
	switch o.kind {
	case OutcomeValue:
		w.reg.RecordValue(o.value)
	case OutcomeCancelled:
		if cr, ok := w.reg.(CancelRegistrator); ok {
			cr.RecordCancelled(o.err)
			return
		}
		w.reg.RecordError(&CancelledError{Err: o.err})
	default:
		w.reg.RecordError(o.err)
	}
}

func (w *Watcher[T]) finished(ctx context.Context, t *trackedTask[T], start time.Time, kind OutcomeKind) {
	if w.obs != nil {
		w.obs.TaskFinished(ctx, t.id, time.Since(start), kind)
	}
}

func (w *Watcher[T]) untrack(t *trackedTask[T]) {
	w.mu.Lock()
	delete(w.live, t.id)
	w.mu.Unlock()
	w.wg.Done()
}

type taskIDKey struct{}

func withTaskID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, taskIDKey{}, id)
}

// TaskID returns the ID of the watched task running with ctx.
func TaskID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(taskIDKey{}).(string)
	return id, ok
}

func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
