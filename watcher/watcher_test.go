package watcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// results is deliberately unsynchronized: the Watcher serializes deliveries.
type results[T any] struct {
	values []T
	errors []error
}

func (r *results[T]) RecordValue(v T)       { r.values = append(r.values, v) }
func (r *results[T]) RecordError(err error) { r.errors = append(r.errors, err) }

func startWatcher[T any](t *testing.T, reg Registrator[T], opts ...Option) *Watcher[T] {
	t.Helper()
	w := New(reg, opts...)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return w
}

func stopWatcher[T any](t *testing.T, w *Watcher[T]) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if n := w.Len(); n != 0 {
		t.Fatalf("expected empty live set after stop, got %d", n)
	}
	if s := w.State(); s != StateStopped {
		t.Fatalf("expected state stopped, got %s", s)
	}
}

func TestJustWorks(t *testing.T) {
	t.Parallel()
	reg := &results[bool]{}
	w := startWatcher[bool](t, reg)
	if err := w.StartAndWatch(func(context.Context) (bool, error) { return true, nil }); err != nil {
		t.Fatalf("submit: %v", err)
	}
	stopWatcher(t, w)
	if len(reg.values) != 1 || !reg.values[0] {
		t.Fatalf("expected values [true], got %v", reg.values)
	}
	if len(reg.errors) != 0 {
		t.Fatalf("expected no errors, got %v", reg.errors)
	}
}

func TestErrorIsRecordedVerbatim(t *testing.T) {
	t.Parallel()
	reg := &results[int]{}
	w := startWatcher[int](t, reg)
	bad := errors.New(`("\(*;..;*)/")`)
	_ = w.StartAndWatch(func(context.Context) (int, error) { return 42, nil })
	_ = w.StartAndWatch(func(context.Context) (int, error) { return 0, bad })
	stopWatcher(t, w)
	if len(reg.values) != 1 || reg.values[0] != 42 {
		t.Fatalf("expected values [42], got %v", reg.values)
	}
	if len(reg.errors) != 1 || reg.errors[0] != bad {
		t.Fatalf("expected the submitted error instance, got %v", reg.errors)
	}
}

func TestPingPong(t *testing.T) {
	t.Parallel()
	const iterations = 5
	const ball = "⚽"
	ping := make(chan string, 1)
	pong := make(chan string, 1)

	send := func(ctx context.Context, ch chan<- string) error {
		select {
		case ch <- ball:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	recv := func(ctx context.Context, ch <-chan string) error {
		select {
		case <-ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	reg := &results[bool]{}
	w := startWatcher[bool](t, reg)
	_ = w.StartAndWatch(func(ctx context.Context) (bool, error) {
		for i := 0; i < iterations; i++ {
			if err := send(ctx, pong); err != nil {
				return false, err
			}
			if err := recv(ctx, ping); err != nil {
				return false, err
			}
		}
		return true, nil
	})
	_ = w.StartAndWatch(func(ctx context.Context) (bool, error) {
		for i := 0; i < iterations; i++ {
			if err := recv(ctx, pong); err != nil {
				return false, err
			}
			if err := send(ctx, ping); err != nil {
				return false, err
			}
		}
		return true, nil
	})
	stopWatcher(t, w)
	if len(reg.values) != 2 || !reg.values[0] || !reg.values[1] {
		t.Fatalf("expected values [true true], got %v", reg.values)
	}
	if len(reg.errors) != 0 {
		t.Fatalf("expected no errors, got %v", reg.errors)
	}
}

func TestPipeline(t *testing.T) {
	t.Parallel()
	const ball = "⚽"
	first := make(chan string, 1)
	second := make(chan string, 1)
	third := make(chan string, 1)

	stage := func(in <-chan string, out chan<- string) WorkItem[bool] {
		return func(ctx context.Context) (bool, error) {
			var b string
			select {
			case b = <-in:
			case <-ctx.Done():
				return false, ctx.Err()
			}
			select {
			case out <- b:
				return true, nil
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}
	}

	reg := &results[bool]{}
	w := startWatcher[bool](t, reg)
	_ = w.StartAndWatch(stage(first, second))
	_ = w.StartAndWatch(stage(second, third))
	first <- ball
	stopWatcher(t, w)

	select {
	case got := <-third:
		if got != ball {
			t.Fatalf("expected %q at the end of the pipeline, got %q", ball, got)
		}
	default:
		t.Fatal("pipeline output missing after stop")
	}
	if len(reg.values) != 2 || !reg.values[0] || !reg.values[1] {
		t.Fatalf("expected values [true true], got %v", reg.values)
	}
	if len(reg.errors) != 0 {
		t.Fatalf("expected no errors, got %v", reg.errors)
	}
}

func TestOutcomesPartitionSubmissions(t *testing.T) {
	t.Parallel()
	const n = 200
	reg := &results[int]{}
	w := startWatcher[int](t, reg)
	for i := 0; i < n; i++ {
		i := i
		_ = w.StartAndWatch(func(context.Context) (int, error) {
			if i%3 == 0 {
				return 0, fmt.Errorf("item %d", i)
			}
			return i, nil
		})
	}
	stopWatcher(t, w)

	if got := len(reg.values) + len(reg.errors); got != n {
		t.Fatalf("expected %d outcomes, got %d", n, got)
	}
	seen := make(map[int]bool, n)
	for _, v := range reg.values {
		if v%3 == 0 || seen[v] {
			t.Fatalf("unexpected or duplicate value %d", v)
		}
		seen[v] = true
	}
	msgs := make([]string, 0, len(reg.errors))
	for _, err := range reg.errors {
		msgs = append(msgs, err.Error())
	}
	sort.Strings(msgs)
	for i := 1; i < len(msgs); i++ {
		if msgs[i] == msgs[i-1] {
			t.Fatalf("duplicate error %q", msgs[i])
		}
	}
	if want := (n + 2) / 3; len(msgs) != want {
		t.Fatalf("expected %d errors, got %d", want, len(msgs))
	}
}

type hookRegistrator struct {
	results[string]
	onValue func(string)
}

func (r *hookRegistrator) RecordValue(v string) {
	r.results.RecordValue(v)
	if r.onValue != nil {
		r.onValue(v)
	}
}

func TestRecordedOrderFollowsCompletion(t *testing.T) {
	t.Parallel()
	firstRecorded := make(chan struct{})
	reg := &hookRegistrator{onValue: func(v string) {
		if v == "first" {
			close(firstRecorded)
		}
	}}
	w := startWatcher[string](t, reg)
	// submitted first, finishes last
	_ = w.StartAndWatch(func(ctx context.Context) (string, error) {
		select {
		case <-firstRecorded:
			return "second", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	_ = w.StartAndWatch(func(context.Context) (string, error) { return "first", nil })
	stopWatcher(t, w)
	if len(reg.values) != 2 || reg.values[0] != "first" || reg.values[1] != "second" {
		t.Fatalf("expected completion order [first second], got %v", reg.values)
	}
}

func TestFailureDoesNotCancelSiblings(t *testing.T) {
	t.Parallel()
	reg := &results[string]{}
	w := startWatcher[string](t, reg)
	_ = w.StartAndWatch(func(ctx context.Context) (string, error) {
		time.Sleep(40 * time.Millisecond)
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "survived", nil
	})
	_ = w.StartAndWatch(func(context.Context) (string, error) {
		time.Sleep(10 * time.Millisecond)
		return "", errors.New("boom")
	})
	stopWatcher(t, w)
	if len(reg.values) != 1 || reg.values[0] != "survived" {
		t.Fatalf("sibling should finish normally, got values %v", reg.values)
	}
	if len(reg.errors) != 1 {
		t.Fatalf("expected one error, got %v", reg.errors)
	}
}

func TestWatchersAreIndependent(t *testing.T) {
	t.Parallel()
	regA, regB := &results[string]{}, &results[string]{}
	a := startWatcher[string](t, regA)
	b := startWatcher[string](t, regB)
	release := make(chan struct{})
	_ = b.StartAndWatch(func(context.Context) (string, error) {
		<-release
		return "b", nil
	})
	_ = a.StartAndWatch(func(context.Context) (string, error) { return "a", nil })
	stopWatcher(t, a)
	if b.Len() != 1 {
		t.Fatalf("stopping one watcher must not drain another, b has %d live", b.Len())
	}
	close(release)
	stopWatcher(t, b)
	if len(regA.values) != 1 || regA.values[0] != "a" || len(regB.values) != 1 || regB.values[0] != "b" {
		t.Fatalf("outcomes crossed watchers: a=%v b=%v", regA.values, regB.values)
	}
}

func TestStopLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	reg := &results[int]{}
	w := startWatcher[int](t, reg)
	for i := 0; i < 10; i++ {
		i := i
		_ = w.StartAndWatch(func(context.Context) (int, error) {
			time.Sleep(time.Duration(i) * time.Millisecond)
			return i, nil
		})
	}
	stopWatcher(t, w)
	if len(reg.values) != 10 {
		t.Fatalf("expected 10 values, got %d", len(reg.values))
	}
}
