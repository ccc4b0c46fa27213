package record

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/NetPo4ki/go-watcher/watcher"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryConcurrentRecording(t *testing.T) {
	t.Parallel()

	mem := NewMemory[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				mem.RecordValue(i)
				return
			}
			mem.RecordError(errors.New("odd"))
		}(i)
	}
	wg.Wait()

	require.Len(t, mem.Values(), 25)
	require.Len(t, mem.Errors(), 25)
	require.Equal(t, 50, mem.Len())

	mem.Reset()
	require.Zero(t, mem.Len())
	require.Empty(t, mem.Values())
}

func TestMemoryReturnsCopies(t *testing.T) {
	t.Parallel()

	mem := NewMemory[string]()
	mem.RecordValue("a")
	got := mem.Values()
	got[0] = "mutated"
	require.Equal(t, []string{"a"}, mem.Values())
}

func TestMemoryWithWatcher(t *testing.T) {
	t.Parallel()

	mem := NewMemory[int]()
	w := watcher.New[int](mem)
	require.NoError(t, w.Start(context.Background()))
	boom := errors.New("boom")
	require.NoError(t, w.StartAndWatch(func(context.Context) (int, error) { return 42, nil }))
	require.NoError(t, w.StartAndWatch(func(context.Context) (int, error) { return 0, boom }))
	require.NoError(t, w.StartAndWatch(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, w.Stop(ctx), watcher.ErrStopDeadline)

	require.Equal(t, []int{42}, mem.Values())
	require.Equal(t, []error{boom}, mem.Errors())
	require.Len(t, mem.Cancelled(), 1)
	require.ErrorIs(t, mem.Cancelled()[0], context.Canceled)
}

func TestLogLevels(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLog[int](zap.New(core))
	l.RecordValue(7)
	l.RecordError(errors.New("bad"))
	l.RecordCancelled(context.Canceled)

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.EqualValues(t, 7, entries[0].ContextMap()["value"])
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, "bad", entries[1].ContextMap()["error"])
	require.Equal(t, zapcore.InfoLevel, entries[2].Level)
}

func TestLogSkipsValuesAboveDebug(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLog[int](zap.New(core))
	l.RecordValue(1)
	require.Zero(t, logs.Len())

	require.NotPanics(t, func() { NewLog[int](nil).RecordError(errors.New("x")) })
}

type plain struct{ errs []error }

func (p *plain) RecordValue(int)       {}
func (p *plain) RecordError(err error) { p.errs = append(p.errs, err) }

func TestMultiFansOut(t *testing.T) {
	t.Parallel()

	a, b := NewMemory[int](), NewMemory[int]()
	p := &plain{}
	m := NewMulti[int](a, nil, b, p)
	require.Equal(t, 3, m.Len())

	m.RecordValue(1)
	m.RecordError(errors.New("e"))
	m.RecordCancelled(context.Canceled)

	for _, mem := range []*Memory[int]{a, b} {
		require.Equal(t, []int{1}, mem.Values())
		require.Len(t, mem.Errors(), 1)
		require.Len(t, mem.Cancelled(), 1)
	}
	require.Len(t, p.errs, 2)
	var cerr *watcher.CancelledError
	require.ErrorAs(t, p.errs[1], &cerr)
}

func TestFuncs(t *testing.T) {
	t.Parallel()

	var got []string
	f := Funcs[string]{OnValue: func(s string) { got = append(got, s) }}
	f.RecordValue("x")
	require.NotPanics(t, func() { f.RecordError(errors.New("ignored")) })
	require.Equal(t, []string{"x"}, got)
}
