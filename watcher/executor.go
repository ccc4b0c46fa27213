package watcher

import (
	"context"
	"runtime/pprof"
)

// Executor launches the goroutine backing a tracked task. Go must run fn
// asynchronously and exactly once; the Watcher never waits on Go itself.
type Executor interface {
	Go(fn func())
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(fn func())

func (f ExecutorFunc) Go(fn func()) { f(fn) }

// GoExecutor starts one plain goroutine per task.
func GoExecutor() Executor {
	return ExecutorFunc(func(fn func()) { go fn() })
}

// LabeledExecutor starts one goroutine per task carrying the given pprof
// label pairs, so watched goroutines can be told apart in profiles.
// It panics if labels has an odd length.
func LabeledExecutor(labels ...string) Executor {
	set := pprof.Labels(labels...)
	return ExecutorFunc(func(fn func()) {
		go pprof.Do(context.Background(), set, func(context.Context) { fn() })
	})
}
