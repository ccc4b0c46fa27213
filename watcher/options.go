package watcher

import "go.uber.org/zap"

type Option func(*Options)

type Options struct {
	PanicAsError bool
	Observer     Observer
	Executor     Executor
	Logger       *zap.Logger
	Name         string
}

func defaultOptions() Options { return Options{PanicAsError: true} }

// WithPanicAsError controls whether a panicking work item is recorded as a
// *PanicError (true, the default) or re-panics after it is untracked.
func WithPanicAsError(v bool) Option { return func(o *Options) { o.PanicAsError = v } }

func WithObserver(obs Observer) Option { return func(o *Options) { o.Observer = obs } }

func WithExecutor(ex Executor) Option { return func(o *Options) { o.Executor = ex } }

func WithLogger(l *zap.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithName names the Watcher in logs and, unless WithExecutor is given,
// labels its goroutines with watcher=<name>.
func WithName(name string) Option { return func(o *Options) { o.Name = name } }
