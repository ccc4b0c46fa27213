package watcher

import (
	"errors"
	"fmt"
)

var (
	// ErrNotStarted is returned when an operation requires Start to have been called.
	ErrNotStarted = errors.New("watcher: not started")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("watcher: already started")
	// ErrStopping is returned by StartAndWatch while Stop is draining.
	ErrStopping = errors.New("watcher: stopping")
	// ErrStopped is returned once the Watcher has been stopped.
	ErrStopped = errors.New("watcher: stopped")
	// ErrNilWork is returned when a nil work item is submitted.
	ErrNilWork = errors.New("watcher: nil work item")
	// ErrStopDeadline is the cancellation cause used when Stop's context
	// expires before the drain completes.
	ErrStopDeadline = errors.New("watcher: stop deadline exceeded")
)

// PanicError carries a value recovered from a panicking work item.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// CancelledError is passed to RecordError for work cancelled by a Stop
// deadline when the Registrator does not implement CancelRegistrator.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string { return "watcher: task cancelled: " + e.Err.Error() }

func (e *CancelledError) Unwrap() error { return e.Err }
