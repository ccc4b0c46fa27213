package record

import "sync"

// Memory keeps every outcome in memory. It is safe for concurrent use, so one
// Memory may be shared by several Watchers.
type Memory[T any] struct {
	mu        sync.Mutex
	values    []T
	errors    []error
	cancelled []error
}

// NewMemory returns an empty Memory recorder.
func NewMemory[T any]() *Memory[T] { return &Memory[T]{} }

func (m *Memory[T]) RecordValue(v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = append(m.values, v)
}

func (m *Memory[T]) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
}

func (m *Memory[T]) RecordCancelled(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, err)
}

// Values returns a copy of the recorded values in delivery order.
func (m *Memory[T]) Values() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.values...)
}

// Errors returns a copy of the recorded errors in delivery order.
func (m *Memory[T]) Errors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.errors...)
}

// Cancelled returns a copy of the recorded cancellations.
func (m *Memory[T]) Cancelled() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.cancelled...)
}

// Len reports the total number of recorded outcomes.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values) + len(m.errors) + len(m.cancelled)
}

// Reset drops everything recorded so far.
func (m *Memory[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values, m.errors, m.cancelled = nil, nil, nil
}
