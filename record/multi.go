package record

import "github.com/NetPo4ki/go-watcher/watcher"

// Multi forwards each outcome to every member in order.
// Cancellations reach members implementing watcher.CancelRegistrator; the
// others receive a *watcher.CancelledError through RecordError, matching what
// a Watcher would have sent them directly.
type Multi[T any] struct {
	members []watcher.Registrator[T]
}

// NewMulti builds a fan-out recorder. Nil members are ignored.
func NewMulti[T any](members ...watcher.Registrator[T]) *Multi[T] {
	m := &Multi[T]{members: make([]watcher.Registrator[T], 0, len(members))}
	for _, r := range members {
		if r == nil {
			continue
		}
		m.members = append(m.members, r)
	}
	return m
}

// Len reports the number of members.
func (m *Multi[T]) Len() int { return len(m.members) }

func (m *Multi[T]) RecordValue(v T) {
	for _, r := range m.members {
		r.RecordValue(v)
	}
}

func (m *Multi[T]) RecordError(err error) {
	for _, r := range m.members {
		r.RecordError(err)
	}
}

func (m *Multi[T]) RecordCancelled(err error) {
	for _, r := range m.members {
		if cr, ok := r.(watcher.CancelRegistrator); ok {
			cr.RecordCancelled(err)
			continue
		}
		r.RecordError(&watcher.CancelledError{Err: err})
	}
}
