package watcher

// Registrator receives the outcome of every watched work item.
// The Watcher serializes calls, so implementations do not need their own
// locking to be used by a single Watcher.
type Registrator[T any] interface {
	RecordValue(value T)
	RecordError(err error)
}

// CancelRegistrator is implemented by Registrators that want cancellations
// caused by a Stop deadline reported separately from work errors.
type CancelRegistrator interface {
	RecordCancelled(err error)
}
