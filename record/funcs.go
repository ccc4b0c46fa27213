package record

// Funcs adapts plain functions to watcher.Registrator. Nil fields are skipped.
type Funcs[T any] struct {
	OnValue func(T)
	OnError func(error)
}

func (f Funcs[T]) RecordValue(v T) {
	if f.OnValue != nil {
		f.OnValue(v)
	}
}

func (f Funcs[T]) RecordError(err error) {
	if f.OnError != nil {
		f.OnError(err)
	}
}
