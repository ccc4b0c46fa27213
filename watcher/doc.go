// Package watcher provides a small task supervisor for Go.
// A Watcher owns the goroutines it spawns for submitted work, routes every
// outcome (value, error, panic or cancellation) to a Registrator, and offers a
// single join point (Stop) that returns only after all tracked work has
// finished and been recorded.
package watcher
