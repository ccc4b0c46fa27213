// Package record provides Registrator implementations for watcher.Watcher:
// an in-memory recorder, a zap logging recorder, a fan-out recorder and a
// function adapter.
package record
