package record

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log writes each outcome to a zap logger: values at Debug, errors at Warn and
// cancellations at Info.
type Log[T any] struct {
	logger *zap.Logger
}

// NewLog returns a Log recorder. A nil logger yields a no-op recorder.
func NewLog[T any](logger *zap.Logger) *Log[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log[T]{logger: logger}
}

func (l *Log[T]) RecordValue(v T) {
	if ce := l.logger.Check(zapcore.DebugLevel, "work item succeeded"); ce != nil {
		ce.Write(zap.Any("value", v))
	}
}

func (l *Log[T]) RecordError(err error) {
	l.logger.Warn("work item failed", zap.Error(err))
}

func (l *Log[T]) RecordCancelled(err error) {
	l.logger.Info("work item cancelled", zap.Error(err))
}
