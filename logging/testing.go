package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NewTestLogger returns a new logger that outputs Debug+ logs to stdout.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also saves logs to an in
// memory observer so tests can assert on emitted entries.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	logger := newImpl(tb.Name(), NewAtomicLevelAt(DEBUG), []zapcore.Core{
		newStdoutCore(),
		observerCore,
	})
	return logger, observedLogs
}
