package logging

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap/zapcore"
)

// Level is an enum of the available log levels.
type Level int8

const (
	// DEBUG log level.
	DEBUG Level = iota - 1
	// INFO log level.
	INFO
	// WARN log level.
	WARN
	// ERROR log level.
	ERROR
)

func (level Level) String() string {
	switch level {
	case DEBUG:
		return "Debug"
	case INFO:
		return "Info"
	case WARN:
		return "Warn"
	case ERROR:
		return "Error"
	}
	return fmt.Sprintf("unknown %d", int(level))
}

// AsZap converts the Level to the equivalent zapcore.Level.
func (level Level) AsZap() zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// LevelFromString parses an input string to a log level. The string must be one
// of `debug`, `info`, `warn` or `error`. The parsing is case-insensitive.
func LevelFromString(inp string) (Level, error) {
	switch strings.ToLower(inp) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return DEBUG, fmt.Errorf("unknown log level: %q", inp)
}

// AtomicLevel is a level that can be concurrently accessed.
type AtomicLevel struct {
	level *atomic.Int32
}

// NewAtomicLevelAt creates a new AtomicLevel at the given input level.
func NewAtomicLevelAt(level Level) AtomicLevel {
	value := &atomic.Int32{}
	value.Store(int32(level))
	return AtomicLevel{value}
}

// Get returns the level.
func (level AtomicLevel) Get() Level {
	return Level(level.level.Load())
}

// Set changes the level.
func (level AtomicLevel) Set(newLevel Level) {
	level.level.Store(int32(newLevel))
}
