package logging

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger interface for logging to.
type Logger interface {
	Desugar() *zap.Logger
	Sublogger(subname string) Logger
	AddAppender(appender zapcore.Core)
	SetLevel(level Level)
	GetLevel() Level
	Sync() error

	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})

	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})

	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})

	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

type impl struct {
	name  string
	level AtomicLevel

	appenders []zapcore.Core
}

func newImpl(name string, level AtomicLevel, appenders []zapcore.Core) *impl {
	return &impl{
		name:      name,
		level:     level,
		appenders: appenders,
	}
}

func (imp *impl) Desugar() *zap.Logger {
	return zap.New(zapcore.NewTee(imp.appenders...)).Named(imp.name)
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}
	return &impl{
		name:      newName,
		level:     NewAtomicLevelAt(imp.level.Get()),
		appenders: imp.appenders,
	}
}

func (imp *impl) AddAppender(appender zapcore.Core) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sync() error {
	var errs []error
	for _, appender := range imp.appenders {
		if err := appender.Sync(); err != nil {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}

func (imp *impl) shouldLog(logLevel Level) bool {
	return logLevel >= imp.level.Get()
}

func (imp *impl) log(entry zapcore.Entry, fields []zapcore.Field) {
	for _, appender := range imp.appenders {
		//nolint:errcheck
		appender.Write(entry, fields)
	}
}

func (imp *impl) entry(level Level, args ...interface{}) zapcore.Entry {
	return zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: imp.name,
		Message:    fmt.Sprint(args...),
		Caller:     getCaller(),
	}
}

func (imp *impl) entryf(level Level, template string, args ...interface{}) zapcore.Entry {
	return zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: imp.name,
		Message:    fmt.Sprintf(template, args...),
		Caller:     getCaller(),
	}
}

func (imp *impl) entryw(level Level, msg string, keysAndValues ...interface{}) (zapcore.Entry, []zapcore.Field) {
	fields := make([]zapcore.Field, 0, len(keysAndValues)/2)
	for keyIdx := 0; keyIdx < len(keysAndValues)-1; keyIdx += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(keysAndValues[keyIdx]), keysAndValues[keyIdx+1]))
	}
	return zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: imp.name,
		Message:    msg,
		Caller:     getCaller(),
	}, fields
}

// Return the caller's location, skipping over the logging frames themselves.
func getCaller() zapcore.EntryCaller {
	const skipToCaller = 3
	var ok bool
	zapCaller := zapcore.EntryCaller{}
	zapCaller.PC, zapCaller.File, zapCaller.Line, ok = runtime.Caller(skipToCaller)
	zapCaller.Defined = ok
	if idx := strings.LastIndexByte(zapCaller.File, '/'); idx >= 0 {
		zapCaller.Function = zapCaller.File[idx+1:]
	}
	return zapCaller
}

func (imp *impl) Debug(args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.log(imp.entry(DEBUG, args...), nil)
	}
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.log(imp.entryf(DEBUG, template, args...), nil)
	}
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.log(imp.entryw(DEBUG, msg, keysAndValues...))
	}
}

func (imp *impl) Info(args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.log(imp.entry(INFO, args...), nil)
	}
}

func (imp *impl) Infof(template string, args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.log(imp.entryf(INFO, template, args...), nil)
	}
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.log(imp.entryw(INFO, msg, keysAndValues...))
	}
}

func (imp *impl) Warn(args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.log(imp.entry(WARN, args...), nil)
	}
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.log(imp.entryf(WARN, template, args...), nil)
	}
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.log(imp.entryw(WARN, msg, keysAndValues...))
	}
}

func (imp *impl) Error(args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.log(imp.entry(ERROR, args...), nil)
	}
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.log(imp.entryf(ERROR, template, args...), nil)
	}
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.log(imp.entryw(ERROR, msg, keysAndValues...))
	}
}
