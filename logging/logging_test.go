package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"go.viam.com/test"
)

func TestLevelGating(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)

	logger.Debug("visible debug")
	logger.SetLevel(INFO)
	logger.Debug("suppressed debug")
	logger.Info("visible info")

	all := logs.All()
	test.That(t, len(all), test.ShouldEqual, 2)
	test.That(t, all[0].Message, test.ShouldEqual, "visible debug")
	test.That(t, all[1].Message, test.ShouldEqual, "visible info")
	test.That(t, all[1].Level, test.ShouldEqual, zapcore.InfoLevel)
}

func TestStructuredFields(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("projected", "lat", 40.0, "range_m", 12.5)

	entries := logs.FilterMessage("projected").All()
	test.That(t, len(entries), test.ShouldEqual, 1)
	fields := entries[0].ContextMap()
	test.That(t, fields["lat"], test.ShouldEqual, 40.0)
	test.That(t, fields["range_m"], test.ShouldEqual, 12.5)
}

func TestFormattedMessages(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Warnf("sample %d of %d failed", 3, 8)

	entries := logs.All()
	test.That(t, len(entries), test.ShouldEqual, 1)
	test.That(t, entries[0].Message, test.ShouldEqual, "sample 3 of 8 failed")
	test.That(t, entries[0].Level, test.ShouldEqual, zapcore.WarnLevel)
}

func TestSublogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("dem")
	sub.Error("boom")

	entries := logs.All()
	test.That(t, len(entries), test.ShouldEqual, 1)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, t.Name()+".dem")

	// sublogger levels are independent of the parent
	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
}

func TestAddAppender(t *testing.T) {
	logger := NewBlankLogger("blank")
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	logger.AddAppender(observerCore)

	logger.Info("hello")
	test.That(t, len(observedLogs.All()), test.ShouldEqual, 1)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		inp  string
		want Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.inp)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.want)
	}
	_, err := LevelFromString("verbose")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReplaceGlobal(t *testing.T) {
	prev := Global()
	defer ReplaceGlobal(prev)

	logger, logs := NewObservedTestLogger(t)
	ReplaceGlobal(logger)
	Global().Info("via global")
	test.That(t, len(logs.All()), test.ShouldEqual, 1)
}
