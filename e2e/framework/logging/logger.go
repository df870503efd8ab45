package logging

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/utils/clock"
)

// Level is the severity of a log entry.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	default:
		return fmt.Sprintf("level(%d)", int8(l))
	}
}

// ParseLevel accepts the level names plus the "warn" alias.
func ParseLevel(value string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warning", "warn":
		return LevelWarning, true
	case "error":
		return LevelError, true
	case "critical", "fatal":
		return LevelCritical, true
	default:
		return LevelInfo, false
	}
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Counts aggregates recorded test outcomes.
type Counts struct {
	Passed  int64
	Failed  int64
	Skipped int64
}

// Total is the number of recorded outcomes.
func (c Counts) Total() int64 {
	return c.Passed + c.Failed + c.Skipped
}

// PassRate is the fraction of executed (non-skipped) tests that passed.
func (c Counts) PassRate() float64 {
	executed := c.Passed + c.Failed
	if executed == 0 {
		return 0
	}
	return float64(c.Passed) / float64(executed)
}

type state struct {
	minLevel atomic.Int32
	step     atomic.Int64
	passed   atomic.Int64
	failed   atomic.Int64
	skipped  atomic.Int64
}

// Logger emits leveled, step-numbered events through zap. Loggers derived
// with With share the step counter, the minimum level and the outcome counts.
type Logger struct {
	zl    *zap.Logger
	clock clock.PassiveClock
	st    *state
}

// New wraps zl; entries below min are dropped.
func New(zl *zap.Logger, min Level) *Logger {
	if zl == nil {
		zl = zap.NewNop()
	}
	st := &state{}
	st.minLevel.Store(int32(min))
	return &Logger{
		zl:    zl.WithOptions(zap.AddCallerSkip(2)),
		clock: clock.RealClock{},
		st:    st,
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return New(zap.NewNop(), LevelCritical)
}

// WithClock replaces the clock used for duration measurement.
func (l *Logger) WithClock(c clock.PassiveClock) *Logger {
	out := *l
	out.clock = c
	return &out
}

// With returns a child logger carrying fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	out := *l
	out.zl = l.zl.With(fields...)
	return &out
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zl.WithOptions(zap.AddCallerSkip(-2))
}

// SetLevel changes the minimum emitted level.
func (l *Logger) SetLevel(level Level) {
	l.st.minLevel.Store(int32(level))
}

// Enabled reports whether entries at level are emitted.
func (l *Logger) Enabled(level Level) bool {
	return level >= Level(l.st.minLevel.Load())
}

// Log emits msg when level is at or above the minimum level.
func (l *Logger) Log(level Level, msg string, fields ...zap.Field) {
	l.emit(level, msg, fields...)
}

func (l *Logger) Debug(msg string, fields ...zap.Field)    { l.emit(LevelDebug, msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)     { l.emit(LevelInfo, msg, fields...) }
func (l *Logger) Warning(msg string, fields ...zap.Field)  { l.emit(LevelWarning, msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field)    { l.emit(LevelError, msg, fields...) }
func (l *Logger) Critical(msg string, fields ...zap.Field) { l.emit(LevelCritical, msg, fields...) }

func (l *Logger) emit(level Level, msg string, fields ...zap.Field) {
	if !l.Enabled(level) {
		return
	}
	if level == LevelCritical {
		fields = append(fields, zap.String("severity", LevelCritical.String()))
	}
	if ce := l.zl.Check(toZapLevel(level), msg); ce != nil {
		ce.Write(fields...)
	}
}

// Step advances the step counter and emits the numbered description.
func (l *Logger) Step(description string) int64 {
	n := l.st.step.Add(1)
	l.emit(LevelInfo, fmt.Sprintf("step %d: %s", n, description), zap.Int64("step", n))
	return n
}

// CurrentStep returns the last step number issued.
func (l *Logger) CurrentStep() int64 {
	return l.st.step.Load()
}

// ResetStepCounter zeroes the step counter; call it when a test starts.
func (l *Logger) ResetStepCounter() {
	l.st.step.Store(0)
}

// MeasureTime runs fn, emits its wall-clock duration and returns fn's error
// unchanged. A panic in fn propagates after the duration is emitted.
func (l *Logger) MeasureTime(label string, fn func() error) error {
	_, err := Measure(l, label, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Measure is MeasureTime for blocks that produce a value.
func Measure[T any](l *Logger, label string, fn func() (T, error)) (T, error) {
	start := l.clock.Now()
	defer func() {
		l.emit(LevelInfo, "performance", zap.String("label", label), zap.Duration("duration", l.clock.Since(start)))
	}()
	return fn()
}

// RecordOutcome aggregates a test outcome: "passed", "failed" or "skipped".
func (l *Logger) RecordOutcome(status string) {
	switch status {
	case "passed":
		l.st.passed.Add(1)
	case "failed":
		l.st.failed.Add(1)
	case "skipped":
		l.st.skipped.Add(1)
	}
}

// Counts returns the aggregated outcomes.
func (l *Logger) Counts() Counts {
	return Counts{
		Passed:  l.st.passed.Load(),
		Failed:  l.st.failed.Load(),
		Skipped: l.st.skipped.Load(),
	}
}

// ResetCounts clears the aggregated outcomes between top-level runs.
func (l *Logger) ResetCounts() {
	l.st.passed.Store(0)
	l.st.failed.Store(0)
	l.st.skipped.Store(0)
}
