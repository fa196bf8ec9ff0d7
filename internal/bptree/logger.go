package bptree

import "github.com/sirupsen/logrus"

// Logger is the subset of logrus's leveled API the store uses to report
// lifecycle events. Call sites depend on this interface
// rather than logrus directly, so tests can substitute a no-op or
// recording implementation.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// defaultLogger wraps logrus's package-level logger.
type defaultLogger struct{}

func (defaultLogger) Debugf(format string, args ...interface{}) { logrus.Debugf(format, args...) }
func (defaultLogger) Infof(format string, args ...interface{})  { logrus.Infof(format, args...) }
func (defaultLogger) Warnf(format string, args ...interface{})  { logrus.Warnf(format, args...) }
func (defaultLogger) Errorf(format string, args ...interface{}) { logrus.Errorf(format, args...) }

func resolveLogger(l Logger) Logger {
	if l == nil {
		return defaultLogger{}
	}
	return l
}

// NopLogger discards everything. Useful in tests that don't want log noise.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...interface{}) {}
func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Errorf(string, ...interface{}) {}
