package common

import (
	"testing"

	"github.com/sirupsen/logrus"
)

// TestLogLevel is the level of the loggers created by NewTestLogger and
// NewTestEntry when tests do not ask for a specific one.
const TestLogLevel = logrus.DebugLevel

// testLoggerAdapter can be used as the destination of a logger. It maps log
// lines to calls to testing.T.Log, so that logs only show for failed tests.
type testLoggerAdapter struct {
	t      testing.TB
	prefix string
}

func (a *testLoggerAdapter) Write(d []byte) (int, error) {
	n := len(d)
	if len(d) > 0 && d[len(d)-1] == '\n' {
		d = d[:len(d)-1]
	}
	if a.prefix != "" {
		l := a.prefix + ": " + string(d)
		a.t.Log(l)
		return n, nil
	}
	a.t.Log(string(d))
	return n, nil
}

// NewTestLogger returns a logrus Logger that writes to t.
func NewTestLogger(t testing.TB, level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.Out = &testLoggerAdapter{t: t}
	logger.Level = level
	return logger
}

// NewTestEntry returns a logrus Entry, with prefix set to the test name, that
// writes to t.
func NewTestEntry(t testing.TB, level logrus.Level) *logrus.Entry {
	return NewTestLogger(t, level).WithField("prefix", t.Name())
}
