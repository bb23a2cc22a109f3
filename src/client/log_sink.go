package client

import (
	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
	"github.com/sirupsen/logrus"
)

// logSink filters messages by the latched threshold and hands them to the
// application's log function, or to logrus when there is none.
type logSink struct {
	threshold syncmanager.LogLevel
	fn        syncmanager.LogFunc
	entry     *logrus.Entry
}

func newLogSink(threshold syncmanager.LogLevel, fn syncmanager.LogFunc, entry *logrus.Entry) *logSink {
	return &logSink{
		threshold: threshold,
		fn:        fn,
		entry:     entry,
	}
}

func (s *logSink) log(level syncmanager.LogLevel, message string) {
	if !s.threshold.Enables(level) {
		return
	}

	if s.fn != nil {
		s.fn(level, message)
		return
	}

	s.entry.WithField("sync_level", level.String()).Log(level.LogrusLevel(), message)
}
