package syncmanager

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel is the verbosity threshold of the sync client. Levels are ordered by
// increasing verbosity.
type LogLevel uint32

const (
	// LogLevelOff logs nothing.
	LogLevelOff LogLevel = iota
	// LogLevelFatal logs fatal errors only.
	LogLevelFatal
	// LogLevelError logs errors.
	LogLevelError
	// LogLevelWarn logs warnings and errors.
	LogLevelWarn
	// LogLevelInfo logs sync events, keeping the volume low.
	LogLevelInfo
	// LogLevelDetail logs more sync events than LogLevelInfo.
	LogLevelDetail
	// LogLevelDebug logs information that helps debugging. It has a measurable
	// performance cost.
	LogLevelDebug
	// LogLevelTrace logs more than LogLevelDebug.
	LogLevelTrace
	// LogLevelAll logs everything.
	LogLevelAll
)

// DefaultLogLevel is the threshold used when none is configured.
const DefaultLogLevel = LogLevelInfo

var logLevelNames = [...]string{
	"off",
	"fatal",
	"error",
	"warn",
	"info",
	"detail",
	"debug",
	"trace",
	"all",
}

func (l LogLevel) String() string {
	if int(l) < len(logLevelNames) {
		return logLevelNames[l]
	}
	return fmt.Sprintf("LogLevel(%d)", uint32(l))
}

// Valid reports whether l is one of the declared levels.
func (l LogLevel) Valid() bool {
	return l <= LogLevelAll
}

// Enables reports whether a message logged at level msg passes the threshold
// l. Messages are never logged at LogLevelOff.
func (l LogLevel) Enables(msg LogLevel) bool {
	return msg != LogLevelOff && msg.Valid() && msg <= l
}

// ParseLogLevel converts a level name, as returned by String, into a LogLevel.
// "warning" is accepted as an alias of "warn".
func ParseLogLevel(s string) (LogLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	for i, n := range logLevelNames {
		if n == name {
			return LogLevel(i), nil
		}
	}
	return DefaultLogLevel, newErr(InvalidConfiguration, "logLevel", fmt.Sprintf("unknown log level %q", s))
}

// LogrusLevel returns the closest logrus level. LogLevelOff maps to
// logrus.PanicLevel, the least verbose logrus level.
func (l LogLevel) LogrusLevel() logrus.Level {
	switch l {
	case LogLevelOff:
		return logrus.PanicLevel
	case LogLevelFatal:
		return logrus.FatalLevel
	case LogLevelError:
		return logrus.ErrorLevel
	case LogLevelWarn:
		return logrus.WarnLevel
	case LogLevelInfo, LogLevelDetail:
		return logrus.InfoLevel
	case LogLevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}
