package mobile

/*
These types are exported and need to be implemented and used by the mobile
application.
*/

//------------------------------------------------------------------------------

// ExceptionHandler receives the errors of the sync client. sessionID is empty
// for errors that do not concern a single session.
type ExceptionHandler interface {
	OnException(sessionID string, message string)
}

// LogHandler receives the sync log messages that pass the log level. level is
// one of the LogLevel constants.
type LogHandler interface {
	OnLog(level int, message string)
}
