// Package syncmanager holds the process-wide configuration of the sync client.
//
// The configuration surface is made of two parts:
//
// - Manager: a singleton obtained through Shared(). It carries the error
// handler, the application identity (app ID and user agent), the log level and
// optional log function, the HTTP headers added to every request, the map of
// pinned certificates, and an optional TimeoutOptions value.
//
// - TimeoutOptions: five durations that tune how the connection manager of the
// sync client connects, lingers and detects dead connections.
//
// Latching
//
// The sync client reads the Manager once, when the first synchronized session
// is opened, by calling Latch. From that point on the Manager is Latched:
// writes to the app ID, user agent, log level, logger, authorization header,
// custom headers and pinned certificates are accepted without error but have no
// effect, and a warning is logged for each of them. The error handler and the
// timeout options are never latched; the client reads the error handler every
// time it reports an error, and the timeout options every time its connection
// manager starts from cold.
//
// Values returned by the getters are copies. In particular TimeoutOptions has
// value semantics: mutating a value obtained from the Manager does not affect
// the Manager, nor any other copy.
package syncmanager
