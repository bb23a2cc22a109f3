// Package client implements the part of the sync client that consumes the
// configuration held by the syncmanager package.
//
// A Client is given the shared Manager explicitly. The first time it starts,
// either through Start or by opening a session, it latches the Manager and
// builds its log sink from the latched log level and log function. It reads the
// TimeoutOptions every time its connection manager starts from cold, that is
// when a session is opened while no connection exists.
//
// Connections are WebSocket connections, one per server URL, shared by all the
// sessions that target that server. A connection whose last session is closed
// lingers for ConnectionLingerTime before it is closed. While open, a
// connection sends a PING every PingKeepalivePeriod and is torn down if the
// PONG does not arrive within PongKeepaliveTimeout.
//
// When a connection is established less than FastReconnectLimit after the
// previous connection to the same server was lost, the sessions start uploading
// right away. Otherwise uploads wait until the session has completed its
// initial download (see Session.MarkDownloadComplete).
//
// Errors are delivered to the Manager's error handler on a new goroutine. The
// sync protocol itself is not part of this package.
package client
