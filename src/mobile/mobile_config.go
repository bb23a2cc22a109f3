package mobile

import "github.com/mosaicnetworks/syncmanager/src/syncmanager"

// Log levels, in increasing verbosity.
const (
	LogLevelOff    = int(syncmanager.LogLevelOff)
	LogLevelFatal  = int(syncmanager.LogLevelFatal)
	LogLevelError  = int(syncmanager.LogLevelError)
	LogLevelWarn   = int(syncmanager.LogLevelWarn)
	LogLevelInfo   = int(syncmanager.LogLevelInfo)
	LogLevelDetail = int(syncmanager.LogLevelDetail)
	LogLevelDebug  = int(syncmanager.LogLevelDebug)
	LogLevelTrace  = int(syncmanager.LogLevelTrace)
	LogLevelAll    = int(syncmanager.LogLevelAll)
)

// TimeoutOptions holds the connection timeouts in milliseconds.
type TimeoutOptions struct {
	ConnectTimeout       int64 //connect timeout in milliseconds
	ConnectionLingerTime int64 //linger time in milliseconds
	PingKeepalivePeriod  int64 //time between PINGs in milliseconds
	PongKeepaliveTimeout int64 //PONG timeout in milliseconds
	FastReconnectLimit   int64 //fast reconnect limit in milliseconds
}

// NewTimeoutOptions creates a TimeoutOptions from millisecond counts.
func NewTimeoutOptions(connectTimeout int64,
	connectionLingerTime int64,
	pingKeepalivePeriod int64,
	pongKeepaliveTimeout int64,
	fastReconnectLimit int64) *TimeoutOptions {

	return &TimeoutOptions{
		ConnectTimeout:       connectTimeout,
		ConnectionLingerTime: connectionLingerTime,
		PingKeepalivePeriod:  pingKeepalivePeriod,
		PongKeepaliveTimeout: pongKeepaliveTimeout,
		FastReconnectLimit:   fastReconnectLimit,
	}
}

// DefaultTimeoutOptions returns the values used by the sync client when no
// options are set.
func DefaultTimeoutOptions() *TimeoutOptions {
	return fromOptions(syncmanager.DefaultTimeoutOptions())
}

func fromOptions(opts syncmanager.TimeoutOptions) *TimeoutOptions {
	connect, linger, ping, pong, fast := opts.Millis()
	return NewTimeoutOptions(connect, linger, ping, pong, fast)
}

func (o *TimeoutOptions) toOptions() (syncmanager.TimeoutOptions, error) {
	return syncmanager.TimeoutOptionsFromMillis(
		o.ConnectTimeout,
		o.ConnectionLingerTime,
		o.PingKeepalivePeriod,
		o.PongKeepaliveTimeout,
		o.FastReconnectLimit,
	)
}
