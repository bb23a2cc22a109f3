package syncmanager

import (
	"fmt"
	"math"
	"time"

	multierror "github.com/hashicorp/go-multierror"
)

// Default timeout values used by the sync client when no TimeoutOptions are
// set on the Manager.
const (
	DefaultConnectTimeout       = 120 * time.Second
	DefaultConnectionLingerTime = 30 * time.Second
	DefaultPingKeepalivePeriod  = 60 * time.Second
	DefaultPongKeepaliveTimeout = 120 * time.Second
	DefaultFastReconnectLimit   = 60 * time.Second
)

// TimeoutOptions tunes the connection manager of the sync client. It is a
// plain value: copies are independent. No relation between the fields is
// enforced here; a zero value is passed to the client as is.
type TimeoutOptions struct {
	// ConnectTimeout caps the time allowed for a connection to become fully
	// established: address resolution, TCP connect, TLS handshake and
	// WebSocket handshake combined. Zero means no cap.
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`

	// ConnectionLingerTime is how long a connection is kept open after its
	// last session went away, to avoid close/reopen cycles. Zero closes the
	// connection as soon as the last session detaches.
	ConnectionLingerTime time.Duration `mapstructure:"linger"`

	// PingKeepalivePeriod is the time between two PING messages sent by the
	// client. Zero disables the heartbeat.
	PingKeepalivePeriod time.Duration `mapstructure:"ping-period"`

	// PongKeepaliveTimeout is how long the client waits for the PONG answering
	// a PING before it considers the connection dead and terminates it. Zero
	// disables dead connection detection.
	PongKeepaliveTimeout time.Duration `mapstructure:"pong-timeout"`

	// FastReconnectLimit is the maximum time since the loss of the previous
	// connection for a new connection to count as a fast reconnect. On a fast
	// reconnect, uploads start immediately instead of waiting for the initial
	// download to complete.
	FastReconnectLimit time.Duration `mapstructure:"fast-reconnect"`
}

// DefaultTimeoutOptions returns the values the sync client uses when the
// Manager holds no TimeoutOptions.
func DefaultTimeoutOptions() TimeoutOptions {
	return TimeoutOptions{
		ConnectTimeout:       DefaultConnectTimeout,
		ConnectionLingerTime: DefaultConnectionLingerTime,
		PingKeepalivePeriod:  DefaultPingKeepalivePeriod,
		PongKeepaliveTimeout: DefaultPongKeepaliveTimeout,
		FastReconnectLimit:   DefaultFastReconnectLimit,
	}
}

// MaxMillis is the largest millisecond count a time.Duration can hold.
const MaxMillis = math.MaxInt64 / int64(time.Millisecond)

// TimeoutOptionsFromMillis builds TimeoutOptions from millisecond counts.
// Counts that do not fit in a time.Duration are rejected with an
// InvalidConfiguration error; negative counts are left to Validate.
func TimeoutOptionsFromMillis(connect, linger, ping, pong, fastReconnect int64) (TimeoutOptions, error) {
	var result error

	ms := func(field string, v int64) time.Duration {
		if v > MaxMillis || v < -MaxMillis {
			result = multierror.Append(result,
				newErr(InvalidConfiguration, field, fmt.Sprintf("%d ms is out of range", v)))
			return 0
		}
		return time.Duration(v) * time.Millisecond
	}

	opts := TimeoutOptions{
		ConnectTimeout:       ms("connectTimeout", connect),
		ConnectionLingerTime: ms("connectionLingerTime", linger),
		PingKeepalivePeriod:  ms("pingKeepalivePeriod", ping),
		PongKeepaliveTimeout: ms("pongKeepaliveTimeout", pong),
		FastReconnectLimit:   ms("fastReconnectLimit", fastReconnect),
	}
	if result != nil {
		return TimeoutOptions{}, result
	}

	return opts, nil
}

// Millis returns the five durations as millisecond counts, in field order.
func (o TimeoutOptions) Millis() (connect, linger, ping, pong, fastReconnect int64) {
	return o.ConnectTimeout.Milliseconds(),
		o.ConnectionLingerTime.Milliseconds(),
		o.PingKeepalivePeriod.Milliseconds(),
		o.PongKeepaliveTimeout.Milliseconds(),
		o.FastReconnectLimit.Milliseconds()
}

// Validate rejects negative durations.
func (o TimeoutOptions) Validate() error {
	var result error

	check := func(field string, d time.Duration) {
		if d < 0 {
			result = multierror.Append(result,
				newErr(InvalidConfiguration, field, "must not be negative, got "+d.String()))
		}
	}

	check("connectTimeout", o.ConnectTimeout)
	check("connectionLingerTime", o.ConnectionLingerTime)
	check("pingKeepalivePeriod", o.PingKeepalivePeriod)
	check("pongKeepaliveTimeout", o.PongKeepaliveTimeout)
	check("fastReconnectLimit", o.FastReconnectLimit)

	return result
}
