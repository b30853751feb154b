package watchdog

import (
	"math"
	"sync/atomic"
	"time"
)

// epoch anchors deadline arithmetic to the monotonic clock,
// so wall clock adjustments never expire or extend a deadline.
var epoch = time.Now()

func monoNow() int64 {
	return int64(time.Since(epoch))
}

// Deadline is a restartable countdown.
//
// The zero value is a stopped Deadline with a zero timeout.
// All fields are atomics, so IsAlive may be called from the poller
// while the owner concurrently calls Ping, without any lock.
type Deadline struct {
	timeout atomic.Int64 // nanoseconds
	expiry  atomic.Int64 // nanoseconds since epoch

	started atomic.Bool
	pinged  atomic.Bool
}

// SetTimeout sets the countdown duration used by subsequent calls to Start or Ping.
// It does not start the deadline. Negative durations are treated as zero.
func (d *Deadline) SetTimeout(timeout time.Duration) {
	if timeout < 0 {
		timeout = 0
	}
	d.timeout.Store(int64(timeout))
}

// Timeout reports the configured countdown duration.
func (d *Deadline) Timeout() time.Duration {
	return time.Duration(d.timeout.Load())
}

// Start is an alias of Ping.
func (d *Deadline) Start() {
	d.Ping()
}

// Ping restarts the countdown from the current instant and marks d started.
func (d *Deadline) Ping() {
	now := monoNow()
	t := d.timeout.Load()

	exp := now + t
	if t > math.MaxInt64-now {
		exp = math.MaxInt64
	}

	// The expiry must be visible before started,
	// so that a reader never pairs started with a stale expiry from before the first ping.
	d.expiry.Store(exp)
	d.pinged.Store(true)
	d.started.Store(true)
}

// Stop marks d as not started. A stopped Deadline is never alive.
func (d *Deadline) Stop() {
	d.started.Store(false)
}

// Started reports whether d has been started and not stopped since.
func (d *Deadline) Started() bool {
	return d.started.Load()
}

// IsAlive reports whether d is started and its expiry is still in the future.
func (d *Deadline) IsAlive() bool {
	return d.started.Load() && monoNow() < d.expiry.Load()
}

// Remaining reports the time left until expiry.
// The result is negative once the deadline has elapsed,
// and zero if d is not started.
func (d *Deadline) Remaining() time.Duration {
	if !d.started.Load() {
		return 0
	}
	return time.Duration(d.expiry.Load() - monoNow())
}

func (d *Deadline) everPinged() bool {
	return d.pinged.Load()
}
