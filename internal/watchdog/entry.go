package watchdog

import (
	"sync/atomic"
	"time"

	"github.com/tamzrod/modbus-watchdog/internal/status"
)

// UninitializedState is the state label of an Entry that has never been given one.
const UninitializedState = "uninitialized"

// Entry is a heartbeat handle for one watched activity.
//
// An Entry is owned by the goroutine driving the activity:
// only the owner calls Start, Ping, Stop and SetTimeout.
// The watchdog's poller only reads the entry.
type Entry struct {
	w    *Watchdog
	name string

	deadline Deadline

	// Latest state label, read by the poller when reporting a stall.
	state atomic.Pointer[string]
}

// NewEntry returns a stopped Entry that registers with w when started.
//
// NewEntry may be called on a nil *Watchdog.
// The resulting entry keeps its own deadline but never registers anywhere,
// which lets components run without watchdog supervision.
func (w *Watchdog) NewEntry(name string, timeout time.Duration) *Entry {
	e := &Entry{
		w:    w,
		name: name,
	}
	e.deadline.SetTimeout(timeout)

	s := UninitializedState
	e.state.Store(&s)
	return e
}

// Name returns the name given to NewEntry.
func (e *Entry) Name() string {
	return e.name
}

// State returns the latest non-empty label passed to Start or Ping.
func (e *Entry) State() string {
	return *e.state.Load()
}

// SetTimeout changes the heartbeat timeout applied from the next Ping.
func (e *Entry) SetTimeout(timeout time.Duration) {
	e.deadline.SetTimeout(timeout)
}

// Timeout returns the heartbeat timeout.
func (e *Entry) Timeout() time.Duration {
	return e.deadline.Timeout()
}

// IsAlive reports whether e is started and was pinged within its timeout.
func (e *Entry) IsAlive() bool {
	return e.deadline.IsAlive()
}

// Start pings e with the given state and then registers it with the watchdog.
//
// The deadline is armed before registration;
// the poller may sweep e as soon as it is registered.
// Calling Start again without an intervening Stop leaves a single registration.
func (e *Entry) Start(state string) {
	e.Ping(state)
	if e.w != nil {
		e.w.Add(e)
	}
}

// Ping restarts e's countdown.
// An empty state keeps the previous label,
// so frequent callers can refresh the timer without describing themselves again.
func (e *Entry) Ping(state string) {
	if state != "" {
		e.state.Store(&state)
	}
	e.deadline.Ping()
}

// Stop deregisters e and then halts its deadline.
// Stop is idempotent.
func (e *Entry) Stop() {
	if e.w != nil {
		e.w.Remove(e)
	}
	e.deadline.Stop()
}

// Do starts e with state, runs fn, and stops e when fn returns or panics.
// fn is responsible for calling Ping often enough.
func (e *Entry) Do(state string, fn func() error) error {
	e.Start(state)
	defer e.Stop()

	return fn()
}

// Snapshot returns a diagnostic view of e.
func (e *Entry) Snapshot() status.Snapshot {
	s := status.Snapshot{
		Name:      e.name,
		State:     e.State(),
		Timeout:   e.deadline.Timeout(),
		Remaining: e.deadline.Remaining(),
	}

	switch {
	case e.deadline.IsAlive():
		s.Health = status.HealthOK
	case e.deadline.Started():
		s.Health = status.HealthStale
	case e.deadline.everPinged():
		s.Health = status.HealthDisabled
	default:
		s.Health = status.HealthUnknown
	}
	return s
}
