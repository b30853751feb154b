package watchdog

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tamzrod/modbus-watchdog/internal/status"
)

// DefaultSleepInterval is the poller's pause between sweeps
// when [WithSleepInterval] is not given.
const DefaultSleepInterval = time.Second

// AbortFunc is invoked once, from the poller goroutine,
// when a sweep finds a stalled entry.
// The error is always a [StallError].
//
// The registry lock is released before the AbortFunc runs,
// so it may inspect the watchdog with [*Watchdog.Status] or [*Watchdog.Len].
// Production code should not return from an AbortFunc.
// An AbortFunc must not call [*Watchdog.Cleanup], which waits for the poller.
type AbortFunc func(err error)

// Option configures a Watchdog in [New].
type Option func(*Watchdog)

// WithSleepInterval sets the pause between sweeps.
// The interval is fixed for the lifetime of the Watchdog.
func WithSleepInterval(d time.Duration) Option {
	if d <= 0 {
		panic(fmt.Errorf("WithSleepInterval: interval must be positive; got %s", d))
	}
	return func(w *Watchdog) {
		w.sleepInterval = d
	}
}

// WithAbortFunc replaces [Terminate] as the reaction to a stall.
// Tests use it to record stalls instead of crashing the test binary.
func WithAbortFunc(fn AbortFunc) Option {
	if fn == nil {
		panic("WithAbortFunc: fn must not be nil")
	}
	return func(w *Watchdog) {
		w.abort = fn
	}
}

// Watchdog holds the registry of started entries
// and owns the poller goroutine that sweeps them.
//
// A Watchdog is created once by process setup and passed to whatever creates entries.
// Until Init is called, entries still register and deregister,
// but nothing sweeps them; this is how the watchdog is disabled.
type Watchdog struct {
	log *slog.Logger

	sleepInterval time.Duration
	abort         AbortFunc

	// mu guards entries. Every mutation and every sweep holds it,
	// and nothing else is done while holding it.
	mu      sync.Mutex
	entries map[*Entry]struct{}

	// lifeMu serializes Init and Cleanup.
	lifeMu sync.Mutex

	// The poller is also loaded by Run, which must not take lifeMu
	// since Cleanup holds lifeMu while waiting for the poller to exit.
	poller atomic.Pointer[poller]
}

// New returns a Watchdog with an empty registry and no running poller.
func New(log *slog.Logger, opts ...Option) *Watchdog {
	w := &Watchdog{
		log: log,

		sleepInterval: DefaultSleepInterval,
		abort:         Terminate,

		entries: make(map[*Entry]struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Init starts the poller goroutine.
// Calling Init while already initialized is a no-op.
func (w *Watchdog) Init() {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()

	if w.poller.Load() != nil {
		return
	}

	p := newPoller(w.sleepInterval, w.Run)
	w.poller.Store(p)
	go p.Run()

	w.log.Info("Watchdog started", "sleep_interval", w.sleepInterval)
}

// Initialized reports whether Init has been called without a subsequent Cleanup.
func (w *Watchdog) Initialized() bool {
	return w.poller.Load() != nil
}

// Cleanup stops the poller, waits for its loop to exit,
// and then discards the registry.
// A sweep already in progress runs to completion first.
// Cleanup without a prior Init is a no-op.
func (w *Watchdog) Cleanup() {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()

	p := w.poller.Swap(nil)
	if p == nil {
		return
	}
	p.Stop()

	w.mu.Lock()
	n := len(w.entries)
	clear(w.entries)
	w.mu.Unlock()

	w.log.Info("Watchdog stopped", "discarded_entries", n)
}

// Add registers e. Adding an entry that is already registered is a no-op.
// Owners normally call [*Entry.Start] instead.
func (w *Watchdog) Add(e *Entry) {
	if e == nil {
		return
	}

	w.mu.Lock()
	w.entries[e] = struct{}{}
	w.mu.Unlock()
}

// Remove deregisters e. Removing an absent entry is a no-op.
// Owners normally call [*Entry.Stop] instead.
func (w *Watchdog) Remove(e *Entry) {
	if e == nil {
		return
	}

	w.mu.Lock()
	delete(w.entries, e)
	w.mu.Unlock()
}

// Len reports the number of registered entries.
func (w *Watchdog) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Run performs one sweep over the registry.
//
// If every registered entry is alive, Run reports true.
// Otherwise it asks the poller to stop, logs the stall,
// invokes the AbortFunc with a [StallError] for one stalled entry,
// and reports false if the AbortFunc returns.
// Which stalled entry is reported is unspecified.
//
// Run is called by the poller; application code has no reason to call it.
func (w *Watchdog) Run() (ok bool) {
	w.mu.Lock()

	var stalled *Entry
	for e := range w.entries {
		if !e.IsAlive() {
			stalled = e
			break
		}
	}
	if stalled == nil {
		w.mu.Unlock()
		return true
	}

	// No further sweeps, even if the AbortFunc returns.
	if p := w.poller.Load(); p != nil {
		p.RequestStop()
	}

	err := StallError{
		Name:    stalled.name,
		State:   stalled.State(),
		Overdue: -stalled.deadline.Remaining(),
	}
	watched := w.namesLocked()
	w.mu.Unlock()

	w.log.Error(
		"Watchdog detected stall",
		"entry", err.Name,
		"state", err.State,
		"overdue", err.Overdue,
		"timeout", stalled.Timeout(),
		"watched", watched,
	)

	w.abort(err)
	return false
}

// Status returns a snapshot of every registered entry, sorted by name.
func (w *Watchdog) Status() []status.Snapshot {
	w.mu.Lock()
	out := make([]status.Snapshot, 0, len(w.entries))
	for e := range w.entries {
		out = append(out, e.Snapshot())
	}
	w.mu.Unlock()

	slices.SortFunc(out, func(a, b status.Snapshot) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// namesLocked returns the sorted names of registered entries.
// w.mu must be held.
func (w *Watchdog) namesLocked() []string {
	names := make([]string, 0, len(w.entries))
	for e := range w.entries {
		names = append(names, e.name)
	}
	slices.Sort(names)
	return names
}
