// internal/status/snapshot.go
package status

import "time"

// Snapshot is a point-in-time view of one watched entry.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Name  string
	State string

	Health uint16

	Timeout time.Duration

	// Remaining is the time left before the deadline.
	// It is negative once the deadline has elapsed and zero for unstarted entries.
	Remaining time.Duration
}

// Stale returns the snapshots whose health is HealthStale, preserving order.
func Stale(snaps []Snapshot) []Snapshot {
	var out []Snapshot
	for _, s := range snaps {
		if s.Health == HealthStale {
			out = append(out, s)
		}
	}
	return out
}
