// internal/poller/types.go
package poller

import "time"

// ReadBlock describes one Modbus read geometry.
// Geometry only: no semantics.
type ReadBlock struct {
	FC       uint8
	Address  uint16
	Quantity uint16
}

// BlockResult is the raw result of a single read.
type BlockResult struct {
	FC       uint8
	Address  uint16
	Quantity uint16

	// Exactly one of these is used depending on FC.
	Bits      []bool   // FC 1,2
	Registers []uint16 // FC 3,4
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	UnitID string
	At     time.Time

	Blocks []BlockResult
	Err    error // non-nil means the poll cycle failed
}

// Heartbeat state labels reported by a running poller.
// The label in effect when the watchdog fires shows where the loop was stuck.
const (
	StateStarting   = "starting"
	StatePolling    = "polling"
	StateDelivering = "delivering"
	StateIdle       = "idle"
)
