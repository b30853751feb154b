// internal/status/constants.go
package status

// Health codes reported for a watched entry.
// The numbering follows the device-status register codes, so code 2
// (a device error) is reserved and never reported for an entry.

// HealthUnknown represents an entry that was never started.
const HealthUnknown uint16 = 0

// HealthOK represents an entry whose deadline has not elapsed.
const HealthOK uint16 = 1

// HealthStale represents an entry that missed its deadline.
const HealthStale uint16 = 3

// HealthDisabled represents a stopped entry.
const HealthDisabled uint16 = 4

// HealthString returns the log name of a health code.
func HealthString(code uint16) string {
	switch code {
	case HealthUnknown:
		return "unknown"
	case HealthOK:
		return "ok"
	case HealthStale:
		return "stale"
	case HealthDisabled:
		return "disabled"
	default:
		return "invalid"
	}
}
