package watchdog

import (
	"errors"
	"fmt"
	"time"
)

// StallError is passed to the [AbortFunc] when a sweep finds an entry
// whose deadline elapsed before it was pinged again.
type StallError struct {
	// Name of the stalled entry.
	Name string

	// Last state label the owner reported.
	State string

	// How long ago the deadline elapsed, as observed by the sweep.
	Overdue time.Duration
}

func (e StallError) Error() string {
	return fmt.Sprintf(
		"watchdog: %s failed to ping within its timeout (state=%q, overdue=%s)",
		e.Name, e.State, e.Overdue,
	)
}

// IsStall reports whether err is or wraps a [StallError].
func IsStall(err error) bool {
	var se StallError
	return errors.As(err, &se)
}
