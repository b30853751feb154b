// Package wtest holds helpers shared by tests in this module.
package wtest

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TimeFactor is a multiplier controlled by the
// WATCHDOG_TEST_TIME_FACTOR environment variable.
//
// Watchdog tests depend on real elapsed time,
// so a contended CI machine may need e.g. WATCHDOG_TEST_TIME_FACTOR=3
// to stretch every deadline and sleep in a test by the same ratio.
var TimeFactor ScaledDuration = 1

func init() {
	f := os.Getenv("WATCHDOG_TEST_TIME_FACTOR")
	if f == "" {
		return
	}

	n, err := strconv.Atoi(f)
	if err != nil {
		panic(fmt.Errorf(
			"failed to parse WATCHDOG_TEST_TIME_FACTOR (%q) into an integer: %w",
			f, err,
		))
	}

	if n <= 0 {
		panic(fmt.Errorf("WATCHDOG_TEST_TIME_FACTOR must be positive; got %d", n))
	}

	TimeFactor = ScaledDuration(n)
}

type ScaledDuration time.Duration

// ScaleMs returns ms in milliseconds, multiplied by [TimeFactor].
func ScaleMs(ms int64) ScaledDuration {
	return TimeFactor * ScaledDuration(ms) * ScaledDuration(time.Millisecond)
}

// D converts d to a time.Duration, for APIs such as SetTimeout.
func (d ScaledDuration) D() time.Duration {
	return time.Duration(d)
}

// Sleep calls [time.Sleep] with the given scaled duration.
func Sleep(dur ScaledDuration) {
	time.Sleep(time.Duration(dur))
}
