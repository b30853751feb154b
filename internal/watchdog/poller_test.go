package watchdog

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tamzrod/modbus-watchdog/internal/wtest"
)

func TestPoller_StopIsPrompt(t *testing.T) {
	t.Parallel()

	var sweeps atomic.Int32
	p := newPoller(time.Hour, func() bool {
		sweeps.Add(1)
		return true
	})

	go p.Run()

	// The first sweep happens without waiting for the interval.
	require.Eventually(t, func() bool {
		return sweeps.Load() == 1
	}, wtest.ScaleMs(500).D(), time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()
	_ = wtest.ReceiveSoon(t, stopped)

	// Stop may be called again.
	p.Stop()
	require.Equal(t, int32(1), sweeps.Load())
}

func TestPoller_exitsAfterFailedSweep(t *testing.T) {
	t.Parallel()

	var sweeps atomic.Int32
	p := newPoller(time.Millisecond, func() bool {
		return sweeps.Add(1) < 3
	})

	go p.Run()
	_ = wtest.ReceiveSoon(t, p.done)
	require.Equal(t, int32(3), sweeps.Load())
}

func TestPoller_RequestStopFromSweep(t *testing.T) {
	t.Parallel()

	var p *poller
	p = newPoller(time.Millisecond, func() bool {
		p.RequestStop()
		return true
	})

	go p.Run()
	_ = wtest.ReceiveSoon(t, p.done)
}
