//go:build unix

package watchdog

import (
	"os"
	"syscall"
	"time"
)

// terminateGrace bounds how long Terminate waits for SIGQUIT to take effect.
const terminateGrace = 2 * time.Second

// Terminate is the default [AbortFunc].
//
// It raises SIGQUIT on the current process,
// so the Go runtime prints the stack of every goroutine and exits with status 2.
// That dump usually shows what the stalled goroutine is blocked on.
// If the signal is being handled by the program, Terminate exits with status 2
// after a short grace period.
func Terminate(error) {
	if err := syscall.Kill(os.Getpid(), syscall.SIGQUIT); err == nil {
		time.Sleep(terminateGrace)
	}
	os.Exit(2)
}
