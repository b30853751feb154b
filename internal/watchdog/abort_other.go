//go:build !unix

package watchdog

// Terminate is the default [AbortFunc].
//
// It panics with err from the sweeping goroutine.
// The poller never recovers, so the panic crashes the process with a stack trace.
func Terminate(err error) {
	panic(err)
}
