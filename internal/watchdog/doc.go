// Package watchdog provides a liveness Watchdog that terminates the process
// when any watched activity stops sending heartbeats.
//
// Code that wants to be watched creates an [*Entry] from the Watchdog,
// calls [*Entry.Start] when the activity begins,
// calls [*Entry.Ping] at least once per configured timeout while it makes progress,
// and calls [*Entry.Stop] when it finishes.
//
// After [*Watchdog.Init], a background poller sweeps every registered entry
// once per sleep interval.
// If any entry's deadline has elapsed, the watchdog logs a single line describing the stall
// and invokes its [AbortFunc], which by default terminates the process.
// There is no recovery path: a stall is treated as a hang that may affect the whole process.
package watchdog
