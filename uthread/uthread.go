// Package uthread implements a green-thread library: each thread runs on
// its own goroutine, the scheduler treats exactly one of them as running at
// a time, and a timer tick rotates that choice, with
// spawn/terminate/block/resume/sleep and quantum accounting. A thread the
// tick switches away from stops only at its next Checkpoint call.
package uthread

import "time"

// Init starts the library with the default MaxThreads/StackSize and arms
// the periodic preemption tick at the given quantum, in microseconds.
func Init(quantumUsecs int) error {
	return InitWithConfig(DefaultConfig(), quantumUsecs)
}

// InitWithConfig is Init with an explicit thread-pool size, for callers
// that need a smaller MAX_THREAD_NUM than the exercise default (see TS2).
func InitWithConfig(cfg Config, quantumUsecs int) error {
	if quantumUsecs <= 0 {
		return libErrorf("init - quantum_usecs must be positive, got %d", quantumUsecs)
	}
	d := time.Duration(quantumUsecs) * time.Microsecond
	if d < minQuantum {
		d = minQuantum
	}
	return globalScheduler.init(cfg, d)
}

// Spawn creates a new thread Ready to run entry, and returns its id. entry
// runs on its own goroutine; a thread body that wants to cooperate with
// preemption should call Checkpoint(tid) at points where it is safe to be
// switched out.
func Spawn(entry func()) (int, error) {
	return globalScheduler.spawn(entry)
}

// Terminate deletes tid. Terminating tid 0 exits the process.
func Terminate(tid int) error {
	return globalScheduler.terminate(tid)
}

// Block marks tid as user-blocked; it will not run again until Resume is
// called (and, if it is also sleeping, until the sleep counter reaches
// zero too). Blocking tid 0 always fails.
func Block(tid int) error {
	return globalScheduler.block(tid)
}

// Resume clears tid's user-blocked flag, readying it if its sleep counter
// is already zero.
func Resume(tid int) error {
	return globalScheduler.resume(tid)
}

// Sleep suspends the calling thread for n quanta. It must not be called by
// the main thread.
func Sleep(n int) error {
	return globalScheduler.sleep(n)
}

// GetTid returns the currently running thread's id.
func GetTid() int {
	return globalScheduler.getTid()
}

// GetTotalQuantums returns the number of quanta that have started across
// every thread since Init.
func GetTotalQuantums() int {
	return globalScheduler.getTotalQuantums()
}

// GetQuantums returns tid's personal quantum counter.
func GetQuantums(tid int) (int, error) {
	return globalScheduler.getQuantums(tid)
}

// Checkpoint is the cooperative preemption safepoint. A thread body that
// calls it regularly (with its own id, as returned by Spawn) will
// correctly stop running as soon as the scheduler has switched away from
// it, even though Go gives this library no way to interrupt a goroutine
// that never calls back into it.
func Checkpoint(tid int) {
	globalScheduler.checkpoint(tid)
}
