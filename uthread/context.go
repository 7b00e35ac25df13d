package uthread

// Resume values carried across a Context switch. Suspended is the sentinel
// a thread would see on the "just saved" leg of a sigsetjmp-style dual
// return; Resumed is the default value used when nothing more specific is
// needed. Go's goroutine-plus-channel park/unpark collapses the dual return
// into a single blocking receive, so Suspended is never actually observed
// by calling code — it is kept only so the resume values stay
// self-documenting against the original contract.
const (
	Suspended = 0
	Resumed   = 1
)

// context is the machine-context primitive backing every green thread. Each
// thread owns one: its goroutine parks on resumeCh whenever the thread is
// not the one chosen to run, and is released by a value sent on resumeCh by
// whichever code performs the context switch.
type context struct {
	resumeCh chan int
}

func newContext() *context {
	return &context{resumeCh: make(chan int)}
}

// save blocks the calling goroutine until resumed, returning the value the
// resumer chose. This stands in for the combined sigsetjmp/siglongjmp pair:
// there is no separate "restore" call because parking and waking happen on
// the same channel operation.
func (c *context) save() int {
	return <-c.resumeCh
}

// resume hands control to the goroutine blocked in save, carrying r as the
// value it will observe. The caller must not hold the scheduler's mu while calling
// resume on a context that is not ready to receive, since resumeCh is
// unbuffered and resume blocks until the target goroutine is parked.
func (c *context) resume(r int) {
	c.resumeCh <- r
}

// tryResume hands control to the goroutine blocked in save if one is
// already parked, and otherwise drops r silently. Used where the target may
// still be running its own user code rather than parked - terminate's
// non-running branch can't tell which, and a blocking resume there would
// hang forever if the target hasn't reached save yet.
func (c *context) tryResume(r int) {
	select {
	case c.resumeCh <- r:
	default:
	}
}
