package uthread

import (
	"runtime"
	"sort"
	"sync"
	"time"
)

// killSignal is the resume value sent to a thread's context when its record
// is being deleted while it is Ready or Blocked (never while Running — a
// running thread deletes itself via the terminating path in yield). A
// goroutine that observes this value abandons its call stack immediately,
// the Go equivalent of the stack buffer simply never being scheduled again.
const killSignal = -1

// scheduler is the single process-wide green-thread runtime: exactly one
// active runtime per process. It is kept as a package-level value rather
// than an exported handle type because every C-ABI entry point is a bare
// function with no handle parameter.
type scheduler struct {
	mu          sync.Mutex
	cfg         Config
	initialized bool

	threads map[int]*thread
	ready   []int // FIFO of ready thread ids; running/blocked ids never appear here
	freeIDs *idHeap
	toFree  []int // ids terminated but not yet released back to freeIDs
	running int

	totalQuantums int

	ticker     *time.Ticker
	stopTicker chan struct{}
}

var globalScheduler = &scheduler{}

func (s *scheduler) init(cfg Config, quantum time.Duration) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return libErrorf("init - library already initialized")
	}

	main := newMainThread()
	s.cfg = cfg
	s.threads = map[int]*thread{mainThreadID: main}
	s.freeIDs = newIDHeap(cfg.MaxThreads)
	s.toFree = nil
	s.ready = nil
	s.running = mainThreadID
	s.totalQuantums = 1
	s.initialized = true
	s.stopTicker = make(chan struct{})
	s.mu.Unlock()

	log.Info("initialized", "max_threads", cfg.MaxThreads, "quantum", quantum)

	s.ticker = time.NewTicker(quantum)
	go s.clockLoop()
	return nil
}

func (s *scheduler) clockLoop() {
	for {
		select {
		case <-s.ticker.C:
			s.tick()
		case <-s.stopTicker:
			return
		}
	}
}

// tick is the virtual-time timer handler. It runs on the scheduler's own
// background goroutine, never on a thread's goroutine - the Go analogue of
// running in signal context, separate from every green thread's call stack.
func (s *scheduler) tick() {
	s.mu.Lock()

	s.wakeSleepersLocked()

	// Append the running thread to the FIFO tail before popping, the same
	// order yield uses, so a tick with nothing else ready rotates the
	// running thread back to itself instead of skipping the quantum
	// entirely: get_total_quantums must advance on every tick.
	old := s.threads[s.running]
	old.state = stateReady
	s.ready = append(s.ready, old.id)

	next, ok := s.popReadyLocked()
	if !ok {
		// Unreachable: old was just appended above, so ready is never empty.
		old.state = stateRunning
		s.mu.Unlock()
		return
	}

	s.totalQuantums++
	next.quantums++
	next.state = stateRunning
	s.running = next.id
	total := s.totalQuantums
	s.mu.Unlock()

	if next.id == old.id {
		// Nothing else was ready: old rotates back to itself without ever
		// parking, so there is no context to resume.
		log.Info("tick: self-rotation, no other runnable thread", "tid", old.id, "total_quantums", total)
		return
	}

	log.Info("tick: switching", "from", old.id, "to", next.id, "total_quantums", total)
	next.ctx.resume(Resumed)
}

// drainToFreeLocked releases every id pending deferred deletion back to
// freeIDs. A terminating thread's id is never released to the pool at the
// moment it terminates (see yield and terminate's non-running branch in
// ops.go); it sits in toFree until the next Spawn drains it here, so a
// terminating thread never races a concurrent Spawn for the same id.
func (s *scheduler) drainToFreeLocked() {
	for _, id := range s.toFree {
		s.freeIDs.release(id)
	}
	s.toFree = s.toFree[:0]
}

// wakeSleepersLocked runs the first half of the timer handler: every
// sleeping thread's counter is decremented, and any that reaches zero while
// not user-blocked is readied. Iteration is in ascending id order so that
// threads readied in the same tick enter the FIFO in a deterministic order.
func (s *scheduler) wakeSleepersLocked() {
	ids := make([]int, 0, len(s.threads))
	for id := range s.threads {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		t := s.threads[id]
		if t.sleepQuanta == 0 {
			continue
		}
		t.sleepQuanta--
		if t.sleepQuanta == 0 && !t.userBlocked {
			t.state = stateReady
			s.ready = append(s.ready, id)
		}
	}
}

func (s *scheduler) popReadyLocked() (*thread, bool) {
	if len(s.ready) == 0 {
		return nil, false
	}
	id := s.ready[0]
	s.ready = s.ready[1:]
	return s.threads[id], true
}

// yield is the voluntary context switch, invoked by Block/Sleep/Terminate
// on the goroutine of the thread giving up control. blockedIntent is
// ignored when terminating, since a terminating thread is never requeued
// anywhere.
func (s *scheduler) yield(blockedIntent, terminating bool) {
	s.mu.Lock()

	me := s.threads[s.running]
	switch {
	case terminating:
		// Not requeued anywhere; deleted below once a next thread is chosen.
	case blockedIntent:
		me.state = stateBlocked
	default:
		me.state = stateReady
		s.ready = append(s.ready, me.id)
	}

	next, ok := s.popReadyLocked()
	if !ok {
		// A correct caller ensures the FIFO is non-empty before yielding
		// with blocked intent; with nothing else runnable we keep the
		// caller running rather than deadlock the process. Not reachable
		// once the main thread exists, since it can never block or sleep.
		if terminating {
			delete(s.threads, me.id)
			s.toFree = append(s.toFree, me.id)
			s.mu.Unlock()
			log.Warn("terminate: no other runnable thread, exiting goroutine", "tid", me.id)
			runtime.Goexit()
		}
		me.state = stateRunning
		s.mu.Unlock()
		return
	}

	s.totalQuantums++
	next.quantums++
	next.state = stateRunning
	s.running = next.id

	if terminating {
		delete(s.threads, me.id)
		s.toFree = append(s.toFree, me.id)
	}
	s.mu.Unlock()

	log.Info("yield: switching", "from", me.id, "to", next.id, "terminating", terminating)
	next.ctx.resume(Resumed)

	if terminating {
		runtime.Goexit()
	}
	me.park()
}

// resetForTest tears the running scheduler down so a subsequent Init call
// starts clean. It is not part of the public API: the real library only
// ever runs one scheduler per process, but package tests each want their
// own.
func (s *scheduler) resetForTest() {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return
	}
	ticker := s.ticker
	stopCh := s.stopTicker
	s.initialized = false
	s.mu.Unlock()

	ticker.Stop()
	close(stopCh)

	s.mu.Lock()
	s.threads = nil
	s.ready = nil
	s.freeIDs = nil
	s.toFree = nil
	s.running = 0
	s.totalQuantums = 0
	s.ticker = nil
	s.stopTicker = nil
	s.mu.Unlock()
}

// onEntryReturn is the safety net for a thread whose entry function returns
// without calling Terminate itself: treated as an implicit self-terminate,
// the same way the exercise's own worker threads always end in EXIT.
func (s *scheduler) onEntryReturn(t *thread) {
	s.mu.Lock()
	if s.running != t.id {
		// Already terminated by someone else racing with the return; nothing to do.
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.yield(false, true)
}
