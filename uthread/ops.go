package uthread

import (
	"os"
	"runtime"
)

func (s *scheduler) removeFromReadyLocked(tid int) {
	for i, id := range s.ready {
		if id == tid {
			s.ready = append(s.ready[:i], s.ready[i+1:]...)
			return
		}
	}
}

func (s *scheduler) spawn(entry func()) (int, error) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return 0, libErrorf("spawn - library not initialized")
	}
	s.drainToFreeLocked()
	id, ok := s.freeIDs.takeSmallest()
	if !ok {
		s.mu.Unlock()
		return 0, libErrorf("spawn - thread pool exhausted")
	}

	t := newThread(id, entry)
	s.threads[id] = t
	s.ready = append(s.ready, id)
	s.mu.Unlock()

	log.Info("spawned", "tid", id)
	return id, nil
}

// terminate implements every branch of the thread-teardown contract: exit
// the process for tid 0, hand off via yield for the running thread, and
// delete in place (then unblock the abandoned goroutine with killSignal)
// for a Ready or Blocked thread.
func (s *scheduler) terminate(tid int) error {
	if tid == mainThreadID {
		log.Info("terminate: main thread, exiting process")
		os.Exit(0)
	}

	s.mu.Lock()
	t, ok := s.threads[tid]
	if !ok {
		s.mu.Unlock()
		return libErrorf("terminate - no such thread %d", tid)
	}

	if tid == s.running {
		s.mu.Unlock()
		s.yield(false, true)
		return nil
	}

	if t.state == stateReady {
		s.removeFromReadyLocked(tid)
	}
	delete(s.threads, tid)
	s.toFree = append(s.toFree, tid)
	s.mu.Unlock()

	log.Info("terminate: deleted non-running thread", "tid", tid)
	// The target may not actually be parked yet: a thread demoted by a tick
	// keeps running user code until its own next Checkpoint call. A
	// non-blocking send avoids hanging on a goroutine that isn't listening
	// yet; checkpoint's own missing-record branch handles that case.
	t.ctx.tryResume(killSignal)
	return nil
}

func (s *scheduler) block(tid int) error {
	if tid == mainThreadID {
		return libErrorf("block - the main thread cannot be blocked")
	}

	s.mu.Lock()
	t, ok := s.threads[tid]
	if !ok {
		s.mu.Unlock()
		return libErrorf("block - no such thread %d", tid)
	}

	if tid == s.running {
		t.userBlocked = true
		s.mu.Unlock()
		s.yield(true, false)
		return nil
	}

	if t.state == stateBlocked {
		t.userBlocked = true
		s.mu.Unlock()
		return nil
	}

	s.removeFromReadyLocked(tid)
	t.state = stateBlocked
	t.userBlocked = true
	s.mu.Unlock()
	return nil
}

func (s *scheduler) resume(tid int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[tid]
	if !ok {
		return libErrorf("resume - no such thread %d", tid)
	}

	t.userBlocked = false
	if t.state == stateBlocked && t.sleepQuanta == 0 {
		t.state = stateReady
		s.ready = append(s.ready, tid)
	}
	return nil
}

// sleep yields with blocked intent for n > 0 quanta, to be re-readied by
// the timer handler's sleep-countdown. sleep(0) has nothing to count down,
// so it is a plain voluntary yield back to Ready instead of an indefinite
// block.
func (s *scheduler) sleep(n int) error {
	s.mu.Lock()
	if s.running == mainThreadID {
		s.mu.Unlock()
		return libErrorf("sleep - the main thread cannot sleep")
	}

	if n <= 0 {
		s.mu.Unlock()
		s.yield(false, false)
		return nil
	}

	me := s.threads[s.running]
	me.sleepQuanta = n
	s.mu.Unlock()

	s.yield(true, false)
	return nil
}

func (s *scheduler) getTid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *scheduler) getTotalQuantums() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalQuantums
}

func (s *scheduler) getQuantums(tid int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[tid]
	if !ok {
		return 0, libErrorf("get_quantums - no such thread %d", tid)
	}
	return t.quantums, nil
}

// checkpoint is the cooperative safepoint a thread body calls with its own
// id to participate correctly in preemption: if a timer tick has already
// reassigned "running" to someone else since this thread last checked, it
// parks here instead of racing its own state updates against whoever the
// scheduler now considers running. It loops because a woken thread can, in
// principle, be preempted again before it gets back here.
func (s *scheduler) checkpoint(tid int) {
	for {
		s.mu.Lock()
		if s.running == tid {
			s.mu.Unlock()
			return
		}
		t, ok := s.threads[tid]
		s.mu.Unlock()
		if !ok {
			runtime.Goexit()
		}
		t.park()
	}
}
