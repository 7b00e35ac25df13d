package vmem

import (
	"fmt"
	"os"
	"sync"
)

// word is the unit physical memory is addressed in.
type word = int64

// store is the physical memory array plus its backing store: a flat word
// array and a swap file accessed via WriteAt/ReadAt, keyed by page number
// rather than by pid+page since this translator serves a single address
// space.
type store struct {
	frames   []word // len == numFrames * pageSize
	pageSize int

	swapPath string
	swapMu   sync.Mutex
}

func newStore(cfg Config, swapPath string) *store {
	return &store{
		frames:   make([]word, cfg.NumFrames*cfg.pageSize()),
		pageSize: cfg.pageSize(),
		swapPath: swapPath,
	}
}

// PMread and PMwrite are infallible by contract: the frame/offset pair is
// always produced by the translator and is always in range.
func (s *store) PMread(frame, offset int) word {
	return s.frames[frame*s.pageSize+offset]
}

func (s *store) PMwrite(frame, offset int, v word) {
	s.frames[frame*s.pageSize+offset] = v
}

func (s *store) zeroFrame(frame int) {
	base := frame * s.pageSize
	for i := base; i < base+s.pageSize; i++ {
		s.frames[i] = 0
	}
}

// PMevict writes the page currently held in frame to the backing store at
// the slot reserved for that page number, then zeroes the frame. PMrestore
// does the reverse. Both are infallible by contract: a failure here is a
// host I/O problem, reported as a system error, not a translation failure.
func (s *store) PMevict(frame, page int) {
	s.swapMu.Lock()
	defer s.swapMu.Unlock()

	f, err := os.OpenFile(s.swapPath, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		systemError("opening swap file %s: %v", s.swapPath, err)
	}
	defer f.Close()

	buf := make([]byte, s.pageSize*8)
	base := frame * s.pageSize
	for i := 0; i < s.pageSize; i++ {
		putWord(buf[i*8:], s.frames[base+i])
	}

	offset := int64(page) * int64(s.pageSize*8)
	if _, err := f.WriteAt(buf, offset); err != nil {
		systemError("writing swap page %d: %v", page, err)
	}

	log.Info("evicted page to backing store", "page", page, "frame", frame)
	s.zeroFrame(frame)
}

func (s *store) PMrestore(frame, page int) {
	s.swapMu.Lock()
	defer s.swapMu.Unlock()

	f, err := os.OpenFile(s.swapPath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		systemError("opening swap file %s: %v", s.swapPath, err)
	}
	defer f.Close()

	buf := make([]byte, s.pageSize*8)
	offset := int64(page) * int64(s.pageSize*8)
	n, err := f.ReadAt(buf, offset)
	if err != nil && n == 0 {
		// Page was never written to swap: a brand new page, restored as zeros.
		log.Info("restoring never-written page as zero", "page", page, "frame", frame)
		s.zeroFrame(frame)
		return
	}

	base := frame * s.pageSize
	for i := 0; i < s.pageSize; i++ {
		s.frames[base+i] = getWord(buf[i*8:])
	}
	log.Info("restored page from backing store", "page", page, "frame", frame)
}

func putWord(b []byte, v word) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func getWord(b []byte) word {
	var v word
	for i := 0; i < 8; i++ {
		v |= word(b[i]) << (8 * i)
	}
	return v
}

func (s *store) String() string {
	return fmt.Sprintf("store{frames=%d, pageSize=%d}", len(s.frames)/s.pageSize, s.pageSize)
}
