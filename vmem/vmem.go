// Package vmem implements a hierarchical virtual-memory address translator
// with demand paging and cyclical-distance frame replacement, over a fixed
// k-ary page-table tree whose shape is set at Initialize time.
package vmem

import "sync"

type machine struct {
	mu          sync.Mutex
	cfg         Config
	st          *store
	tr          *translator
	initialized bool
}

var globalMachine = &machine{}

// Initialize sets up the translator with the given width constants and
// swap file path, zeroing the root frame. It may be called again after a
// prior Initialize to start a fresh address space (the exercise's VMinitialize
// is idempotent in that sense: each call resets the whole machine).
func Initialize(cfg Config, swapFilePath string) {
	m := globalMachine
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg = cfg
	m.st = newStore(cfg, swapFilePath)
	m.tr = newTranslator(cfg, m.st)
	m.tr.initialize()
	m.initialized = true
	log.Info("initialized", "virtual_address_width", cfg.VirtualAddressWidth,
		"offset_width", cfg.OffsetWidth, "tables_depth", cfg.TablesDepth, "num_frames", cfg.NumFrames)
}

func (m *machine) inRange(va uint64) bool {
	return va < uint64(1)<<uint(m.cfg.VirtualAddressWidth)
}

// Read translates va and returns the word stored there. It fails with a
// *LibraryError, leaving the tree unchanged, if va is out of range.
func Read(va uint64) (word, error) {
	m := globalMachine
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.inRange(va) {
		log.Warn("read: out-of-range virtual address", "va", va)
		return 0, libErrorf("read: virtual address %d out of range", va)
	}

	phys := m.tr.translate(int(va))
	return m.st.PMread(phys/m.cfg.pageSize(), phys%m.cfg.pageSize()), nil
}

// Write translates va and stores v there. Same failure contract as Read.
func Write(va uint64, v word) error {
	m := globalMachine
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.inRange(va) {
		log.Warn("write: out-of-range virtual address", "va", va)
		return libErrorf("write: virtual address %d out of range", va)
	}

	phys := m.tr.translate(int(va))
	m.st.PMwrite(phys/m.cfg.pageSize(), phys%m.cfg.pageSize(), v)
	return nil
}
