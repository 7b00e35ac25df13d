package vmem

import (
	"os"
	"path/filepath"
	"testing"
)

func freshMachine(t *testing.T, cfg Config) string {
	t.Helper()
	swap := filepath.Join(t.TempDir(), "vmem.swap")
	Initialize(cfg, swap)
	return swap
}

func TestReadWriteRoundTripNoEviction(t *testing.T) {
	cfg := DefaultConfig() // V=20, O=5, D=3, F=6
	freshMachine(t, cfg)

	addrs := []uint64{0, 1 << 14}
	for i, va := range addrs {
		if err := Write(va, word(i+1)); err != nil {
			t.Fatalf("write va=%d: %v", va, err)
		}
	}
	for i, va := range addrs {
		got, err := Read(va)
		if err != nil {
			t.Fatalf("read va=%d: %v", va, err)
		}
		if got != word(i+1) {
			t.Fatalf("va=%d: got %d, want %d", va, got, i+1)
		}
	}
}

// TestDemandPagingAcrossEviction mirrors TS4/TS5: write to ten widely
// separated pages on a six-frame machine, forcing repeated eviction, then
// confirm every address still reads back its own last write.
func TestDemandPagingAcrossEviction(t *testing.T) {
	cfg := DefaultConfig()
	freshMachine(t, cfg)

	const n = 10
	addrs := make([]uint64, n)
	for i := 0; i < n; i++ {
		addrs[i] = uint64(i) * (1 << 14)
	}

	for i, va := range addrs {
		if err := Write(va, word(i)); err != nil {
			t.Fatalf("write va=%d: %v", va, err)
		}
	}
	for i, va := range addrs {
		got, err := Read(va)
		if err != nil {
			t.Fatalf("read va=%d: %v", va, err)
		}
		if got != word(i) {
			t.Fatalf("va=%d: got %d, want %d (eviction round-trip failed)", va, got, i)
		}
	}
}

func TestTwoPassEvictionRestoresOriginals(t *testing.T) {
	cfg := DefaultConfig()
	freshMachine(t, cfg)

	if err := Write(0, 1); err != nil {
		t.Fatalf("write va=0: %v", err)
	}
	if err := Write(1<<14, 2); err != nil {
		t.Fatalf("write va=2^14: %v", err)
	}

	// Touch enough new, far-apart pages to force at least two evictions on
	// a six-frame machine.
	for i := 2; i < 12; i++ {
		va := uint64(i) * (1 << 14)
		if err := Write(va, word(i)); err != nil {
			t.Fatalf("write va=%d: %v", va, err)
		}
	}

	got, err := Read(0)
	if err != nil || got != 1 {
		t.Fatalf("read va=0 after eviction: got %d, err %v, want 1", got, err)
	}
	got, err = Read(1 << 14)
	if err != nil || got != 2 {
		t.Fatalf("read va=2^14 after eviction: got %d, err %v, want 2", got, err)
	}
}

func TestOutOfRangeAddressFails(t *testing.T) {
	cfg := DefaultConfig()
	freshMachine(t, cfg)

	bad := uint64(1) << uint(cfg.VirtualAddressWidth)
	if _, err := Read(bad); err == nil {
		t.Fatalf("read of out-of-range va should fail")
	}
	if err := Write(bad, 7); err == nil {
		t.Fatalf("write of out-of-range va should fail")
	}
}

func TestCABIReturnCodes(t *testing.T) {
	defer os.Remove("vmem.swap")

	if got := VMinitialize(); got != 1 {
		t.Fatalf("VMinitialize() = %d, want 1", got)
	}

	if got := VMwrite(0, 42); got != 1 {
		t.Fatalf("VMwrite() = %d, want 1", got)
	}
	var out word
	if got := VMread(0, &out); got != 1 || out != 42 {
		t.Fatalf("VMread() = (%d, %d), want (1, 42)", got, out)
	}

	bad := uint64(1) << 30
	if got := VMwrite(bad, 1); got != 0 {
		t.Fatalf("VMwrite() out of range = %d, want 0", got)
	}
}

func TestCyclicalDistance(t *testing.T) {
	cases := []struct {
		p, target, n, want int
	}{
		{0, 0, 100, 0},
		{0, 50, 100, 50},
		{1, 99, 100, 2},
		{10, 20, 100, 10},
	}
	for _, c := range cases {
		if got := cyclicalDistance(c.p, c.target, c.n); got != c.want {
			t.Errorf("cyclicalDistance(%d, %d, %d) = %d, want %d", c.p, c.target, c.n, got, c.want)
		}
	}
}
