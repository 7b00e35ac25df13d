package uthread

import (
	"time"

	"github.com/nimrodmls/huji-cs-operating-systems/internal/uconfig"
	"github.com/nimrodmls/huji-cs-operating-systems/internal/ulog"
)

var log = ulog.New("uthread")

const mainThreadID = 0

// Config holds the library's tunable constants, exposed as a real struct so
// they can also be loaded from a JSON file via LoadConfig.
type Config struct {
	MaxThreads int `json:"max_thread_num"`
	StackSize  int `json:"stack_size"`
}

// DefaultConfig mirrors the exercise's historical defaults.
func DefaultConfig() Config {
	return Config{MaxThreads: 100, StackSize: 4096}
}

// LoadConfig reads a Config from a JSON file, falling back to
// DefaultConfig's zero-value fields left unset by the file.
func LoadConfig(path string) (Config, error) {
	cfg, err := uconfig.Load[Config](path)
	if err != nil {
		return Config{}, err
	}
	if cfg.MaxThreads <= 0 {
		cfg.MaxThreads = DefaultConfig().MaxThreads
	}
	if cfg.StackSize <= 0 {
		cfg.StackSize = DefaultConfig().StackSize
	}
	return *cfg, nil
}

// minQuantum guards against a pathologically tiny configured quantum
// turning the ticker into a busy loop; it is only a defensive minimum for
// the real-time ticker, not a behavioral requirement.
const minQuantum = time.Microsecond
