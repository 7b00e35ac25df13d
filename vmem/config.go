package vmem

import (
	"github.com/nimrodmls/huji-cs-operating-systems/internal/ulog"
	"github.com/nimrodmls/huji-cs-operating-systems/internal/uconfig"
)

var log = ulog.New("vmem")

// Config holds the width constants that fix the shape of the page-table
// tree at startup. Exercise defaults: a 20-bit virtual address space with a
// 5-bit offset and three table levels over six physical frames.
type Config struct {
	VirtualAddressWidth int `json:"virtual_address_width"`
	OffsetWidth         int `json:"offset_width"`
	TablesDepth         int `json:"tables_depth"`
	NumFrames           int `json:"num_frames"`
}

func DefaultConfig() Config {
	return Config{
		VirtualAddressWidth: 20,
		OffsetWidth:         5,
		TablesDepth:         3,
		NumFrames:           6,
	}
}

// LoadConfig reads a Config from a JSON file, falling back to
// DefaultConfig's fields for anything left unset (zero) in the file.
func LoadConfig(path string) (Config, error) {
	def := DefaultConfig()
	cfg, err := uconfig.Load[Config](path)
	if err != nil {
		return Config{}, err
	}
	if cfg.VirtualAddressWidth <= 0 {
		cfg.VirtualAddressWidth = def.VirtualAddressWidth
	}
	if cfg.OffsetWidth <= 0 {
		cfg.OffsetWidth = def.OffsetWidth
	}
	if cfg.TablesDepth <= 0 {
		cfg.TablesDepth = def.TablesDepth
	}
	if cfg.NumFrames <= 0 {
		cfg.NumFrames = def.NumFrames
	}
	return *cfg, nil
}

// pageSize is 2^OffsetWidth words per frame.
func (c Config) pageSize() int { return 1 << c.OffsetWidth }

// numPages is the size of the virtual page-number space, 2^(V-O).
func (c Config) numPages() int { return 1 << (c.VirtualAddressWidth - c.OffsetWidth) }

// bitsPerLevel is the number of bits each table level consumes: every
// level index spans OffsetWidth bits, the same as the page offset.
func (c Config) bitsPerLevel() int { return c.OffsetWidth }
