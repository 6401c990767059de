// Package config loads the TOML-backed run configuration read by
// cmd/rvsim: memory sizes, the max-cycles guard, and the
// trace/statistics toggles. It never alters the architectural semantics
// of internal/asm or internal/cpu — it only configures the host.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration document.
type Config struct {
	Execution struct {
		MaxCycles uint64 `toml:"max_cycles"`
		IMEMSize  int    `toml:"imem_size"`
		DMEMSize  int    `toml:"dmem_size"`
	} `toml:"execution"`

	Trace struct {
		Enabled    bool   `toml:"enabled"`
		OutputFile string `toml:"output_file"`
	} `toml:"trace"`

	Statistics struct {
		Enabled    bool   `toml:"enabled"`
		OutputFile string `toml:"output_file"`
	} `toml:"statistics"`
}

// DefaultConfig returns the historical defaults: 32 KiB IMEM/DMEM
// (spec.md §6.5), an unlimited cycle count, and tracing/statistics off.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Execution.MaxCycles = 0
	cfg.Execution.IMEMSize = 32 * 1024
	cfg.Execution.DMEMSize = 32 * 1024
	cfg.Trace.Enabled = false
	cfg.Trace.OutputFile = "trace.log"
	cfg.Statistics.Enabled = false
	cfg.Statistics.OutputFile = "stats.json"
	return cfg
}

// Load reads and overlays a TOML config file onto the defaults. If path
// does not exist, the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if cfg.Execution.IMEMSize <= 0 || cfg.Execution.DMEMSize <= 0 {
		return nil, fmt.Errorf("config file %s: imem_size and dmem_size must be positive", path)
	}

	return cfg, nil
}
