package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the optional TOML defaults file loaded via --config. Values
// pre-seed the flag defaults; flags set on the command line still win.
type Config struct {
	Defaults Defaults    `toml:"defaults"`
	Owner    OwnerConfig `toml:"owner"`
}

// Defaults mirror the generator-facing flags.
type Defaults struct {
	Size      int    `toml:"size"`
	Vertical  int    `toml:"vertical"`
	Brick     string `toml:"brick"` // default, tile, smooth, stud, micro
	Cull      bool   `toml:"cull"`
	Snap      bool   `toml:"snap"`
	LRGB      bool   `toml:"lrgb"`
	Glow      bool   `toml:"glow"`
	HDMap     bool   `toml:"hdmap"`
	NoCollide bool   `toml:"nocollide"`
	Greedy    bool   `toml:"greedy"`
}

// OwnerConfig names the save owner recorded in the output header.
type OwnerConfig struct {
	Name string `toml:"name"`
}

// loadConfig parses the TOML file at path.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Defaults.Size < 0 || cfg.Defaults.Vertical < 0 {
		return nil, fmt.Errorf("config %s: negative size or vertical", path)
	}
	return &cfg, nil
}
