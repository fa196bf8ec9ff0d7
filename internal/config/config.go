// Package config loads the demo driver's runtime configuration from an
// optional YAML file, then lets command-line flags override it.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the parameters that shape a bptree.Store. Fanout and
// BlockSize are fixed for the lifetime of a given index file: changing
// either after creation makes the file unloadable (ErrParameterMismatch).
type Config struct {
	DataDir   string `yaml:"data_dir"`
	Fanout    int    `yaml:"fanout"`
	BlockSize int    `yaml:"block_size"`
	CacheSize int    `yaml:"cache_size"`
	ChanceMax int    `yaml:"chance_max"`
}

// Load reads a YAML config file from path. If path is empty or the file
// does not exist, it returns a zero Config and a nil error -- callers are
// expected to follow up with Resolve to fill in defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close config file %q: %v\n", path, closeErr)
		}
	}()
	data, err := io.ReadAll(f)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Resolve fills in defaults for any zero-valued field and validates the
// result. BlockSize must be large enough to hold Fanout separators (8
// bytes each) and identifiers (4 bytes each).
func (c Config) Resolve() (Config, error) {
	if c.Fanout <= 0 {
		c.Fanout = 4
	}
	if c.BlockSize <= 0 {
		c.BlockSize = 128
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 64
	}
	if c.ChanceMax <= 0 {
		c.ChanceMax = 8
	}
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.BlockSize < c.Fanout*12 {
		return c, fmt.Errorf("config: block_size %d too small for fanout %d (need >= %d)", c.BlockSize, c.Fanout, c.Fanout*12)
	}
	return c, nil
}
