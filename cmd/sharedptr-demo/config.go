package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/pavanmanishd/sharedptr"
	"github.com/pavanmanishd/sharedptr/arena"
)

const (
	AllocatorHeap  = "heap"
	AllocatorArena = "arena"
)

// Config is the demo configuration file layout.
type Config struct {
	Sync      string `yaml:"sync"`      // "single" or "atomic"
	Allocator string `yaml:"allocator"` // "heap" or "arena"
	Arena     Arena  `yaml:"arena"`
	Logs      Logs   `yaml:"logs"`
}

type Arena struct {
	ChunkSize int `yaml:"chunk_size"`
	MaxBytes  int `yaml:"max_bytes"`
}

type Logs struct {
	Level string `yaml:"level"` // zerolog level name
}

func defaultConfig() *Config {
	return &Config{
		Sync:      sharedptr.SingleThreaded.String(),
		Allocator: AllocatorHeap,
		Logs:      Logs{Level: zerolog.InfoLevel.String()},
	}
}

// LoadConfig reads path on top of the defaults. An empty path or a missing
// file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	path, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "resolve config path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read config yaml file %s", path)
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "unmarshal yaml from %s", path)
	}
	if _, err = cfg.SyncMode(); err != nil {
		return nil, err
	}
	if cfg.Allocator != AllocatorHeap && cfg.Allocator != AllocatorArena {
		return nil, errors.Errorf("unknown allocator: '%s'", cfg.Allocator)
	}
	return cfg, nil
}

// SyncMode maps the sync key to a sharedptr.SyncMode.
func (c *Config) SyncMode() (sharedptr.SyncMode, error) {
	switch c.Sync {
	case "", sharedptr.SingleThreaded.String():
		return sharedptr.SingleThreaded, nil
	case sharedptr.Atomic.String():
		return sharedptr.Atomic, nil
	default:
		return 0, errors.Errorf("unknown sync mode: '%s'", c.Sync)
	}
}

// NewAllocator builds the configured allocation strategy. Atomic blocks may
// be freed from any goroutine, so they get the mutex-guarded arena.
func (c *Config) NewAllocator() sharedptr.Allocator {
	if c.Allocator != AllocatorArena {
		return sharedptr.HeapAllocator{}
	}
	cfg := arena.Config{ChunkSize: c.Arena.ChunkSize, MaxBytes: c.Arena.MaxBytes}
	if c.Sync == sharedptr.Atomic.String() {
		return arena.NewSafeWithConfig(cfg)
	}
	return arena.NewWithConfig(cfg)
}
