package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/grid/engine"
	"github.com/matzehuels/cardgrid/pkg/grid/perf"
)

// configFileName is the TOML config file looked up in the config directory
// when --config is not given.
const configFileName = "cardgrid.toml"

// fileConfig is the on-disk TOML configuration shape.
//
// Example:
//
//	[grid]
//	col_num = 12
//	row_height = 30.0
//	compact_on_remove = true
//
//	[grid.breakpoints]
//	lg = 1200
//	md = 996
//
//	[grid.cols]
//	lg = 12
//	md = 10
//
//	[history]
//	max_length = 50
//	autosave_seconds = 30
type fileConfig struct {
	Grid    grid.Config   `toml:"grid"`
	History historySection `toml:"history"`
	Perf    perfSection    `toml:"perf"`
}

type historySection struct {
	MaxLength       int `toml:"max_length"`
	AutosaveSeconds int `toml:"autosave_seconds"`
}

type perfSection struct {
	OptimizeThreshold int `toml:"optimize_threshold"`
}

// loadConfig reads the TOML config from path, or from the default config
// directory when path is empty. A missing default file yields the built-in
// defaults; a missing explicit file is an error.
func loadConfig(path string) (fileConfig, error) {
	cfg := fileConfig{Grid: grid.DefaultConfig()}

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFileName)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return fileConfig{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Grid.Validate(); err != nil {
		return fileConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// engineOptions converts the file config into engine construction options.
func (c fileConfig) engineOptions() []engine.Option {
	var opts []engine.Option
	if c.History.MaxLength > 0 {
		opts = append(opts, engine.WithHistoryLength(c.History.MaxLength))
	}
	if c.History.AutosaveSeconds > 0 {
		opts = append(opts, engine.WithAutoSave(time.Duration(c.History.AutosaveSeconds)*time.Second))
	}
	if c.Perf.OptimizeThreshold > 0 {
		opts = append(opts, engine.WithPerfOptions(perf.Options{OptimizeThreshold: c.Perf.OptimizeThreshold}))
	}
	return opts
}
