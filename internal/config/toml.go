package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Unset keys stay nil so
// callers can tell them apart from explicit zero values.
type FileConfig struct {
	Model   ModelConfig   `toml:"model"`
	Profile ProfileConfig `toml:"profile"`
	Store   StoreConfig   `toml:"store"`
}

// ModelConfig maps model topology settings.
type ModelConfig struct {
	Config     *string  `toml:"config"`
	Periods    []int    `toml:"periods"`
	Adaptive   *bool    `toml:"adaptive"`
	Task       *string  `toml:"task"`
	DModel     *int     `toml:"d-model"`
	DFF        *int     `toml:"d-ff"`
	NumKernels *int     `toml:"num-kernels"`
	TopK       *int     `toml:"top-k"`
	Layers     *int     `toml:"layers"`
	Dropout    *float64 `toml:"dropout"`
	Seed       *int64   `toml:"seed"`
}

// ProfileConfig maps frequency profiling settings.
type ProfileConfig struct {
	SampleRate *float64 `toml:"sample-rate"`
	Threshold  *float64 `toml:"threshold"`
	Detrend    *bool    `toml:"detrend"`
	Window     *string  `toml:"window"`
}

// StoreConfig maps persistence settings.
type StoreConfig struct {
	Path *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
