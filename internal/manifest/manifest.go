// Package manifest loads qir.toml run profiles.
package manifest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the parsed qir.toml.
type Config struct {
	Program ProgramConfig `toml:"program"`
	Run     RunConfig     `toml:"run"`
}

// ProgramConfig names the program and its expected register shape.
type ProgramConfig struct {
	Name    string `toml:"name"`
	Qubits  uint64 `toml:"qubits"`
	Results uint64 `toml:"results"`
}

// RunConfig configures one deterministic evaluator run.
type RunConfig struct {
	// Entry filters entry-point selection by function name.
	Entry string `toml:"entry"`
	// Results is the measurement bit pattern, MSB-first, e.g. "10".
	Results string `toml:"results"`
}

// Load reads and decodes a qir.toml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for _, r := range cfg.Run.Results {
		if r != '0' && r != '1' {
			return nil, fmt.Errorf("manifest run.results must contain only 0 and 1, got %q", cfg.Run.Results)
		}
	}
	return &cfg, nil
}
