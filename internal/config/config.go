// Package config assembles the miner's settings from CLI flags and an
// optional TOML file (spec §6, SPEC_FULL §A.2).
package config

import (
	"fmt"
	"os"

	"github.com/naoina/toml"
)

// Algorithm selects the solver family.
type Algorithm string

// Transport selects the front-end.
type Transport string

const (
	Blake  Algorithm = "blake"
	Cuckoo Algorithm = "cuckoo"

	HTTP    Transport = "http"
	Stratum Transport = "stratum"
)

// Config is the fully-resolved set of settings a Run needs: exactly one
// transport and one algorithm, bound together (spec §4.6).
type Config struct {
	Transport Transport `toml:"transport"`

	// HTTP transport.
	ListenPort uint16 `toml:"listen_port"`
	SubmitPort uint16 `toml:"submit_port"`

	// Stratum transport.
	StratumAddr string `toml:"stratum_addr"`
	StratumID   string `toml:"stratum_id"`
	StratumPass string `toml:"stratum_pass"`

	Jobs uint64 `toml:"jobs"`

	Algorithm Algorithm `toml:"algorithm"`

	// Cuckoo parameters.
	MaxVertex   int `toml:"max_vertex"`
	MaxEdge     int `toml:"max_edge"`
	CycleLength int `toml:"cycle_length"`

	Verbosity int `toml:"verbosity"`
}

// Default returns the baseline configuration flags are applied on top of.
func Default() Config {
	return Config{
		Transport:  HTTP,
		ListenPort: 8080,
		SubmitPort: 8081,
		Jobs:       1,
		Algorithm:  Blake,
		Verbosity:  3,
	}
}

// LoadFile reads a TOML config file into cfg, overwriting only the fields
// present in the file.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// Validate reports a configuration error (§A.2: process should exit 2,
// never panic, on a bad combination).
func (c Config) Validate() error {
	switch c.Transport {
	case HTTP:
		if c.ListenPort == 0 || c.SubmitPort == 0 {
			return fmt.Errorf("http transport requires listen_port and submit_port")
		}
	case Stratum:
		if c.StratumAddr == "" {
			return fmt.Errorf("stratum transport requires stratum_addr")
		}
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}

	switch c.Algorithm {
	case Blake:
	case Cuckoo:
		if c.MaxVertex <= 0 || c.MaxEdge <= 0 || c.CycleLength <= 0 {
			return fmt.Errorf("cuckoo algorithm requires max_vertex, max_edge and cycle_length")
		}
	default:
		return fmt.Errorf("unknown algorithm %q", c.Algorithm)
	}
	return nil
}
