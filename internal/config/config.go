/*
PURPOSE:
  Defines the configuration structure and loading logic for cep-bench.
  The run parameters are explicit and passed into the runner at call time.

REQUIREMENTS:
  User-specified:
  - Fixed postal code and endpoint set.
  - Trial count (default 10) and per-call timeout (default 3000 ms).

  Implementation-discovered:
  - Needs to support YAML parsing for the tunable fields.
  - PostalCode is never read from YAML; it stays hard-coded.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine, internal/telemetry
  - Dependencies: gopkg.in/yaml.v3, github.com/pkg/errors

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default files fall back to defaults silently.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Validate() before handing the config to the engine.

USAGE:
  cfg, err := config.Load("cep_bench.yaml")

RELATED FILES:
  - internal/cli/run.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPostalCode is the CEP every run looks up.
const DefaultPostalCode = "69023003"

// Config represents the full configuration for cep-bench.
type Config struct {
	PostalCode string `yaml:"-"`
	TrialCount int    `yaml:"trial_count"`
	TimeoutMS  int    `yaml:"timeout_ms"`
	// ExcludeFailedFromMean drops failed calls from the latency statistics.
	ExcludeFailedFromMean bool `yaml:"exclude_failed_from_mean"`
	// OutputDir enables CSV/JSON export when non-empty.
	OutputDir  string `yaml:"output_dir"`
	OutputFile string `yaml:"output_file"`
	ZipkinURL  string `yaml:"zipkin_url"`
	UserAgent  string `yaml:"user_agent"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		PostalCode: DefaultPostalCode,
		TrialCount: 10,
		TimeoutMS:  3000,
		OutputFile: "cep_results.csv",
		UserAgent:  "cep-bench/0.1",
	}
}

// Timeout is the per-call governor duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Validate rejects values the runner cannot work with.
func (c *Config) Validate() error {
	if c.PostalCode == "" {
		return errors.New("postal code is empty")
	}
	if c.TrialCount < 0 {
		return errors.Errorf("trial_count must be >= 0, got %d", c.TrialCount)
	}
	if c.TimeoutMS <= 0 {
		return errors.Errorf("timeout_ms must be > 0, got %d", c.TimeoutMS)
	}
	if c.OutputDir != "" && c.OutputFile == "" {
		return errors.New("output_file is required when output_dir is set")
	}
	return nil
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "failed to read config file %s", path)
		}
	} else {
		found := false
		for _, name := range []string{"cep_bench.yaml", "cep-bench.yaml"} {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	return cfg, nil
}
