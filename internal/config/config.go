// Package config loads the YAML run configuration for the stepwise CLI.
package config

import (
	"os"

	"github.com/YuminosukeSato/stepwise/ingest"
	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"github.com/YuminosukeSato/stepwise/pkg/log"
	"gopkg.in/yaml.v3"
)

// DefaultMaxTerms matches the default of the interactive selector.
const DefaultMaxTerms = 9

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

type PlotsConfig struct {
	PValues      string `yaml:"p_values,omitempty"`
	Coefficients string `yaml:"coefficients,omitempty"`
}

type Config struct {
	Parameters        string          `yaml:"parameters"`
	Responses         string          `yaml:"responses"`
	Ensemble          string          `yaml:"ensemble,omitempty"`
	Response          string          `yaml:"response"`
	Columns           []string        `yaml:"columns,omitempty"`
	MaxTerms          int             `yaml:"max_terms"`
	ForceIn           []string        `yaml:"force_in,omitempty"`
	ForceOut          []string        `yaml:"force_out,omitempty"`
	InteractionDegree int             `yaml:"interaction_degree"`
	Aggregation       string          `yaml:"aggregation"`
	Filters           []ingest.Filter `yaml:"filters,omitempty"`
	LogLevel          string          `yaml:"log_level"`
	Output            string          `yaml:"output"`
	Plots             PlotsConfig     `yaml:"plots,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxTerms:    DefaultMaxTerms,
		Aggregation: string(ingest.AggregateSum),
		LogLevel:    "info",
		Output:      OutputTable,
	}
}

// LoadConfig reads path on top of DefaultConfig. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}

// Validate checks that the configuration describes a runnable fit.
func (c *Config) Validate() error {
	const op = "config.Validate"
	switch {
	case c.Parameters == "":
		return errors.NewConfigurationError(op, "parameters", "path is required", nil)
	case c.Responses == "":
		return errors.NewConfigurationError(op, "responses", "path is required", nil)
	case c.Response == "":
		return errors.NewConfigurationError(op, "response", "is required", nil)
	case c.MaxTerms < len(c.ForceIn):
		return errors.NewConfigurationError(op, "max_terms", "smaller than the number of force_in terms", c.MaxTerms)
	case c.InteractionDegree < 0:
		return errors.NewConfigurationError(op, "interaction_degree", "must not be negative", c.InteractionDegree)
	case c.Output != OutputTable && c.Output != OutputJSON:
		return errors.NewConfigurationError(op, "output", "expected table or json", c.Output)
	}
	if _, err := ingest.ParseAggregation(c.Aggregation); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for _, f := range c.Filters {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	for _, in := range c.ForceIn {
		for _, out := range c.ForceOut {
			if in == out {
				return errors.NewConfigurationError(op, "force_out", "term is also in force_in", in)
			}
		}
	}
	return nil
}
