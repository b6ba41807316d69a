// Package config loads the metastats YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/peekknuf/metastats/internal/bucket"
	"github.com/peekknuf/metastats/internal/catalog"
	"github.com/peekknuf/metastats/internal/profiler"
	"github.com/peekknuf/metastats/internal/score"
)

// DatabaseEnv overrides the database path when set.
const DatabaseEnv = "OPENDATALINK_DB"

// Default values applied when fields are absent from the config file.
const (
	DefaultPolicy = "tags"
	DefaultPlot   = "tagcounts.png"
	DefaultTop    = 10
)

// Config is the top-level configuration.
type Config struct {
	// Database is the path of the Open Data Link SQLite file.
	Database string `yaml:"database"`

	Policy PolicyConfig `yaml:"policy"`

	// Buckets lists bucket specs in ascending order, e.g. "0", "3-5", ">10".
	// Empty means one bucket per score from 0 to 10 plus ">10".
	Buckets []string `yaml:"buckets"`

	// Ratios are the "X of N" lines printed in the report.
	Ratios []RatioConfig `yaml:"ratios"`

	Output OutputConfig `yaml:"output"`
}

// PolicyConfig selects the scoring policy.
type PolicyConfig struct {
	// Preset is one of: tags | descriptive | scalar. Ignored when Scalar or
	// Multi are set.
	Preset    string   `yaml:"preset"`
	Scalar    []string `yaml:"scalar"`
	Multi     []string `yaml:"multi"`
	Delimiter string   `yaml:"delimiter"`
	// Items is one of: raw | non-empty.
	Items string `yaml:"items"`
}

// RatioConfig defines one population ratio. Exactly one of AnyOf or AllOf
// must be set.
type RatioConfig struct {
	Label string   `yaml:"label"`
	AnyOf []string `yaml:"any_of"`
	AllOf []string `yaml:"all_of"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	// Plot is the PNG path of the bar chart; "-" disables it.
	Plot     string `yaml:"plot"`
	Markdown bool   `yaml:"markdown"`
	// Top is how many of the most common categories and tags to list.
	Top int `yaml:"top"`
}

// Load reads the YAML config at path. An empty path yields the defaults.
// The OPENDATALINK_DB environment variable overrides the database path.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}
	if env := os.Getenv(DatabaseEnv); env != "" {
		cfg.Database = env
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Database: catalog.DefaultPath,
		Policy:   PolicyConfig{Preset: DefaultPolicy},
		Ratios: []RatioConfig{
			{Label: "Datasets with description", AnyOf: []string{"description"}},
			{Label: "Datasets with categories or tags", AnyOf: []string{"categories", "tags"}},
		},
		Output: OutputConfig{Plot: DefaultPlot, Top: DefaultTop},
	}
}

// validate checks structural constraints. Bucket layouts are parsed here but
// only checked for coverage by bucket.New.
func validate(cfg *Config) error {
	if cfg.Database == "" {
		return errors.New("database is required")
	}
	if _, err := cfg.ScoringPolicy(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	if _, err := bucket.ParseAll(cfg.Buckets); err != nil {
		return fmt.Errorf("buckets: %w", err)
	}
	for i, r := range cfg.Ratios {
		if r.Label == "" {
			return fmt.Errorf("ratios[%d]: label is required", i)
		}
		if (len(r.AnyOf) == 0) == (len(r.AllOf) == 0) {
			return fmt.Errorf("ratios[%d] %q: set exactly one of any_of or all_of", i, r.Label)
		}
	}
	if cfg.Output.Top < 0 {
		return errors.New("output.top must not be negative")
	}
	return nil
}

// ScoringPolicy builds the score.Policy described by the config.
func (c *Config) ScoringPolicy() (score.Policy, error) {
	var p score.Policy
	if len(c.Policy.Scalar) > 0 || len(c.Policy.Multi) > 0 {
		p = score.Policy{Scalar: c.Policy.Scalar, Multi: c.Policy.Multi}
	} else {
		preset := c.Policy.Preset
		if preset == "" {
			preset = DefaultPolicy
		}
		var err error
		if p, err = score.PolicyByName(preset); err != nil {
			return score.Policy{}, err
		}
	}
	p.Delimiter = c.Policy.Delimiter
	mode, err := score.ParseItemMode(c.Policy.Items)
	if err != nil {
		return score.Policy{}, err
	}
	p.Items = mode
	if err := p.Validate(); err != nil {
		return score.Policy{}, err
	}
	return p, nil
}

// BucketSpecs returns the configured bucket layout, or bucket.Default.
func (c *Config) BucketSpecs() ([]bucket.Spec, error) {
	if len(c.Buckets) == 0 {
		return bucket.Default(), nil
	}
	return bucket.ParseAll(c.Buckets)
}

// Predicate returns the record test for one ratio.
func (r RatioConfig) Predicate() profiler.Predicate {
	if len(r.AllOf) > 0 {
		return profiler.HasAll(r.AllOf...)
	}
	return profiler.HasAny(r.AnyOf...)
}
