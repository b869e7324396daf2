// Package config loads checkdoc configuration from an optional YAML file
// with .env / environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds run defaults. CLI flags take precedence over everything here.
type Config struct {
	Ruleset string      `yaml:"ruleset"`
	Format  string      `yaml:"format"`
	Check   CheckConfig `yaml:"check"`
}

// CheckConfig holds defaults for the check command.
type CheckConfig struct {
	Include     []string
	RuleTimeout time.Duration
	Parallel    bool
}

// UnmarshalYAML accepts rule_timeout as a duration string ("5s", "750ms").
func (c *CheckConfig) UnmarshalYAML(value *yaml.Node) error {
	type raw struct {
		Include     []string `yaml:"include"`
		RuleTimeout string   `yaml:"rule_timeout"`
		Parallel    bool     `yaml:"parallel"`
	}
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}
	if len(r.Include) > 0 {
		c.Include = r.Include
	}
	c.Parallel = r.Parallel
	if r.RuleTimeout != "" {
		d, err := time.ParseDuration(r.RuleTimeout)
		if err != nil {
			return fmt.Errorf("invalid rule_timeout: %w", err)
		}
		c.RuleTimeout = d
	}
	return nil
}

// LoadConfig reads the config file at path. A missing file yields defaults;
// any other read or decode failure is an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := defaults()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if ruleset := os.Getenv("CHECKDOC_RULESET"); ruleset != "" {
		cfg.Ruleset = ruleset
	}
	if format := os.Getenv("CHECKDOC_FORMAT"); format != "" {
		cfg.Format = format
	}
	if timeout := os.Getenv("CHECKDOC_RULE_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, err
		}
		cfg.Check.RuleTimeout = d
	}
	if parallel := os.Getenv("CHECKDOC_PARALLEL"); parallel != "" {
		b, err := strconv.ParseBool(parallel)
		if err != nil {
			return nil, err
		}
		cfg.Check.Parallel = b
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{
		Ruleset: "ruleset.yaml",
		Format:  "checklist",
	}
	cfg.Check.Include = []string{"**/*.md"}
	cfg.Check.RuleTimeout = 5 * time.Second
	return cfg
}
