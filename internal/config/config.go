// Package config loads and saves run configuration as YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 5.0
	DefaultProblem  = "exponential"
	DefaultBackend  = "host"
	DefaultStepper  = "euler"
)

type Config struct {
	Problem  string  `yaml:"problem"`
	Backend  string  `yaml:"backend"`
	Stepper  string  `yaml:"stepper"`
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Output   string  `yaml:"output"`
}

func Default() *Config {
	return &Config{
		Problem:  DefaultProblem,
		Backend:  DefaultBackend,
		Stepper:  DefaultStepper,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	return nil
}
