package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Load applies the YAML files in paths over the defaults, in order, then the
// environment, then validates. Missing files are skipped.
func Load(paths ...string) (Config, error) {
	cfg := Default()
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := readYAML(p, &cfg); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", p, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// readYAML decodes path over cfg; keys absent from the file keep their value.
func readYAML(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
