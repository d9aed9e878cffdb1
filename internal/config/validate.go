package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/xtding233/fscoin/internal/kvstore"
	"github.com/xtding233/fscoin/internal/logging"
)

// Validate checks semantic constraints and reports every violation.
func Validate(cfg Config) error {
	var errs error
	add := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf(format, args...))
	}

	if cfg.Server.HTTPAddr == "" {
		add("server.http_addr must be set")
	}
	if cfg.Server.MaxQuantity < 1 {
		add("server.max_quantity must be >= 1")
	}
	if cfg.Server.MaxRuns < 1 {
		add("server.max_runs must be >= 1")
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := logging.ParseFormat(cfg.Log.Format); err != nil {
		errs = multierr.Append(errs, err)
	}

	switch kvstore.Kind(cfg.Storage.Backend) {
	case kvstore.KindMemory, "":
	case kvstore.KindBadger, kvstore.KindSQLite:
		if cfg.Storage.Path == "" {
			add("storage.path is required for backend=%s", cfg.Storage.Backend)
		}
	default:
		add("storage.backend must be one of: memory, badger, sqlite")
	}

	if err := cfg.CoinParams().Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}

	if cfg.Tone.Step <= 0 {
		add("tone.step must be > 0")
	}
	if cfg.Tone.SampleRate <= 0 {
		add("tone.sample_rate must be > 0")
	}

	if cfg.IDs.Persist && cfg.IDs.Key == "" {
		add("ids.key is required when ids.persist is set")
	}

	if errs != nil {
		return fmt.Errorf("config validation failed: %w", errs)
	}
	return nil
}
