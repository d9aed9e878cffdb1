package main

import (
	"fmt"
	"os"

	"github.com/xtding233/fscoin/internal/coin"
	"github.com/xtding233/fscoin/internal/config"
	"github.com/xtding233/fscoin/internal/idalloc"
	"github.com/xtding233/fscoin/internal/kvstore"
	"github.com/xtding233/fscoin/internal/logging"
	"github.com/xtding233/fscoin/internal/randint"
)

// app is the set of components one command runs against.
type app struct {
	cfg    config.Config
	logger *logging.Logger

	gen   *randint.Generator
	sim   *coin.Simulator
	store *kvstore.Store
	ids   *idalloc.Allocator
}

// newApp wires everything from cfg. withStore opens the configured backend;
// commands that never touch storage skip it.
func newApp(cfg config.Config, withStore bool) (*app, error) {
	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	src := randint.DefaultSource()
	if cfg.Random.Seed != 0 {
		src = randint.NewSeededSource(cfg.Random.Seed)
		logger.Warn("using seeded random source; output is replayable", "seed", cfg.Random.Seed)
	}
	a.gen = randint.New(src)

	if a.sim, err = coin.NewSimulator(a.gen, cfg.CoinParams()); err != nil {
		return nil, err
	}

	if !withStore {
		a.ids = idalloc.New()
		return a, nil
	}

	backend, err := kvstore.Open(kvstore.Kind(cfg.Storage.Backend), cfg.Storage.Path,
		kvstore.WithLogger(logger.With("module", "kvstore")))
	if err != nil {
		return nil, err
	}
	a.store = kvstore.New(backend)

	if cfg.IDs.Persist {
		a.ids, err = idalloc.NewPersistent(a.store, cfg.IDs.Key, logger.With("module", "idalloc"))
		if err != nil {
			a.store.Close()
			return nil, fmt.Errorf("id allocator: %w", err)
		}
	} else {
		a.ids = idalloc.New()
	}
	return a, nil
}

func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close store", "err", err)
	}
}
