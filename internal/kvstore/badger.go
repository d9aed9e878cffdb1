package kvstore

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"

	"github.com/xtding233/fscoin/internal/logging"
)

const (
	gcInterval     = 5 * time.Minute
	gcDiscardRatio = 0.5
)

var _ Backend = (*BadgerBackend)(nil)

// BadgerBackend persists values in a BadgerDB directory.
type BadgerBackend struct {
	logger *logging.Logger

	db *badger.DB
	gc *gcWorker
}

// OpenBadger opens (or creates) a badger database in dir. An empty dir
// keeps the database in memory.
func OpenBadger(dir string, opts ...Option) (*BadgerBackend, error) {
	o := applyOptions(opts)
	b := &BadgerBackend{logger: o.logger.With("backend", KindBadger)}

	bopts := badger.DefaultOptions(dir)
	if dir == "" {
		bopts = bopts.WithInMemory(true)
	}
	bopts = bopts.WithLogger(&badgerLogger{logger: b.logger})
	bopts = bopts.WithSyncWrites(true)
	bopts = bopts.WithCompression(options.None)

	var err error
	if b.db, err = badger.Open(bopts); err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	b.gc = newGCWorker(b.logger, b.db)

	return b, nil
}

func (b *BadgerBackend) Get(key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	if err := b.db.View(func(tx *badger.Txn) error {
		item, txErr := tx.Get([]byte(key))
		switch {
		case txErr == nil:
		case errors.Is(txErr, badger.ErrKeyNotFound):
			return nil
		default:
			return txErr
		}

		found = true
		return item.Value(func(val []byte) error {
			value = append([]byte{}, val...)
			return nil
		})
	}); err != nil {
		b.logger.Error("failed get",
			"err", err,
			"key", key,
		)
		return nil, false, err
	}

	return value, found, nil
}

func (b *BadgerBackend) Set(key string, value []byte) error {
	if err := b.db.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(key), value)
	}); err != nil {
		b.logger.Error("failed put",
			"err", err,
			"key", key,
		)
		return err
	}
	return nil
}

func (b *BadgerBackend) Delete(key string) error {
	if err := b.db.Update(func(tx *badger.Txn) error {
		return tx.Delete([]byte(key))
	}); err != nil {
		b.logger.Error("failed delete",
			"err", err,
			"key", key,
		)
		return err
	}
	return nil
}

func (b *BadgerBackend) Close() error {
	b.gc.Close()
	return b.db.Close()
}

// badgerLogger routes badger's printf-style logging into a structured logger.
type badgerLogger struct {
	logger *logging.Logger
}

func (l *badgerLogger) Errorf(format string, a ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, a...)))
}

func (l *badgerLogger) Warningf(format string, a ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, a...)))
}

func (l *badgerLogger) Infof(format string, a ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, a...)))
}

func (l *badgerLogger) Debugf(format string, a ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, a...)))
}

// gcWorker periodically runs value log GC until closed.
type gcWorker struct {
	logger *logging.Logger

	db *badger.DB

	closeOnce sync.Once
	closeCh   chan struct{}
	closedCh  chan struct{}
}

func newGCWorker(logger *logging.Logger, db *badger.DB) *gcWorker {
	gc := &gcWorker{
		logger:   logger,
		db:       db,
		closeCh:  make(chan struct{}),
		closedCh: make(chan struct{}),
	}

	go gc.worker()

	return gc
}

// Close halts the GC worker.
func (gc *gcWorker) Close() {
	gc.closeOnce.Do(func() {
		close(gc.closeCh)
		<-gc.closedCh
	})
}

func (gc *gcWorker) worker() {
	defer close(gc.closedCh)

	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	doGC := func() error {
		for {
			if err := gc.db.RunValueLogGC(gcDiscardRatio); err != nil {
				return err
			}
		}
	}

	for {
		select {
		case <-gc.closeCh:
			return
		case <-ticker.C:
		}

		err := doGC()
		switch {
		case err == nil, errors.Is(err, badger.ErrNoRewrite):
		default:
			gc.logger.Error("failed to GC value log",
				"err", err,
			)
		}
	}
}
