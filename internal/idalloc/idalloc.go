// Package idalloc hands out consecutive string identifiers: "1", "2", ...
//
// An Allocator is only unique within itself. The persistent variant keeps its
// counter in a kvstore.Store so it resumes after a restart.
package idalloc

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/xtding233/fscoin/internal/kvstore"
	"github.com/xtding233/fscoin/internal/logging"
)

// DefaultKey is where the persistent allocator keeps its counter.
const DefaultKey = "count"

// Allocator is a sequential id counter, safe for concurrent use.
type Allocator struct {
	mu      sync.Mutex
	counter uint64

	store  *kvstore.Store // nil for a process-local allocator
	key    string
	logger *logging.Logger
}

// New returns a process-local allocator starting at "1".
func New() *Allocator {
	return &Allocator{logger: logging.NewNop()}
}

// NewPersistent loads the counter stored under key (DefaultKey if empty) and
// saves it back after every allocation.
func NewPersistent(store *kvstore.Store, key string, logger *logging.Logger) (*Allocator, error) {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	counter, err := kvstore.GetOr[uint64](store, key, 0)
	if err != nil {
		return nil, fmt.Errorf("load id counter: %w", err)
	}
	return &Allocator{counter: counter, store: store, key: key, logger: logger}, nil
}

// NextID returns the next identifier. Persistence failures are logged.
func (a *Allocator) NextID() string {
	id, err := a.NextIDErr()
	if err != nil {
		a.logger.Error("failed to persist id counter", "err", err, "key", a.key, "id", id)
	}
	return id
}

// NextIDErr is NextID, also reporting a failure to persist the counter. The
// returned id is valid either way.
func (a *Allocator) NextIDErr() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.counter++
	id := strconv.FormatUint(a.counter, 10)
	if a.store == nil {
		return id, nil
	}
	if err := a.store.Set(a.key, a.counter); err != nil {
		return id, err
	}
	return id, nil
}

// Current returns the last identifier handed out, 0 if none.
func (a *Allocator) Current() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counter
}
