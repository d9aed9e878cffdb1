package idalloc

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xtding233/fscoin/internal/kvstore"
)

func TestSequence(t *testing.T) {
	a := New()
	require.Equal(t, "1", a.NextID())
	require.Equal(t, "2", a.NextID())
	require.Equal(t, "3", a.NextID())
	require.Equal(t, uint64(3), a.Current())

	// independent allocators restart at 1
	require.Equal(t, "1", New().NextID())
}

func TestConcurrentUnique(t *testing.T) {
	a := New()

	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := a.NextID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, 800)
	require.Equal(t, uint64(800), a.Current())
}

func TestPersistentResumes(t *testing.T) {
	store := kvstore.New(kvstore.NewMemoryBackend())

	a, err := NewPersistent(store, "", nil)
	require.NoError(t, err)
	require.Equal(t, "1", a.NextID())
	require.Equal(t, "2", a.NextID())

	n, err := kvstore.GetOr[uint64](store, DefaultKey, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)

	b, err := NewPersistent(store, DefaultKey, nil)
	require.NoError(t, err)
	require.Equal(t, "3", b.NextID())
}

func TestPersistentBadCounter(t *testing.T) {
	store := kvstore.New(kvstore.NewMemoryBackend())
	require.NoError(t, store.Set("ids", "not a number"))

	_, err := NewPersistent(store, "ids", nil)
	var serr *kvstore.SerializationError
	require.True(t, errors.As(err, &serr))
}

func TestPersistFailureStillAllocates(t *testing.T) {
	backend := kvstore.NewMemoryBackend()
	store := kvstore.New(backend)

	a, err := NewPersistent(store, "ids", nil)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	id, err := a.NextIDErr()
	require.ErrorIs(t, err, kvstore.ErrClosed)
	require.Equal(t, "1", id)
	require.Equal(t, "2", a.NextID())
}
