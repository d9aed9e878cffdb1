package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type settingsDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func backends(t *testing.T) map[Kind]func(t *testing.T) Backend {
	return map[Kind]func(t *testing.T) Backend{
		KindMemory: func(t *testing.T) Backend {
			return NewMemoryBackend()
		},
		KindBadger: func(t *testing.T) Backend {
			b, err := OpenBadger(filepath.Join(t.TempDir(), "badger"))
			require.NoError(t, err)
			return b
		},
		KindSQLite: func(t *testing.T) Backend {
			b, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.sqlite3"))
			require.NoError(t, err)
			return b
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for kind, open := range backends(t) {
		t.Run(string(kind), func(t *testing.T) {
			s := New(open(t))
			defer s.Close()

			var doc settingsDoc
			found, err := s.Get("settings", &doc)
			require.NoError(t, err)
			require.False(t, found)

			require.NoError(t, s.Set("settings", settingsDoc{Name: "coin", Count: 3}))
			found, err = s.Get("settings", &doc)
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, settingsDoc{Name: "coin", Count: 3}, doc)

			// overwrite
			require.NoError(t, s.Set("settings", settingsDoc{Name: "coin", Count: 4}))
			got, err := GetOr(s, "settings", settingsDoc{})
			require.NoError(t, err)
			require.Equal(t, 4, got.Count)

			require.NoError(t, s.Remove("settings"))
			found, err = s.Get("settings", &doc)
			require.NoError(t, err)
			require.False(t, found)

			// removing twice is fine
			require.NoError(t, s.Remove("settings"))
		})
	}
}

func TestGetOrDefaults(t *testing.T) {
	s := New(NewMemoryBackend())

	n, err := GetOr(s, "count", 7)
	require.NoError(t, err)
	require.Equal(t, 7, n)

	// a stored zero wins over a non-zero default
	require.NoError(t, s.Set("count", 0))
	n, err = GetOr(s, "count", 7)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	// a zero default is honored when absent
	b, err := GetOr(s, "flag", false)
	require.NoError(t, err)
	require.False(t, b)
}

func TestInvalidKey(t *testing.T) {
	s := New(NewMemoryBackend())

	_, err := s.Get("", new(int))
	require.ErrorIs(t, err, ErrInvalidKey)
	require.ErrorIs(t, s.Set("", 1), ErrInvalidKey)
	require.ErrorIs(t, s.Remove(""), ErrInvalidKey)
}

func TestSerializationErrors(t *testing.T) {
	s := New(NewMemoryBackend())

	var serr *SerializationError
	err := s.Set("ch", make(chan int))
	require.ErrorAs(t, err, &serr)
	require.Equal(t, "encode", serr.Op)

	require.NoError(t, s.Set("word", "hello"))
	var n int
	_, err = s.Get("word", &n)
	require.ErrorAs(t, err, &serr)
	require.Equal(t, "decode", serr.Op)
	require.Equal(t, "word", serr.Key)

	require.ErrorAs(t, s.SetRaw("bad", []byte("{")), &serr)
	require.NoError(t, s.SetRaw("good", []byte(`{"name":"x","count":1}`)))
	raw, found, err := s.GetRaw("good")
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `{"name":"x","count":1}`, string(raw))
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		kind Kind
		path string
	}{
		{kind: KindBadger, path: filepath.Join(dir, "badger")},
		{kind: KindSQLite, path: filepath.Join(dir, "kv.sqlite3")},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			b, err := Open(tc.kind, tc.path)
			require.NoError(t, err)
			s := New(b)
			require.NoError(t, s.Set("last", []int{1, 0, 1}))
			require.NoError(t, s.Close())

			b, err = Open(tc.kind, tc.path)
			require.NoError(t, err)
			s = New(b)
			defer s.Close()

			got, err := GetOr[[]int](s, "last", nil)
			require.NoError(t, err)
			require.Equal(t, []int{1, 0, 1}, got)
		})
	}
}

func TestOpenUnknownKind(t *testing.T) {
	_, err := Open("etcd", "")
	require.Error(t, err)

	b, err := Open(KindMemory, "")
	require.NoError(t, err)
	require.NoError(t, b.Close())

	_, _, err = b.Get("x")
	require.ErrorIs(t, err, ErrClosed)
}
