package randint

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand/v2"
)

// Source abstract: anything that fills a buffer with random bytes.
type Source interface {
	io.Reader
}

// crypto random : default source
type cryptoSource struct{}

func (cryptoSource) Read(p []byte) (int, error) { return cryptoRand.Read(p) }

func DefaultSource() Source { return cryptoSource{} }

// Replicable source (e.g. Monte Carlo, tests)
type seededSource struct {
	r   *rand.Rand
	buf [8]byte
	n   int // unread bytes left in buf
}

// NewSeededSource returns a deterministic byte source backed by PCG.
// Not safe for concurrent use.
func NewSeededSource(seed uint64) Source {
	return &seededSource{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededSource) Read(p []byte) (int, error) {
	for i := range p {
		if s.n == 0 {
			binary.LittleEndian.PutUint64(s.buf[:], s.r.Uint64())
			s.n = len(s.buf)
		}
		p[i] = s.buf[len(s.buf)-s.n]
		s.n--
	}
	return len(p), nil
}

// NewSeed draws a seed for NewSeededSource from crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := cryptoRand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
