// Package randint produces random integers in an inclusive range from a
// cryptographically secure byte source.
//
// Raw samples are 8, 16 or 32 bits wide, whichever is the smallest that can
// count every value in the range, and are scaled linearly onto the range:
//
//	result = totalRange / (2^width - 1) * n + start
//
// The linear map is an approximation of a uniform integer draw. Scaled
// returns it unchanged; Integers floors it and clamps the one raw value that
// lands past the end of the range.
package randint

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"sync"
)

var (
	ErrUnsupportedRange = errors.New("unable to get the correct bytes for the required random range")
	ErrInvalidQuantity  = errors.New("invalid quantity; must be >= 1")
)

// UnsupportedRangeError reports a range that no supported sample width covers.
type UnsupportedRangeError struct {
	Start, End int64
	Bits       int // bits needed to count every value in the range
}

func (e *UnsupportedRangeError) Error() string {
	return fmt.Sprintf("%s: [%d, %d] needs %d bits", ErrUnsupportedRange, e.Start, e.End, e.Bits)
}

func (e *UnsupportedRangeError) Unwrap() error { return ErrUnsupportedRange }

// Range is a normalized inclusive range, Start <= End.
type Range struct {
	Start, End int64
}

// NewRange orders start and end.
func NewRange(start, end int64) Range {
	if start > end {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

// span is End - Start, exact for any int64 pair.
func (r Range) span() uint64 { return uint64(r.End) - uint64(r.Start) }

// Width returns the sample width used for this range.
func (r Range) Width() (Width, error) {
	// total = span+1 overflows for the full int64 domain, so compare the span.
	s := r.span()
	if s >= 1<<32 {
		return 0, &UnsupportedRangeError{Start: r.Start, End: r.End, Bits: bits.Len64(s)}
	}
	w, _ := selectWidth(s + 1)
	return w, nil
}

// Generator draws scaled random integers from a Source.
type Generator struct {
	mu  sync.Mutex
	src Source
}

// New returns a generator reading from src; nil means crypto/rand.
func New(src Source) *Generator {
	if src == nil {
		src = DefaultSource()
	}
	return &Generator{src: src}
}

// raw fills quantity samples of the range's width.
func (g *Generator) raw(r Range, quantity int) ([]uint64, Width, error) {
	if quantity <= 0 {
		return nil, 0, ErrInvalidQuantity
	}
	w, err := r.Width()
	if err != nil {
		return nil, 0, err
	}

	buf := make([]byte, quantity*w.Bytes())
	g.mu.Lock()
	_, err = io.ReadFull(g.src, buf)
	g.mu.Unlock()
	if err != nil {
		return nil, 0, fmt.Errorf("read random bytes: %w", err)
	}

	out := make([]uint64, quantity)
	for i := range out {
		out[i] = w.decode(buf, i)
	}
	return out, w, nil
}

// Scaled returns quantity values of the plain linear map, without flooring.
// Values lie in [start, end+1]; the upper bound is hit only by the largest
// raw sample.
func (g *Generator) Scaled(start, end int64, quantity int) ([]float64, error) {
	r := NewRange(start, end)
	ns, w, err := g.raw(r, quantity)
	if err != nil {
		return nil, err
	}
	scale := (float64(r.span()) + 1) / float64(w.Max())
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = scale*float64(n) + float64(r.Start)
	}
	return out, nil
}

// Integers returns quantity integers in [min(start,end), max(start,end)].
func (g *Generator) Integers(start, end int64, quantity int) ([]int64, error) {
	r := NewRange(start, end)
	ns, w, err := g.raw(r, quantity)
	if err != nil {
		return nil, err
	}
	s := r.span()
	scale := (float64(s) + 1) / float64(w.Max())
	out := make([]int64, len(ns))
	for i, n := range ns {
		off := uint64(math.Floor(scale * float64(n)))
		if off > s {
			off = s
		}
		out[i] = int64(uint64(r.Start) + off)
	}
	return out, nil
}

// Randint returns a single integer in the range.
func (g *Generator) Randint(start, end int64) (int64, error) {
	v, err := g.Integers(start, end, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}
