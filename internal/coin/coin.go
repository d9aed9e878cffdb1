// Package coin simulates a coin flip by majority vote over a random number
// of parity draws.
package coin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/xtding233/fscoin/internal/randint"
)

var ErrInvalidParams = errors.New("invalid coin params")

const (
	DefaultMaxTrials = 1023
	DefaultSampleMax = 1000

	// MaxTrialsLimit bounds the l+1 draws one Choose buffers.
	MaxTrialsLimit = 1<<16 - 1
)

// Integers is the random integer source the simulator draws from.
// *randint.Generator satisfies it.
type Integers interface {
	Integers(start, end int64, quantity int) ([]int64, error)
	Randint(start, end int64) (int64, error)
}

// Params controls one Choose call.
// Example: MaxTrials=1023, SampleMax=1000 → between 2 and 1024 draws from [1,1000].
type Params struct {
	MaxTrials int64 // trial count l is drawn from [1, MaxTrials]; l+1 draws are made
	SampleMax int64 // each draw is from [1, SampleMax]; keep it even so parity is balanced
}

// DefaultParams returns the stock 1023/1000 setup.
func DefaultParams() Params {
	return Params{MaxTrials: DefaultMaxTrials, SampleMax: DefaultSampleMax}
}

// Validate checks Params. SampleMax must be even so both parities are
// equally likely, and fit a 32-bit draw.
func (p Params) Validate() error {
	if p.MaxTrials < 1 || p.MaxTrials > MaxTrialsLimit {
		return fmt.Errorf("%w: max_trials must be in [1, %d]", ErrInvalidParams, MaxTrialsLimit)
	}
	if p.SampleMax < 2 {
		return fmt.Errorf("%w: sample_max must be >= 2", ErrInvalidParams)
	}
	if p.SampleMax%2 != 0 {
		return fmt.Errorf("%w: sample_max must be even", ErrInvalidParams)
	}
	if _, err := randint.NewRange(1, p.SampleMax).Width(); err != nil {
		return fmt.Errorf("%w: sample_max: %v", ErrInvalidParams, err)
	}
	return nil
}

// Tally counts draws by parity: index 0 for even, 1 for odd.
type Tally [2]int

// Winner returns 1 only on a strict odd majority; ties go to 0.
func (t Tally) Winner() int {
	if t[1] > t[0] {
		return 1
	}
	return 0
}

// Result is one Choose call in full.
type Result struct {
	Outcome int
	Draws   int // l+1
	Tally   Tally
}

// Simulator flips the coin. Params can be swapped at runtime.
type Simulator struct {
	gen Integers

	mu     sync.RWMutex
	params Params
}

// NewSimulator validates p and binds it to gen.
func NewSimulator(gen Integers, p Params) (*Simulator, error) {
	if gen == nil {
		return nil, fmt.Errorf("%w: nil integer source", ErrInvalidParams)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{gen: gen, params: p}, nil
}

// Params returns the active parameters.
func (s *Simulator) Params() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParams replaces the parameters used by subsequent calls.
func (s *Simulator) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	return nil
}

// Choose returns 0 or 1.
func (s *Simulator) Choose() (int, error) {
	r, err := s.ChooseDetailed()
	if err != nil {
		return 0, err
	}
	return r.Outcome, nil
}

// ChooseDetailed draws l from [1, MaxTrials], then l+1 values from
// [1, SampleMax], tallies their parity and picks the majority.
func (s *Simulator) ChooseDetailed() (Result, error) {
	p := s.Params()

	l, err := s.gen.Randint(1, p.MaxTrials)
	if err != nil {
		return Result{}, fmt.Errorf("draw trial count: %w", err)
	}
	draws := int(l) + 1
	vs, err := s.gen.Integers(1, p.SampleMax, draws)
	if err != nil {
		return Result{}, fmt.Errorf("draw samples: %w", err)
	}

	var t Tally
	for _, v := range vs {
		t[v%2]++
	}
	return Result{Outcome: t.Winner(), Draws: draws, Tally: t}, nil
}
