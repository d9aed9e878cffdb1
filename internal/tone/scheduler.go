package tone

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/xtding233/fscoin/internal/logging"
)

// DefaultStep is how much later each overlapping beep is pushed back.
const DefaultStep = 30 * time.Millisecond

// Scheduler delays beeps that would cut off an audible one. Each overlapping
// call adds Step to the pending wait, so a burst plays Step apart. Deferred
// beeps always fire; there is no cancellation.
type Scheduler struct {
	emitter *Emitter
	clock   clock.Clock
	step    time.Duration
	logger  *logging.Logger

	mu   sync.Mutex
	wait time.Duration
}

// NewScheduler wraps emitter. Zero step means DefaultStep; nil clk the wall
// clock; nil logger discards.
func NewScheduler(emitter *Emitter, clk clock.Clock, step time.Duration, logger *logging.Logger) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	if step <= 0 {
		step = DefaultStep
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{emitter: emitter, clock: clk, step: step, logger: logger}
}

// BeepSlower plays t now if nothing is audible, otherwise after the pending
// wait plus one step. Errors from a deferred beep are logged.
func (s *Scheduler) BeepSlower(t Tone) error {
	s.mu.Lock()
	if s.wait < 0 {
		s.wait = 0
	}
	if !s.emitter.Running() {
		s.mu.Unlock()
		return s.emitter.Beep(t)
	}
	s.wait += s.step
	delay := s.wait
	s.mu.Unlock()

	s.clock.AfterFunc(delay, func() {
		if err := s.emitter.Beep(t); err != nil {
			s.logger.Warn("deferred beep failed", "err", err, "frequency", t.Frequency)
		}
		s.mu.Lock()
		s.wait -= s.step
		s.mu.Unlock()
	})
	return nil
}

// Pending returns the wait a new overlapping beep would add to.
func (s *Scheduler) Pending() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wait
}

// Chooser picks 0 or 1.
type Chooser interface {
	Choose() (int, error)
}

// Randint draws an integer from an inclusive range.
type Randint interface {
	Randint(start, end int64) (int64, error)
}

const (
	chooseBeeps    = 3
	chooseSpacing  = time.Second
	chooseJitterMs = 1023
	chooseHighFreq = 1500.0
	chooseLowFreq  = 500.0
	chooseDuration = 50 * time.Millisecond
)

// BeepChoose announces three coin flips, one per second plus a random
// 1..1023 ms jitter: 1500 Hz for 1, 500 Hz for 0. Each outcome is sent on
// the returned channel, which is closed after the third.
func (s *Scheduler) BeepChoose(c Chooser, r Randint) (<-chan int, error) {
	delays := make([]time.Duration, chooseBeeps)
	for i := range delays {
		jitter, err := r.Randint(1, chooseJitterMs)
		if err != nil {
			return nil, fmt.Errorf("draw beep delay: %w", err)
		}
		delays[i] = time.Duration(i)*chooseSpacing + time.Duration(jitter)*time.Millisecond
	}

	out := make(chan int, chooseBeeps)
	var wg sync.WaitGroup
	wg.Add(chooseBeeps)
	for _, d := range delays {
		s.clock.AfterFunc(d, func() {
			defer wg.Done()
			outcome, err := c.Choose()
			if err != nil {
				s.logger.Error("choose failed", "err", err)
				return
			}
			freq := chooseLowFreq
			if outcome == 1 {
				freq = chooseHighFreq
			}
			if err := s.BeepSlower(Tone{Frequency: freq, Duration: chooseDuration, Volume: DefaultVolume}); err != nil {
				s.logger.Warn("beep failed", "err", err, "outcome", outcome)
			}
			out <- outcome
		})
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}
