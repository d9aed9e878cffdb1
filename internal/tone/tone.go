// Package tone plays short sine beeps through an explicit audio context and
// spaces out overlapping beeps with a small additive delay.
package tone

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrNoAudioContext = errors.New("no audio context available")
	ErrInvalidTone    = errors.New("invalid tone")
)

const (
	DefaultFrequency = 440.0
	DefaultDuration  = 100 * time.Millisecond
	DefaultVolume    = 1.0
)

// Tone is one sine beep.
type Tone struct {
	Frequency float64       // Hz
	Duration  time.Duration // how long the voice sounds
	Volume    float64       // gain; values well above 1 distort
}

// Default returns a 440 Hz, 100 ms, full volume tone.
func Default() Tone {
	return Tone{Frequency: DefaultFrequency, Duration: DefaultDuration, Volume: DefaultVolume}
}

// normalize fills a zero frequency or duration with the defaults. Volume is
// left alone: zero is a valid, silent tone.
func (t Tone) normalize() (Tone, error) {
	if t.Frequency == 0 {
		t.Frequency = DefaultFrequency
	}
	if t.Duration == 0 {
		t.Duration = DefaultDuration
	}
	if t.Frequency < 0 || t.Duration < 0 || t.Volume < 0 {
		return t, fmt.Errorf("%w: %+v", ErrInvalidTone, t)
	}
	return t, nil
}

// Voice is a sounding tone.
type Voice interface {
	// Stop ends the voice early. Stopping an ended voice is a no-op.
	Stop()
}

// AudioContext starts voices. onEnded is called once, when the voice
// finishes or is stopped.
type AudioContext interface {
	Start(t Tone, onEnded func()) (Voice, error)
}

// Emitter plays one tone at a time; a new beep cuts off the previous one.
type Emitter struct {
	ctx AudioContext

	mu      sync.Mutex
	voice   Voice
	gen     uint64 // bumped on every Beep so stale end callbacks are ignored
	running bool
}

// NewEmitter binds an emitter to ctx. A nil ctx is allowed; Beep then fails
// with ErrNoAudioContext.
func NewEmitter(ctx AudioContext) *Emitter {
	return &Emitter{ctx: ctx}
}

// Beep stops whatever is playing and starts t.
func (e *Emitter) Beep(t Tone) error {
	if e.ctx == nil {
		return ErrNoAudioContext
	}
	t, err := t.normalize()
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.gen++
	gen := e.gen
	old := e.voice
	e.voice = nil
	e.running = true
	e.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	v, err := e.ctx.Start(t, func() { e.ended(gen) })

	e.mu.Lock()
	if err != nil {
		if e.gen == gen {
			e.running = false
		}
		e.mu.Unlock()
		return fmt.Errorf("start tone: %w", err)
	}
	if e.gen != gen {
		// a newer beep started meanwhile
		e.mu.Unlock()
		v.Stop()
		return nil
	}
	e.voice = v
	e.mu.Unlock()
	return nil
}

// Stop silences the current voice, if any.
func (e *Emitter) Stop() {
	e.mu.Lock()
	v := e.voice
	e.mu.Unlock()
	if v != nil {
		v.Stop()
	}
}

// Running reports whether a tone is audible.
func (e *Emitter) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Emitter) ended(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return
	}
	e.running = false
	e.voice = nil
}
