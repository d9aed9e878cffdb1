package tone

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const DefaultSampleRate = 44100

var _ AudioContext = (*PCMContext)(nil)

// PCMContext renders each tone as signed 16-bit little endian mono PCM into
// a writer, and keeps the voice alive for the tone's duration on a clock. A
// voice cut off early contributes only the samples it sounded for.
type PCMContext struct {
	sampleRate int
	clock      clock.Clock

	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewPCMContext writes to w at sampleRate (DefaultSampleRate if <= 0).
// A nil clk uses the wall clock.
func NewPCMContext(w io.Writer, sampleRate int, clk clock.Clock) *PCMContext {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if clk == nil {
		clk = clock.New()
	}
	return &PCMContext{sampleRate: sampleRate, clock: clk, w: w}
}

// Synthesize returns the samples of t at sampleRate.
func Synthesize(t Tone, sampleRate int) []int16 {
	n := int(math.Round(float64(sampleRate) * t.Duration.Seconds()))
	out := make([]int16, n)
	step := 2 * math.Pi * t.Frequency / float64(sampleRate)
	for i := range out {
		v := t.Volume * math.Sin(step*float64(i))
		// clip
		if v > 1 {
			v = 1
		}
		if v < -1 {
			v = -1
		}
		out[i] = int16(v * math.MaxInt16)
	}
	return out
}

// Start synthesizes t and returns its voice. Samples are written when the
// voice ends: in full after t.Duration, or cut at the elapsed time on Stop.
func (c *PCMContext) Start(t Tone, onEnded func()) (Voice, error) {
	v := &pcmVoice{
		ctx:     c,
		samples: Synthesize(t, c.sampleRate),
		started: c.clock.Now(),
		onEnded: onEnded,
	}
	v.timer = c.clock.AfterFunc(t.Duration, func() { v.finish(len(v.samples)) })
	return v, nil
}

// Err returns the first error hit while writing samples.
func (c *PCMContext) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *PCMContext) write(samples []int16) {
	if len(samples) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return
	}
	if err := binary.Write(c.w, binary.LittleEndian, samples); err != nil {
		c.err = fmt.Errorf("write pcm: %w", err)
	}
}

type pcmVoice struct {
	ctx     *PCMContext
	samples []int16
	started time.Time
	onEnded func()

	once  sync.Once
	timer *clock.Timer
}

func (v *pcmVoice) finish(n int) {
	v.once.Do(func() {
		v.ctx.write(v.samples[:n])
		v.onEnded()
	})
}

func (v *pcmVoice) Stop() {
	v.timer.Stop()
	elapsed := v.ctx.clock.Now().Sub(v.started)
	n := int(math.Round(elapsed.Seconds() * float64(v.ctx.sampleRate)))
	v.finish(max(0, min(n, len(v.samples))))
}
