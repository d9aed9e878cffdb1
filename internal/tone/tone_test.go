package tone

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

type fakeVoice struct {
	once    sync.Once
	onEnded func()
	stopped bool
}

func (v *fakeVoice) Stop() {
	v.stopped = true
	v.once.Do(v.onEnded)
}

// finish ends the voice as if its duration elapsed.
func (v *fakeVoice) finish() { v.once.Do(v.onEnded) }

type fakeContext struct {
	mu     sync.Mutex
	tones  []Tone
	voices []*fakeVoice
	err    error
}

func (c *fakeContext) Start(t Tone, onEnded func()) (Voice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	v := &fakeVoice{onEnded: onEnded}
	c.tones = append(c.tones, t)
	c.voices = append(c.voices, v)
	return v, nil
}

func (c *fakeContext) started() []Tone {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Tone(nil), c.tones...)
}

func (c *fakeContext) voice(i int) *fakeVoice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voices[i]
}

func TestNoAudioContext(t *testing.T) {
	e := NewEmitter(nil)
	require.ErrorIs(t, e.Beep(Default()), ErrNoAudioContext)
	require.False(t, e.Running())

	s := NewScheduler(e, clock.NewMock(), 0, nil)
	require.ErrorIs(t, s.BeepSlower(Default()), ErrNoAudioContext)
}

func TestBeepDefaultsAndValidation(t *testing.T) {
	ctx := &fakeContext{}
	e := NewEmitter(ctx)

	require.NoError(t, e.Beep(Tone{Volume: 0.5}))
	require.Equal(t, Tone{Frequency: 440, Duration: 100 * time.Millisecond, Volume: 0.5}, ctx.started()[0])

	require.ErrorIs(t, e.Beep(Tone{Frequency: -1}), ErrInvalidTone)
}

func TestBeepPreemptsCurrent(t *testing.T) {
	ctx := &fakeContext{}
	e := NewEmitter(ctx)

	require.NoError(t, e.Beep(Default()))
	require.True(t, e.Running())

	require.NoError(t, e.Beep(Tone{Frequency: 880}))
	require.True(t, ctx.voice(0).stopped)
	// the first voice's end must not silence the second
	require.True(t, e.Running())

	ctx.voice(1).finish()
	require.False(t, e.Running())
}

func TestBeepStartFailure(t *testing.T) {
	ctx := &fakeContext{err: errors.New("device busy")}
	e := NewEmitter(ctx)

	err := e.Beep(Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "device busy")
	require.False(t, e.Running())
}

func TestEmitterStop(t *testing.T) {
	ctx := &fakeContext{}
	e := NewEmitter(ctx)

	e.Stop()
	require.NoError(t, e.Beep(Default()))
	e.Stop()
	require.True(t, ctx.voice(0).stopped)
	require.False(t, e.Running())
}

func TestBeepSlowerImmediateWhenIdle(t *testing.T) {
	ctx := &fakeContext{}
	s := NewScheduler(NewEmitter(ctx), clock.NewMock(), 0, nil)

	require.NoError(t, s.BeepSlower(Default()))
	require.Len(t, ctx.started(), 1)
	require.Zero(t, s.Pending())
}

func TestBeepSlowerAccumulates(t *testing.T) {
	ctx := &fakeContext{}
	mock := clock.NewMock()
	s := NewScheduler(NewEmitter(ctx), mock, 0, nil)

	require.NoError(t, s.BeepSlower(Tone{Frequency: 100}))
	require.NoError(t, s.BeepSlower(Tone{Frequency: 200}))
	require.NoError(t, s.BeepSlower(Tone{Frequency: 300}))
	require.NoError(t, s.BeepSlower(Tone{Frequency: 400}))
	require.Equal(t, 90*time.Millisecond, s.Pending())
	require.Len(t, ctx.started(), 1)

	mock.Add(30 * time.Millisecond)
	require.Eventually(t, func() bool { return len(ctx.started()) == 2 }, time.Second, time.Millisecond)
	require.Equal(t, 200.0, ctx.started()[1].Frequency)

	mock.Add(60 * time.Millisecond)
	require.Eventually(t, func() bool { return len(ctx.started()) == 4 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, time.Millisecond)

	freqs := []float64{}
	for _, tn := range ctx.started() {
		freqs = append(freqs, tn.Frequency)
	}
	require.Equal(t, []float64{100, 200, 300, 400}, freqs)
}

func TestPCMContext(t *testing.T) {
	var buf bytes.Buffer
	mock := clock.NewMock()
	pcm := NewPCMContext(&buf, 8000, mock)
	e := NewEmitter(pcm)

	require.NoError(t, e.Beep(Tone{Frequency: 1000, Duration: 50 * time.Millisecond, Volume: 1}))
	require.True(t, e.Running())

	mock.Add(50 * time.Millisecond)
	require.Eventually(t, func() bool { return !e.Running() }, time.Second, time.Millisecond)
	require.Equal(t, 400*2, buf.Len())

	// a voice stopped early only writes what it sounded for
	require.NoError(t, e.Beep(Default()))
	require.True(t, e.Running())
	mock.Add(25 * time.Millisecond)
	e.Stop()
	require.False(t, e.Running())
	require.Equal(t, (400+200)*2, buf.Len())
	require.NoError(t, pcm.Err())
}

func TestPCMPreemptedVoiceIsCut(t *testing.T) {
	var buf bytes.Buffer
	mock := clock.NewMock()
	e := NewEmitter(NewPCMContext(&buf, 1000, mock))

	require.NoError(t, e.Beep(Tone{Frequency: 440, Duration: time.Second, Volume: 1}))
	mock.Add(100 * time.Millisecond)
	require.NoError(t, e.Beep(Tone{Frequency: 880, Duration: 50 * time.Millisecond, Volume: 1}))
	require.Equal(t, 100*2, buf.Len())

	mock.Add(50 * time.Millisecond)
	require.Eventually(t, func() bool { return !e.Running() }, time.Second, time.Millisecond)
	require.Equal(t, (100+50)*2, buf.Len())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPCMWriteError(t *testing.T) {
	mock := clock.NewMock()
	pcm := NewPCMContext(failingWriter{}, 1000, mock)
	e := NewEmitter(pcm)

	require.NoError(t, e.Beep(Tone{Frequency: 440, Duration: 10 * time.Millisecond, Volume: 1}))
	e.Stop()
	require.NoError(t, pcm.Err())

	require.NoError(t, e.Beep(Tone{Frequency: 440, Duration: 10 * time.Millisecond, Volume: 1}))
	mock.Add(10 * time.Millisecond)
	require.Eventually(t, func() bool { return pcm.Err() != nil }, time.Second, time.Millisecond)
	require.ErrorContains(t, pcm.Err(), "disk full")
}

func TestSynthesize(t *testing.T) {
	s := Synthesize(Tone{Frequency: 440, Duration: 100 * time.Millisecond, Volume: 1}, 44100)
	require.Len(t, s, 4410)
	require.Equal(t, int16(0), s[0])

	peak := int16(0)
	for _, v := range s {
		if v > peak {
			peak = v
		}
	}
	require.Greater(t, peak, int16(32000))

	for _, v := range Synthesize(Tone{Frequency: 440, Duration: 10 * time.Millisecond}, 44100) {
		require.Zero(t, v)
	}

	// loud tones clip instead of wrapping
	for _, v := range Synthesize(Tone{Frequency: 440, Duration: 10 * time.Millisecond, Volume: 10}, 44100) {
		require.GreaterOrEqual(t, v, int16(-32767))
	}
}

type scriptedChooser struct {
	mu       sync.Mutex
	outcomes []int
}

func (c *scriptedChooser) Choose() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o := c.outcomes[0]
	c.outcomes = c.outcomes[1:]
	return o, nil
}

type constRandint int64

func (r constRandint) Randint(start, end int64) (int64, error) { return int64(r), nil }

func TestBeepChoose(t *testing.T) {
	ctx := &fakeContext{}
	mock := clock.NewMock()
	s := NewScheduler(NewEmitter(ctx), mock, 0, nil)

	out, err := s.BeepChoose(&scriptedChooser{outcomes: []int{1, 0, 1}}, constRandint(5))
	require.NoError(t, err)

	mock.Add(5 * time.Millisecond)
	require.Equal(t, 1, <-out)

	mock.Add(time.Second)
	require.Equal(t, 0, <-out)

	mock.Add(time.Second)
	require.Equal(t, 1, <-out)

	mock.Add(time.Second)
	_, open := <-out
	require.False(t, open)

	require.Eventually(t, func() bool { return len(ctx.started()) == 3 }, time.Second, time.Millisecond)
	tones := ctx.started()
	require.Equal(t, 1500.0, tones[0].Frequency)
	require.Equal(t, 500.0, tones[1].Frequency)
	require.Equal(t, 1500.0, tones[2].Frequency)
	require.Equal(t, 50*time.Millisecond, tones[0].Duration)
}
