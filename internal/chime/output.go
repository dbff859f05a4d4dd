package chime

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Output is the audio backend port. The real implementation is Speaker;
// tests inject a Recorder.
type Output interface {
	// Start prepares the backend for playback at the given sample rate.
	// Called exactly once, on activation.
	Start(sampleRate int) error

	// Play schedules a 16-bit little-endian mono PCM buffer and returns
	// without waiting for playback to finish.
	Play(pcm []byte) error
}

// Drainer is implemented by outputs that can wait for pending playback.
// One-shot CLI invocations drain before exiting so a scheduled cue is not
// cut off by process teardown; the TUI never needs to.
type Drainer interface {
	Drain(timeout time.Duration)
}

// Speaker plays PCM through the system audio device via oto. Each Play call
// gets its own player so overlapping emissions sound concurrently.
type Speaker struct {
	mu      sync.Mutex
	ctx     *oto.Context
	players []*oto.Player
}

// NewSpeaker creates an unstarted Speaker.
func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Start implements Output. It does not wait for the device ready signal;
// oto buffers playback started before the device is ready.
func (s *Speaker) Start(sampleRate int) error {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, _, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	s.ctx = ctx
	return nil
}

// Play implements Output.
func (s *Speaker) Play(pcm []byte) error {
	if s.ctx == nil {
		return fmt.Errorf("speaker not started")
	}

	p := s.ctx.NewPlayer(bytes.NewReader(pcm))
	p.Play()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.players = append(s.players, p)
	return nil
}

// Drain blocks until every scheduled player has finished or the timeout
// elapses.
func (s *Speaker) Drain(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		s.pruneLocked()
		remaining := len(s.players)
		s.mu.Unlock()
		if remaining == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// pruneLocked closes players that have finished so they do not accumulate
// over a long session.
func (s *Speaker) pruneLocked() {
	live := s.players[:0]
	for _, p := range s.players {
		if p.IsPlaying() {
			live = append(live, p)
		} else {
			_ = p.Close()
		}
	}
	s.players = live
}

// Recorder is a test Output that records emissions instead of producing
// sound.
type Recorder struct {
	mu       sync.Mutex
	started  bool
	rate     int
	buffers  [][]byte
	drains   int
	startErr error
	playErr  error
}

// NewRecorder creates a Recorder. Use FailStart or FailPlay to simulate a
// broken audio backend.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailStart makes Start return err.
func (r *Recorder) FailStart(err error) { r.startErr = err }

// FailPlay makes Play return err.
func (r *Recorder) FailPlay(err error) { r.playErr = err }

// Start implements Output.
func (r *Recorder) Start(sampleRate int) error {
	if r.startErr != nil {
		return r.startErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = true
	r.rate = sampleRate
	return nil
}

// Play implements Output.
func (r *Recorder) Play(pcm []byte) error {
	if r.playErr != nil {
		return r.playErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffers = append(r.buffers, pcm)
	return nil
}

// Drain implements Drainer. The recorder has no pending playback; it only
// counts the call.
func (r *Recorder) Drain(timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drains++
}

// Drains returns the number of Drain calls recorded.
func (r *Recorder) Drains() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drains
}

// Started reports whether Start was called.
func (r *Recorder) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Emissions returns the number of Play calls recorded.
func (r *Recorder) Emissions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffers)
}

// Buffer returns the i-th recorded PCM buffer.
func (r *Recorder) Buffer(i int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buffers[i]
}

// Verify interface compliance at compile time
var (
	_ Output  = (*Speaker)(nil)
	_ Output  = (*Recorder)(nil)
	_ Drainer = (*Speaker)(nil)
	_ Drainer = (*Recorder)(nil)
)
