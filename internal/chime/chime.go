// Package chime generates short synthetic sound cues for task actions.
// Sounds are synthesized procedurally (oscillator plus gain envelope per
// voice) so the feedback system carries no asset dependencies and timbres
// stay deterministic and parameterizable.
package chime

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SampleRate is the output sample rate for all rendered cues.
const SampleRate = 44100

// Synthesizer turns semantic task events into fire-and-forget audio
// emissions. The output resource has two states, uninitialized and active,
// and transitions once on the first triggered event. Audio is a
// non-essential enhancement: every failure is swallowed and the caller is
// never blocked or surfaced an error.
type Synthesizer struct {
	out Output
	log *logrus.Logger

	enabled bool
	active  bool
	failed  bool
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithLogger sets the logger used for activation diagnostics
func WithLogger(log *logrus.Logger) Option {
	return func(s *Synthesizer) { s.log = log }
}

// New creates an enabled Synthesizer emitting through out. Pass a Recorder
// in tests to capture emissions instead of producing real audio.
func New(out Output, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		out:     out,
		log:     logrus.StandardLogger(),
		enabled: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEnabled is the master mute switch. When disabled, all trigger methods
// are no-ops and the output backend is never touched.
func (s *Synthesizer) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// Enabled reports the master switch state.
func (s *Synthesizer) Enabled() bool {
	return s.enabled
}

// Activate performs the one-way uninitialized -> active transition. It is
// normally driven lazily by the first trigger call; tests may invoke it
// directly. Once active (or failed) further calls are no-ops.
func (s *Synthesizer) Activate() {
	if s.active || s.failed {
		return
	}
	if err := s.out.Start(SampleRate); err != nil {
		s.failed = true
		s.log.WithError(err).Debug("audio backend unavailable, feedback disabled")
		return
	}
	s.active = true
}

// Drain waits for pending playback to finish, up to timeout, when the
// output supports it. Callers that exit right after a trigger use this so
// the cue is not cut off by process teardown. A no-op before activation.
func (s *Synthesizer) Drain(timeout time.Duration) {
	if !s.active {
		return
	}
	if d, ok := s.out.(Drainer); ok {
		d.Drain(timeout)
	}
}

// PlayAdd emits a two-tone ascending cue: a deliberate arpeggio, the second
// tone beginning 50ms after the first.
func (s *Synthesizer) PlayAdd() {
	s.emit(
		voice{freq: 523.25, duration: 130 * time.Millisecond, attack: 8 * time.Millisecond, level: 0.35, shape: waveSine},
		voice{freq: 659.25, delay: 50 * time.Millisecond, duration: 150 * time.Millisecond, attack: 8 * time.Millisecond, level: 0.35, shape: waveSine},
	)
}

// PlayToggle emits an ascending success shimmer when a task was just
// completed, or a single lower tone when un-completed.
func (s *Synthesizer) PlayToggle(nowCompleted bool) {
	if nowCompleted {
		s.emit(
			voice{freq: 659.25, duration: 120 * time.Millisecond, attack: 6 * time.Millisecond, level: 0.35, shape: waveSine},
			voice{freq: 880, delay: 45 * time.Millisecond, duration: 180 * time.Millisecond, attack: 6 * time.Millisecond, level: 0.3, shape: waveSine},
		)
		return
	}
	s.emit(
		voice{freq: 293.66, duration: 160 * time.Millisecond, attack: 10 * time.Millisecond, level: 0.3, shape: waveSine},
	)
}

// PlayDelete emits a single percussive tone whose square timbre, not its
// pitch, sets it apart from the other cues.
func (s *Synthesizer) PlayDelete() {
	s.emit(
		voice{freq: 185, duration: 110 * time.Millisecond, attack: 2 * time.Millisecond, level: 0.25, shape: waveSquare},
	)
}

// PlayVictory emits the full-list-completion fanfare: five overlapping
// voices at harmonic ratios of a base frequency, staggered onsets, each
// fading in and out with a slight upward glide, lasting several seconds.
func (s *Synthesizer) PlayVictory() {
	const base = 261.63
	ratios := []float64{1, 1.25, 1.5, 2, 2.5}

	voices := make([]voice, 0, len(ratios))
	for i, r := range ratios {
		f := base * r
		voices = append(voices, voice{
			freq:     f,
			glide:    f * 1.03,
			delay:    time.Duration(i) * 160 * time.Millisecond,
			attack:   300 * time.Millisecond,
			duration: 2200 * time.Millisecond,
			level:    0.22,
			shape:    waveSine,
		})
	}
	s.emit(voices...)
}

// PlayCredits emits a soft two-tone ambient chime. Cosmetic easter egg,
// not coupled to any task mutation.
func (s *Synthesizer) PlayCredits() {
	s.emit(
		voice{freq: 392, duration: 900 * time.Millisecond, attack: 250 * time.Millisecond, level: 0.18, shape: waveSine},
		voice{freq: 523.25, delay: 300 * time.Millisecond, duration: 1100 * time.Millisecond, attack: 250 * time.Millisecond, level: 0.18, shape: waveSine},
	)
}

// emit premixes the voices into one PCM buffer and hands it to the output
// in a single non-blocking call. Staggered onsets are sample offsets inside
// the buffer, so no timers are involved and overlapping emissions each get
// an independent player.
func (s *Synthesizer) emit(voices ...voice) {
	if !s.enabled {
		return
	}
	s.Activate()
	if !s.active {
		return
	}
	if err := s.out.Play(mix(voices, SampleRate)); err != nil {
		s.log.WithError(err).Debug("audio emission failed")
	}
}
