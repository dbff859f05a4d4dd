package chime

import (
	"encoding/binary"
	"math"
	"time"
)

type waveform int

const (
	waveSine waveform = iota
	waveSquare
)

// voice describes one oscillator with its gain envelope.
type voice struct {
	freq     float64       // starting frequency in Hz
	glide    float64       // ending frequency; 0 means none
	delay    time.Duration // onset offset within the emission
	attack   time.Duration // linear fade-in time
	duration time.Duration // sounding time after onset, fade-out included
	level    float64       // peak amplitude, 0..1
	shape    waveform
}

// mix renders the voices into a single 16-bit little-endian mono PCM
// buffer. Phase is accumulated per sample so frequency glides stay
// continuous.
func mix(voices []voice, sampleRate int) []byte {
	var total time.Duration
	for _, v := range voices {
		if end := v.delay + v.duration; end > total {
			total = end
		}
	}
	n := int(total.Seconds() * float64(sampleRate))
	if n == 0 {
		return nil
	}

	samples := make([]float64, n)
	for _, v := range voices {
		renderVoice(samples, v, sampleRate)
	}

	pcm := make([]byte, 2*n)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(s*math.MaxInt16)))
	}
	return pcm
}

func renderVoice(samples []float64, v voice, sampleRate int) {
	start := int(v.delay.Seconds() * float64(sampleRate))
	count := int(v.duration.Seconds() * float64(sampleRate))
	attack := int(v.attack.Seconds() * float64(sampleRate))
	if attack > count {
		attack = count
	}

	endFreq := v.glide
	if endFreq == 0 {
		endFreq = v.freq
	}

	phase := 0.0
	for i := 0; i < count && start+i < len(samples); i++ {
		progress := float64(i) / float64(count)
		freq := v.freq + (endFreq-v.freq)*progress
		phase += 2 * math.Pi * freq / float64(sampleRate)

		var osc float64
		switch v.shape {
		case waveSquare:
			if math.Sin(phase) >= 0 {
				osc = 1
			} else {
				osc = -1
			}
		default:
			osc = math.Sin(phase)
		}

		env := 1.0
		if attack > 0 && i < attack {
			env = float64(i) / float64(attack)
		} else {
			// Linear fade from the end of the attack to silence.
			env = 1 - (float64(i-attack) / float64(count-attack))
		}

		samples[start+i] += osc * env * v.level
	}
}
