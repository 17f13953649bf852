package beeper

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

const (
	SampleRate    = 44100
	ToneFrequency = 440

	// output level of the square wave, full scale is 1
	toneVolume = 0.25
)

// square is a phase counter producing a 50% duty cycle wave.
type square struct {
	period int
	phase  int
}

func newSquare(sampleRate, freq int) square {
	period := sampleRate / freq
	if period < 2 {
		period = 2
	}
	return square{period: period}
}

// next returns +1 or -1 and advances one sample.
func (s *square) next() int {
	v := 1
	if s.phase >= s.period/2 {
		v = -1
	}
	s.phase++
	if s.phase >= s.period {
		s.phase = 0
	}
	return v
}

// Tone is an endless mono float32 little endian stream: a square wave while
// active, silence otherwise. Read runs on the audio thread, SetActive on the
// frame loop.
type Tone struct {
	active atomic.Bool
	wave   square
}

func NewTone(sampleRate, freq int) *Tone {
	return &Tone{wave: newSquare(sampleRate, freq)}
}

func (t *Tone) SetActive(active bool) {
	t.active.Store(active)
}

func (t *Tone) Active() bool {
	return t.active.Load()
}

func (t *Tone) Read(p []byte) (int, error) {
	n := len(p) / 4 * 4
	active := t.active.Load()

	for i := 0; i < n; i += 4 {
		var sample float32
		if active {
			sample = float32(t.wave.next()) * toneVolume
		} else {
			// restart the wave so every beep starts on the same edge
			t.wave.phase = 0
		}
		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(sample))
	}
	return n, nil
}
