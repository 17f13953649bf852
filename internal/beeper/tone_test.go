package beeper

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readSamples(t *testing.T, tone *Tone, count int) []float32 {
	t.Helper()

	p := make([]byte, count*4)
	n, err := tone.Read(p)
	require.NoError(t, err)
	require.Equal(t, len(p), n)

	samples := make([]float32, count)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return samples
}

func Test_Tone(t *testing.T) {
	t.Run("silent until activated", func(t *testing.T) {
		tone := NewTone(8, 1)
		assert.False(t, tone.Active())
		assert.Equal(t, make([]float32, 16), readSamples(t, tone, 16))
	})

	t.Run("square wave", func(t *testing.T) {
		tone := NewTone(8, 1)
		tone.SetActive(true)

		hi, lo := float32(toneVolume), float32(-toneVolume)
		expected := []float32{hi, hi, hi, hi, lo, lo, lo, lo, hi, hi}
		assert.Equal(t, expected, readSamples(t, tone, 10))
	})

	t.Run("every beep starts on the rising edge", func(t *testing.T) {
		tone := NewTone(8, 1)
		tone.SetActive(true)
		readSamples(t, tone, 5)

		tone.SetActive(false)
		readSamples(t, tone, 1)
		tone.SetActive(true)
		assert.Equal(t, float32(toneVolume), readSamples(t, tone, 1)[0])
	})

	t.Run("partial samples are not written", func(t *testing.T) {
		tone := NewTone(SampleRate, ToneFrequency)
		n, err := tone.Read(make([]byte, 7))
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	t.Run("frequency above half the sample rate", func(t *testing.T) {
		s := newSquare(10, 100)
		assert.Equal(t, []int{1, -1, 1}, []int{s.next(), s.next(), s.next()})
	})
}
