package phosphor

import (
	"image/color"
	"testing"

	"github.com/nevisdale/chipvip/internal/bus"
	"github.com/stretchr/testify/assert"
)

func Test_Screen_Update(t *testing.T) {
	type testArgs struct {
		fade     bool
		rate     uint8
		frames   int
		expected []uint8
	}

	testDo := func(t *testing.T, in testArgs) {
		s := New(in.fade, in.rate)
		var frame bus.Frame
		frame[0] = 1
		s.Update(frame)
		assert.Equal(t, uint8(Full), s.Level(0))

		levels := []uint8{}
		for i := 0; i < in.frames; i++ {
			s.Update(bus.Frame{})
			levels = append(levels, s.Level(0))
		}
		assert.Equal(t, in.expected, levels)
		assert.Equal(t, uint8(0), s.Level(1), "never lit")
	}

	t.Run("fade rate 64", func(t *testing.T) {
		testDo(t, testArgs{fade: true, rate: 64, frames: 5, expected: []uint8{191, 127, 63, 0, 0}})
	})

	t.Run("no fade", func(t *testing.T) {
		testDo(t, testArgs{fade: false, rate: 64, frames: 2, expected: []uint8{0, 0}})
	})

	t.Run("zero rate fades at once", func(t *testing.T) {
		testDo(t, testArgs{fade: true, rate: 0, frames: 1, expected: []uint8{0}})
	})
}

func Test_Screen_Relight(t *testing.T) {
	s := New(true, 64)
	var frame bus.Frame
	frame[5] = 1

	s.Update(frame)
	s.Update(bus.Frame{})
	s.Update(frame)
	assert.Equal(t, uint8(Full), s.Level(5))
}

func Test_Screen_RGBA(t *testing.T) {
	s := New(true, 128)
	var frame bus.Frame
	frame[0] = 1
	frame[1] = 1
	s.Update(frame)
	frame[1] = 0
	s.Update(frame)

	on := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	off := color.RGBA{A: 0xff}
	dst := make([]byte, len(frame)*4)
	s.RGBA(dst, on, off)

	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, dst[0:4])
	assert.Equal(t, []byte{127, 127, 127, 0xff}, dst[4:8])
	assert.Equal(t, []byte{0, 0, 0, 0xff}, dst[8:12])

	// short buffers are filled as far as they go
	assert.NotPanics(t, func() { s.RGBA(make([]byte, 6), on, off) })
}
