// Package phosphor keeps a brightness level per pixel so that pixels which
// are switched off fade out over a few frames instead of blinking.
package phosphor

import (
	"image/color"

	"github.com/nevisdale/chipvip/internal/bus"
)

const Full = 0xff

type Screen struct {
	fade   bool
	rate   uint8
	levels bus.Frame
}

// New returns a screen losing rate levels per frame. Without fade a pixel
// goes dark as soon as it is switched off.
func New(fade bool, rate uint8) *Screen {
	if rate == 0 {
		rate = Full
	}
	return &Screen{fade: fade, rate: rate}
}

// Update feeds the next frame buffer.
func (s *Screen) Update(frame bus.Frame) {
	for i, p := range frame {
		switch {
		case p != 0:
			s.levels[i] = Full
		case !s.fade || s.levels[i] < s.rate:
			s.levels[i] = 0
		default:
			s.levels[i] -= s.rate
		}
	}
}

func (s Screen) Level(i int) uint8 {
	return s.levels[i]
}

// RGBA fills dst, 4 bytes per pixel, blending between off and on by level.
func (s Screen) RGBA(dst []byte, on, off color.RGBA) {
	for i, level := range s.levels {
		o := i * 4
		if o+3 >= len(dst) {
			return
		}
		dst[o+0] = blend(off.R, on.R, level)
		dst[o+1] = blend(off.G, on.G, level)
		dst[o+2] = blend(off.B, on.B, level)
		dst[o+3] = blend(off.A, on.A, level)
	}
}

func blend(from, to, level uint8) uint8 {
	return uint8((int(from)*(Full-int(level)) + int(to)*int(level)) / Full)
}
