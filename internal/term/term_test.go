package term

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/nevisdale/chipvip/internal/bus"
	"github.com/nevisdale/chipvip/internal/chip8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFrontend(t *testing.T, program ...uint8) (*Frontend, *bytes.Buffer) {
	t.Helper()

	s := chip8.NewSystem(chip8.QuirksModern, nil)
	require.NoError(t, s.LoadROM(program))

	var out bytes.Buffer
	// one instruction per frame
	f := New(bus.New(s, bus.FrameRate), strings.NewReader(""), &out)
	return f, &out
}

func Test_DecodeKey(t *testing.T) {
	tests := []struct {
		in       byte
		expected uint8
		ok       bool
	}{
		{in: '1', expected: 0x1, ok: true},
		{in: '4', expected: 0xc, ok: true},
		{in: 'q', expected: 0x4, ok: true},
		{in: 'R', expected: 0xd, ok: true},
		{in: 'x', expected: 0x0, ok: true},
		{in: 'V', expected: 0xf, ok: true},
		{in: '5', ok: false},
		{in: 'p', ok: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			k, ok := decodeKey(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, k)
			}
		})
	}
}

func Test_Render(t *testing.T) {
	var frame bus.Frame
	// top, bottom and both halves of the first three cells
	frame[0] = 1
	frame[chip8.ScreenWidth+1] = 1
	frame[2] = 1
	frame[chip8.ScreenWidth+2] = 1

	out := Render(frame)
	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	require.Len(t, lines, chip8.ScreenHeight/2)
	for _, line := range lines {
		assert.Equal(t, chip8.ScreenWidth, utf8.RuneCountInString(line))
	}
	assert.True(t, strings.HasPrefix(lines[0], "▀▄█ "))
	assert.Equal(t, strings.Repeat(" ", chip8.ScreenWidth), lines[1])
}

func Test_ReadInput(t *testing.T) {
	t.Run("forwards every byte", func(t *testing.T) {
		out := make(chan byte, 8)
		readInput(make(chan struct{}), strings.NewReader("qwer"), out)

		var got []byte
		for b := range out {
			got = append(got, b)
		}
		assert.Equal(t, []byte("qwer"), got)
	})

	t.Run("stops when nobody reads anymore", func(t *testing.T) {
		done := make(chan struct{})
		close(done)
		out := make(chan byte)

		// returns although no one receives from out
		readInput(done, strings.NewReader(strings.Repeat("q", 200)), out)

		_, ok := <-out
		assert.False(t, ok, "channel closed")
	})
}

func Test_Frontend_KeyHold(t *testing.T) {
	f, _ := newTestFrontend(t, 0xf5, 0x0a, 0x12, 0x02)
	f.holdFrames = 2

	require.NoError(t, f.tick())
	require.Equal(t, "WAIT KEY", f.bus.DebugInfo().Status)

	f.handleInput('Q')
	require.NoError(t, f.tick())
	assert.Equal(t, "WAIT KEY", f.bus.DebugInfo().Status, "key is still held")

	// a repeat keeps the key held
	f.handleInput('q')
	require.NoError(t, f.tick())
	assert.Equal(t, "WAIT KEY", f.bus.DebugInfo().Status)

	require.NoError(t, f.tick())
	info := f.bus.DebugInfo()
	assert.Equal(t, "RUNNING", info.Status)
	assert.Equal(t, uint8(0x4), info.Registers[5])
	assert.Equal(t, uint16(0x202), info.NextPC)
}

func Test_Frontend_Controls(t *testing.T) {
	f, out := newTestFrontend(t, 0x12, 0x00)

	require.NoError(t, f.tick())
	assert.Contains(t, out.String(), escHome)
	assert.Contains(t, out.String(), "RUNNING")

	out.Reset()
	require.NoError(t, f.tick())
	assert.Empty(t, out.String(), "unchanged frames are not redrawn")

	f.handleInput('p')
	assert.True(t, f.bus.Paused())
	f.handleInput('n')
	assert.True(t, f.bus.Paused())

	assert.False(t, f.quit)
	f.handleInput(keyEscape)
	assert.True(t, f.quit)
}

func Test_Frontend_Run(t *testing.T) {
	t.Run("quits on ctrl-c", func(t *testing.T) {
		s := chip8.NewSystem(chip8.QuirksModern, nil)
		require.NoError(t, s.LoadROM([]uint8{0x12, 0x00}))

		var out bytes.Buffer
		f := New(bus.New(s, 700), strings.NewReader("\x03"), &out)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, f.Run(ctx))
		assert.NoError(t, ctx.Err(), "stopped by the key, not the deadline")
		assert.Contains(t, out.String(), escShowCursor)
	})

	t.Run("returns the machine fault", func(t *testing.T) {
		s := chip8.NewSystem(chip8.QuirksModern, nil)
		require.NoError(t, s.LoadROM([]uint8{0x01, 0x23}))

		f := New(bus.New(s, 700), strings.NewReader(""), &bytes.Buffer{})
		err := f.Run(context.Background())
		assert.ErrorIs(t, err, chip8.ErrInvalidInstruction)
	})
}
