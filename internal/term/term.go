// Package term runs a machine in a raw mode terminal, two pixel rows per
// text line.
package term

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nevisdale/chipvip/internal/bus"
	"github.com/nevisdale/chipvip/internal/chip8"
	"golang.org/x/term"
)

// Terminals report key presses only, a pressed key is released after it
// was held for this many frames without repeating.
const DefaultHoldFrames = 6

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b

	escHome       = "\x1b[H"
	escClear      = "\x1b[2J"
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
)

// same layout as the window frontend: 1234/QWER/ASDF/ZXCV
var keymap = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

func decodeKey(b byte) (uint8, bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	k, ok := keymap[b]
	return k, ok
}

// Frontend drives a bus from terminal input.
type Frontend struct {
	bus *bus.Bus
	in  io.Reader
	out io.Writer

	holdFrames int
	held       [16]int

	lastFrame bus.Frame
	drawn     bool
	quit      bool
}

func New(b *bus.Bus, in io.Reader, out io.Writer) *Frontend {
	return &Frontend{
		bus:        b,
		in:         in,
		out:        out,
		holdFrames: DefaultHoldFrames,
	}
}

// Run puts the terminal in raw mode when in is one, and runs the machine
// until ctx is done, the user quits with Escape or Ctrl-C, or the machine
// faults.
func (f *Frontend) Run(ctx context.Context) error {
	if file, ok := f.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fd := int(file.Fd())
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("couldn't set raw mode: %w", err)
		}
		defer term.Restore(fd, oldState)
	}

	fmt.Fprint(f.out, escClear+escHideCursor)
	defer fmt.Fprint(f.out, escShowCursor+"\r\n")

	done := make(chan struct{})
	defer close(done)
	ch := make(chan byte, 64)
	go readInput(done, f.in, ch)
	var input <-chan byte = ch

	ticker := time.NewTicker(time.Second / bus.FrameRate)
	defer ticker.Stop()

	for !f.quit {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

	drain:
		for {
			select {
			case b, ok := <-input:
				if !ok {
					// input exhausted, keep running
					input = nil
					break drain
				}
				f.handleInput(b)
			default:
				break drain
			}
		}

		if err := f.tick(); err != nil {
			return err
		}
	}
	return nil
}

// readInput forwards bytes from r until r fails or done is closed. When
// parked in Read it exits on the next byte or error after done.
func readInput(done <-chan struct{}, r io.Reader, out chan<- byte) {
	defer close(out)
	buf := make([]byte, 16)
	for {
		select {
		case <-done:
			return
		default:
		}
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			select {
			case out <- b:
			case <-done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (f *Frontend) handleInput(b byte) {
	switch b {
	case keyCtrlC, keyEscape:
		f.quit = true
		return
	case 'p', 'P':
		f.bus.TogglePause()
		return
	case 'n', 'N':
		f.bus.OneStepAndStop()
		return
	}

	k, ok := decodeKey(b)
	if !ok {
		return
	}
	if f.held[k] == 0 {
		f.bus.KeyPress(k)
	}
	f.held[k] = f.holdFrames
}

// tick releases expired keys, runs one frame and redraws on change.
func (f *Frontend) tick() error {
	for k := range f.held {
		if f.held[k] == 0 {
			continue
		}
		f.held[k]--
		if f.held[k] == 0 {
			f.bus.KeyRelease(uint8(k))
		}
	}

	if err := f.bus.Tic(); err != nil {
		return err
	}

	frame := f.bus.Screen()
	if f.drawn && frame == f.lastFrame {
		return nil
	}
	f.lastFrame = frame
	f.drawn = true

	_, err := io.WriteString(f.out, escHome+Render(frame)+f.statusLine())
	return err
}

func (f *Frontend) statusLine() string {
	status := f.bus.DebugInfo().Status
	if f.bus.Paused() {
		status = "PAUSED"
	}
	return fmt.Sprintf("%-12s p pause  n step  esc quit\r\n", status)
}

// Render draws frame with half block characters, every text line covers two
// pixel rows. Lines end with CRLF as raw mode does not translate newlines.
func Render(frame bus.Frame) string {
	var sb strings.Builder
	for y := 0; y < chip8.ScreenHeight; y += 2 {
		for x := 0; x < chip8.ScreenWidth; x++ {
			top := frame[y*chip8.ScreenWidth+x] != 0
			bottom := y+1 < chip8.ScreenHeight && frame[(y+1)*chip8.ScreenWidth+x] != 0
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}
