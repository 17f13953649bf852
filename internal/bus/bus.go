package bus

import (
	"errors"
	"log"

	"github.com/nevisdale/chipvip/internal/chip8"
)

// FrameRate is the number of Tic calls per emulated second. Timers and the
// vblank interrupt are clocked once per frame.
const FrameRate = 60

// Frame is a copy of the monochrome frame buffer, one byte per pixel.
type Frame = [chip8.ScreenWidth * chip8.ScreenHeight]uint8

// Machine is the part of chip8.System the driver needs.
type Machine interface {
	Step() error
	DecrementTimers()
	VblankTrigger()
	SoundTimer() uint8
	KeyPress(k uint8)
	KeyRelease(k uint8)
	OutputBuffer() Frame
	DebugInfo() chip8.DebugInfo
	DebugFilename() string
	Disassemble() map[uint16]string
	DisassembleAt(addr uint16) string
}

// Beeper plays the tone while the sound timer is running.
type Beeper interface {
	SetActive(active bool)
}

// Recorder receives one frame worth of tone state.
type Recorder interface {
	RecordFrame(active bool) error
}

// CrashReporter persists the machine state after a fault.
type CrashReporter interface {
	SaveCrash(name string, err *chip8.Error, frame Frame) error
}

type Option func(*Bus)

func WithBeeper(b Beeper) Option {
	return func(bus *Bus) { bus.beeper = b }
}

func WithRecorder(r Recorder) Option {
	return func(bus *Bus) { bus.recorder = r }
}

func WithCrashReporter(r CrashReporter) Option {
	return func(bus *Bus) { bus.crash = r }
}

// Bus drives a machine from the host frame loop.
type Bus struct {
	machine Machine
	ips     int

	beeper   Beeper
	recorder Recorder
	crash    CrashReporter

	// instructions owed to the machine, in 1/FrameRate units
	budget int

	paused   bool
	stepOnce bool
	halted   error

	ticCounter uint64
}

// New returns a driver running ips instructions per second. Non-positive
// values fall back to one instruction per frame.
func New(machine Machine, ips int, opts ...Option) *Bus {
	if ips <= 0 {
		ips = FrameRate
	}
	b := &Bus{
		machine: machine,
		ips:     ips,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Tic advances the machine by one display frame: the instruction share of
// the frame, then the timers and the vblank interrupt. Once the machine
// faults every further call returns the same error.
func (b *Bus) Tic() error {
	if b.halted != nil {
		return b.halted
	}

	if b.paused {
		if b.stepOnce {
			b.stepOnce = false
			if err := b.machine.Step(); err != nil {
				return b.halt(err)
			}
			// a single step also ends a frame
			b.machine.DecrementTimers()
			b.machine.VblankTrigger()
		}
		b.updateSound(false)
		return nil
	}

	b.budget += b.ips
	steps := b.budget / FrameRate
	b.budget %= FrameRate

	for i := 0; i < steps; i++ {
		if err := b.machine.Step(); err != nil {
			return b.halt(err)
		}
	}

	b.machine.DecrementTimers()
	b.machine.VblankTrigger()
	b.ticCounter++

	b.updateSound(b.machine.SoundTimer() > 0)
	return nil
}

func (b *Bus) updateSound(active bool) {
	if b.beeper != nil {
		b.beeper.SetActive(active)
	}
	if b.recorder != nil {
		if err := b.recorder.RecordFrame(active); err != nil {
			log.Printf("couldn't record audio, recording stopped: %s", err)
			b.recorder = nil
		}
	}
}

func (b *Bus) halt(err error) error {
	b.halted = err
	if b.beeper != nil {
		b.beeper.SetActive(false)
	}

	var chipErr *chip8.Error
	if !errors.As(err, &chipErr) {
		log.Printf("machine halted: %s", err)
		return err
	}

	log.Printf("machine halted after %d frames: %s", b.ticCounter, chipErr)
	if b.crash != nil {
		name := b.machine.DebugFilename()
		if serr := b.crash.SaveCrash(name, chipErr, b.machine.OutputBuffer()); serr != nil {
			log.Printf("couldn't save crash snapshot: %s", serr)
		}
	}
	return err
}

func (b *Bus) TogglePause() {
	b.paused = !b.paused
	b.stepOnce = false
}

// OneStepAndStop pauses the machine and runs a single instruction on the
// next Tic.
func (b *Bus) OneStepAndStop() {
	b.paused = true
	b.stepOnce = true
}

func (b Bus) Paused() bool {
	return b.paused
}

// Halted returns the fault that stopped the machine, if any.
func (b Bus) Halted() error {
	return b.halted
}

func (b Bus) Frames() uint64 {
	return b.ticCounter
}

func (b *Bus) KeyPress(k uint8) {
	b.machine.KeyPress(k)
}

func (b *Bus) KeyRelease(k uint8) {
	b.machine.KeyRelease(k)
}

func (b Bus) Screen() Frame {
	return b.machine.OutputBuffer()
}

func (b Bus) DebugInfo() chip8.DebugInfo {
	return b.machine.DebugInfo()
}

func (b Bus) DebugFilename() string {
	return b.machine.DebugFilename()
}

func (b Bus) Disassemble() map[uint16]string {
	return b.machine.Disassemble()
}

func (b Bus) DisassembleAt(addr uint16) string {
	return b.machine.DisassembleAt(addr)
}
