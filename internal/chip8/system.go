package chip8

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

type waitState uint8

const (
	waitIdle waitState = iota
	waitVblank
	waitKeyRelease
)

func (w waitState) String() string {
	switch w {
	case waitVblank:
		return "WAIT VBLANK"
	case waitKeyRelease:
		return "WAIT KEY"
	}
	return "RUNNING"
}

type keyEventKind uint8

const (
	keyNone keyEventKind = iota
	keyPress
	keyRelease
)

type keyEvent struct {
	key  uint8
	kind keyEventKind
}

const keyCount = 16

// System wires the CPU, ALU, memory and display together and runs the
// fetch-decode-execute loop. It is driven by a single caller: Step once per
// instruction, DecrementTimers and VblankTrigger once per displayed frame.
type System struct {
	quirks Quirks

	cpu     *CPU
	alu     *ALU
	mem     *MemoryController
	display *Display

	keyStates  [keyCount]bool
	lastKey    keyEvent
	delayTimer uint8
	soundTimer uint8

	// instruction soft-blocked on an external event; while set, Step only
	// checks whether the event has arrived
	wait waitState
}

// NewSystem returns a machine following the given quirks. A nil src seeds
// the random byte source from the runtime.
func NewSystem(quirks Quirks, src rand.Source) *System {
	s := &System{
		quirks:  quirks,
		cpu:     NewCPU(quirks, src),
		alu:     NewALU(quirks),
		mem:     NewMemoryController(),
		display: NewDisplay(quirks),
	}
	s.Reset()
	return s
}

func (s *System) Quirks() Quirks {
	return s.quirks
}

// Reset reinitializes every piece of state and reloads the font table.
func (s *System) Reset() {
	s.cpu.Reset()
	s.display.reset()
	s.keyStates = [keyCount]bool{}
	s.lastKey = keyEvent{}
	s.delayTimer = 0
	s.soundTimer = 0
	s.wait = waitIdle

	s.mem.Clear()
	if err := s.mem.WriteBlock(FontBase, fontData[:]); err != nil {
		panic(fmt.Sprintf("chip8: font table does not fit in memory: %s", err))
	}
}

// LoadROM resets the machine and copies rom to the entry point.
func (s *System) LoadROM(rom []uint8) error {
	s.Reset()
	if err := s.mem.WriteBlock(EntryPoint, rom); err != nil {
		return fmt.Errorf("couldn't load rom: %w", err)
	}
	return nil
}

func (s System) OutputBuffer() [ScreenWidth * ScreenHeight]uint8 {
	return s.display.OutputBuffer()
}

func (s System) SoundTimer() uint8 {
	return s.soundTimer
}

func (s System) DelayTimer() uint8 {
	return s.delayTimer
}

func (s *System) DecrementTimers() {
	if s.delayTimer > 0 {
		s.delayTimer--
	}
	if s.soundTimer > 0 {
		s.soundTimer--
	}
}

func (s *System) KeyPress(k uint8) {
	if k >= keyCount {
		return
	}
	s.keyStates[k] = true
	s.lastKey = keyEvent{key: k, kind: keyPress}
}

func (s *System) KeyRelease(k uint8) {
	if k >= keyCount {
		return
	}
	s.keyStates[k] = false
	s.lastKey = keyEvent{key: k, kind: keyRelease}
}

func (s *System) VblankTrigger() {
	s.display.vblankInterrupt()
}

// Step runs one fetch-decode-execute cycle. Any returned error is a *Error
// carrying a snapshot of the machine; the program counter is left on the
// faulting instruction.
func (s *System) Step() error {
	if s.wait != waitIdle {
		s.resume()
		return nil
	}

	raw, err := s.fetch()
	if err != nil {
		return s.fail(err)
	}
	inst, err := decode(raw)
	s.cpu.inst = inst
	if err != nil {
		return s.fail(err)
	}
	if err := s.execute(); err != nil {
		return s.fail(err)
	}

	if s.wait == waitIdle {
		s.cpu.cycles++
	}
	return nil
}

func (s *System) fetch() (uint16, error) {
	c := s.cpu
	// save address of current instruction for diagnostics and rewinds
	c.prevPC = c.pc

	if int(c.pc)+1 >= s.mem.Size() {
		return 0, newError(KindInvalidAddress, "instruction fetch out of range: 0x%04x", c.pc)
	}
	hi, err := s.mem.Read8(c.pc)
	if err != nil {
		return 0, err
	}
	lo, err := s.mem.Read8(c.pc + 1)
	if err != nil {
		return 0, err
	}
	c.pc += 2
	return uint16(hi)<<8 | uint16(lo), nil
}

func (s *System) execute() error {
	c := s.cpu
	vx := c.registers[c.inst.X]

	switch c.inst.Op {
	case opClear:
		s.display.clear()
	case opDraw:
		return s.drawSprite()
	case opALU:
		return s.executeALU()
	case opMisc:
		return s.executeMisc()
	case opKeyEq:
		c.skipIf(s.keyStates[vx&0xf])
	case opKeyNe:
		c.skipIf(!s.keyStates[vx&0xf])
	default:
		return c.execute()
	}
	return nil
}

// block parks the current instruction until the awaited event arrives. The
// program counter points at the parked instruction meanwhile.
func (s *System) block(w waitState) {
	s.wait = w
	s.cpu.pc = s.cpu.prevPC
}

// resume completes the parked instruction once its event has arrived.
func (s *System) resume() {
	c := s.cpu

	switch s.wait {
	case waitVblank:
		if s.display.isWaitingForVblank() {
			return
		}
		c.registers[regF] = s.display.draw()
	case waitKeyRelease:
		if s.lastKey.kind != keyRelease {
			return
		}
		c.registers[c.inst.X] = s.lastKey.key
		s.lastKey = keyEvent{}
	}

	s.wait = waitIdle
	c.pc = c.prevPC + 2
	c.cycles++
}

func (s *System) drawSprite() error {
	c := s.cpu

	if s.display.isWaitingForData() {
		err := s.display.latch(s.mem, c.i, c.registers[c.inst.X], c.registers[c.inst.Y], uint8(c.inst.N))
		if err != nil {
			return err
		}
	}

	if s.display.isWaitingForVblank() {
		s.block(waitVblank)
		return nil
	}

	c.registers[regF] = s.display.draw()
	return nil
}

func (s *System) executeALU() error {
	c := s.cpu

	s.alu.x = c.registers[c.inst.X]
	s.alu.y = c.registers[c.inst.Y]
	s.alu.f = c.registers[regF]
	s.alu.op = aluOp(c.inst.N)
	if err := s.alu.execute(); err != nil {
		return err
	}
	c.registers[c.inst.X] = s.alu.x
	c.registers[regF] = s.alu.f
	return nil
}

func (s *System) executeMisc() error {
	c := s.cpu
	x := c.inst.X

	switch miscOp(c.inst.N) {
	case miscGetDT:
		c.registers[x] = s.delayTimer
	case miscGetKey:
		// only a release seen after this point completes the read
		s.lastKey = keyEvent{}
		s.block(waitKeyRelease)
	case miscSetDT:
		s.delayTimer = c.registers[x]
	case miscSetST:
		s.soundTimer = c.registers[x]
	case miscGetChar:
		c.i = FontBase + uint16(c.registers[x]&0xf)*fontGlyphHeight
	case miscAddI:
		c.i += uint16(c.registers[x])
	case miscBCD:
		if err := s.mem.checkRange(c.i, 3); err != nil {
			return err
		}
		v := c.registers[x]
		digits := [3]uint8{v / 100, (v % 100) / 10, v % 10}
		for n, d := range digits {
			if err := s.mem.Write8(c.i+uint16(n), d); err != nil {
				return err
			}
		}
	case miscStoreReg:
		if err := s.mem.checkRange(c.i, int(x)+1); err != nil {
			return err
		}
		for n := uint16(0); n <= uint16(x); n++ {
			if err := s.mem.Write8(c.i+n, c.registers[n]); err != nil {
				return err
			}
		}
		s.incrementIndex(x)
	case miscLoadReg:
		if err := s.mem.checkRange(c.i, int(x)+1); err != nil {
			return err
		}
		for n := uint16(0); n <= uint16(x); n++ {
			v, err := s.mem.Read8(c.i + n)
			if err != nil {
				return err
			}
			c.registers[n] = v
		}
		s.incrementIndex(x)
	default:
		return newError(KindInvalidInstruction, "unknown misc operation %02x", c.inst.N)
	}
	return nil
}

// after a block transfer the index register points to the address after
// the last register transferred
func (s *System) incrementIndex(x uint8) {
	if s.quirks.IndexIncrement {
		s.cpu.i += uint16(x) + 1
	}
}

// fail attaches the machine snapshot to err and rewinds the program counter
// to the faulting instruction.
func (s *System) fail(err error) error {
	s.cpu.pc = s.cpu.prevPC

	var e *Error
	if errors.As(err, &e) && e.Snapshot == nil {
		snap := s.snapshot()
		e.Snapshot = &snap
	}
	return err
}

func (s System) snapshot() Snapshot {
	c := s.cpu
	return Snapshot{
		Cycle:     c.cycles,
		Inst:      c.inst,
		PC:        c.prevPC,
		SP:        c.sp,
		I:         c.i,
		Stack:     c.stack,
		Registers: c.registers,
	}
}
