package chip8

import "math/rand/v2"

const (
	registerCount = 16
	stackDepth    = 16

	// VF doubles as carry, borrow and collision flag
	regF = 0xf
)

type CPU struct {
	registers [registerCount]uint8 // V0..VF
	pc        uint16               // program counter
	i         uint16               // index register
	stack     [stackDepth]uint16   // return addresses
	sp        uint16               // stack pointer, number of pushed addresses
	inst      Instruction          // instruction being executed
	prevPC    uint16               // address inst was fetched from
	cycles    uint64               // instructions retired since reset
	rand      *rand.Rand           // uniform source for RANDOM
	quirks    Quirks
}

func NewCPU(quirks Quirks, src rand.Source) *CPU {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	c := &CPU{
		quirks: quirks,
		rand:   rand.New(src),
	}
	c.Reset()
	return c
}

// Reset the CPU to its initial state
func (c *CPU) Reset() {
	c.registers = [registerCount]uint8{}
	c.stack = [stackDepth]uint16{}
	c.sp = 0
	c.i = 0
	c.pc = EntryPoint
	c.prevPC = 0
	c.inst = Instruction{}
	c.cycles = 0
}

func (c *CPU) randomUint8() uint8 {
	return uint8(c.rand.IntN(0x100))
}

func (c *CPU) skipIf(condition bool) {
	if condition {
		c.pc += 2
	}
}

// execute runs the instructions that need nothing but the register file.
func (c *CPU) execute() error {
	inst := c.inst
	vx := c.registers[inst.X]

	switch inst.Op {
	case opRet:
		if c.sp == 0 {
			return newError(KindStackOverflow, "stack underflow: return with an empty stack")
		}
		c.sp--
		c.pc = c.stack[c.sp]
	case opJmp:
		c.pc = inst.N
	case opCall:
		if c.sp >= stackDepth {
			return newError(KindStackOverflow, "call depth exceeds %d", stackDepth)
		}
		c.stack[c.sp] = c.pc
		c.sp++
		c.pc = inst.N
	case opSkipEqImm:
		c.skipIf(vx == uint8(inst.N))
	case opSkipNeImm:
		c.skipIf(vx != uint8(inst.N))
	case opSkipEqReg:
		c.skipIf(vx == c.registers[inst.Y])
	case opSkipNeReg:
		c.skipIf(vx != c.registers[inst.Y])
	case opMov:
		c.registers[inst.X] = uint8(inst.N)
	case opAdd:
		c.registers[inst.X] += uint8(inst.N)
	case opLdi:
		c.i = inst.N
	case opJmpOff:
		base := c.registers[0]
		if c.quirks.JumpUsesX {
			base = vx
		}
		c.pc = inst.N + uint16(base)
	case opRandom:
		c.registers[inst.X] = c.randomUint8() & uint8(inst.N)
	default:
		return newError(KindInvalidInstruction, "%s is not a cpu instruction", inst.Op)
	}
	return nil
}
