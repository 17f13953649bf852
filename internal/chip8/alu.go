package chip8

// 8XY? operations, selected by the low nibble
type aluOp uint8

const (
	aluMOV  aluOp = 0x0
	aluOR   aluOp = 0x1
	aluAND  aluOp = 0x2
	aluXOR  aluOp = 0x3
	aluADD  aluOp = 0x4
	aluSUB  aluOp = 0x5
	aluSHR  aluOp = 0x6
	aluRSUB aluOp = 0x7
	aluSHL  aluOp = 0xe
)

func (op aluOp) valid() bool {
	return op.String() != "???"
}

func (op aluOp) String() string {
	switch op {
	case aluMOV:
		return "MOV"
	case aluOR:
		return "OR"
	case aluAND:
		return "AND"
	case aluXOR:
		return "XOR"
	case aluADD:
		return "ADD"
	case aluSUB:
		return "SUB"
	case aluSHR:
		return "SHR"
	case aluRSUB:
		return "RSUB"
	case aluSHL:
		return "SHL"
	}
	return "???"
}

// ALU executes one micro-op over its latched operands. x and f are updated
// in place; memory and the program counter are never touched.
type ALU struct {
	quirks Quirks

	x  uint8
	y  uint8
	f  uint8
	op aluOp
}

func NewALU(quirks Quirks) *ALU {
	return &ALU{quirks: quirks}
}

func (a *ALU) execute() error {
	switch a.op {
	case aluMOV:
		a.x = a.y
	case aluOR:
		a.x |= a.y
		a.resetFlag()
	case aluAND:
		a.x &= a.y
		a.resetFlag()
	case aluXOR:
		a.x ^= a.y
		a.resetFlag()
	case aluADD:
		before := a.x
		a.x += a.y
		a.f = boolToFlag(a.x < before)
	case aluSUB:
		before := a.x
		a.x -= a.y
		a.f = boolToFlag(before >= a.y)
	case aluRSUB:
		before := a.x
		a.x = a.y - a.x
		a.f = boolToFlag(before <= a.y)
	case aluSHL:
		if !a.quirks.ShiftIgnoresY {
			a.x = a.y
		}
		out := a.x >> 7
		a.x <<= 1
		a.f = out
	case aluSHR:
		if !a.quirks.ShiftIgnoresY {
			a.x = a.y
		}
		out := a.x & 0x1
		a.x >>= 1
		a.f = out
	default:
		return newError(KindInvalidInstruction, "unknown alu operation %x", uint8(a.op))
	}
	return nil
}

func (a *ALU) resetFlag() {
	if a.quirks.FlagsReset {
		a.f = 0
	}
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
