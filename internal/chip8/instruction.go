package chip8

import "fmt"

// Op is the operation family selected by the decoder.
type Op uint8

const (
	opNop Op = iota
	opClear
	opRet
	opJmp
	opCall
	opSkipEqImm
	opSkipNeImm
	opSkipEqReg
	opSkipNeReg
	opMov
	opAdd
	opALU
	opLdi
	opJmpOff
	opRandom
	opDraw
	opKeyEq
	opKeyNe
	opMisc
	opInvalid
)

var opNames = [...]string{
	opNop:       "NOP",
	opClear:     "CLEAR",
	opRet:       "RET",
	opJmp:       "JMP",
	opCall:      "CALL",
	opSkipEqImm: "SKIP_EQ_IMM",
	opSkipNeImm: "SKIP_NE_IMM",
	opSkipEqReg: "SKIP_EQ_REG",
	opSkipNeReg: "SKIP_NE_REG",
	opMov:       "MOV",
	opAdd:       "ADD",
	opALU:       "ALU",
	opLdi:       "LDI",
	opJmpOff:    "JMP_OFF",
	opRandom:    "RANDOM",
	opDraw:      "DRAW",
	opKeyEq:     "KEY_EQ",
	opKeyNe:     "KEY_NE",
	opMisc:      "MISC",
	opInvalid:   "UNKNOWN OPCODE",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "UNKNOWN OPCODE"
}

// FX?? operations, selected by the low byte
type miscOp uint8

const (
	miscGetDT    miscOp = 0x07
	miscGetKey   miscOp = 0x0a
	miscSetDT    miscOp = 0x15
	miscSetST    miscOp = 0x18
	miscAddI     miscOp = 0x1e
	miscGetChar  miscOp = 0x29
	miscBCD      miscOp = 0x33
	miscStoreReg miscOp = 0x55
	miscLoadReg  miscOp = 0x65
)

func (op miscOp) valid() bool {
	return op.String() != "???"
}

func (op miscOp) String() string {
	switch op {
	case miscGetDT:
		return "GET_DT"
	case miscGetKey:
		return "GET_KEY"
	case miscSetDT:
		return "SET_DT"
	case miscSetST:
		return "SET_ST"
	case miscAddI:
		return "ADD_IR"
	case miscGetChar:
		return "GET_CHAR"
	case miscBCD:
		return "BCD"
	case miscStoreReg:
		return "STORE_REG"
	case miscLoadReg:
		return "LOAD_REG"
	}
	return "???"
}

// Instruction is one decoded instruction word.
//
// x and y are register indexes; n holds the immediate byte, the 12 bit
// address, the 4 bit tail of two-register forms (ALU sub-op, sprite height)
// or the FX sub-op, depending on op.
type Instruction struct {
	Raw uint16
	Op  Op
	X   uint8
	Y   uint8
	N   uint16
}

// decode matches the nibbles of raw against the instruction table.
// Patterns that are not part of the instruction set are rejected.
func decode(raw uint16) (Instruction, error) {
	inst := Instruction{Raw: raw, Op: opNop}

	x := uint8((raw & 0x0f00) >> 8)
	y := uint8((raw & 0x00f0) >> 4)
	nnn := raw & 0x0fff
	nn := raw & 0x00ff
	n := raw & 0x000f

	invalid := func() (Instruction, error) {
		inst.Op = opInvalid
		return inst, newError(KindInvalidInstruction, "unknown instruction %04x", raw)
	}

	switch raw >> 12 {
	case 0x0:
		switch raw {
		case 0x00e0:
			inst.Op = opClear
		case 0x00ee:
			inst.Op = opRet
		default:
			return invalid()
		}
	case 0x1:
		inst.Op, inst.N = opJmp, nnn
	case 0x2:
		inst.Op, inst.N = opCall, nnn
	case 0x3:
		inst.Op, inst.X, inst.N = opSkipEqImm, x, nn
	case 0x4:
		inst.Op, inst.X, inst.N = opSkipNeImm, x, nn
	case 0x5:
		if n != 0 {
			return invalid()
		}
		inst.Op, inst.X, inst.Y = opSkipEqReg, x, y
	case 0x6:
		inst.Op, inst.X, inst.N = opMov, x, nn
	case 0x7:
		inst.Op, inst.X, inst.N = opAdd, x, nn
	case 0x8:
		if !aluOp(n).valid() {
			return invalid()
		}
		inst.Op, inst.X, inst.Y, inst.N = opALU, x, y, n
	case 0x9:
		if n != 0 {
			return invalid()
		}
		inst.Op, inst.X, inst.Y = opSkipNeReg, x, y
	case 0xa:
		inst.Op, inst.N = opLdi, nnn
	case 0xb:
		inst.Op, inst.X, inst.N = opJmpOff, x, nnn
	case 0xc:
		inst.Op, inst.X, inst.N = opRandom, x, nn
	case 0xd:
		inst.Op, inst.X, inst.Y, inst.N = opDraw, x, y, n
	case 0xe:
		switch nn {
		case 0x9e:
			inst.Op, inst.X = opKeyEq, x
		case 0xa1:
			inst.Op, inst.X = opKeyNe, x
		default:
			return invalid()
		}
	case 0xf:
		if !miscOp(nn).valid() {
			return invalid()
		}
		inst.Op, inst.X, inst.N = opMisc, x, nn
	}

	return inst, nil
}

// Mnemonic names the operation, including the sub-operation for the ALU
// and MISC families.
func (i Instruction) Mnemonic() string {
	switch i.Op {
	case opALU:
		return "ALU." + aluOp(i.N).String()
	case opMisc:
		return "MISC." + miscOp(i.N).String()
	}
	return i.Op.String()
}

// String renders the instruction with its operands, e.g. "DRAW V0, V1, 5".
func (i Instruction) String() string {
	m := i.Mnemonic()
	switch i.Op {
	case opClear, opRet, opNop:
		return m
	case opJmp, opCall, opLdi, opJmpOff:
		return fmt.Sprintf("%s $%03X", m, i.N)
	case opSkipEqImm, opSkipNeImm, opMov, opAdd, opRandom:
		return fmt.Sprintf("%s V%X, $%02X", m, i.X, i.N)
	case opSkipEqReg, opSkipNeReg, opALU:
		return fmt.Sprintf("%s V%X, V%X", m, i.X, i.Y)
	case opDraw:
		return fmt.Sprintf("%s V%X, V%X, %d", m, i.X, i.Y, i.N)
	case opKeyEq, opKeyNe, opMisc:
		return fmt.Sprintf("%s V%X", m, i.X)
	}
	return m
}
