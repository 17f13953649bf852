package chip8

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind uint8

const (
	KindInvalidAddress ErrorKind = iota + 1
	KindInvalidInstruction
	KindStackOverflow
)

var (
	ErrInvalidAddress     = errors.New("invalid address")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrStackOverflow      = errors.New("stack overflow")

	// returned by block writes that do not fit in the active bank
	ErrOutOfRange = errors.New("out of range")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidAddress:
		return ErrInvalidAddress
	case KindInvalidInstruction:
		return ErrInvalidInstruction
	case KindStackOverflow:
		return ErrStackOverflow
	}
	return nil
}

func (k ErrorKind) String() string {
	if err := k.sentinel(); err != nil {
		return strings.ToUpper(err.Error())
	}
	return "UNKNOWN ERROR"
}

// Snapshot is the machine state captured when an instruction faults.
type Snapshot struct {
	Cycle     uint64
	Inst      Instruction
	PC        uint16 // address the faulting instruction was fetched from
	SP        uint16
	I         uint16
	Stack     [stackDepth]uint16
	Registers [registerCount]uint8
}

// Error is the only error type returned by Step. It is fatal to the
// instruction loop: the caller decides whether to halt, reset or report.
type Error struct {
	Kind     ErrorKind
	Msg      string
	Snapshot *Snapshot
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind.sentinel(), e.Msg)
}

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// CrashDump formats the snapshot as a human readable table.
func (e *Error) CrashDump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ABORTING EXECUTION: %s (%s)\n", e.Kind, e.Msg)
	if e.Snapshot != nil {
		sb.WriteString(e.Snapshot.dump())
	}
	return sb.String()
}

func (s Snapshot) dump() string {
	const rule = "------------------------------------------------------------------\n"

	var sb strings.Builder
	sb.WriteString(rule)
	fmt.Fprintf(&sb, " current cycle 0x%08x\n", s.Cycle)
	fmt.Fprintf(&sb, " current instruction %04x ( %s )\n", s.Inst.Raw, s.Inst.Op)
	sb.WriteString(rule)
	fmt.Fprintf(&sb, " PC : 0x%04x .  SP : 0x%04x .  IR : 0x%04x\n", s.PC, s.SP, s.I)
	sb.WriteString(rule)
	sb.WriteString("      STACK  | REGISTERS\n")
	for i := 0; i < registerCount; i++ {
		fmt.Fprintf(&sb, "0x%x : 0x%04x | 0x%02x\n", i, s.Stack[i], s.Registers[i])
	}
	sb.WriteString(rule)
	return sb.String()
}
