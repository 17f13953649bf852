package chip8

import "fmt"

// DebugInfo is a read-only copy of the machine state for debug panels.
type DebugInfo struct {
	Snapshot
	NextPC     uint16
	DelayTimer uint8
	SoundTimer uint8
	Status     string
}

func (s System) DebugInfo() DebugInfo {
	return DebugInfo{
		Snapshot:   s.snapshot(),
		NextPC:     s.cpu.pc,
		DelayTimer: s.delayTimer,
		SoundTimer: s.soundTimer,
		Status:     s.wait.String(),
	}
}

// DebugLine summarizes the last fetched instruction, e.g.
// "PC : 0x0200 . inst : 6a02 ( MOV )".
func (s System) DebugLine() string {
	c := s.cpu
	return fmt.Sprintf("PC : 0x%04x . inst : %04x ( %s )", c.prevPC, c.inst.Raw, c.inst.Op)
}

// DebugFilename names failure snapshots: cycle, PC and instruction word.
func (s System) DebugFilename() string {
	c := s.cpu
	return fmt.Sprintf("%08x_%04x_%04x", c.cycles, c.prevPC, c.inst.Raw)
}

// Disassemble returns a map of addresses and their corresponding instructions
// from the entry point to the end of memory, two bytes apart
func (s System) Disassemble() map[uint16]string {
	size := s.mem.Size()
	disasm := make(map[uint16]string, (size-int(EntryPoint))/2)

	for addr := int(EntryPoint); addr+1 < size; addr += 2 {
		disasm[uint16(addr)] = s.DisassembleAt(uint16(addr))
	}

	return disasm
}

// DisassembleAt decodes the word at addr, which need not be aligned with
// the entries of Disassemble.
func (s System) DisassembleAt(addr uint16) string {
	hi, err := s.mem.Read8(addr)
	if err != nil {
		return fmt.Sprintf("$%04X: ----", addr)
	}
	lo, err := s.mem.Read8(addr + 1)
	if err != nil {
		return fmt.Sprintf("$%04X: %02X--", addr, hi)
	}
	raw := uint16(hi)<<8 | uint16(lo)

	inst, err := decode(raw)
	if err != nil {
		return fmt.Sprintf("$%04X: %04X ???", addr, raw)
	}
	return fmt.Sprintf("$%04X: %04X %s", addr, raw, inst)
}
