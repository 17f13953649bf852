package chip8

import "fmt"

// only one bank is ever attached today; the array leaves room for carts
// that switch banks
const bankCount = 1

type ReadWriter interface {
	Read8(addr uint16) (uint8, error)
	Write8(addr uint16, data uint8) error
}

var _ ReadWriter = (*MemoryController)(nil)

// MemoryController routes every memory access of the machine to the active
// bank and rejects addresses outside of it.
type MemoryController struct {
	banks  [bankCount]*RAM
	active int
}

func NewMemoryController() *MemoryController {
	m := &MemoryController{}
	for i := range m.banks {
		m.banks[i] = NewRAM()
	}
	return m
}

// Size returns the number of addressable bytes of the active bank.
func (m MemoryController) Size() int {
	return m.banks[m.active].Size()
}

func (m MemoryController) Read8(addr uint16) (uint8, error) {
	if int(addr) >= m.Size() {
		return 0, newError(KindInvalidAddress, "memory access out of range: 0x%04x", addr)
	}
	return m.banks[m.active].ram[addr], nil
}

func (m *MemoryController) Write8(addr uint16, data uint8) error {
	if int(addr) >= m.Size() {
		return newError(KindInvalidAddress, "memory access out of range: 0x%04x", addr)
	}
	m.banks[m.active].ram[addr] = data
	return nil
}

// WriteBlock copies data into the active bank starting at addr.
// Nothing is written if the block does not fit.
func (m *MemoryController) WriteBlock(addr uint16, data []uint8) error {
	if int(addr)+len(data) > m.Size() {
		return fmt.Errorf("insertion of %d bytes @ 0x%04x: %w", len(data), addr, ErrOutOfRange)
	}
	copy(m.banks[m.active].ram[addr:], data)
	return nil
}

// checkRange reports whether addr..addr+n-1 is addressable, so that
// multi-byte operations can fail before touching anything.
func (m MemoryController) checkRange(addr uint16, n int) error {
	if n <= 0 {
		return nil
	}
	if last := int(addr) + n - 1; last >= m.Size() {
		return newError(KindInvalidAddress, "memory access out of range: 0x%04x", last)
	}
	return nil
}

func (m *MemoryController) AttachBank(index int, bank *RAM) error {
	if index < 0 || index >= len(m.banks) {
		return fmt.Errorf("bank %d: %w", index, ErrOutOfRange)
	}
	if bank == nil {
		return fmt.Errorf("bank %d: nil bank", index)
	}
	m.banks[index] = bank
	return nil
}

func (m *MemoryController) ActiveBank() *RAM {
	return m.banks[m.active]
}

func (m *MemoryController) Clear() {
	m.banks[m.active].Clear()
}
