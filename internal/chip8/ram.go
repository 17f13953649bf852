package chip8

const bankSizeBytes = 0x1000

// RAM is one bank of addressable memory.
type RAM struct {
	ram [bankSizeBytes]uint8
}

func NewRAM() *RAM {
	return &RAM{}
}

func (r RAM) Size() int {
	return len(r.ram)
}

func (r *RAM) Clear() {
	for i := range r.ram {
		r.ram[i] = 0
	}
}
