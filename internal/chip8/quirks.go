package chip8

import "fmt"

// Quirks selects which historical interpreter behaviour the machine follows.
// The zero value is "modern" CHIP-8 without any quirk enabled.
type Quirks struct {
	// 8XY1, 8XY2 and 8XY3 reset VF to zero
	FlagsReset bool
	// FX55 and FX65 leave I pointing after the last register transferred
	IndexIncrement bool
	// DXYN waits for the vblank interrupt before drawing
	VblankWait bool
	// sprite origin wraps, but sprites are clipped at the screen edges
	SpriteClipping bool
	// 8XY6 and 8XYE shift VX in place instead of copying VY first
	ShiftIgnoresY bool
	// BNNN jumps to NNN + VX (X being the highest nibble of NNN) instead of NNN + V0
	JumpUsesX bool
}

// COSMAC VIP CHIP-8
var QuirksVIP = Quirks{
	FlagsReset:     true,
	IndexIncrement: true,
	VblankWait:     true,
	SpriteClipping: true,
}

// SUPER-CHIP 1.1 (HP48)
var QuirksSCHIP = Quirks{
	SpriteClipping: true,
	ShiftIgnoresY:  true,
	JumpUsesX:      true,
}

// most modern interpreters, XO-CHIP
var QuirksModern = Quirks{
	IndexIncrement: true,
}

// QuirksPreset returns a named set of quirks: vip, schip or modern.
func QuirksPreset(name string) (Quirks, error) {
	switch name {
	case "vip", "":
		return QuirksVIP, nil
	case "schip":
		return QuirksSCHIP, nil
	case "modern", "xochip":
		return QuirksModern, nil
	}
	return Quirks{}, fmt.Errorf("unknown quirks preset %q", name)
}

func (q Quirks) String() string {
	on := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	return fmt.Sprintf("flags-reset:%s index-increment:%s vblank-wait:%s clipping:%s shift-ignores-y:%s jump-x:%s",
		on(q.FlagsReset), on(q.IndexIncrement), on(q.VblankWait),
		on(q.SpriteClipping), on(q.ShiftIgnoresY), on(q.JumpUsesX))
}
