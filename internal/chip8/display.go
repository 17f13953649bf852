package chip8

const (
	ScreenWidth  = 64
	ScreenHeight = 32

	maxSpriteRows = 16
)

// Display owns the frame buffer and the sprite blitter.
//
// A sprite is drawn in two phases: the draw request latches the position and
// the sprite rows (data ready), and rendering additionally waits for the
// vblank interrupt when the vblank quirk is enabled (vblank ready). Both
// latches reset after every rendered sprite.
type Display struct {
	quirks Quirks

	hOffset    uint8
	vOffset    uint8
	lineCount  uint8
	spriteData [maxSpriteRows]uint8

	dataReady   bool
	vblankReady bool

	buffer [ScreenWidth * ScreenHeight]uint8
}

func NewDisplay(quirks Quirks) *Display {
	return &Display{quirks: quirks}
}

func (d Display) isWaitingForData() bool {
	return !d.dataReady
}

func (d Display) isWaitingForVblank() bool {
	if !d.quirks.VblankWait {
		return false
	}
	return !d.vblankReady
}

// latch copies the sprite rows at addr and the drawing position. Nothing is
// latched if any row lies outside of memory.
func (d *Display) latch(mem ReadWriter, addr uint16, h, v, lines uint8) error {
	var rows [maxSpriteRows]uint8
	for i := uint16(0); i < uint16(lines); i++ {
		b, err := mem.Read8(addr + i)
		if err != nil {
			return err
		}
		rows[i] = b
	}

	d.hOffset = h
	d.vOffset = v
	d.lineCount = lines
	d.spriteData = rows
	d.dataReady = true
	return nil
}

func (d *Display) vblankInterrupt() {
	d.vblankReady = true
}

// draw XORs the latched sprite into the frame buffer and returns 1 if any
// lit pixel was turned off.
func (d *Display) draw() uint8 {
	var collision uint8

	if d.quirks.SpriteClipping {
		collision = d.drawClipped()
	} else {
		collision = d.drawWrapped()
	}

	d.dataReady = false
	d.vblankReady = false
	return collision
}

func (d *Display) drawClipped() uint8 {
	var f uint8
	x0 := int(d.hOffset) % ScreenWidth
	y0 := int(d.vOffset) % ScreenHeight

	for row := 0; row < int(d.lineCount); row++ {
		y := y0 + row
		// stop drawing when the bottom of the screen is reached
		if y >= ScreenHeight {
			break
		}
		data := d.spriteData[row]
		for col := 0; col < 8; col++ {
			x := x0 + col
			// skip to the next row when the right edge is reached
			if x >= ScreenWidth {
				break
			}
			f |= d.xorPixel(x, y, (data>>(7-col))&1)
		}
	}
	return f
}

func (d *Display) drawWrapped() uint8 {
	var f uint8
	for row := 0; row < int(d.lineCount); row++ {
		y := (int(d.vOffset) + row) % ScreenHeight
		data := d.spriteData[row]
		for col := 0; col < 8; col++ {
			x := (int(d.hOffset) + col) % ScreenWidth
			f |= d.xorPixel(x, y, (data>>(7-col))&1)
		}
	}
	return f
}

func (d *Display) xorPixel(x, y int, pixel uint8) uint8 {
	i := y*ScreenWidth + x
	collision := pixel & d.buffer[i]
	d.buffer[i] ^= pixel
	return collision
}

func (d *Display) clear() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
}

// reset clears the frame buffer and drops any latched sprite.
func (d *Display) reset() {
	d.clear()
	d.hOffset, d.vOffset, d.lineCount = 0, 0, 0
	d.spriteData = [maxSpriteRows]uint8{}
	d.dataReady = false
	d.vblankReady = false
}

func (d Display) OutputBuffer() [ScreenWidth * ScreenHeight]uint8 {
	return d.buffer
}
