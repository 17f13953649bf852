package ui

import (
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/nevisdale/chipvip/internal/bus"
	"github.com/nevisdale/chipvip/internal/chip8"
	"github.com/nevisdale/chipvip/internal/phosphor"
	"github.com/nevisdale/chipvip/internal/snapshot"
	"golang.org/x/image/font/basicfont"
)

// Tab - hide or show debug info
// P - pause
// N - one step and stop
// F12 - save a snapshot of the screen

// 1234/QWER/ASDF/ZXCV laid out like the COSMAC VIP hex keypad
var keymap = map[ebiten.Key]uint8{
	ebiten.KeyDigit1: 0x1, ebiten.KeyDigit2: 0x2, ebiten.KeyDigit3: 0x3, ebiten.KeyDigit4: 0xc,
	ebiten.KeyQ: 0x4, ebiten.KeyW: 0x5, ebiten.KeyE: 0x6, ebiten.KeyR: 0xd,
	ebiten.KeyA: 0x7, ebiten.KeyS: 0x8, ebiten.KeyD: 0x9, ebiten.KeyF: 0xe,
	ebiten.KeyZ: 0xa, ebiten.KeyX: 0x0, ebiten.KeyC: 0xb, ebiten.KeyV: 0xf,
}

var (
	colorOn    = color.RGBA{0xe0, 0xf0, 0xd0, 0xff}
	colorOff   = color.RGBA{0x10, 0x18, 0x10, 0xff}
	colorPanel = color.RGBA{50, 50, 50, 255}
	colorText  = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
)

const (
	debugScreenWidth  = 240
	debugScreenHeight = 420

	lineHeight   = 13
	disasmWindow = 6

	messageFrames = 2 * bus.FrameRate
)

type Options struct {
	Scale     int
	Fade      bool
	FadeRate  uint8
	Snapshots *snapshot.Writer
}

type UI struct {
	bus    *bus.Bus
	disasm map[uint16]string
	snaps  *snapshot.Writer

	scale     int
	phosphor  *phosphor.Screen
	pixels    []byte
	gameImage *ebiten.Image

	showDebugInfo bool
	message       string
	messageTTL    int
}

func New(b *bus.Bus, opts Options) *UI {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	return &UI{
		bus:           b,
		showDebugInfo: true,
		disasm:        b.Disassemble(),
		snaps:         opts.Snapshots,
		scale:         opts.Scale,
		phosphor:      phosphor.New(opts.Fade, opts.FadeRate),
		pixels:        make([]byte, chip8.ScreenWidth*chip8.ScreenHeight*4),
		gameImage:     ebiten.NewImage(chip8.ScreenWidth, chip8.ScreenHeight),
	}
}

func (ui *UI) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		ui.showDebugInfo = !ui.showDebugInfo
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		ui.bus.TogglePause()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		ui.bus.OneStepAndStop()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		ui.saveSnapshot()
	}

	for key, k := range keymap {
		if inpututil.IsKeyJustPressed(key) {
			ui.bus.KeyPress(k)
		}
		if inpututil.IsKeyJustReleased(key) {
			ui.bus.KeyRelease(k)
		}
	}

	if err := ui.bus.Tic(); err != nil {
		return err
	}
	ui.phosphor.Update(ui.bus.Screen())

	if ui.messageTTL > 0 {
		ui.messageTTL--
	}
	return nil
}

func (ui *UI) saveSnapshot() {
	if ui.snaps == nil {
		return
	}
	name := ui.bus.DebugFilename()
	if err := ui.snaps.SaveFrame(name, ui.bus.Screen()); err != nil {
		log.Printf("couldn't save snapshot: %s", err)
		ui.showMessage("SNAPSHOT FAILED")
		return
	}
	ui.showMessage("SAVED " + name)
}

func (ui *UI) showMessage(msg string) {
	ui.message = msg
	ui.messageTTL = messageFrames
}

func (ui *UI) Draw(screen *ebiten.Image) {
	ui.phosphor.RGBA(ui.pixels, colorOn, colorOff)
	ui.gameImage.WritePixels(ui.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(ui.scale), float64(ui.scale))
	screen.DrawImage(ui.gameImage, op)

	if ui.messageTTL > 0 {
		ebitenutil.DebugPrintAt(screen, ui.message, 4, 4)
	}

	debugScreenOffsetX := float32(ui.gameWidth())
	vector.DrawFilledRect(screen, debugScreenOffsetX, 0, debugScreenWidth, float32(ui.height()), colorPanel, false)
	if !ui.showDebugInfo {
		return
	}
	text.Draw(screen, ui.debugText(), basicfont.Face7x13, int(debugScreenOffsetX)+6, lineHeight, colorText)
}

func (ui *UI) debugText() string {
	info := ui.bus.DebugInfo()

	status := info.Status
	switch {
	case ui.bus.Halted() != nil:
		status = "HALTED"
	case ui.bus.Paused():
		status = "PAUSED"
	}

	var infoStr strings.Builder
	fmt.Fprintf(&infoStr, "FPS: %0.0f\n", ebiten.ActualFPS())
	fmt.Fprintf(&infoStr, "STATUS: %s\n", status)
	fmt.Fprintf(&infoStr, "CYCLE: %d\n", info.Cycle)
	fmt.Fprintf(&infoStr, "PC: $%04X  I: $%04X  SP: %d\n", info.NextPC, info.I, info.SP)
	fmt.Fprintf(&infoStr, "DT: %3d  ST: %3d\n", info.DelayTimer, info.SoundTimer)
	for i := 0; i < len(info.Registers); i += 2 {
		fmt.Fprintf(&infoStr, "V%X: $%02X [%03d]  V%X: $%02X [%03d]\n",
			i, info.Registers[i], info.Registers[i],
			i+1, info.Registers[i+1], info.Registers[i+1])
	}
	infoStr.WriteString("\n")

	pc := int(info.NextPC)
	for addr := pc - 2*disasmWindow; addr <= pc+2*disasmWindow; addr += 2 {
		if addr < int(chip8.EntryPoint) {
			continue
		}
		line, ok := ui.disasm[uint16(addr)]
		if !ok {
			// pc is odd after a jump to an odd address
			line = ui.bus.DisassembleAt(uint16(addr))
		}
		if addr == pc {
			infoStr.WriteString("*" + line + "\n")
		} else {
			infoStr.WriteString(" " + line + "\n")
		}
	}
	return infoStr.String()
}

func (ui *UI) gameWidth() int {
	return chip8.ScreenWidth * ui.scale
}

func (ui *UI) width() int {
	return ui.gameWidth() + debugScreenWidth
}

func (ui *UI) height() int {
	return max(chip8.ScreenHeight*ui.scale, debugScreenHeight)
}

func (ui *UI) Layout(_, _ int) (int, int) {
	return ui.width(), ui.height()
}

func RunUI(ui *UI) error {
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(ui.width(), ui.height())
	ebiten.SetWindowTitle("chipvip")
	ebiten.SetTPS(bus.FrameRate)
	return ebiten.RunGame(ui)
}
