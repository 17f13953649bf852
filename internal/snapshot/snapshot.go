// Package snapshot exports the frame buffer and crash state of a machine to
// disk: raw PBM and scaled PNG images, crash dump text and a Graphviz view
// of the faulting machine state.
package snapshot

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/bradleyjkemp/memviz"
	"github.com/nevisdale/chipvip/internal/chip8"
	"golang.org/x/image/draw"
)

const (
	width  = chip8.ScreenWidth
	height = chip8.ScreenHeight
)

type Frame = [width * height]uint8

// EncodePBM writes frame as a binary (P4) portable bitmap, a set bit is a
// lit pixel.
func EncodePBM(w io.Writer, frame Frame) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P4\n%d %d\n", width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x += 8 {
			var b uint8
			for bit := 0; bit < 8; bit++ {
				if frame[y*width+x+bit] != 0 {
					b |= 0x80 >> bit
				}
			}
			bw.WriteByte(b)
		}
	}
	return bw.Flush()
}

// Image converts frame to a grayscale image scaled by an integer factor.
func Image(frame Frame, scale int) *image.Gray {
	src := image.NewGray(image.Rect(0, 0, width, height))
	for i, p := range frame {
		if p != 0 {
			src.Pix[i] = 0xff
		}
	}
	if scale <= 1 {
		return src
	}

	dst := image.NewGray(image.Rect(0, 0, width*scale, height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func EncodePNG(w io.Writer, frame Frame, scale int) error {
	return png.Encode(w, Image(frame, scale))
}

// Writer stores snapshots in a directory, creating it on first use.
type Writer struct {
	dir   string
	scale int
}

func NewWriter(dir string, scale int) *Writer {
	if scale < 1 {
		scale = 1
	}
	return &Writer{dir: dir, scale: scale}
}

func (w Writer) Dir() string {
	return w.dir
}

// SaveFrame writes name.pbm and name.png.
func (w Writer) SaveFrame(name string, frame Frame) error {
	if err := w.create(name+".pbm", func(f io.Writer) error {
		return EncodePBM(f, frame)
	}); err != nil {
		return err
	}
	return w.create(name+".png", func(f io.Writer) error {
		return EncodePNG(f, frame, w.scale)
	})
}

// SaveCrash writes the frame, the crash dump as name.txt and the snapshot
// graph as name.dot.
func (w Writer) SaveCrash(name string, crash *chip8.Error, frame Frame) error {
	if err := w.SaveFrame(name, frame); err != nil {
		return err
	}
	if err := w.create(name+".txt", func(f io.Writer) error {
		_, err := io.WriteString(f, crash.CrashDump())
		return err
	}); err != nil {
		return err
	}
	if crash.Snapshot == nil {
		return nil
	}
	return w.create(name+".dot", func(f io.Writer) error {
		memviz.Map(f, crash.Snapshot)
		return nil
	})
}

func (w Writer) create(name string, encode func(io.Writer) error) (rerr error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("couldn't create snapshot dir: %w", err)
	}

	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("couldn't create %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("couldn't close %s: %w", path, err)
		}
	}()

	if err := encode(f); err != nil {
		return fmt.Errorf("couldn't write %s: %w", path, err)
	}
	return nil
}
