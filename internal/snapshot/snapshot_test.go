package snapshot

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/nevisdale/chipvip/internal/chip8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame() Frame {
	var frame Frame
	frame[0] = 1              // top left
	frame[9] = 1              // second byte of the first row
	frame[width*height-1] = 1 // bottom right
	return frame
}

func Test_EncodePBM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodePBM(&buf, testFrame()))

	header := "P4\n64 32\n"
	data := buf.Bytes()
	require.Len(t, data, len(header)+width/8*height)
	assert.Equal(t, header, string(data[:len(header)]))

	pixels := data[len(header):]
	assert.Equal(t, uint8(0x80), pixels[0])
	assert.Equal(t, uint8(0x40), pixels[1])
	assert.Equal(t, uint8(0x01), pixels[len(pixels)-1])
	assert.Equal(t, uint8(0x00), pixels[2])
}

func Test_Image(t *testing.T) {
	t.Run("unscaled", func(t *testing.T) {
		img := Image(testFrame(), 1)
		assert.Equal(t, width, img.Bounds().Dx())
		assert.Equal(t, uint8(0xff), img.GrayAt(0, 0).Y)
		assert.Equal(t, uint8(0x00), img.GrayAt(1, 0).Y)
	})

	t.Run("scaled", func(t *testing.T) {
		img := Image(testFrame(), 4)
		assert.Equal(t, width*4, img.Bounds().Dx())
		assert.Equal(t, height*4, img.Bounds().Dy())
		assert.Equal(t, uint8(0xff), img.GrayAt(3, 3).Y)
		assert.Equal(t, uint8(0x00), img.GrayAt(4, 0).Y)
		assert.Equal(t, uint8(0xff), img.GrayAt(width*4-1, height*4-1).Y)
	})
}

func Test_EncodePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, testFrame(), 2))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, width*2, img.Bounds().Dx())
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func Test_Writer_SaveCrash(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	w := NewWriter(dir, 0)

	crash := &chip8.Error{
		Kind:     chip8.KindStackOverflow,
		Msg:      "call with a full stack",
		Snapshot: &chip8.Snapshot{Cycle: 42, PC: 0x0200, SP: 16},
	}
	require.NoError(t, w.SaveCrash("0000002a_0200_2200", crash, testFrame()))

	for _, ext := range []string{".pbm", ".png", ".txt", ".dot"} {
		assert.FileExists(t, filepath.Join(dir, "0000002a_0200_2200"+ext))
	}

	dump, err := os.ReadFile(filepath.Join(dir, "0000002a_0200_2200.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(dump), "ABORTING EXECUTION: STACK OVERFLOW (call with a full stack)")

	graph, err := os.ReadFile(filepath.Join(dir, "0000002a_0200_2200.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(graph), "digraph")
}

func Test_Writer_NoSnapshot(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 1)

	crash := &chip8.Error{Kind: chip8.KindInvalidAddress, Msg: "memory access out of range: 0x1000"}
	require.NoError(t, w.SaveCrash("crash", crash, Frame{}))

	assert.FileExists(t, filepath.Join(dir, "crash.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "crash.dot"))
}

func Test_Writer_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	w := NewWriter(filepath.Join(file, "dir"), 1)
	assert.Error(t, w.SaveFrame("frame", Frame{}))
}
