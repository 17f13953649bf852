package chip8

import (
	"fmt"
	"io"
	"os"
)

// MaxROMSize is the room between the entry point and the end of memory.
const MaxROMSize = bankSizeBytes - int(EntryPoint)

// ReadROMFile reads a raw CHIP-8 program image.
func ReadROMFile(path string) ([]uint8, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open the file: %w", err)
	}
	defer file.Close()

	return ReadROM(file)
}

func ReadROM(r io.Reader) ([]uint8, error) {
	// read one byte more than fits to detect oversized images
	rom, err := io.ReadAll(io.LimitReader(r, int64(MaxROMSize)+1))
	if err != nil {
		return nil, fmt.Errorf("couldn't read the rom: %w", err)
	}
	if len(rom) == 0 {
		return nil, fmt.Errorf("empty rom")
	}
	if len(rom) > MaxROMSize {
		return nil, fmt.Errorf("rom is larger than %d bytes: %w", MaxROMSize, ErrOutOfRange)
	}
	return rom, nil
}
