package chip8

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryController_ReadWrite(t *testing.T) {
	mem := NewMemoryController()
	require.Equal(t, 0x1000, mem.Size())

	require.NoError(t, mem.Write8(0x0fff, 0xab))
	v, err := mem.Read8(0x0fff)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xab), v)

	_, err = mem.Read8(0x1000)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	err = mem.Write8(0x1000, 0x01)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func Test_MemoryController_WriteBlock(t *testing.T) {
	t.Run("block fits", func(t *testing.T) {
		mem := NewMemoryController()
		require.NoError(t, mem.WriteBlock(0x0ffe, []uint8{0x01, 0x02}))

		v, err := mem.Read8(0x0fff)
		require.NoError(t, err)
		assert.Equal(t, uint8(0x02), v)
	})

	t.Run("block past the end of the bank", func(t *testing.T) {
		mem := NewMemoryController()
		err := mem.WriteBlock(0x0fff, []uint8{0x01, 0x02})
		assert.ErrorIs(t, err, ErrOutOfRange)

		// nothing is written
		v, err := mem.Read8(0x0fff)
		require.NoError(t, err)
		assert.Equal(t, uint8(0x00), v)
	})
}

func Test_MemoryController_CheckRange(t *testing.T) {
	mem := NewMemoryController()

	assert.NoError(t, mem.checkRange(0x0ffd, 3))
	assert.NoError(t, mem.checkRange(0xffff, 0))
	assert.ErrorIs(t, mem.checkRange(0x0ffe, 3), ErrInvalidAddress)
}

func Test_MemoryController_Banks(t *testing.T) {
	mem := NewMemoryController()

	bank := NewRAM()
	bank.ram[0x0300] = 0x77
	require.NoError(t, mem.AttachBank(0, bank))
	assert.Same(t, bank, mem.ActiveBank())

	v, err := mem.Read8(0x0300)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x77), v)

	assert.ErrorIs(t, mem.AttachBank(1, NewRAM()), ErrOutOfRange)
	assert.ErrorIs(t, mem.AttachBank(-1, NewRAM()), ErrOutOfRange)
	assert.Error(t, mem.AttachBank(0, nil))

	mem.Clear()
	v, err = mem.Read8(0x0300)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x00), v)
}
