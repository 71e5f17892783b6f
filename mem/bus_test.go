package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestROMGuard(t *testing.T) {
	b := NewBus()
	b.Mem[0x1000] = 0xAA
	b.WriteData(0x1000, 0x55)
	assert.Equal(t, byte(0xAA), b.ReadData(0x1000), "write below RAMStart must be dropped")

	b.WriteData(0x4000, 0x55)
	assert.Equal(t, byte(0x55), b.ReadData(0x4000), "write at RAMStart must succeed")
}

func TestEndianness(t *testing.T) {
	b := NewBus()
	for _, addr := range []uint16{0x4000, 0x5000, 0xFFFE} {
		b.WriteAddrToMem(addr, 0xBEEF)
		assert.Equal(t, uint16(0xBEEF), b.ReadAddrFromMem(addr))
	}
}

func TestReadOpcodePlain(t *testing.T) {
	b := NewBus()
	b.Mem[0x8000] = 0x3E // LD A,n
	op, off := b.ReadOpcode(0x8000)
	assert.Equal(t, uint32(0x3E), op)
	assert.Equal(t, uint16(1), off)
}

func TestReadOpcodePrefixed(t *testing.T) {
	b := NewBus()
	b.Mem[0x8000] = PrefixCB
	b.Mem[0x8001] = 0x47 // BIT 0,A
	op, off := b.ReadOpcode(0x8000)
	assert.Equal(t, uint32(0xCB47), op)
	assert.Equal(t, uint16(2), off)
}

func TestReadOpcodeDDCB(t *testing.T) {
	b := NewBus()
	b.Mem[0x8000] = PrefixDD
	b.Mem[0x8001] = PrefixCB
	b.Mem[0x8002] = 0x05 // displacement
	b.Mem[0x8003] = 0x46 // BIT 0,(IX+d)
	op, off := b.ReadOpcode(0x8000)
	assert.Equal(t, uint32(0xDDCB46), op)
	assert.Equal(t, uint16(2), off)
}

func TestReadPortDefaultsNoOp(t *testing.T) {
	b := NewBus()
	assert.Equal(t, byte(0xFF), b.ReadPort(0xFEFE))
	b.WritePort(0xFEFE, 0x00) // must not panic
}
