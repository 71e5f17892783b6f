package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spjewkes/jrnz-go/mem"
	"github.com/spjewkes/jrnz-go/z80"
)

func TestLoadSNARejectsWrongSize(t *testing.T) {
	bus := mem.NewBus()
	cpu := z80.NewCPU(bus)
	err := LoadSNA(make([]byte, 10), cpu, bus)
	assert.Error(t, err)
}

func TestLoadSNARestoresStateAndPerformsRETN(t *testing.T) {
	bus := mem.NewBus()
	cpu := z80.NewCPU(bus)

	data := make([]byte, snaSize)
	data[0] = 0x3F // I
	data[25] = 0x01 // interrupt mode 1
	// SP at offset 23-24: point at a RAM location holding our "return" address.
	data[23] = 0x00
	data[24] = 0x60 // SP = 0x6000
	// RAM image starts at offset 27, covering 0x4000-0xFFFF; place a word at
	// 0x6000 (index 0x2000 into the RAM image) to serve as the return addr.
	ramOffset := 27 + (0x6000 - 0x4000)
	data[ramOffset] = 0x34
	data[ramOffset+1] = 0x12

	err := LoadSNA(data, cpu, bus)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x3F), cpu.Regs.IR.I())
	assert.Equal(t, 1, cpu.IM)
	assert.Equal(t, uint16(0x1234), cpu.Regs.PC.Word())
	assert.Equal(t, uint16(0x6002), cpu.Regs.SP.Word())
}

func TestLoadZ80Version1Uncompressed(t *testing.T) {
	bus := mem.NewBus()
	cpu := z80.NewCPU(bus)

	header := make([]byte, 30)
	header[6] = 0x00 // PC low
	header[7] = 0x80 // PC high = 0x8000 => version 1 marker
	ramData := make([]byte, 49152)
	ramData[0] = 0xAA

	full := append(header, ramData...)
	err := LoadZ80(full, cpu, bus)
	assert.NoError(t, err)
	assert.Equal(t, byte(0xAA), bus.Mem[0x4000])
}

func TestDecompressBlockExpandsRLE(t *testing.T) {
	bus := mem.NewBus()
	block := []byte{0x01, 0xED, 0xED, 0x03, 0x99, 0x02}
	decompressBlock(block, true, 0x8000, bus)
	assert.Equal(t, byte(0x01), bus.Mem[0x8000])
	assert.Equal(t, byte(0x99), bus.Mem[0x8001])
	assert.Equal(t, byte(0x99), bus.Mem[0x8002])
	assert.Equal(t, byte(0x99), bus.Mem[0x8003])
	assert.Equal(t, byte(0x02), bus.Mem[0x8004])
}
