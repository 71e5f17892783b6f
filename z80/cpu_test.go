package z80

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spjewkes/jrnz-go/mem"
)

func newTestCPU() *CPU {
	bus := mem.NewBus()
	bus.RAMStart = 0
	return NewCPU(bus)
}

func TestResetState(t *testing.T) {
	c := newTestCPU()
	assert.Equal(t, uint16(0xFFFF), c.Regs.AF.Word())
	assert.Equal(t, uint16(0xFFFF), c.Regs.SP.Word())
	assert.Equal(t, uint16(0), c.Regs.PC.Word())
	assert.False(t, c.IFF1)
	assert.Equal(t, 0, c.IM)
}

func TestLDRR(t *testing.T) {
	c := newTestCPU()
	c.Bus.Mem[0] = 0x47 // LD B,A
	c.Regs.AF.SetA(0x42)
	c.Step()
	assert.Equal(t, byte(0x42), c.Regs.BC.Hi())
	assert.Equal(t, uint16(1), c.Regs.PC.Word())
}

func TestLDIR(t *testing.T) {
	c := newTestCPU()
	// LDIR at 0; source block at 0x100, dest at 0x200, 3 bytes.
	c.Bus.Mem[0] = 0xED
	c.Bus.Mem[1] = 0xB0
	copy(c.Bus.Mem[0x100:], []byte{0x11, 0x22, 0x33})
	c.Regs.HL.SetWord(0x100)
	c.Regs.DE.SetWord(0x200)
	c.Regs.BC.SetWord(3)

	for i := 0; i < 3; i++ {
		c.Regs.PC.SetWord(0)
		c.Step()
	}

	assert.Equal(t, byte(0x11), c.Bus.Mem[0x200])
	assert.Equal(t, byte(0x22), c.Bus.Mem[0x201])
	assert.Equal(t, byte(0x33), c.Bus.Mem[0x202])
	assert.Equal(t, uint16(0), c.Regs.BC.Word())
	assert.Equal(t, uint16(0x103), c.Regs.HL.Word())
	assert.Equal(t, uint16(0x203), c.Regs.DE.Word())
}

func TestCallAndRetWithCondition(t *testing.T) {
	c := newTestCPU()
	// CALL Z,0x0100 at PC=0; Z flag set beforehand.
	c.Bus.Mem[0] = 0xCC
	c.Bus.Mem[1] = 0x00
	c.Bus.Mem[2] = 0x01
	c.Bus.Mem[0x100] = 0xC9 // RET
	c.Regs.AF.SetFlag(FlagZ, true)
	c.Regs.SP.SetWord(0xFFF0)

	c.Step() // CALL
	assert.Equal(t, uint16(0x100), c.Regs.PC.Word())
	assert.Equal(t, uint16(0xFFEE), c.Regs.SP.Word())
	assert.Equal(t, uint16(3), c.Bus.ReadAddrFromMem(0xFFEE))

	c.Step() // RET
	assert.Equal(t, uint16(3), c.Regs.PC.Word())
	assert.Equal(t, uint16(0xFFF0), c.Regs.SP.Word())
}

func TestCallNotTakenSkipsPush(t *testing.T) {
	c := newTestCPU()
	c.Bus.Mem[0] = 0xCC // CALL Z,nn
	c.Bus.Mem[1] = 0x00
	c.Bus.Mem[2] = 0x01
	c.Regs.AF.SetFlag(FlagZ, false)
	sp := c.Regs.SP.Word()

	c.Step()
	assert.Equal(t, uint16(3), c.Regs.PC.Word())
	assert.Equal(t, sp, c.Regs.SP.Word())
}

func TestInterruptIM1(t *testing.T) {
	c := newTestCPU()
	c.Bus.Mem[0] = 0x00 // NOP
	c.IM = 1
	c.IFF1 = true
	c.Regs.SP.SetWord(0xFFF0)
	c.Regs.PC.SetWord(0x1234)

	c.RequestINT()
	cycles := c.Step()

	assert.Equal(t, uint16(0x0038), c.Regs.PC.Word())
	assert.False(t, c.IFF1)
	assert.Equal(t, uint16(0x1234), c.Bus.ReadAddrFromMem(c.Regs.SP.Word()))
	assert.Equal(t, 13, cycles)
}

func TestNMITakesPriorityOverINT(t *testing.T) {
	c := newTestCPU()
	c.IFF1 = true
	c.Regs.SP.SetWord(0xFFF0)
	c.RequestINT()
	c.RequestNMI()

	c.Step()

	assert.Equal(t, uint16(0x0066), c.Regs.PC.Word())
	assert.True(t, c.INTPending, "INT should remain latched for after the NMI handler runs")
}

func TestHaltedCPUStillAdvancesRefresh(t *testing.T) {
	c := newTestCPU()
	c.Bus.Mem[0] = 0x76 // HALT
	c.Step()
	assert.True(t, c.Halted)

	r := c.Regs.IR.R()
	c.Step()
	assert.Equal(t, (r+1)&0x7F|(r&0x80), c.Regs.IR.R())
	assert.Equal(t, uint16(1), c.Regs.PC.Word(), "PC must not advance while halted")
}

func TestIndexedLoads(t *testing.T) {
	c := newTestCPU()
	// LD IX,0x2000 ; LD (IX+2),0x99 via two instructions.
	c.Bus.Mem[0] = 0xDD
	c.Bus.Mem[1] = 0x21
	c.Bus.Mem[2] = 0x00
	c.Bus.Mem[3] = 0x20
	c.Step()
	assert.Equal(t, uint16(0x2000), c.Regs.IX.Word())

	c.Bus.Mem[4] = 0xDD
	c.Bus.Mem[5] = 0x36 // LD (IX+d),n
	c.Bus.Mem[6] = 0x02
	c.Bus.Mem[7] = 0x99
	c.Step()
	assert.Equal(t, byte(0x99), c.Bus.Mem[0x2002])
}

func TestRLDRotatesNibbleBetweenAAndMemory(t *testing.T) {
	c := newTestCPU()
	// RLD: A's low nibble becomes (HL)'s low nibble; (HL)'s low nibble
	// moves to its high nibble; (HL)'s old high nibble becomes A's low
	// nibble.
	c.Bus.Mem[0] = 0xED
	c.Bus.Mem[1] = 0x6F
	c.Regs.AF.SetA(0x7A)
	c.Regs.HL.SetWord(0x8000)
	c.Bus.Mem[0x8000] = 0x31

	c.Step()

	assert.Equal(t, byte(0x73), c.Regs.AF.A())
	assert.Equal(t, byte(0x1A), c.Bus.Mem[0x8000])
}

func TestRRDRotatesNibbleBetweenAAndMemory(t *testing.T) {
	c := newTestCPU()
	c.Bus.Mem[0] = 0xED
	c.Bus.Mem[1] = 0x67
	c.Regs.AF.SetA(0x84)
	c.Regs.HL.SetWord(0x8000)
	c.Bus.Mem[0x8000] = 0x20

	c.Step()

	assert.Equal(t, byte(0x80), c.Regs.AF.A())
	assert.Equal(t, byte(0x42), c.Bus.Mem[0x8000])
}

func TestAddHLBCDoesNotTouchZeroFlag(t *testing.T) {
	c := newTestCPU()
	c.Bus.Mem[0] = 0x09 // ADD HL,BC
	c.Regs.HL.SetWord(0)
	c.Regs.BC.SetWord(0)
	c.Regs.AF.SetFlag(FlagZ, true)
	c.Step()
	assert.True(t, c.Regs.AF.Flag(FlagZ), "16-bit ADD must not touch Z")
	assert.False(t, c.Regs.AF.Flag(FlagC))
}
