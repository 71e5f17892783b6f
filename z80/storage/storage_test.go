package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func byteCell(init byte) (Element, *byte) {
	v := init
	return NewByte(func() byte { return v }, func(b byte) { v = b }, true), &v
}

func wordCell(init uint16) Element {
	lo := byte(init)
	hi := byte(init >> 8)
	return NewWord(
		func() byte { return lo }, func() byte { return hi },
		func(b byte) { lo = b }, func(b byte) { hi = b },
		true,
	)
}

func TestAssignReadOnlyIsNoOp(t *testing.T) {
	dst, ptr := byteCell(0x00)
	src := ImmediateByte(0x42)
	dst.Assign(src)
	assert.Equal(t, byte(0x42), *ptr)

	// assigning into an immediate must be a no-op, never panic
	assert.NotPanics(t, func() { src.Assign(ImmediateByte(0xFF)) })
	assert.Equal(t, byte(0x42), src.Byte())
}

func TestAdcOverflowSeedCase(t *testing.T) {
	// spec §8 scenario 1: A=0x7F, operand=1, CF=0 -> A=0x80, H=1, V=1, C=0
	a := ImmediateByte(0x7F)
	op := ImmediateByte(0x01)
	result := a.AddCarry(op, false)
	assert.Equal(t, byte(0x80), result.Byte())
	assert.True(t, result.IsHalf())
	assert.True(t, result.IsOverflow())
	assert.False(t, result.IsCarry())
	assert.True(t, result.IsNeg())
	assert.False(t, result.IsZero())
}

func TestSbc16BorrowSeedCase(t *testing.T) {
	// spec §8 scenario 2: HL=0x3FFF, operand=0xFFFF, CF=0 -> HL=0x4000, C=1, V=0
	hl := ImmediateWord(0x3FFF)
	op := ImmediateWord(0xFFFF)
	result := hl.SubCarry(op, false)
	assert.Equal(t, uint16(0x4000), result.Word())
	assert.True(t, result.IsCarry())
	assert.False(t, result.IsOverflow())
}

func TestNegSeedCase(t *testing.T) {
	// spec §8 scenario 4: A=0x28 -> NEG -> A=0xD8, C=1, H=1, V=0
	zero := ImmediateByte(0x00)
	a := ImmediateByte(0x28)
	result := zero.Sub(a)
	assert.Equal(t, byte(0xD8), result.Byte())
	assert.True(t, result.IsCarry())
	assert.True(t, result.IsHalf())
	assert.False(t, result.IsOverflow())
	assert.True(t, result.IsNeg())
}

func TestParityMatchesPopcount(t *testing.T) {
	for _, v := range []byte{0x00, 0x01, 0x03, 0xFF, 0xAA, 0x55} {
		e := ImmediateByte(v)
		count := 0
		for b := 0; b < 8; b++ {
			if v&(1<<uint(b)) != 0 {
				count++
			}
		}
		assert.Equal(t, count%2 == 0, e.IsEvenParity(), "value %x", v)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	mem := make([]byte, 0x10000)
	bus := fakeBus{mem: mem}

	sp := uint16(0xFFF0)
	e := wordCell(0xBEEF)
	sp = e.Push(bus, sp)
	assert.Equal(t, uint16(0xFFEE), sp)

	out := wordCell(0)
	sp = out.Pop(bus, sp)
	assert.Equal(t, uint16(0xFFF0), sp)
	assert.Equal(t, uint16(0xBEEF), out.Word())
}

type fakeBus struct{ mem []byte }

func (f fakeBus) WriteData(addr uint16, v byte) { f.mem[addr] = v }
func (f fakeBus) ReadData(addr uint16) byte     { return f.mem[addr] }

func TestSwapWith(t *testing.T) {
	a := wordCell(0x1234)
	b := wordCell(0x5678)
	a.SwapWith(b)
	assert.Equal(t, uint16(0x5678), a.Word())
	assert.Equal(t, uint16(0x1234), b.Word())
}

func TestRotateLeftThroughCarry(t *testing.T) {
	e, _ := byteCell(0x80)
	r := e.RotateLeft(true, false)
	assert.Equal(t, byte(0x00), e.Byte())
	assert.True(t, r.IsCarry())
}

func TestBitHelpers(t *testing.T) {
	e, _ := byteCell(0x00)
	e.SetBit(3)
	assert.True(t, e.GetBit(3))
	e.ResetBit(3)
	assert.False(t, e.GetBit(3))
}
