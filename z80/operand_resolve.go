package z80

import "github.com/spjewkes/jrnz-go/z80/storage"

// resolve materializes a StorageElement for tag, reading any immediate or
// displacement bytes the operand needs from the bus and advancing
// CurrOperandPC past them. This is the z80 package's operand factory: the
// teacher resolves one byte into c.M per AddressingMode (cpu/cpu.go,
// decode()); Z80 operands are wider and more varied; resolve generalizes the
// same "consume bytes, hand back a handle" shape into storage.Element
// (spec §9, "polymorphism without inheritance").
func (c *CPU) resolve(tag OperandTag) storage.Element {
	switch tag {
	case OpUnused:
		return storage.Empty()

	case OpAF:
		return storage.NewWord(c.Regs.AF.Lo, c.Regs.AF.Hi, c.Regs.AF.SetLo, c.Regs.AF.SetHi, true)
	case OpBC:
		return storage.NewWord(c.Regs.BC.Lo, c.Regs.BC.Hi, c.Regs.BC.SetLo, c.Regs.BC.SetHi, true)
	case OpDE:
		return storage.NewWord(c.Regs.DE.Lo, c.Regs.DE.Hi, c.Regs.DE.SetLo, c.Regs.DE.SetHi, true)
	case OpHL:
		return storage.NewWord(c.Regs.HL.Lo, c.Regs.HL.Hi, c.Regs.HL.SetLo, c.Regs.HL.SetHi, true)
	case OpSP:
		return storage.NewWord(c.Regs.SP.Lo, c.Regs.SP.Hi, c.Regs.SP.SetLo, c.Regs.SP.SetHi, true)
	case OpIX:
		return storage.NewWord(c.Regs.IX.Lo, c.Regs.IX.Hi, c.Regs.IX.SetLo, c.Regs.IX.SetHi, true)
	case OpIY:
		return storage.NewWord(c.Regs.IY.Lo, c.Regs.IY.Hi, c.Regs.IY.SetLo, c.Regs.IY.SetHi, true)
	case OpPC:
		return storage.NewWord(c.Regs.PC.Lo, c.Regs.PC.Hi, c.Regs.PC.SetLo, c.Regs.PC.SetHi, true)

	case OpA:
		return storage.NewByte(c.Regs.AF.A, c.Regs.AF.SetA, true)
	case OpB:
		return storage.NewByte(c.Regs.BC.Hi, c.Regs.BC.SetHi, true)
	case OpC:
		return storage.NewByte(c.Regs.BC.Lo, c.Regs.BC.SetLo, true)
	case OpD:
		return storage.NewByte(c.Regs.DE.Hi, c.Regs.DE.SetHi, true)
	case OpE:
		return storage.NewByte(c.Regs.DE.Lo, c.Regs.DE.SetLo, true)
	case OpH:
		return storage.NewByte(c.Regs.HL.Hi, c.Regs.HL.SetHi, true)
	case OpL:
		return storage.NewByte(c.Regs.HL.Lo, c.Regs.HL.SetLo, true)
	case OpIXH:
		return storage.NewByte(c.Regs.IX.Hi, c.Regs.IX.SetHi, true)
	case OpIXL:
		return storage.NewByte(c.Regs.IX.Lo, c.Regs.IX.SetLo, true)
	case OpIYH:
		return storage.NewByte(c.Regs.IY.Hi, c.Regs.IY.SetHi, true)
	case OpIYL:
		return storage.NewByte(c.Regs.IY.Lo, c.Regs.IY.SetLo, true)
	case OpI:
		return storage.NewByte(c.Regs.IR.I, c.Regs.IR.SetI, true)
	case OpR:
		return storage.NewByte(c.Regs.IR.R, c.Regs.IR.SetR, true)

	case OpN:
		v := c.Bus.ReadData(c.CurrOperandPC)
		c.CurrOperandPC++
		return storage.ImmediateByte(v)
	case OpNN:
		v := c.Bus.ReadAddrFromMem(c.CurrOperandPC)
		c.CurrOperandPC += 2
		return storage.ImmediateWord(v)

	case OpIndBC:
		return c.memByte(c.Regs.BC.Word())
	case OpIndDE:
		return c.memByte(c.Regs.DE.Word())
	case OpIndHL:
		return c.memByte(c.Regs.HL.Word())
	case OpIndSP:
		return c.memWord(c.Regs.SP.Word())
	case OpIndN:
		addr := uint16(c.Bus.ReadData(c.CurrOperandPC))
		c.CurrOperandPC++
		return c.memByte(addr)
	case OpIndNN:
		addr := c.Bus.ReadAddrFromMem(c.CurrOperandPC)
		c.CurrOperandPC += 2
		return c.memWord(addr)

	case OpIndIXd:
		return c.memByte(c.indexedAddr(c.Regs.IX.Word()))
	case OpIndIYd:
		return c.memByte(c.indexedAddr(c.Regs.IY.Word()))

	case OpPortC:
		return c.port(c.Regs.BC.Word())
	case OpPortN:
		n := c.Bus.ReadData(c.CurrOperandPC)
		c.CurrOperandPC++
		return c.port(uint16(c.Regs.AF.A())<<8 | uint16(n))

	case OpZero, OpOne, OpTwo, OpThree, OpFour, OpFive, OpSix, OpSeven:
		return storage.ImmediateByte(literalValue[tag])

	case OpRST00, OpRST08, OpRST10, OpRST18, OpRST20, OpRST28, OpRST30, OpRST38:
		return storage.ImmediateWord(rstTarget[tag])
	}
	return storage.Empty()
}

// indexedAddr reads the signed displacement byte at CurrOperandPC and adds
// it to base, per the (IX+d)/(IY+d) addressing form. DDCB/FDCB opcodes place
// the displacement before the suffix opcode byte; the decoder's
// operandOffset already points CurrOperandPC at it in both cases.
func (c *CPU) indexedAddr(base uint16) uint16 {
	d := int8(c.Bus.ReadData(c.CurrOperandPC))
	c.CurrOperandPC++
	return uint16(int32(base) + int32(d))
}

func (c *CPU) memByte(addr uint16) storage.Element {
	return storage.NewByte(
		func() byte { return c.Bus.ReadData(addr) },
		func(v byte) { c.Bus.WriteData(addr, v) },
		c.Bus.Writable(addr),
	)
}

func (c *CPU) memWord(addr uint16) storage.Element {
	return storage.NewWord(
		func() byte { return c.Bus.ReadData(addr) },
		func() byte { return c.Bus.ReadData(addr + 1) },
		func(v byte) { c.Bus.WriteData(addr, v) },
		func(v byte) { c.Bus.WriteData(addr+1, v) },
		c.Bus.Writable(addr) && c.Bus.Writable(addr+1),
	)
}

func (c *CPU) port(addr uint16) storage.Element {
	return storage.NewByte(
		func() byte { return c.Bus.ReadPort(addr) },
		func(v byte) { c.Bus.WritePort(addr, v) },
		true,
	)
}
