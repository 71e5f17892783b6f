package z80

import "github.com/spjewkes/jrnz-go/z80/storage"

// execute materializes inst's operands and dispatches to the handler for
// its Type, returning the T-states charged. One case per InstType, working
// uniformly against whatever storage.Elements Dst/Src resolve to (spec §4.5)
// — the teacher instead has one func(*Cpu) byte per opcode (cpu/instructions.go);
// collapsing that into a type-tagged switch is viable here because the
// decoder already normalized every Z80 opcode down to a handful of operand
// shapes via OperandTag.
func (c *CPU) execute(inst Instruction) int {
	dst := c.resolve(inst.Dst)
	src := c.resolve(inst.Src)
	// (nn) is a one-byte cell when the other operand is 8-bit (LD (nn),A
	// and LD A,(nn)); its address is the word resolve just consumed.
	if inst.Dst == OpIndNN && src.Is8Bit() {
		dst = c.memByte(c.Bus.ReadAddrFromMem(c.CurrOperandPC - 2))
	}
	if inst.Src == OpIndNN && dst.Is8Bit() {
		src = c.memByte(c.Bus.ReadAddrFromMem(c.CurrOperandPC - 2))
	}

	switch inst.Type {
	case InstInvalid, InstNOP:
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstLD:
		dst.Assign(matchWidth(src, dst))
		if inst.Dst == OpA && inst.Src == OpI || inst.Dst == OpA && inst.Src == OpR {
			c.setIRFlags(dst)
		}
		if inst.Dst == OpSP {
			c.TopOfStack = c.Regs.SP.Word()
		}
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstLDI, InstLDD:
		c.blockLoad(inst.Type == InstLDI)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstLDIR, InstLDDR:
		c.blockLoad(inst.Type == InstLDIR)
		if c.Regs.BC.Word() != 0 {
			return inst.Cycles
		}
		c.advancePC(inst.Size)
		return inst.CyclesNotTaken

	case InstCPI, InstCPD:
		c.blockCompare(inst.Type == InstCPI)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstCPIR, InstCPDR:
		c.blockCompare(inst.Type == InstCPIR)
		if c.Regs.BC.Word() != 0 && !c.Regs.AF.Flag(FlagZ) {
			return inst.Cycles
		}
		c.advancePC(inst.Size)
		return inst.CyclesNotTaken

	case InstAND, InstOR, InstXOR:
		c.logicOp(inst.Type, dst, src)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstCP:
		r := dst.Sub(matchWidth(src, dst))
		c.setArithFlags(r, true, true)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstADD:
		c.add(dst, src, false)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstADC:
		c.add(dst, src, true)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstSUB:
		c.sub(dst, src, false)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstSBC:
		c.sub(dst, src, true)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstINC:
		c.incdec(dst, false)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstDEC:
		c.incdec(dst, true)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstJP:
		if c.condTrue(inst.Condition) {
			c.Regs.PC.SetWord(src.Word())
			return inst.Cycles
		}
		c.advancePC(inst.Size)
		return inst.TakenCycles(false)

	case InstJR:
		taken := c.condTrue(inst.Condition)
		d := int8(c.Bus.ReadData(c.CurrOperandPC))
		c.advancePC(inst.Size)
		if taken {
			c.Regs.PC.SetWord(uint16(int32(c.Regs.PC.Word()) + int32(d)))
			return inst.Cycles
		}
		return inst.TakenCycles(false)

	case InstDJNZ:
		d := int8(c.Bus.ReadData(c.CurrOperandPC))
		b := c.Regs.BC.Hi() - 1
		c.Regs.BC.SetHi(b)
		c.advancePC(inst.Size)
		if b != 0 {
			c.Regs.PC.SetWord(uint16(int32(c.Regs.PC.Word()) + int32(d)))
			return inst.Cycles
		}
		return inst.TakenCycles(false)

	case InstCALL:
		taken := c.condTrue(inst.Condition)
		target := src.Word()
		c.advancePC(inst.Size)
		if taken {
			c.pushWord(c.Regs.PC.Word())
			c.Regs.PC.SetWord(target)
			return inst.Cycles
		}
		return inst.TakenCycles(false)

	case InstRET:
		if c.condTrue(inst.Condition) {
			c.Regs.PC.SetWord(c.popWord())
			return inst.Cycles
		}
		c.advancePC(inst.Size)
		return inst.TakenCycles(false)

	case InstRETN:
		c.IFF1 = c.IFF2
		c.Regs.PC.SetWord(c.popWord())
		return inst.Cycles

	case InstRETI:
		c.Regs.PC.SetWord(c.popWord())
		return inst.Cycles

	case InstRST:
		c.advancePC(inst.Size)
		c.pushWord(c.Regs.PC.Word())
		c.Regs.PC.SetWord(dst.Word())
		return inst.Cycles

	case InstPUSH:
		c.pushWord(src.Word())
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstPOP:
		dst.Set(c.popWord())
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstEX:
		c.exchange(inst.Dst, inst.Src, dst, src)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstEXX:
		c.Regs.ExxSwap()
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstBIT:
		n := uint(src.Byte())
		c.Regs.AF.SetFlag(FlagZ, !dst.GetBit(n))
		c.Regs.AF.SetFlag(FlagH, true)
		c.Regs.AF.SetFlag(FlagN, false)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstSET:
		dst.SetBit(uint(src.Byte()))
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstRES:
		dst.ResetBit(uint(src.Byte()))
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstRLCA, InstRLA, InstRRCA, InstRRA:
		c.rotateAccum(inst.Type)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstRLC, InstRRC, InstRL, InstRR, InstSLA, InstSLL, InstSRA, InstSRL:
		c.rotateShift(inst.Type, dst)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstRLD, InstRRD:
		c.decimalRotate(inst.Type == InstRLD, src)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstSCF:
		c.Regs.AF.SetFlag(FlagC, true)
		c.Regs.AF.SetFlag(FlagN, false)
		c.Regs.AF.SetFlag(FlagH, false)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstCCF:
		h := c.Regs.AF.Flag(FlagC)
		c.Regs.AF.SetFlag(FlagH, h)
		c.Regs.AF.InvFlag(FlagC)
		c.Regs.AF.SetFlag(FlagN, false)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstCPL:
		c.Regs.AF.SetA(^c.Regs.AF.A())
		c.Regs.AF.SetFlag(FlagN, true)
		c.Regs.AF.SetFlag(FlagH, true)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstDAA:
		c.daa()
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstNEG:
		c.neg()
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstDI:
		c.IFF1, c.IFF2 = false, false
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstEI:
		c.IFF1, c.IFF2 = true, true
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstIM:
		c.IM = int(src.Byte())
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstHALT:
		c.Halted = true
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstIN:
		dst.Assign(matchWidth(src, dst))
		if inst.Src == OpPortC {
			c.setInFlags(dst)
		}
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstOUT:
		dst.Assign(matchWidth(src, dst))
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstINI, InstIND:
		c.blockIO(inst.Type == InstINI, true)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstINIR, InstINDR:
		c.blockIO(inst.Type == InstINIR, true)
		if c.Regs.BC.Hi() != 0 {
			return inst.Cycles
		}
		c.advancePC(inst.Size)
		return inst.CyclesNotTaken

	case InstOUTI, InstOUTD:
		c.blockIO(inst.Type == InstOUTI, false)
		c.advancePC(inst.Size)
		return inst.Cycles

	case InstOTIR, InstOTDR:
		c.blockIO(inst.Type == InstOTIR, false)
		if c.Regs.BC.Hi() != 0 {
			return inst.Cycles
		}
		c.advancePC(inst.Size)
		return inst.CyclesNotTaken
	}

	c.advancePC(inst.Size)
	return inst.Cycles
}

// matchWidth returns src unchanged: once execute has narrowed (nn) to one
// byte for LD (nn),A and LD A,(nn), every descriptor pairs operands of equal
// width.
func matchWidth(src, dst storage.Element) storage.Element {
	return src
}

func (c *CPU) condTrue(cond Condition) bool {
	f := c.Regs.AF
	switch cond {
	case CondAlways:
		return true
	case CondZ:
		return f.Flag(FlagZ)
	case CondNZ:
		return !f.Flag(FlagZ)
	case CondC:
		return f.Flag(FlagC)
	case CondNC:
		return !f.Flag(FlagC)
	case CondM:
		return f.Flag(FlagS)
	case CondP:
		return !f.Flag(FlagS)
	case CondPE:
		return f.Flag(FlagP)
	case CondPO:
		return !f.Flag(FlagP)
	}
	return false
}

func (c *CPU) pushWord(v uint16) {
	sp := c.Regs.SP.Word() - 2
	c.Bus.WriteData(sp+1, byte(v>>8))
	c.Bus.WriteData(sp, byte(v))
	c.Regs.SP.SetWord(sp)
}

func (c *CPU) popWord() uint16 {
	sp := c.Regs.SP.Word()
	v := c.Bus.ReadAddrFromMem(sp)
	c.Regs.SP.SetWord(sp + 2)
	return v
}

func (c *CPU) exchange(dstTag, srcTag OperandTag, dst, src storage.Element) {
	switch {
	case dstTag == OpAF && srcTag == OpAF:
		c.Regs.AF.Swap()
	case dstTag == OpDE && srcTag == OpHL:
		dst.SwapWith(src)
	case dstTag == OpIndSP:
		dst.SwapWith(src)
	}
}

// add performs dst = dst + src (+carry), flags per spec §4.1, and writes
// the result back into dst.
func (c *CPU) add(dst, src storage.Element, withCarry bool) {
	carryIn := withCarry && c.Regs.AF.Flag(FlagC)
	var r storage.Element
	if withCarry {
		r = dst.AddCarry(src, carryIn)
	} else {
		r = dst.Add(src)
	}
	dst.Assign(r)
	c.setArithFlags(r, false, dst.Is8Bit() || withCarry)
}

func (c *CPU) sub(dst, src storage.Element, withCarry bool) {
	carryIn := withCarry && c.Regs.AF.Flag(FlagC)
	var r storage.Element
	if withCarry {
		r = dst.SubCarry(src, carryIn)
	} else {
		r = dst.Sub(src)
	}
	dst.Assign(r)
	c.setArithFlags(r, true, dst.Is8Bit() || withCarry)
}

// setArithFlags applies the result of an ADD/ADC/SUB/SBC/CP to SZHVNC,
// per spec §4.1. updateSZ controls whether S/Z/P-V are touched — plain
// 16-bit ADD only updates C/H/N, leaving S/Z/P-V alone.
func (c *CPU) setArithFlags(r storage.Element, subtract, updateSZ bool) {
	f := &c.Regs.AF
	f.SetFlag(FlagC, r.IsCarry())
	f.SetFlag(FlagH, r.IsHalf())
	f.SetFlag(FlagN, subtract)
	if updateSZ {
		f.SetFlag(FlagS, r.IsNeg())
		f.SetFlag(FlagZ, r.IsZero())
		f.SetFlag(FlagV, r.IsOverflow())
	}
}

func (c *CPU) incdec(dst storage.Element, dec bool) {
	if dst.Is16Bit() {
		// 16-bit INC/DEC touches no flags.
		if dec {
			dst.Set(dst.Value() - 1)
		} else {
			dst.Set(dst.Value() + 1)
		}
		return
	}
	one := storage.ImmediateByte(1)
	var r storage.Element
	if dec {
		r = dst.Sub(one)
	} else {
		r = dst.Add(one)
	}
	dst.Assign(r)
	f := &c.Regs.AF
	f.SetFlag(FlagS, r.IsNeg())
	f.SetFlag(FlagZ, r.IsZero())
	f.SetFlag(FlagH, r.IsHalf())
	f.SetFlag(FlagV, r.IsOverflow())
	f.SetFlag(FlagN, dec)
}

func (c *CPU) logicOp(t InstType, dst, src storage.Element) {
	var r storage.Element
	switch t {
	case InstAND:
		r = dst.And(src)
	case InstOR:
		r = dst.Or(src)
	case InstXOR:
		r = dst.Xor(src)
	}
	f := &c.Regs.AF
	f.SetFlag(FlagS, r.IsNeg())
	f.SetFlag(FlagZ, r.IsZero())
	f.SetFlag(FlagH, t == InstAND)
	f.SetFlag(FlagP, r.IsEvenParity())
	f.SetFlag(FlagN, false)
	f.SetFlag(FlagC, false)
}

// blockLoad implements LDI/LDD (and the repeating forms share this body):
// copy (HL) to (DE), step HL/DE by +1/-1, decrement BC, set flags per spec.
func (c *CPU) blockLoad(increment bool) {
	v := c.Bus.ReadData(c.Regs.HL.Word())
	c.Bus.WriteData(c.Regs.DE.Word(), v)
	step(increment, &c.Regs.HL)
	step(increment, &c.Regs.DE)
	c.Regs.BC.SetWord(c.Regs.BC.Word() - 1)

	f := &c.Regs.AF
	f.SetFlag(FlagH, false)
	f.SetFlag(FlagN, false)
	f.SetFlag(FlagP, c.Regs.BC.Word() != 0)
}

// blockCompare implements CPI/CPD: compare A against (HL), step HL,
// decrement BC, set flags per spec (C is left untouched).
func (c *CPU) blockCompare(increment bool) {
	a := storage.NewByte(c.Regs.AF.A, c.Regs.AF.SetA, false)
	mem := storage.ImmediateByte(c.Bus.ReadData(c.Regs.HL.Word()))
	r := a.Sub(mem)
	step(increment, &c.Regs.HL)
	c.Regs.BC.SetWord(c.Regs.BC.Word() - 1)

	f := &c.Regs.AF
	f.SetFlag(FlagS, r.IsNeg())
	f.SetFlag(FlagZ, r.IsZero())
	f.SetFlag(FlagH, r.IsHalf())
	f.SetFlag(FlagN, true)
	f.SetFlag(FlagP, c.Regs.BC.Word() != 0)
}

// blockIO implements INI/IND/OUTI/OUTD: transfer one byte between (C) and
// (HL), step HL, decrement B. in selects the direction.
func (c *CPU) blockIO(increment bool, in bool) {
	if in {
		v := c.Bus.ReadPort(c.Regs.BC.Word())
		c.Bus.WriteData(c.Regs.HL.Word(), v)
	} else {
		v := c.Bus.ReadData(c.Regs.HL.Word())
		c.Bus.WritePort(c.Regs.BC.Word(), v)
	}
	step(increment, &c.Regs.HL)
	c.Regs.BC.SetHi(c.Regs.BC.Hi() - 1)

	f := &c.Regs.AF
	f.SetFlag(FlagZ, c.Regs.BC.Hi() == 0)
	f.SetFlag(FlagN, true)
}

func step(increment bool, rp *RegisterPair) {
	if increment {
		rp.SetWord(rp.Word() + 1)
	} else {
		rp.SetWord(rp.Word() - 1)
	}
}

func (c *CPU) rotateAccum(t InstType) {
	a := storage.NewByte(c.Regs.AF.A, c.Regs.AF.SetA, true)
	var r storage.Element
	switch t {
	case InstRLCA:
		r = a.RotateLeft(false, false)
	case InstRLA:
		r = a.RotateLeft(true, c.Regs.AF.Flag(FlagC))
	case InstRRCA:
		r = a.RotateRight(false, false)
	case InstRRA:
		r = a.RotateRight(true, c.Regs.AF.Flag(FlagC))
	}
	f := &c.Regs.AF
	f.SetFlag(FlagC, r.IsCarry())
	f.SetFlag(FlagH, false)
	f.SetFlag(FlagN, false)
}

func (c *CPU) rotateShift(t InstType, dst storage.Element) {
	var r storage.Element
	switch t {
	case InstRLC:
		r = dst.RotateLeft(false, false)
	case InstRL:
		r = dst.RotateLeft(true, c.Regs.AF.Flag(FlagC))
	case InstRRC:
		r = dst.RotateRight(false, false)
	case InstRR:
		r = dst.RotateRight(true, c.Regs.AF.Flag(FlagC))
	case InstSLA:
		r = dst.ShiftLeft(true)
	case InstSLL:
		r = dst.ShiftLeft(false)
	case InstSRA:
		r = dst.ShiftRight(false)
	case InstSRL:
		r = dst.ShiftRight(true)
	}
	f := &c.Regs.AF
	f.SetFlag(FlagC, r.IsCarry())
	f.SetFlag(FlagH, false)
	f.SetFlag(FlagN, false)
	f.SetFlag(FlagZ, r.IsZero())
	f.SetFlag(FlagS, r.IsNeg())
	f.SetFlag(FlagP, r.IsEvenParity())
}

// decimalRotate implements RLD/RRD: rotate a nibble between A's low nibble
// and (HL) (both nibbles), per spec.
func (c *CPU) decimalRotate(left bool, mem storage.Element) {
	a := c.Regs.AF.A()
	m := mem.Byte()
	var newA, newM byte
	if left {
		newA = a&0xF0 | m>>4
		newM = m<<4 | a&0x0F
	} else {
		newA = a&0xF0 | m&0x0F
		newM = a&0x0F<<4 | m>>4
	}
	c.Regs.AF.SetA(newA)
	mem.Set(uint16(newM))

	f := &c.Regs.AF
	f.SetFlag(FlagS, newA&0x80 != 0)
	f.SetFlag(FlagZ, newA == 0)
	f.SetFlag(FlagH, false)
	f.SetFlag(FlagP, storage.ImmediateByte(newA).IsEvenParity())
	f.SetFlag(FlagN, false)
}

func (c *CPU) setIRFlags(r storage.Element) {
	f := &c.Regs.AF
	f.SetFlag(FlagS, r.IsNeg())
	f.SetFlag(FlagZ, r.IsZero())
	f.SetFlag(FlagH, false)
	f.SetFlag(FlagP, c.IFF2)
	f.SetFlag(FlagN, false)
}

func (c *CPU) setInFlags(r storage.Element) {
	f := &c.Regs.AF
	f.SetFlag(FlagS, r.IsNeg())
	f.SetFlag(FlagZ, r.IsZero())
	f.SetFlag(FlagH, false)
	f.SetFlag(FlagP, r.IsEvenParity())
	f.SetFlag(FlagN, false)
}

// daa implements the DAA decimal-adjust, following the standard Z80
// correction table driven by N/C/H and the accumulator's nibbles.
func (c *CPU) daa() {
	a := c.Regs.AF.A()
	f := &c.Regs.AF
	n := f.Flag(FlagN)
	carry := f.Flag(FlagC)
	half := f.Flag(FlagH)

	correction := byte(0)
	if half || a&0x0F > 9 {
		correction |= 0x06
	}
	if carry || a > 0x99 {
		correction |= 0x60
		carry = true
	}

	var result byte
	if n {
		result = a - correction
	} else {
		result = a + correction
	}

	newHalf := false
	if n {
		newHalf = half && a&0x0F < 6
	} else {
		newHalf = a&0x0F+correction&0x0F > 0x0F
	}

	c.Regs.AF.SetA(result)
	f.SetFlag(FlagS, result&0x80 != 0)
	f.SetFlag(FlagZ, result == 0)
	f.SetFlag(FlagH, newHalf)
	f.SetFlag(FlagP, storage.ImmediateByte(result).IsEvenParity())
	f.SetFlag(FlagC, carry)
}

// neg implements NEG: A = 0 - A.
func (c *CPU) neg() {
	zero := storage.ImmediateByte(0)
	a := storage.NewByte(c.Regs.AF.A, c.Regs.AF.SetA, true)
	r := zero.Sub(a)
	a.Assign(r)
	c.setArithFlags(r, true, true)
}
