package z80

// buildIndexedTable constructs the DD- or FD-prefixed opcode table: every
// base-table slot that references HL, H, L or (HL) gets redirected to the
// index register, its high/low halves, or (index+d); every other slot is
// left absent, matching the Z80's real behaviour that a DD/FD prefix in
// front of an opcode that doesn't touch HL has no effect (spec §4.4,
// "documented subset... IX/IY arithmetic, load, push/pop, LD r,(IX+d)
// family").
func buildIndexedTable(
	prefixBase uint32,
	indexPair, indexHi, indexLo, memOp OperandTag,
	r8 [8]OperandTag,
	rp [4]OperandTag,
	rp2 [4]OperandTag,
	suffix string,
) map[uint32]Instruction {
	t := make(map[uint32]Instruction)

	for p := 0; p < 4; p++ {
		t[prefixBase|uint32(0x09+16*p)] = Instruction{
			Type: InstADD, Mnemonic: "ADD " + suffix + ",rp", Size: 2, Cycles: 15,
			Dst: indexPair, Src: rp[p],
		}
	}

	t[prefixBase|0x21] = Instruction{Type: InstLD, Mnemonic: "LD " + suffix + ",nn", Size: 4, Cycles: 14, Dst: indexPair, Src: OpNN}
	t[prefixBase|0x22] = Instruction{Type: InstLD, Mnemonic: "LD (nn)," + suffix, Size: 4, Cycles: 20, Dst: OpIndNN, Src: indexPair}
	t[prefixBase|0x2A] = Instruction{Type: InstLD, Mnemonic: "LD " + suffix + ",(nn)", Size: 4, Cycles: 20, Dst: indexPair, Src: OpIndNN}
	t[prefixBase|0x23] = Instruction{Type: InstINC, Mnemonic: "INC " + suffix, Size: 2, Cycles: 10, Dst: indexPair}
	t[prefixBase|0x2B] = Instruction{Type: InstDEC, Mnemonic: "DEC " + suffix, Size: 2, Cycles: 10, Dst: indexPair}

	slots := []struct {
		y                  int
		tag                OperandTag
		sizeExtra          int
		incDecCyc, ldCyc   int
	}{
		{4, indexHi, 0, 8, 11},
		{5, indexLo, 0, 8, 11},
		{6, memOp, 1, 23, 19},
	}
	for _, s := range slots {
		sz := 2 + s.sizeExtra
		t[prefixBase|uint32(0x04+8*s.y)] = Instruction{Type: InstINC, Mnemonic: "INC", Size: sz, Cycles: s.incDecCyc, Dst: s.tag}
		t[prefixBase|uint32(0x05+8*s.y)] = Instruction{Type: InstDEC, Mnemonic: "DEC", Size: sz, Cycles: s.incDecCyc, Dst: s.tag}
		t[prefixBase|uint32(0x06+8*s.y)] = Instruction{Type: InstLD, Mnemonic: "LD r,n", Size: sz + 1, Cycles: s.ldCyc, Dst: s.tag, Src: OpN}
	}

	for y := 0; y < 8; y++ {
		for z := 0; z < 8; z++ {
			if y == 6 && z == 6 {
				continue // HALT, unaffected by the prefix
			}
			affected := y == 6 || z == 6 || y == 4 || y == 5 || z == 4 || z == 5
			if !affected {
				continue
			}
			opcode2 := 0x40 + 8*y + z
			var dst, src OperandTag
			cyc, sz := 4, 2
			switch {
			case y == 6:
				// memory operand wins; the other side is a plain
				// register, never IXH/IXL (real Z80 behaviour).
				dst, src = memOp, reg8Table[z]
				cyc, sz = 19, 3
			case z == 6:
				dst, src = reg8Table[y], memOp
				cyc, sz = 19, 3
			default:
				dst, src = r8[y], r8[z]
			}
			t[prefixBase|uint32(opcode2)] = Instruction{Type: InstLD, Mnemonic: "LD r,r'", Size: sz, Cycles: cyc, Dst: dst, Src: src}
		}
	}

	for y := 0; y < 8; y++ {
		for z := 0; z < 8; z++ {
			affected := z == 6 || z == 4 || z == 5
			if !affected {
				continue
			}
			opcode2 := 0x80 + 8*y + z
			var src OperandTag
			cyc, sz := 8, 2
			if z == 6 {
				src, cyc, sz = memOp, 19, 3
			} else {
				src = r8[z]
			}
			t[prefixBase|uint32(opcode2)] = Instruction{Type: aluOrder[y], Mnemonic: aluMnemonic[y] + "r", Size: sz, Cycles: cyc, Dst: OpA, Src: src}
		}
	}

	t[prefixBase|0xE1] = Instruction{Type: InstPOP, Mnemonic: "POP " + suffix, Size: 2, Cycles: 14, Dst: indexPair}
	t[prefixBase|0xE5] = Instruction{Type: InstPUSH, Mnemonic: "PUSH " + suffix, Size: 2, Cycles: 15, Src: indexPair}
	t[prefixBase|0xE3] = Instruction{Type: InstEX, Mnemonic: "EX (SP)," + suffix, Size: 2, Cycles: 23, Dst: OpIndSP, Src: indexPair}
	t[prefixBase|0xE9] = Instruction{Type: InstJP, Mnemonic: "JP (" + suffix + ")", Size: 2, Cycles: 8, Condition: CondAlways, Src: indexPair}
	t[prefixBase|0xF9] = Instruction{Type: InstLD, Mnemonic: "LD SP," + suffix, Size: 2, Cycles: 10, Dst: OpSP, Src: indexPair}

	return t
}

// buildIndexedCBTable constructs the DDCB/FDCB table: rotate/shift/BIT/
// SET/RES always operate on (index+d), regardless of the z field (the
// undocumented copy-into-register side effect real silicon exhibits for
// z != 6 is not modelled, per spec's non-goal on undocumented behaviour).
func buildIndexedCBTable(prefix16 uint32, memOp OperandTag, suffix string) map[uint32]Instruction {
	t := make(map[uint32]Instruction)

	for opcode2 := 0; opcode2 <= 0xFF; opcode2++ {
		op := prefix16<<8 | uint32(opcode2)
		x := opcode2 >> 6
		y := (opcode2 >> 3) & 7

		switch x {
		case 0:
			t[op] = Instruction{Type: rotOrder[y], Mnemonic: rotMnemonic[y] + " (" + suffix + "+d)", Size: 4, Cycles: 23, Dst: memOp}
		case 1:
			t[op] = Instruction{Type: InstBIT, Mnemonic: "BIT b,(" + suffix + "+d)", Size: 4, Cycles: 20, Src: literalOperandForY(y), Dst: memOp}
		case 2:
			t[op] = Instruction{Type: InstRES, Mnemonic: "RES b,(" + suffix + "+d)", Size: 4, Cycles: 23, Src: literalOperandForY(y), Dst: memOp}
		case 3:
			t[op] = Instruction{Type: InstSET, Mnemonic: "SET b,(" + suffix + "+d)", Size: 4, Cycles: 23, Src: literalOperandForY(y), Dst: memOp}
		}
	}
	return t
}
