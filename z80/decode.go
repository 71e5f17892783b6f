package z80

import "sync"

// aluOrder is the x=2 row ordering of the base opcode table's ALU group
// (ADD, ADC, SUB, SBC, AND, XOR, OR, CP), selected by y (0-7).
var aluOrder = [8]InstType{InstADD, InstADC, InstSUB, InstSBC, InstAND, InstXOR, InstOR, InstCP}
var aluMnemonic = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

// rotOrder is the CB-prefixed x=0 row ordering (RLC, RRC, RL, RR, SLA,
// SRA, SLL, SRL), selected by y (0-7).
var rotOrder = [8]InstType{InstRLC, InstRRC, InstRL, InstRR, InstSLA, InstSRA, InstSLL, InstSRL}
var rotMnemonic = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}

var (
	tablesOnce sync.Once

	baseTable map[uint32]Instruction
	cbTable   map[uint32]Instruction
	edTable   map[uint32]Instruction
	ddTable   map[uint32]Instruction
	fdTable   map[uint32]Instruction
	ddcbTable map[uint32]Instruction
	fdcbTable map[uint32]Instruction

	// labels maps a ROM address to a human-readable name for annotating a
	// disassembly (spec §4.4, "second table"); execution never reads it.
	// Filled through SetLabel; empty by default.
	labels map[uint16]string
)

// buildTables constructs the process-wide, read-only decoder tables once
// (spec §9, "global decoder table"). A sync.Once replaces the teacher's
// package-level var-literal map (cpu/opcodes.go) because the Z80's opcode
// space spans plain, CB, ED, DD, FD and the compound DDCB/FDCB forms —
// too many related-but-distinct key spaces to express as one flat literal
// the way the 6502 teacher does with its single byte-keyed map.
func buildTables() {
	tablesOnce.Do(func() {
		baseTable = buildBaseTable()
		cbTable = buildCBTable(OpIndHL, reg8Table, "")
		edTable = buildEDTable()
		ddTable = buildIndexedTable(0xDD00, OpIX, OpIXH, OpIXL, OpIndIXd, reg8TableIX, regPairTableIX, regPairTable2IX, "IX")
		fdTable = buildIndexedTable(0xFD00, OpIY, OpIYH, OpIYL, OpIndIYd, reg8TableIY, regPairTableIY, regPairTable2IY, "IY")
		ddcbTable = buildIndexedCBTable(0xDDCB, OpIndIXd, "IX")
		fdcbTable = buildIndexedCBTable(0xFDCB, OpIndIYd, "IY")
		labels = map[uint16]string{}
	})
}

// Decode looks up the Instruction descriptor for opcode, as returned by
// mem.Bus.ReadOpcode. Unrecognised opcodes return Invalid.
func Decode(opcode uint32) Instruction {
	buildTables()

	switch {
	case opcode <= 0xFF:
		if in, ok := baseTable[opcode]; ok {
			return in
		}
	case opcode>>16 == 0xDDCB || opcode>>16 == 0xFDCB:
		if opcode>>16 == 0xDDCB {
			if in, ok := ddcbTable[opcode]; ok {
				return in
			}
		} else {
			if in, ok := fdcbTable[opcode]; ok {
				return in
			}
		}
	case opcode>>8 == 0xCB:
		if in, ok := cbTable[opcode]; ok {
			return in
		}
	case opcode>>8 == 0xED:
		if in, ok := edTable[opcode]; ok {
			return in
		}
	case opcode>>8 == 0xDD:
		if in, ok := ddTable[opcode]; ok {
			return in
		}
	case opcode>>8 == 0xFD:
		if in, ok := fdTable[opcode]; ok {
			return in
		}
	}
	return Invalid
}

// Label returns the human-readable name registered for a ROM address, if
// any, for use by the debugger.
func Label(addr uint16) (string, bool) {
	buildTables()
	s, ok := labels[addr]
	return s, ok
}

// SetLabel registers a human-readable name for a ROM address.
func SetLabel(addr uint16, name string) {
	buildTables()
	labels[addr] = name
}

func buildBaseTable() map[uint32]Instruction {
	t := make(map[uint32]Instruction)

	for opcode := 0; opcode <= 0xFF; opcode++ {
		op := uint32(opcode)
		x := opcode >> 6
		y := (opcode >> 3) & 7
		z := opcode & 7
		p := y >> 1
		q := y & 1

		switch x {
		case 0:
			switch z {
			case 0:
				switch y {
				case 0:
					t[op] = Instruction{Type: InstNOP, Mnemonic: "NOP", Size: 1, Cycles: 4}
				case 1:
					t[op] = Instruction{Type: InstEX, Mnemonic: "EX AF,AF'", Size: 1, Cycles: 4, Dst: OpAF, Src: OpAF}
				case 2:
					t[op] = Instruction{Type: InstDJNZ, Mnemonic: "DJNZ d", Size: 2, Cycles: 13, CyclesNotTaken: 8}
				case 3:
					t[op] = Instruction{Type: InstJR, Mnemonic: "JR d", Size: 2, Cycles: 12, Condition: CondAlways}
				default:
					cc := jrCcTable[y-4]
					t[op] = Instruction{Type: InstJR, Mnemonic: "JR cc,d", Size: 2, Cycles: 12, CyclesNotTaken: 7, Condition: cc}
				}
			case 1:
				if q == 0 {
					t[op] = Instruction{Type: InstLD, Mnemonic: "LD rp,nn", Size: 3, Cycles: 10, Dst: regPairTable[p], Src: OpNN}
				} else {
					t[op] = Instruction{Type: InstADD, Mnemonic: "ADD HL,rp", Size: 1, Cycles: 11, Dst: OpHL, Src: regPairTable[p]}
				}
			case 2:
				switch {
				case q == 0 && p == 0:
					t[op] = Instruction{Type: InstLD, Mnemonic: "LD (BC),A", Size: 1, Cycles: 7, Dst: OpIndBC, Src: OpA}
				case q == 0 && p == 1:
					t[op] = Instruction{Type: InstLD, Mnemonic: "LD (DE),A", Size: 1, Cycles: 7, Dst: OpIndDE, Src: OpA}
				case q == 0 && p == 2:
					t[op] = Instruction{Type: InstLD, Mnemonic: "LD (nn),HL", Size: 3, Cycles: 16, Dst: OpIndNN, Src: OpHL}
				case q == 0 && p == 3:
					t[op] = Instruction{Type: InstLD, Mnemonic: "LD (nn),A", Size: 3, Cycles: 13, Dst: OpIndNN, Src: OpA}
				case q == 1 && p == 0:
					t[op] = Instruction{Type: InstLD, Mnemonic: "LD A,(BC)", Size: 1, Cycles: 7, Dst: OpA, Src: OpIndBC}
				case q == 1 && p == 1:
					t[op] = Instruction{Type: InstLD, Mnemonic: "LD A,(DE)", Size: 1, Cycles: 7, Dst: OpA, Src: OpIndDE}
				case q == 1 && p == 2:
					t[op] = Instruction{Type: InstLD, Mnemonic: "LD HL,(nn)", Size: 3, Cycles: 16, Dst: OpHL, Src: OpIndNN}
				case q == 1 && p == 3:
					t[op] = Instruction{Type: InstLD, Mnemonic: "LD A,(nn)", Size: 3, Cycles: 13, Dst: OpA, Src: OpIndNN}
				}
			case 3:
				if q == 0 {
					t[op] = Instruction{Type: InstINC, Mnemonic: "INC rp", Size: 1, Cycles: 6, Dst: regPairTable[p]}
				} else {
					t[op] = Instruction{Type: InstDEC, Mnemonic: "DEC rp", Size: 1, Cycles: 6, Dst: regPairTable[p]}
				}
			case 4:
				cyc, sz := 4, 1
				if y == 6 {
					cyc, sz = 11, 1
				}
				t[op] = Instruction{Type: InstINC, Mnemonic: "INC r", Size: sz, Cycles: cyc, Dst: reg8Table[y]}
			case 5:
				cyc, sz := 4, 1
				if y == 6 {
					cyc, sz = 11, 1
				}
				t[op] = Instruction{Type: InstDEC, Mnemonic: "DEC r", Size: sz, Cycles: cyc, Dst: reg8Table[y]}
			case 6:
				cyc, sz := 7, 2
				if y == 6 {
					cyc, sz = 10, 2
				}
				t[op] = Instruction{Type: InstLD, Mnemonic: "LD r,n", Size: sz, Cycles: cyc, Dst: reg8Table[y], Src: OpN}
			case 7:
				switch y {
				case 0:
					t[op] = Instruction{Type: InstRLCA, Mnemonic: "RLCA", Size: 1, Cycles: 4, Dst: OpA}
				case 1:
					t[op] = Instruction{Type: InstRRCA, Mnemonic: "RRCA", Size: 1, Cycles: 4, Dst: OpA}
				case 2:
					t[op] = Instruction{Type: InstRLA, Mnemonic: "RLA", Size: 1, Cycles: 4, Dst: OpA}
				case 3:
					t[op] = Instruction{Type: InstRRA, Mnemonic: "RRA", Size: 1, Cycles: 4, Dst: OpA}
				case 4:
					t[op] = Instruction{Type: InstDAA, Mnemonic: "DAA", Size: 1, Cycles: 4, Dst: OpA}
				case 5:
					t[op] = Instruction{Type: InstCPL, Mnemonic: "CPL", Size: 1, Cycles: 4, Dst: OpA}
				case 6:
					t[op] = Instruction{Type: InstSCF, Mnemonic: "SCF", Size: 1, Cycles: 4}
				case 7:
					t[op] = Instruction{Type: InstCCF, Mnemonic: "CCF", Size: 1, Cycles: 4}
				}
			}
		case 1:
			if y == 6 && z == 6 {
				t[op] = Instruction{Type: InstHALT, Mnemonic: "HALT", Size: 1, Cycles: 4}
				continue
			}
			cyc, sz := 4, 1
			if y == 6 || z == 6 {
				cyc, sz = 7, 1
			}
			t[op] = Instruction{Type: InstLD, Mnemonic: "LD r,r'", Size: sz, Cycles: cyc, Dst: reg8Table[y], Src: reg8Table[z]}
		case 2:
			cyc, sz := 4, 1
			if z == 6 {
				cyc, sz = 7, 1
			}
			t[op] = Instruction{Type: aluOrder[y], Mnemonic: aluMnemonic[y] + "r", Size: sz, Cycles: cyc, Dst: OpA, Src: reg8Table[z]}
		case 3:
			switch z {
			case 0:
				t[op] = Instruction{Type: InstRET, Mnemonic: "RET cc", Size: 1, Cycles: 11, CyclesNotTaken: 5, Condition: ccTable[y]}
			case 1:
				switch {
				case q == 0:
					t[op] = Instruction{Type: InstPOP, Mnemonic: "POP rp2", Size: 1, Cycles: 10, Dst: regPairTable2[p]}
				case p == 0:
					t[op] = Instruction{Type: InstRET, Mnemonic: "RET", Size: 1, Cycles: 10, Condition: CondAlways}
				case p == 1:
					t[op] = Instruction{Type: InstEXX, Mnemonic: "EXX", Size: 1, Cycles: 4}
				case p == 2:
					t[op] = Instruction{Type: InstJP, Mnemonic: "JP (HL)", Size: 1, Cycles: 4, Condition: CondAlways, Src: OpHL}
				case p == 3:
					t[op] = Instruction{Type: InstLD, Mnemonic: "LD SP,HL", Size: 1, Cycles: 6, Dst: OpSP, Src: OpHL}
				}
			case 2:
				t[op] = Instruction{Type: InstJP, Mnemonic: "JP cc,nn", Size: 3, Cycles: 10, Condition: ccTable[y], Src: OpNN}
			case 3:
				switch y {
				case 0:
					t[op] = Instruction{Type: InstJP, Mnemonic: "JP nn", Size: 3, Cycles: 10, Condition: CondAlways, Src: OpNN}
				case 2:
					t[op] = Instruction{Type: InstOUT, Mnemonic: "OUT (n),A", Size: 2, Cycles: 11, Dst: OpPortN, Src: OpA}
				case 3:
					t[op] = Instruction{Type: InstIN, Mnemonic: "IN A,(n)", Size: 2, Cycles: 11, Dst: OpA, Src: OpPortN}
				case 4:
					t[op] = Instruction{Type: InstEX, Mnemonic: "EX (SP),HL", Size: 1, Cycles: 19, Dst: OpIndSP, Src: OpHL}
				case 5:
					t[op] = Instruction{Type: InstEX, Mnemonic: "EX DE,HL", Size: 1, Cycles: 4, Dst: OpDE, Src: OpHL}
				case 6:
					t[op] = Instruction{Type: InstDI, Mnemonic: "DI", Size: 1, Cycles: 4}
				case 7:
					t[op] = Instruction{Type: InstEI, Mnemonic: "EI", Size: 1, Cycles: 4}
				}
			case 4:
				t[op] = Instruction{Type: InstCALL, Mnemonic: "CALL cc,nn", Size: 3, Cycles: 17, CyclesNotTaken: 10, Condition: ccTable[y], Src: OpNN}
			case 5:
				switch {
				case q == 0:
					t[op] = Instruction{Type: InstPUSH, Mnemonic: "PUSH rp2", Size: 1, Cycles: 11, Src: regPairTable2[p]}
				case p == 0:
					t[op] = Instruction{Type: InstCALL, Mnemonic: "CALL nn", Size: 3, Cycles: 17, Condition: CondAlways, Src: OpNN}
				}
			case 6:
				t[op] = Instruction{Type: aluOrder[y], Mnemonic: aluMnemonic[y] + "n", Size: 2, Cycles: 7, Dst: OpA, Src: OpN}
			case 7:
				t[op] = Instruction{Type: InstRST, Mnemonic: "RST", Size: 1, Cycles: 11, Dst: rstOperandForY(y)}
			}
		}
	}
	return t
}

func rstOperandForY(y int) OperandTag {
	tags := [8]OperandTag{OpRST00, OpRST08, OpRST10, OpRST18, OpRST20, OpRST28, OpRST30, OpRST38}
	return tags[y]
}

// buildCBTable builds the CB-prefixed rotate/shift/BIT/SET/RES table, with
// memOp in the register-8 slot for index 6. The DDCB/FDCB tables are built
// separately by buildIndexedCBTable.
func buildCBTable(memOp OperandTag, r8 [8]OperandTag, suffix string) map[uint32]Instruction {
	t := make(map[uint32]Instruction)
	r8 = overrideSlotSix(r8, memOp)

	for opcode2 := 0; opcode2 <= 0xFF; opcode2++ {
		op := uint32(0xCB00 | opcode2)
		x := opcode2 >> 6
		y := (opcode2 >> 3) & 7
		z := opcode2 & 7

		cyc, sz := 8, 2
		if z == 6 {
			cyc, sz = 15, 2
		}

		switch x {
		case 0:
			t[op] = Instruction{Type: rotOrder[y], Mnemonic: rotMnemonic[y] + " r", Size: sz, Cycles: cyc, Dst: r8[z]}
		case 1:
			bitCyc := cyc
			if z == 6 {
				bitCyc = 12
			}
			t[op] = Instruction{Type: InstBIT, Mnemonic: "BIT b,r", Size: sz, Cycles: bitCyc, Src: literalOperandForY(y), Dst: r8[z]}
		case 2:
			t[op] = Instruction{Type: InstRES, Mnemonic: "RES b,r", Size: sz, Cycles: cyc, Src: literalOperandForY(y), Dst: r8[z]}
		case 3:
			t[op] = Instruction{Type: InstSET, Mnemonic: "SET b,r", Size: sz, Cycles: cyc, Src: literalOperandForY(y), Dst: r8[z]}
		}
	}
	return t
}

func literalOperandForY(y int) OperandTag {
	tags := [8]OperandTag{OpZero, OpOne, OpTwo, OpThree, OpFour, OpFive, OpSix, OpSeven}
	return tags[y]
}

// overrideSlotSix replaces index 6 of an 8-register table with memOp.
func overrideSlotSix(r8 [8]OperandTag, memOp OperandTag) [8]OperandTag {
	r8[6] = memOp
	return r8
}

// blockOpTable hardcodes the ED 0xA0-0xBF block-instruction grid (spec
// §4.4): sixteen irregular-but-documented opcodes that don't fit the
// regular x/y/z decomposition used elsewhere in this file.
var blockOpTable = map[byte]Instruction{
	0xA0: {Type: InstLDI, Mnemonic: "LDI", Size: 2, Cycles: 16},
	0xA1: {Type: InstCPI, Mnemonic: "CPI", Size: 2, Cycles: 16},
	0xA2: {Type: InstINI, Mnemonic: "INI", Size: 2, Cycles: 16},
	0xA3: {Type: InstOUTI, Mnemonic: "OUTI", Size: 2, Cycles: 16},
	0xA8: {Type: InstLDD, Mnemonic: "LDD", Size: 2, Cycles: 16},
	0xA9: {Type: InstCPD, Mnemonic: "CPD", Size: 2, Cycles: 16},
	0xAA: {Type: InstIND, Mnemonic: "IND", Size: 2, Cycles: 16},
	0xAB: {Type: InstOUTD, Mnemonic: "OUTD", Size: 2, Cycles: 16},
	0xB0: {Type: InstLDIR, Mnemonic: "LDIR", Size: 2, Cycles: 21, CyclesNotTaken: 16},
	0xB1: {Type: InstCPIR, Mnemonic: "CPIR", Size: 2, Cycles: 21, CyclesNotTaken: 16},
	0xB2: {Type: InstINIR, Mnemonic: "INIR", Size: 2, Cycles: 21, CyclesNotTaken: 16},
	0xB3: {Type: InstOTIR, Mnemonic: "OTIR", Size: 2, Cycles: 21, CyclesNotTaken: 16},
	0xB8: {Type: InstLDDR, Mnemonic: "LDDR", Size: 2, Cycles: 21, CyclesNotTaken: 16},
	0xB9: {Type: InstCPDR, Mnemonic: "CPDR", Size: 2, Cycles: 21, CyclesNotTaken: 16},
	0xBA: {Type: InstINDR, Mnemonic: "INDR", Size: 2, Cycles: 21, CyclesNotTaken: 16},
	0xBB: {Type: InstOTDR, Mnemonic: "OTDR", Size: 2, Cycles: 21, CyclesNotTaken: 16},
}

func buildEDTable() map[uint32]Instruction {
	t := make(map[uint32]Instruction)

	for b, in := range blockOpTable {
		t[0xED00|uint32(b)] = in
	}

	for opcode2 := 0x40; opcode2 <= 0x7F; opcode2++ {
		op := uint32(0xED00 | opcode2)
		y := (opcode2 >> 3) & 7
		z := opcode2 & 7
		p := y >> 1
		q := y & 1

		switch z {
		case 0:
			if y == 6 {
				continue // undocumented IN (HL),(C): flags-only, omitted
			}
			t[op] = Instruction{Type: InstIN, Mnemonic: "IN r,(C)", Size: 2, Cycles: 12, Dst: reg8Table[y], Src: OpPortC}
		case 1:
			if y == 6 {
				continue // undocumented OUT (C),0
			}
			t[op] = Instruction{Type: InstOUT, Mnemonic: "OUT (C),r", Size: 2, Cycles: 12, Dst: OpPortC, Src: reg8Table[y]}
		case 2:
			if q == 0 {
				t[op] = Instruction{Type: InstSBC, Mnemonic: "SBC HL,rp", Size: 2, Cycles: 15, Dst: OpHL, Src: regPairTable[p]}
			} else {
				t[op] = Instruction{Type: InstADC, Mnemonic: "ADC HL,rp", Size: 2, Cycles: 15, Dst: OpHL, Src: regPairTable[p]}
			}
		case 3:
			if q == 0 {
				t[op] = Instruction{Type: InstLD, Mnemonic: "LD (nn),rp", Size: 4, Cycles: 20, Dst: OpIndNN, Src: regPairTable[p]}
			} else {
				t[op] = Instruction{Type: InstLD, Mnemonic: "LD rp,(nn)", Size: 4, Cycles: 20, Dst: regPairTable[p], Src: OpIndNN}
			}
		case 4:
			if opcode2 == 0x44 {
				t[op] = Instruction{Type: InstNEG, Mnemonic: "NEG", Size: 2, Cycles: 8, Dst: OpA}
			}
		case 5:
			if opcode2 == 0x4D {
				t[op] = Instruction{Type: InstRETI, Mnemonic: "RETI", Size: 2, Cycles: 14, Condition: CondAlways}
			} else if opcode2 == 0x45 {
				t[op] = Instruction{Type: InstRETN, Mnemonic: "RETN", Size: 2, Cycles: 14, Condition: CondAlways}
			}
		case 6:
			switch opcode2 {
			case 0x46:
				t[op] = Instruction{Type: InstIM, Mnemonic: "IM 0", Size: 2, Cycles: 8, Src: OpZero}
			case 0x56:
				t[op] = Instruction{Type: InstIM, Mnemonic: "IM 1", Size: 2, Cycles: 8, Src: OpOne}
			case 0x5E:
				t[op] = Instruction{Type: InstIM, Mnemonic: "IM 2", Size: 2, Cycles: 8, Src: OpTwo}
			}
		case 7:
			switch opcode2 {
			case 0x47:
				t[op] = Instruction{Type: InstLD, Mnemonic: "LD I,A", Size: 2, Cycles: 9, Dst: OpI, Src: OpA}
			case 0x4F:
				t[op] = Instruction{Type: InstLD, Mnemonic: "LD R,A", Size: 2, Cycles: 9, Dst: OpR, Src: OpA}
			case 0x57:
				t[op] = Instruction{Type: InstLD, Mnemonic: "LD A,I", Size: 2, Cycles: 9, Dst: OpA, Src: OpI}
			case 0x5F:
				t[op] = Instruction{Type: InstLD, Mnemonic: "LD A,R", Size: 2, Cycles: 9, Dst: OpA, Src: OpR}
			case 0x67:
				t[op] = Instruction{Type: InstRRD, Mnemonic: "RRD", Size: 2, Cycles: 18, Dst: OpA, Src: OpIndHL}
			case 0x6F:
				t[op] = Instruction{Type: InstRLD, Mnemonic: "RLD", Size: 2, Cycles: 18, Dst: OpA, Src: OpIndHL}
			}
		}
	}
	return t
}
