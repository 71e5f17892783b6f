package z80

// OperandTag enumerates every operand shape an Instruction descriptor can
// reference (spec §3, "Operand tags").
type OperandTag int

const (
	OpUnused OperandTag = iota

	// Register pairs
	OpAF
	OpBC
	OpDE
	OpHL
	OpSP
	OpIX
	OpIY

	// Register halves
	OpA
	OpB
	OpC
	OpD
	OpE
	OpH
	OpL
	OpIXH
	OpIXL
	OpIYH
	OpIYL
	OpI
	OpR

	OpPC

	// Immediates
	OpN
	OpNN

	// Indirect memory forms
	OpIndBC
	OpIndDE
	OpIndHL
	OpIndIXd
	OpIndIYd
	OpIndSP
	OpIndN
	OpIndNN

	// Ports
	OpPortC
	OpPortN

	// Small literal constants 0..7, used by BIT/SET/RES bit-index operands
	// and as the IM n operand.
	OpZero
	OpOne
	OpTwo
	OpThree
	OpFour
	OpFive
	OpSix
	OpSeven

	// Fixed RST targets
	OpRST00
	OpRST08
	OpRST10
	OpRST18
	OpRST20
	OpRST28
	OpRST30
	OpRST38
)

// rstTarget maps an RST operand tag to its fixed low-memory address.
var rstTarget = map[OperandTag]uint16{
	OpRST00: 0x0000,
	OpRST08: 0x0008,
	OpRST10: 0x0010,
	OpRST18: 0x0018,
	OpRST20: 0x0020,
	OpRST28: 0x0028,
	OpRST30: 0x0030,
	OpRST38: 0x0038,
}

// literalValue maps the small-constant operand tags to their numeric value.
var literalValue = map[OperandTag]byte{
	OpZero:  0,
	OpOne:   1,
	OpTwo:   2,
	OpThree: 3,
	OpFour:  4,
	OpFive:  5,
	OpSix:   6,
	OpSeven: 7,
}

// Condition enumerates the branch/return/call condition codes (spec §3).
type Condition int

const (
	CondUnused Condition = iota
	CondAlways
	CondZ
	CondNZ
	CondC
	CondNC
	CondM
	CondP
	CondPE
	CondPO
)

// ccTable maps the 3-bit cc field (y, 0-7) used by JP/CALL/RET to a
// Condition, per the Zilog opcode layout's y-field ordering.
var ccTable = [8]Condition{CondNZ, CondZ, CondNC, CondC, CondPO, CondPE, CondP, CondM}

// jrCcTable maps JR's 2-bit condition field (only NZ/Z/NC/C are reachable).
var jrCcTable = [4]Condition{CondNZ, CondZ, CondNC, CondC}

// reg8Table maps the y/z 3-bit register field (0-7) to an operand tag,
// for the unprefixed B,C,D,E,H,L,(HL),A ordering.
var reg8Table = [8]OperandTag{OpB, OpC, OpD, OpE, OpH, OpL, OpIndHL, OpA}

// reg8TableIX / reg8TableIY substitute H/L with IXH/IXL or IYH/IYL, used by
// DD/FD-prefixed opcodes outside the (IX+d)/(IY+d) slot (index 6, which
// always keeps the indexed-memory form, never IXH/IXL directly).
var reg8TableIX = [8]OperandTag{OpB, OpC, OpD, OpE, OpIXH, OpIXL, OpIndIXd, OpA}
var reg8TableIY = [8]OperandTag{OpB, OpC, OpD, OpE, OpIYH, OpIYL, OpIndIYd, OpA}

// regPairTable maps the p 2-bit field (0-3) to BC,DE,HL,SP.
var regPairTable = [4]OperandTag{OpBC, OpDE, OpHL, OpSP}
var regPairTableIX = [4]OperandTag{OpBC, OpDE, OpIX, OpSP}
var regPairTableIY = [4]OperandTag{OpBC, OpDE, OpIY, OpSP}

// regPairTable2 maps the p field for PUSH/POP (uses AF instead of SP).
var regPairTable2 = [4]OperandTag{OpBC, OpDE, OpHL, OpAF}
var regPairTable2IX = [4]OperandTag{OpBC, OpDE, OpIX, OpAF}
var regPairTable2IY = [4]OperandTag{OpBC, OpDE, OpIY, OpAF}
