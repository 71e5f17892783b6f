package z80

// InstType tags the family of operation an Instruction descriptor
// dispatches to in the execution engine (spec §4.5). One handler exists
// per InstType; it works uniformly against whatever StorageElements the
// descriptor's Dst/Src resolve to.
type InstType int

const (
	InstInvalid InstType = iota
	InstNOP

	InstLD
	InstLDI
	InstLDIR
	InstLDD
	InstLDDR
	InstCPI
	InstCPIR
	InstCPD
	InstCPDR

	InstAND
	InstOR
	InstXOR
	InstCP

	InstADD
	InstADC
	InstSUB
	InstSBC

	InstINC
	InstDEC

	InstJP
	InstJR
	InstCALL
	InstRET
	InstRETN
	InstRETI
	InstDJNZ
	InstRST

	InstPUSH
	InstPOP

	InstEX
	InstEXX

	InstBIT
	InstSET
	InstRES

	InstRLCA
	InstRLA
	InstRRCA
	InstRRA
	InstRLC
	InstRL
	InstRRC
	InstRR
	InstSLA
	InstSLL
	InstSRA
	InstSRL
	InstRLD
	InstRRD

	InstSCF
	InstCCF
	InstCPL
	InstDAA
	InstNEG

	InstDI
	InstEI
	InstIM

	InstHALT

	InstIN
	InstOUT

	InstINI
	InstINIR
	InstIND
	InstINDR
	InstOUTI
	InstOTIR
	InstOUTD
	InstOTDR
)

// Instruction is the immutable descriptor produced by the decoder: enough
// information for the execution engine to materialize operands and
// dispatch, without the decoder knowing anything about execution (spec
// §3, "Instruction descriptor").
type Instruction struct {
	Type            InstType
	Mnemonic        string
	Size            int // total bytes including opcode and any operands
	Cycles          int // base T-state cost
	CyclesNotTaken  int // cost when a conditional branch/call/return is not taken; 0 if Cycles applies unconditionally
	Condition       Condition
	Dst             OperandTag
	Src             OperandTag
}

// Invalid is the sentinel descriptor returned by the decoder for opcodes
// it does not recognise.
var Invalid = Instruction{Type: InstInvalid, Mnemonic: "???", Size: 1, Cycles: 4}

// TakenCycles returns the cycle cost to charge, given whether the
// instruction's condition (if any) was satisfied.
func (i Instruction) TakenCycles(taken bool) int {
	if !taken && i.CyclesNotTaken != 0 {
		return i.CyclesNotTaken
	}
	return i.Cycles
}
