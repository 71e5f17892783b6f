// Package z80 implements the Zilog Z80 CPU core: register file, opcode
// decoder and execution engine, generalizing the teacher's 6502 cpu package
// (cpu/cpu.go) to the Z80's wider register set, prefixed opcode space and
// maskable/non-maskable interrupt model.
package z80

import (
	"fmt"
	"os"

	"github.com/spjewkes/jrnz-go/mem"
)

// CPU holds the full machine state: registers, bus, interrupt latches and
// the scheduling fields the fetch/execute loop needs (spec §3, "CPU state").
type CPU struct {
	Regs Registers
	Bus  *mem.Bus

	IFF1 bool
	IFF2 bool
	IM   int

	NMIPending bool
	INTPending bool
	Halted     bool

	// CyclesLeft is the T-state cost charged by the most recently executed
	// instruction. Step always runs an instruction to completion in one
	// call (the teacher's own tick() does the same for a 6502 opcode);
	// callers that want T-state-grained pacing — the ULA's frame counter,
	// in particular — drive it externally by calling Tick once per
	// CyclesLeft after each Step, rather than this field gating Step
	// itself.
	CyclesLeft int

	// CurrOpcodePC is the address the currently-decoded instruction was
	// fetched from; CurrOperandPC tracks the next unread operand byte as
	// operand resolution consumes them (spec §4.1, "N/NN advance the
	// operand cursor, not PC directly").
	CurrOpcodePC  uint16
	CurrOperandPC uint16

	// TopOfStack records the last value explicitly loaded into SP (spec
	// §3, "debug aid"); it is not consulted by execution, only by a
	// debugger wanting to sanity-check SP against where the stack was
	// last (re)based.
	TopOfStack uint16

	// Strict aborts on an undecodable opcode instead of reporting it on
	// stderr and treating it as a 1-byte NOP-ish no-op, for use by test rigs that want a hard failure
	// rather than silent divergence (spec §15).
	Strict bool
}

// NewCPU returns a CPU wired to bus, reset to power-on state.
func NewCPU(bus *mem.Bus) *CPU {
	c := &CPU{Bus: bus}
	c.Reset()
	return c
}

// Reset puts the CPU into its power-on/RST state (spec §3 lifecycle): PC at
// 0, AF and SP all-ones, interrupts disabled, IM 0.
func (c *CPU) Reset() {
	c.Regs = Registers{}
	c.Regs.AF.SetWord(0xFFFF)
	c.Regs.SP.SetWord(0xFFFF)
	c.Regs.PC.SetWord(0x0000)
	c.TopOfStack = 0xFFFF
	c.IFF1 = false
	c.IFF2 = false
	c.IM = 0
	c.NMIPending = false
	c.INTPending = false
	c.Halted = false
	c.CyclesLeft = 0
}

// Step runs one fetch/decode/execute cycle and returns the T-states it
// consumed, also recording that count in CyclesLeft for callers that want
// it. Pending NMI/INT are serviced first — both only ever checked between
// instructions, since Step always runs one to completion (spec §5: "a
// pending NMI is serviced before a pending maskable interrupt; either is
// serviced only when cycles_left == 0, i.e. between instructions").
func (c *CPU) Step() int {
	if c.NMIPending {
		c.CyclesLeft = c.acceptNMI()
		return c.CyclesLeft
	}
	if c.INTPending && c.IFF1 {
		c.CyclesLeft = c.acceptINT()
		return c.CyclesLeft
	}

	if c.Halted {
		c.Regs.IR.BumpR(1)
		c.CyclesLeft = 4
		return c.CyclesLeft
	}

	pc := c.Regs.PC.Word()
	c.CurrOpcodePC = pc

	opcode, operandOffset := c.Bus.ReadOpcode(pc)
	inst := Decode(opcode)

	if inst.Type == InstInvalid {
		if c.Strict {
			panic(fmt.Sprintf("z80: undecodable opcode %#x at %#04x", opcode, pc))
		}
		fmt.Fprintf(os.Stderr, "z80: undecodable opcode %#x at %#04x\n", opcode, pc)
	}

	c.bumpRefresh(opcode)

	c.CurrOperandPC = pc + operandOffset
	c.CyclesLeft = c.execute(inst)

	return c.CyclesLeft
}

// bumpRefresh increments R once for a plain opcode, twice for any prefixed
// form (CB/ED/DD/FD and their compounds), per spec §4.3.
func (c *CPU) bumpRefresh(opcode uint32) {
	if opcode > 0xFF {
		c.Regs.IR.BumpR(2)
	} else {
		c.Regs.IR.BumpR(1)
	}
}

// advancePC moves PC past the instruction just executed, using size to
// account for opcode, prefix and operand bytes together. Taken jumps/calls/
// returns then overwrite PC themselves.
func (c *CPU) advancePC(size int) {
	c.Regs.PC.SetWord(c.CurrOpcodePC + uint16(size))
}
