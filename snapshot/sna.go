// Package snapshot loads .SNA and .Z80 snapshot files into a Z80 CPU and
// memory bus, grounded on original_source/formats/format_sna.cpp and
// format_z80.cpp: byte-for-byte ports of their field layouts, re-expressed
// in idiomatic Go (explicit error returns instead of exit(-1)/cerr).
package snapshot

import (
	"fmt"

	"github.com/spjewkes/jrnz-go/mem"
	"github.com/spjewkes/jrnz-go/z80"
)

// snaSize is the fixed length of a classic 48K .SNA file: 27 bytes of
// register state followed by the full 48K RAM image.
const snaSize = 27 + 49152

// LoadSNA decodes a 48K .SNA snapshot image into cpu/bus. Per
// format_sna.cpp, the saved state points at the RETN that would have
// serviced the interrupt that triggered the snapshot; the final step here
// mirrors the original's "execute a RETN" by popping PC straight off the
// stack and restoring IFF1 from IFF2, rather than replaying the opcode.
func LoadSNA(data []byte, cpu *z80.CPU, bus *mem.Bus) error {
	if len(data) != snaSize {
		return fmt.Errorf("snapshot: SNA size is %d bytes, expected %d", len(data), snaSize)
	}

	r := &byteReader{data: data}

	cpu.Regs.IR.SetI(r.byte())

	cpu.Regs.HL.SetLo(r.byte())
	cpu.Regs.HL.SetHi(r.byte())
	cpu.Regs.HL.Swap()

	cpu.Regs.DE.SetLo(r.byte())
	cpu.Regs.DE.SetHi(r.byte())
	cpu.Regs.DE.Swap()

	cpu.Regs.BC.SetLo(r.byte())
	cpu.Regs.BC.SetHi(r.byte())
	cpu.Regs.BC.Swap()

	cpu.Regs.AF.SetLo(r.byte())
	cpu.Regs.AF.SetHi(r.byte())
	cpu.Regs.AF.Swap()

	cpu.Regs.HL.SetLo(r.byte())
	cpu.Regs.HL.SetHi(r.byte())

	cpu.Regs.DE.SetLo(r.byte())
	cpu.Regs.DE.SetHi(r.byte())

	cpu.Regs.BC.SetLo(r.byte())
	cpu.Regs.BC.SetHi(r.byte())

	cpu.Regs.IY.SetLo(r.byte())
	cpu.Regs.IY.SetHi(r.byte())

	cpu.Regs.IX.SetLo(r.byte())
	cpu.Regs.IX.SetHi(r.byte())

	cpu.IFF2 = r.byte()&0x04 != 0

	cpu.Regs.IR.SetR(r.byte())

	cpu.Regs.AF.SetLo(r.byte())
	cpu.Regs.AF.SetHi(r.byte())

	cpu.Regs.SP.SetLo(r.byte())
	cpu.Regs.SP.SetHi(r.byte())

	im := r.byte()
	if im > 2 {
		return fmt.Errorf("snapshot: invalid interrupt mode %d", im)
	}
	cpu.IM = int(im)

	r.byte() // border colour; the ULA's port 0xFE isn't modelled as saved state here

	copy(bus.Mem[0x4000:], r.rest())

	cpu.IFF1 = cpu.IFF2
	sp := cpu.Regs.SP.Word()
	cpu.Regs.PC.SetWord(bus.ReadAddrFromMem(sp))
	cpu.Regs.SP.SetWord(sp + 2)

	return nil
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) byte() byte {
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *byteReader) rest() []byte {
	return r.data[r.pos:]
}
