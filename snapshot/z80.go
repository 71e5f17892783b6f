package snapshot

import (
	"fmt"

	"github.com/spjewkes/jrnz-go/mem"
	"github.com/spjewkes/jrnz-go/z80"
)

// LoadZ80 decodes a .Z80 snapshot (versions 1-3, 48K hardware only) into
// cpu/bus, per original_source/formats/format_z80.cpp's read_header_1/
// read_header_2/read_data_block. Paged 128K hardware modes and interface-1
// ROM pages are rejected, matching the original's exit(-1) branches,
// reported here as an error instead.
func LoadZ80(data []byte, cpu *z80.CPU, bus *mem.Bus) error {
	r := &byteReader{data: data}

	version, compression, err := readHeader1(r, cpu)
	if err != nil {
		return err
	}

	if version == 1 {
		decompressBlock(r.rest(), compression, 16384, bus)
		return nil
	}

	if err := readHeader2(r, cpu, &version); err != nil {
		return err
	}

	for r.pos < len(r.data) {
		length := r.ushort()
		compressed := true
		if length == 0xFFFF {
			length = 16384
			compressed = false
		}
		page := r.byte()

		addr, err := addrFromPage(page)
		if err != nil {
			return err
		}

		blockLen := int(length)
		if blockLen > len(r.data)-r.pos {
			blockLen = len(r.data) - r.pos
		}
		block := r.data[r.pos : r.pos+blockLen]
		r.pos += blockLen
		decompressBlock(block, compressed, addr, bus)
	}

	return nil
}

func readHeader1(r *byteReader, cpu *z80.CPU) (version uint32, compression bool, err error) {
	cpu.Regs.AF.SetLo(r.byte())
	cpu.Regs.AF.SetHi(r.byte())

	cpu.Regs.BC.SetLo(r.byte())
	cpu.Regs.BC.SetHi(r.byte())

	cpu.Regs.HL.SetLo(r.byte())
	cpu.Regs.HL.SetHi(r.byte())

	cpu.Regs.PC.SetLo(r.byte())
	cpu.Regs.PC.SetHi(r.byte())
	if cpu.Regs.PC.Word() != 0 {
		version = 1
	}

	cpu.Regs.SP.SetLo(r.byte())
	cpu.Regs.SP.SetHi(r.byte())

	cpu.Regs.IR.SetI(r.byte())
	cpu.Regs.IR.SetR(r.byte() & 0x7F)

	byte12 := r.byte()
	cpu.Regs.IR.SetR(cpu.Regs.IR.R() | (byte12&0x01)<<7)
	compression = (byte12>>5)&0x01 != 0
	if byte12 == 0xFF {
		version = 1
	}

	cpu.Regs.DE.SetLo(r.byte())
	cpu.Regs.DE.SetHi(r.byte())

	cpu.Regs.BC.Swap()
	cpu.Regs.BC.SetLo(r.byte())
	cpu.Regs.BC.SetHi(r.byte())
	cpu.Regs.BC.Swap()

	cpu.Regs.DE.Swap()
	cpu.Regs.DE.SetLo(r.byte())
	cpu.Regs.DE.SetHi(r.byte())
	cpu.Regs.DE.Swap()

	cpu.Regs.HL.Swap()
	cpu.Regs.HL.SetLo(r.byte())
	cpu.Regs.HL.SetHi(r.byte())
	cpu.Regs.HL.Swap()

	cpu.Regs.AF.Swap()
	cpu.Regs.AF.SetLo(r.byte())
	cpu.Regs.AF.SetHi(r.byte())
	cpu.Regs.AF.Swap()

	cpu.Regs.IY.SetLo(r.byte())
	cpu.Regs.IY.SetHi(r.byte())

	cpu.Regs.IX.SetLo(r.byte())
	cpu.Regs.IX.SetHi(r.byte())

	if r.byte() != 0 {
		cpu.IFF1 = true
		cpu.IFF2 = true
	}
	r.byte() // IFF2 duplicate byte, unused by the original too

	byte29 := r.byte()
	cpu.IM = int(byte29 & 0x03)

	return version, compression, nil
}

func readHeader2(r *byteReader, cpu *z80.CPU, version *uint32) error {
	length := r.ushort()
	switch length {
	case 23:
		*version = 2
	case 54, 55:
		*version = 3
	default:
		return fmt.Errorf("snapshot: unknown Z80 header length %d", length)
	}

	cpu.Regs.PC.SetLo(r.byte())
	cpu.Regs.PC.SetHi(r.byte())

	hwMode := r.byte()
	if hwMode != 0 {
		return fmt.Errorf("snapshot: only 48K hardware mode is supported (mode %d)", hwMode)
	}

	r.byte()   // out state
	r.byte()   // interface 1 ROM paged
	r.byte()   // emulation bits
	r.byte()   // last OUT to sound chip
	r.skip(16) // sound chip contents

	if *version == 2 {
		return nil
	}

	r.ushort() // low T-state counter
	r.byte()   // high T-state counter
	r.byte()   // QL emulator flag
	r.byte()   // MGT ROM paged
	r.byte()   // multiface ROM paged
	r.byte()   // bank 0 ROM flag
	r.byte()   // bank 1 ROM flag
	r.skip(10) // keyboard mappings
	r.skip(10) // keyboard mapping ASCII
	r.byte()   // MGT type
	r.byte()   // disciple inhibit button
	r.byte()   // disciple inhibit flag

	if length == 55 {
		r.byte() // last OUT to port 0x1FFD
	}
	return nil
}

// addrFromPage maps a .Z80 page number to its load address for 48K
// hardware, per get_addr_start_from_page. Pages belonging to 128K banking
// or unsupported peripherals are rejected.
func addrFromPage(page byte) (uint16, error) {
	switch page {
	case 4:
		return 0x8000, nil
	case 5:
		return 0xC000, nil
	case 8:
		return 0x4000, nil
	case 0:
		return 0x0000, nil
	default:
		return 0, fmt.Errorf("snapshot: unsupported Z80 page %d (128K/interface-1 hardware not supported)", page)
	}
}

// decompressBlock writes the whole block into bus starting at addrStart,
// expanding the 0xED 0xED <count> <byte> run-length form when compressed.
func decompressBlock(block []byte, compressed bool, addrStart uint16, bus *mem.Bus) {
	addr := addrStart
	if !compressed {
		for _, b := range block {
			bus.Mem[addr] = b
			addr++
		}
		return
	}

	i := 0
	for i < len(block) {
		if i+1 < len(block) && block[i] == 0xED && block[i+1] == 0xED {
			if i+3 >= len(block) {
				break
			}
			count := block[i+2]
			value := block[i+3]
			for n := byte(0); n < count; n++ {
				bus.Mem[addr] = value
				addr++
			}
			i += 4
			continue
		}
		bus.Mem[addr] = block[i]
		addr++
		i++
	}
}

func (r *byteReader) ushort() uint16 {
	lo := uint16(r.byte())
	hi := uint16(r.byte())
	return hi<<8 | lo
}

func (r *byteReader) skip(n int) {
	r.pos += n
}
