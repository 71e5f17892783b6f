// Package mem implements the 64 KiB memory and I/O bus shared by the Z80
// core, snapshot loaders, and the ULA's framebuffer scan.
package mem

// IOPorts is implemented by whatever collaborator owns port state (keyboard
// matrix, beeper, ULA). The bus holds no port logic of its own; it only
// dispatches.
type IOPorts interface {
	ReadPort(addr uint16) byte
	WritePort(addr uint16, v byte)
}

// nullPorts answers every read with the "nothing attached" pattern and
// discards writes. It is the default before a collaborator is wired in, so
// a Bus is always usable standalone (e.g. in tests).
type nullPorts struct{}

func (nullPorts) ReadPort(uint16) byte   { return 0xFF }
func (nullPorts) WritePort(uint16, byte) {}

// Prefix bytes that extend the base opcode space.
const (
	PrefixCB = 0xCB
	PrefixED = 0xED
	PrefixDD = 0xDD
	PrefixFD = 0xFD
)

// Bus is a flat 64 KiB byte array with a configurable ROM/RAM boundary.
// Addresses below RAMStart are read-only from the CPU's point of view;
// writes to them are silently dropped (see spec §7 on ROM write attempts).
type Bus struct {
	Mem [64 * 1024]byte

	// RAMStart is the first writable address. Defaults to 0x4000, the
	// standard 16K ROM / 48K RAM split on a 48K Spectrum.
	RAMStart uint16

	Ports IOPorts
}

// NewBus returns a Bus with the default 0x4000 ROM/RAM split and a
// no-op port sink.
func NewBus() *Bus {
	return &Bus{RAMStart: 0x4000, Ports: nullPorts{}}
}

// ReadData reads a single byte at addr.
func (b *Bus) ReadData(addr uint16) byte {
	return b.Mem[addr]
}

// WriteData writes v at addr, unless addr falls below RAMStart, in which
// case the write is dropped per the ROM guard invariant.
func (b *Bus) WriteData(addr uint16, v byte) {
	if addr < b.RAMStart {
		return
	}
	b.Mem[addr] = v
}

// ReadAddrFromMem reads a little-endian 16-bit word starting at addr.
func (b *Bus) ReadAddrFromMem(addr uint16) uint16 {
	lo := b.ReadData(addr)
	hi := b.ReadData(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// WriteAddrToMem writes w as a little-endian 16-bit word starting at addr.
// Each byte independently observes the ROM guard.
func (b *Bus) WriteAddrToMem(addr uint16, w uint16) {
	b.WriteData(addr, byte(w))
	b.WriteData(addr+1, byte(w>>8))
}

// Writable reports whether addr falls at or above the RAM boundary.
func (b *Bus) Writable(addr uint16) bool {
	return addr >= b.RAMStart
}

func (b *Bus) ReadPort(addr uint16) byte {
	if b.Ports == nil {
		return 0xFF
	}
	return b.Ports.ReadPort(addr)
}

func (b *Bus) WritePort(addr uint16, v byte) {
	if b.Ports == nil {
		return
	}
	b.Ports.WritePort(addr, v)
}

// ReadOpcode reads the next instruction's opcode starting at addr. It
// returns the opcode value (up to 24 bits for the DDCB/FDCB compound
// prefixes) and operandOffset, the number of bytes from addr at which
// operand/displacement reading should resume.
//
// Plain opcodes: 1 byte, operandOffset 1.
// CB/ED/DD/FD-prefixed: 2 bytes, operandOffset 2.
// DDCB/FDCB: the displacement occupies the third byte and the real opcode
// the fourth; the returned opcode is (prefix16<<8)|byte4 and operandOffset
// is 2 (the displacement is read by the operand machinery, not here).
func (b *Bus) ReadOpcode(addr uint16) (opcode uint32, operandOffset uint16) {
	first := b.ReadData(addr)

	switch first {
	case PrefixDD, PrefixFD:
		second := b.ReadData(addr + 1)
		if second == PrefixCB {
			prefix16 := uint32(first)<<8 | uint32(second)
			fourth := b.ReadData(addr + 3)
			return prefix16<<8 | uint32(fourth), 2
		}
		return uint32(first)<<8 | uint32(second), 2
	case PrefixCB, PrefixED:
		second := b.ReadData(addr + 1)
		return uint32(first)<<8 | uint32(second), 2
	default:
		return uint32(first), 1
	}
}
