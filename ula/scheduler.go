// Package ula implements the ZX Spectrum's display/interrupt controller: a
// T-state counter that raises one maskable interrupt per 50 Hz frame and
// scans the 6144-byte bitmap region into a linear framebuffer.
//
// Grounded on original_source/ula.cpp's ULA::clock (the counter thresholds
// 0/32/70000 and the screen-address swizzle) and on the counter-driven
// clock() method the teacher's PPU exposes (n-ulricksen-nes/nes/ppu.go) —
// generalized here from a stub into the actual Spectrum timing.
package ula

import (
	"time"

	"github.com/spjewkes/jrnz-go/mask"
	"github.com/spjewkes/jrnz-go/mem"
)

// frameInterval is the wall-clock budget of one 50 Hz frame.
const frameInterval = 20 * time.Millisecond

const (
	screenWidth  = 256
	screenHeight = 192
	screenBase   = 0x4000
	attrBase     = 0x5800

	// Counter thresholds from the original: interrupt is raised at 0,
	// cleared at 32 (its pulse width), and a frame completes at 70000
	// T-states (3.5 MHz / 50 Hz).
	interruptRaiseAt = 0
	interruptClearAt = 32
	frameLength      = 70000
)

// Interrupter is the subset of z80.CPU the scheduler needs to raise and
// withdraw the per-frame interrupt, kept minimal so this package doesn't
// import z80.
type Interrupter interface {
	RequestINT()
	ClearINT()
}

// ULA owns the frame counter and the decoded framebuffer.
type ULA struct {
	Bus  *mem.Bus
	cpu  Interrupter
	Fast bool // skip the wall-clock sleep; counters still advance

	counter  int
	deadline time.Time

	// Framebuffer holds one byte per pixel (0 or 1, ink/paper already
	// resolved to boolean via attributes would be a further step the
	// spec's ULA module leaves to the caller); Frame increments each time
	// a full scan completes.
	Framebuffer [screenWidth * screenHeight]byte
	Frame       int
}

// New returns a ULA driving bus and raising interrupts against cpu.
func New(bus *mem.Bus, cpu Interrupter) *ULA {
	return &ULA{Bus: bus, cpu: cpu}
}

// Tick advances the frame counter by one T-state, raising/clearing the
// interrupt and, once per frame, rescanning the framebuffer and pacing to
// the frame's wall-clock deadline — mirroring the original's switch-on-
// counter clock() body. In Fast mode the counters still advance the same
// way; only the sleep at the end of a frame is skipped (spec §4.6, §9).
func (u *ULA) Tick() {
	switch u.counter {
	case interruptRaiseAt:
		u.cpu.RequestINT()
		u.deadline = time.Now().Add(frameInterval)
	case interruptClearAt:
		u.cpu.ClearINT()
	case frameLength:
		u.scan()
		if !u.Fast {
			if d := time.Until(u.deadline); d > 0 {
				time.Sleep(d)
			}
		}
		u.counter = -1 // wraps to 0 on the increment below
		u.Frame++
	}
	u.counter++
}

// scan decodes the Spectrum's bitmap region into Framebuffer, applying the
// standard non-linear line address swizzle: the 192 display lines are not
// stored top-to-bottom but interleaved in three 64-line thirds, per
// original_source/ula.cpp.
func (u *ULA) scan() {
	// The bitmap is stored row-major in memory, but each stored row maps
	// to a non-adjacent screen row (three interleaved 64-line thirds).
	// Reading sequentially and writing through swizzle() un-interleaves
	// it, exactly as the original's pointer walk + new_y draw position.
	for row := 0; row < screenHeight; row++ {
		y := swizzle(row)
		for xByte := 0; xByte < screenWidth/8; xByte++ {
			b := u.Bus.ReadData(uint16(screenBase + row*32 + xByte))
			for bit := 0; bit < 8; bit++ {
				x := xByte*8 + bit
				// mask.IsSet is 1-indexed from the MSB; pixel bit (7-bit)
				// from the LSB is position (bit+1) from the MSB.
				if mask.IsSet(b, mask.Pos(bit+1)) {
					u.Framebuffer[y*screenWidth+x] = 1
				} else {
					u.Framebuffer[y*screenWidth+x] = 0
				}
			}
		}
	}
}

// swizzle maps a linear storage row (0-191) to its true screen row: the
// bitmap's 192 lines are stored as three 64-line thirds, each itself split
// into 8 interleaved banks of 8 lines (y = 0xC0&y | (y&0x7)<<3 | (y>>3)&0x7).
func swizzle(y int) int {
	return (0xC0 & y) | ((y & 0x7) << 3) | ((y >> 3) & 0x7)
}

// AttrAt returns the attribute byte (ink/paper/bright/flash) for the 8x8
// character cell containing pixel (x, y).
func (u *ULA) AttrAt(x, y int) byte {
	cellX, cellY := x/8, y/8
	return u.Bus.ReadData(uint16(attrBase + cellY*32 + cellX))
}
