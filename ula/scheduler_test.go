package ula

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spjewkes/jrnz-go/mem"
)

type fakeCPU struct {
	raised  int
	cleared int
}

func (f *fakeCPU) RequestINT() { f.raised++ }
func (f *fakeCPU) ClearINT()   { f.cleared++ }

func TestTickRaisesAndClearsInterruptPerFrame(t *testing.T) {
	cpu := &fakeCPU{}
	u := New(mem.NewBus(), cpu)
	u.Fast = true

	for i := 0; i < interruptRaiseAt; i++ {
		u.Tick()
	}
	assert.Equal(t, 0, cpu.raised)
	u.Tick()
	assert.Equal(t, 1, cpu.raised)

	for i := interruptRaiseAt + 1; i < interruptClearAt; i++ {
		u.Tick()
	}
	assert.Equal(t, 0, cpu.cleared)
	u.Tick()
	assert.Equal(t, 1, cpu.cleared)
}

func TestTickCompletesFrameAndScans(t *testing.T) {
	cpu := &fakeCPU{}
	bus := mem.NewBus()
	u := New(bus, cpu)
	u.Fast = true

	for i := 0; i <= frameLength; i++ {
		u.Tick()
	}
	assert.Equal(t, 1, u.Frame)
	assert.Equal(t, 1, cpu.raised)

	u.Tick() // counter has wrapped to 0; this tick raises the next frame's interrupt
	assert.Equal(t, 2, cpu.raised, "a second frame's interrupt must fire once the counter wraps")
}

func TestSwizzleMapsThreeInterleavedThirds(t *testing.T) {
	assert.Equal(t, 0, swizzle(0))
	assert.Equal(t, 8, swizzle(1))
	assert.Equal(t, 1, swizzle(8))
	assert.Equal(t, 191, swizzle(191))
}

func TestScanDecodesBitmapWithSwizzle(t *testing.T) {
	cpu := &fakeCPU{}
	bus := mem.NewBus()
	// Row 0 of storage maps to screen row swizzle(0) == 0; set its first
	// byte to 0x80 (MSB set => leftmost pixel on).
	bus.Mem[screenBase] = 0x80
	u := New(bus, cpu)
	u.Fast = true

	for i := 0; i <= frameLength; i++ {
		u.Tick()
	}

	assert.Equal(t, byte(1), u.Framebuffer[0])
	assert.Equal(t, byte(0), u.Framebuffer[1])
}
