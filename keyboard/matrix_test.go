package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoKeysPressedReadsAllOnes(t *testing.T) {
	m := NewMatrix()
	assert.Equal(t, byte(0x1F), m.ReadPort(0xFEFE))
}

func TestSingleKeyPressedClearsItsBit(t *testing.T) {
	m := NewMatrix()
	m.SetKey(RowShiftZXCV, Key1) // CAPS SHIFT
	v := m.ReadPort(0xFEFE)      // high byte 0xFE selects row 0 only
	assert.Equal(t, byte(0x1E), v)
}

func TestUnselectedRowDoesNotLeak(t *testing.T) {
	m := NewMatrix()
	m.SetKey(RowASDFG, Key1)
	v := m.ReadPort(0xFEFE) // selects row 0, not row 1
	assert.Equal(t, byte(0x1F), v)
}

func TestReleaseRestoresBit(t *testing.T) {
	m := NewMatrix()
	m.SetKey(RowPOIUY, Key3)
	m.ClearKey(RowPOIUY, Key3)
	assert.Equal(t, byte(0x1F), m.ReadPort(0xDFFE))
}
