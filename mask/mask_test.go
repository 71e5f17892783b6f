package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSet(t *testing.T) {
	assert.True(t, IsSet(0b1101_1000, 1))
	assert.True(t, IsSet(0b1101_1000, 2))
	assert.False(t, IsSet(0b1101_1000, 3))
	assert.True(t, IsSet(0b1101_1000, 4))
}

func TestPos(t *testing.T) {
	assert.Equal(t, IsSet(0b0000_0001, Pos(8)), true)
	assert.Equal(t, IsSet(0b1000_0000, Pos(1)), true)
	assert.Equal(t, IsSet(0b0000_0001, Pos(1)), false)
}
