package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfirmationCode_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		c, err := NewConfirmationCode()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, c, 100000)
		assert.Less(t, c, 1000000)
	}
}

func TestRandomInt_HalfOpen(t *testing.T) {
	for i := 0; i < 100; i++ {
		n, err := RandomInt(5, 6)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	}
	_, err := RandomInt(3, 3)
	assert.Error(t, err)
}
