package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomInt returns a uniformly distributed integer in [min, max).
func RandomInt(min, max int) (int, error) {
	if max <= min {
		return 0, fmt.Errorf("invalid range [%d, %d)", min, max)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)))
	if err != nil {
		return 0, err
	}
	return min + int(n.Int64()), nil
}

// NewConfirmationCode draws a six digit code from [100000, 1000000).
func NewConfirmationCode() (int, error) {
	return RandomInt(100000, 1000000)
}
