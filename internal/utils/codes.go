package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewNumericCode returns a uniformly random decimal code of exactly width
// digits (leading zeros kept), drawn from crypto/rand.
func NewNumericCode(width int) (string, error) {
	if width <= 0 || width > 18 {
		return "", fmt.Errorf("code width %d out of range", width)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(width)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", width, n.Int64()), nil
}
