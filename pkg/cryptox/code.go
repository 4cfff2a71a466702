package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

// CodeLength is the number of digits in a generated one-time code.
const CodeLength = 6

// GenerateNumericCode returns a fixed-length numeric string drawn from
// crypto/rand. Leading zeros are preserved ("012345" is a valid code).
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("cryptox: code length must be positive, got %d", length)
	}

	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to generate code: %w", err)
	}

	return fmt.Sprintf("%0*d", length, n), nil
}

// ConstantTimeEquals compares two code strings without leaking the position
// of the first differing digit.
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
