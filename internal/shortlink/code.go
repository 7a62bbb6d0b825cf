package shortlink

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Alphabet holds the code characters. It leaves out 0, 1, I, O and l.
const Alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const (
	DefaultLength = 6
	MaxAttempts   = 5
	maxLength     = 32
)

// Generator returns a random code of the given length.
type Generator func(length int) (string, error)

// RandomCode draws length characters uniformly from Alphabet.
func RandomCode(length int) (string, error) {
	n := big.NewInt(int64(len(Alphabet)))
	b := make([]byte, length)
	for i := range b {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", err
		}
		b[i] = Alphabet[idx.Int64()]
	}
	return string(b), nil
}

// ValidCode reports whether s could have been produced by RandomCode.
func ValidCode(s string) bool {
	if s == "" || len(s) > maxLength {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}
