package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// ErrInvalidDigits is returned for a code length outside 4..10.
var ErrInvalidDigits = errors.New("otp: digits must be between 4 and 10")

// Generator produces one code per call.
type Generator interface {
	Generate() (string, error)
}

// Numeric produces zero-padded decimal codes of a fixed length.
type Numeric struct {
	digits int
	max    *big.Int
	random io.Reader
}

// NewNumeric returns a generator for codes with the given number of digits.
func NewNumeric(digits int) (*Numeric, error) {
	return newNumeric(digits, rand.Reader)
}

func newNumeric(digits int, random io.Reader) (*Numeric, error) {
	if digits < 4 || digits > 10 {
		return nil, ErrInvalidDigits
	}

	return &Numeric{
		digits: digits,
		max:    new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil),
		random: random,
	}, nil
}

// Generate returns a code in [0, 10^digits) padded with leading zeros.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.random, n.max)
	if err != nil {
		return "", fmt.Errorf("otp: read random: %w", err)
	}
	return fmt.Sprintf("%0*d", n.digits, v), nil
}
