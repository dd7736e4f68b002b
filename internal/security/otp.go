package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	OTPDigits = 6

	DefaultVerifyOTPTTL = 24 * time.Hour
	DefaultResetOTPTTL  = 15 * time.Minute
)

var otpSpace = big.NewInt(1_000_000)

type OTPGenerator interface {
	Generate() (string, error)
}

// RandomOTP draws codes uniformly from 000000-999999 using crypto/rand.
type RandomOTP struct{}

func (RandomOTP) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", OTPDigits, n.Int64()), nil
}

// FixedOTP always returns the same code. Useful in tests.
type FixedOTP string

func (f FixedOTP) Generate() (string, error) { return string(f), nil }
