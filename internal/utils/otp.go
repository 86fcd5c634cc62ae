package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const otpAlphabet = "0123456789"

// OTPLength is the fixed length of every one-time code.
const OTPLength = 6

// GenerateOTP returns a fixed-length numeric one-time code drawn
// uniformly from the digit alphabet.
func GenerateOTP() (string, error) {
	code := make([]byte, OTPLength)
	max := big.NewInt(int64(len(otpAlphabet)))

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate otp: %w", err)
		}
		code[i] = otpAlphabet[n.Int64()]
	}

	return string(code), nil
}
