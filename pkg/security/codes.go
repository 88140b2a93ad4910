package security

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

// VerificationCodeLength is the number of digits in order and prescription codes.
const VerificationCodeLength = 6

var codeSpace = big.NewInt(1_000_000)

// GenerateVerificationCode returns a zero-padded six-digit numeric code.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", VerificationCodeLength, n.Int64()), nil
}

// CodesEqual reports whether submitted is exactly the stored code.
func CodesEqual(stored, submitted string) bool {
	if stored == "" || len(stored) != len(submitted) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
