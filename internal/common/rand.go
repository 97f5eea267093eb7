// Package common also provides helpers for generating random secrets:
// hex reset tokens and numeric verification codes.
package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter specifies the number of random bytes to generate before
// encoding them as a hexadecimal string, so the final string length is twice
// the size. It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// MakeVerificationCode returns a uniform random 4-digit code in the range
// 1000–9999 inclusive. Codes never start with zero; the range matches the
// codes the product has always issued.
func MakeVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
