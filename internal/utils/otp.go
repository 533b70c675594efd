package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const otpDigits = 6

// GenerateOtp returns a random numeric code of 6 digits. Leading zeros are
// kept, so the value must stay a string end to end.
func GenerateOtp() string {
	var b strings.Builder
	b.Grow(otpDigits)
	for i := 0; i < otpDigits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			b.WriteByte('0')
			continue
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String()
}
