// Package randid generates short random identifiers.
package randid

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate returns a random identifier of the given length drawn from
// the lowercase alphanumeric alphabet.
func Generate(length int) string {
	if length <= 0 {
		return ""
	}

	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand reading from the OS entropy source does not
			// fail in practice; there is no sane fallback if it does.
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}

	return string(b)
}
