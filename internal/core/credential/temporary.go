package credential

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const tempAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// RandomTempPassword issues one-off temporary passwords of Length characters.
type RandomTempPassword struct {
	Length int
}

func (r RandomTempPassword) TempPassword() (string, error) {
	n := r.Length
	if n < 8 {
		n = 12
	}
	max := big.NewInt(int64(len(tempAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("temp password: %w", err)
		}
		buf[i] = tempAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
