package security

import (
	"crypto/rand"
	"math/big"
)

// GenerateOTP returns a random 5-digit verification code. crypto/rand
// so the code can't be predicted from the account or its creation time.
func GenerateOTP() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return 0, err
	}

	return n.Int64() + 10000, nil
}
