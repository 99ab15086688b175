package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewResetToken returns a raw password reset token and its sha256
// digest. Only the digest ever touches the database, the raw token
// goes out by mail.
func NewResetToken() (raw string, digest string, err error) {
	b := make([]byte, 20)

	_, err = rand.Read(b)
	if err != nil {
		return "", "", err
	}

	raw = hex.EncodeToString(b)
	return raw, HashResetToken(raw), nil
}

// HashResetToken recomputes the stored digest for a raw token.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
