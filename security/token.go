package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenInvalid = errors.New("token is invalid or expired")

// TokenIssuer mints and validates the signed session tokens. The
// server keeps no session table, a token is valid iff its signature
// checks out and it hasn't expired.
type TokenIssuer struct {
	Secret []byte
	Expiry time.Duration
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		Secret: []byte(secret),
		Expiry: expiry,
	}
}

// Issue returns a signed token bound to the given user ID.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(t.Expiry).Unix(),
	})

	return tok.SignedString(t.Secret)
}

// Verify parses a token and returns the user ID it's bound to. Any
// signature or expiry problem comes back as ErrTokenInvalid, never as
// a valid identity.
func (t *TokenIssuer) Verify(tokenStr string) (string, error) {
	tok, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (any, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", tok.Method.Alg())
		}

		return t.Secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrTokenInvalid
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrTokenInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrTokenInvalid
	}

	exp, ok := claims["exp"].(float64)
	if !ok || time.Now().Unix() >= int64(exp) {
		return "", ErrTokenInvalid
	}

	return userID, nil
}
