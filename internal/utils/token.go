package utils // helpers for session token creation

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NewSessionToken builds and signs an HS256 JWT used as the bearer token
// for a session. The token carries the user id (sub), the role and a
// random jti so two logins in the same second still produce distinct
// tokens. The signed string is also stored on the user row; a request is
// only authenticated when its token matches the stored value, so issuing
// a new token on login invalidates the previous session.
func NewSessionToken(secret string, userID int64, role string, ttlMin int) (string, error) {
	jti, err := randomHex(8)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"jti":  jti,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Duration(ttlMin) * time.Minute).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
