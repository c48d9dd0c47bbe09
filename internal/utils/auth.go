package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateStateOauthCookie returns a random state without padding, so the
// value survives cookie escaping unchanged.
func GenerateStateOauthCookie() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
