package utils

import (
	"encoding/base64"
	"fmt"
)

// EncodeEmailToken wraps an email address into a URL-safe token used in
// verification and password-reset links.
func EncodeEmailToken(email string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(email))
}

// DecodeEmailToken reverses EncodeEmailToken.
func DecodeEmailToken(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	return string(raw), nil
}
