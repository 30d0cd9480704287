package auth

import (
	"errors"
	"strings"
)

var (
	ErrNoAuthHeader = errors.New("internal/auth: no authorization header found")
	ErrBadAuthShape = errors.New("internal/auth: invalid or missing bearer token")
)

// BearerToken extracts the token from an Authorization header value.
// The header must have the exact shape "Bearer <token>".
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoAuthHeader
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		return "", ErrBadAuthShape
	}

	return token, nil
}
