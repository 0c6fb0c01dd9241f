// Package auth provides minimal authentication helpers for the HTTP
// bridge. It intentionally avoids policy decisions and storage concerns;
// manager-side credentials live in the Login action, not here.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

// Validator validates an authentication token.
type Validator interface {
	Validate(token string) error
}

// StaticToken validates a single shared token. Suitable for a bridge
// sitting on a trusted network, not for multi-tenant deployments.
type StaticToken struct {
	Token string
}

func (s StaticToken) Validate(token string) error {
	if s.Token == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(token string) error

func (f FuncValidator) Validate(token string) error {
	return f(token)
}

// FromHeader extracts the token from an Authorization header value.
// Only the Bearer scheme is recognized.
func FromHeader(value string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(value, prefix) {
		return "", ErrUnauthorized
	}
	token := strings.TrimSpace(value[len(prefix):])
	if token == "" {
		return "", ErrUnauthorized
	}
	return token, nil
}
