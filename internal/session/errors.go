package session

import "errors"

var (
	// ErrUnauthorized indica que o backend de auth recusou o token.
	ErrUnauthorized = errors.New("session token rejected by auth backend")
	ErrBackend      = errors.New("auth backend unavailable")
)
