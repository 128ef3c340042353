package auth

import "errors"

var (
	ErrPwdWrong        = errors.New("invalid email or password")
	ErrTokenDuplicated = errors.New("access token already registered")
	ErrTokenNotFound   = errors.New("access token not found")
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)
