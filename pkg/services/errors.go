package services

import "errors"

var (
	ErrAuth               = errors.New("missing, invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUpstream           = errors.New("completion provider failed")
	ErrWeakPassword       = errors.New("password must contain at least one letter and one number")
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmptyMessage       = errors.New("message text is required")
)
