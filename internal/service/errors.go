package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrTokenNotConfigured = errors.New("deel API token not configured")
)
