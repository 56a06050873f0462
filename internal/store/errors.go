package store

import "errors"

var (
	ErrNotFound           = errors.New("record not found")
	ErrAuthNotInitialized = errors.New("shared login not initialized")
)
