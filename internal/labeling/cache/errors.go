package cache

import "errors"

var (
	// ErrInvalidKey is returned when a key is empty
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrInvalidSize is returned when an in-memory cache is given a non-positive size
	ErrInvalidSize = errors.New("cache size must be positive")
)
