package storage

import (
	"errors"
)

var (
	// ErrNotFound is returned when a key is not present in the store. Backends
	// translate their own not found errors (badger.ErrKeyNotFound,
	// pebble.ErrNotFound) into it.
	ErrNotFound = errors.New("key not found")

	// ErrCorrupted is returned when a stored value cannot be decoded.
	ErrCorrupted = errors.New("stored value is corrupted")

	// ErrClosed is returned by operations on a closed store, including
	// pending NotifyRead calls at the time the store is closed.
	ErrClosed = errors.New("store is closed")
)
