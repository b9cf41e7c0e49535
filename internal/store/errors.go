package store

import "errors"

var (
	// ErrCorruptDevice is returned when the device file exists but cannot be
	// decoded. It is never repaired automatically: a regenerated device would
	// no longer match what the gateway has on record.
	ErrCorruptDevice = errors.New("corrupt device file")

	// ErrCorruptToken is returned when the token file exists but cannot be
	// decoded (or decrypted).
	ErrCorruptToken = errors.New("corrupt session token file")
)
