// Package store provides file-based persistence for boarbot's local state.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. Writes go through a temp file and a
// rename so readers never observe a half-written file. Stored files typically
// live under the configured home directory.
//
// The package includes:
//   - the device identity (DeviceFileStore), generated on first use
//   - the session token (TokenFileStore), optionally passphrase-sealed
//   - the QR challenge image (QRCodeFileSink)
//
// A file that exists but cannot be decoded is reported as ErrCorruptDevice or
// ErrCorruptToken and is never overwritten by the store.
package store
