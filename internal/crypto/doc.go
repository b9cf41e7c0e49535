// Package crypto exposes the minimal primitives used by boarbot.
//
// Contents
//
//   - X25519 key generation, clamping and public key derivation
//     (GenerateX25519, PublicKey)
//   - Random device identity generation (GenerateDevice)
//   - Short public-key fingerprints for display/logging (Fingerprint,
//     DeviceFingerprint)
//
// # Notes
//
// Key types are the fixed-size arrays defined in internal/domain. The device
// private key is a long-lived secret; callers persist it with restrictive
// file permissions.
//
// The device key pair identifies a device; it does not authenticate it. The
// gateway handshake sends the public key and its fingerprint, so a peer can
// check that the two agree but not that the sender holds the private key.
// Authentication comes from the login itself (QR confirmation or a session
// token bound to the fingerprint).
package crypto
