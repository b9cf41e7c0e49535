package interfaces

import domaintypes "boarbot/internal/domain/types"

// DeviceStore persists the device identity.
type DeviceStore interface {
	// LoadOrCreate returns the stored device, generating and persisting a
	// fresh one when none exists. created reports whether generation happened.
	LoadOrCreate() (device domaintypes.Device, created bool, err error)
}

// TokenStore persists the session token between runs.
type TokenStore interface {
	// LoadToken returns ok=false with a nil error when no token is stored.
	LoadToken() (token domaintypes.SessionToken, ok bool, err error)
	SaveToken(token domaintypes.SessionToken) error
	DeleteToken() error
}

// QRCodeSink publishes a QR challenge image for the operator to scan.
type QRCodeSink interface {
	WriteQRCode(image []byte) error
}
