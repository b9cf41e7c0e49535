package login

import (
	"errors"
	"fmt"

	"boarbot/internal/domain"
)

var (
	// ErrQRCodeCanceled is returned when the operator rejects the QR login.
	ErrQRCodeCanceled = errors.New("qrcode login canceled by operator")

	// ErrTokenDeviceMismatch is returned when the stored token was issued to a
	// different device than the one loaded for this run.
	ErrTokenDeviceMismatch = errors.New("session token was issued to a different device")

	// ErrLoginRejected is matched by every *RejectedError.
	ErrLoginRejected = errors.New("login rejected")
)

// RejectedError reports a login primitive that answered with anything other
// than success.
type RejectedError struct {
	Step   string
	Result domain.LoginResult
}

func (e *RejectedError) Error() string {
	msg := fmt.Sprintf("login: %s rejected: %s", e.Step, e.Result.Kind)
	if e.Result.Message != "" {
		msg += ": " + e.Result.Message
	}
	if e.Result.VerifyURL != "" {
		msg += " (verify at " + e.Result.VerifyURL + ")"
	}
	return msg
}

func (e *RejectedError) Unwrap() error { return ErrLoginRejected }
