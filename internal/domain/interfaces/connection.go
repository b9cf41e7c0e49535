package interfaces

import (
	"context"

	domaintypes "boarbot/internal/domain/types"
)

// Authenticator is the set of login primitives offered by the gateway.
type Authenticator interface {
	FetchQRCode(ctx context.Context) (domaintypes.QRChallenge, error)
	QueryQRCodeResult(ctx context.Context, sig []byte) (domaintypes.QRState, error)
	QRCodeLogin(ctx context.Context, confirmed domaintypes.QRConfirmed) (domaintypes.LoginResult, error)
	DeviceLockLogin(ctx context.Context) (domaintypes.LoginResult, error)
	TokenLogin(ctx context.Context, token domaintypes.SessionToken) error

	// AfterLogin finalizes a freshly authenticated session.
	AfterLogin(ctx context.Context) error
	// GenToken exports a reusable token for the current session.
	GenToken(ctx context.Context) (domaintypes.SessionToken, error)
}

// Directory exposes read-only, session-scoped listings.
type Directory interface {
	FriendList(ctx context.Context) ([]domaintypes.Friend, error)
	GroupList(ctx context.Context) ([]domaintypes.Group, error)
}

// MessageSender sends outbound messages.
type MessageSender interface {
	SendFriendMessage(ctx context.Context, to domaintypes.UIN, elements domaintypes.MessageChain) error
}

// EventSource yields decoded events in arrival order. The channel is closed
// when the connection ends.
type EventSource interface {
	Events() <-chan domaintypes.Event
}

// Connection is a live transport bound to one Device.
type Connection interface {
	Authenticator
	Directory
	MessageSender
	EventSource
	Close() error
}
