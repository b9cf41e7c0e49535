package wire

import (
	"fmt"

	"boarbot/internal/domain"
)

// HelloPayload binds a websocket session to one device.
type HelloPayload struct {
	Device    domain.Fingerprint `json:"device"`
	PublicKey []byte             `json:"public_key"`
	Brand     string             `json:"brand,omitempty"`
	Model     string             `json:"model,omitempty"`
	OSVersion string             `json:"os_version,omitempty"`
}

type HelloAckPayload struct {
	SessionID string `json:"session_id"`
}

// Empty is the payload of requests that carry no arguments and of TypeOK.
type Empty struct{}

type QRCodeQueryPayload struct {
	Sig []byte `json:"sig"`
}

type FriendListPayload struct {
	Friends []domain.Friend `json:"friends"`
}

type GroupListPayload struct {
	Groups []domain.Group `json:"groups"`
}

type SendFriendMessagePayload struct {
	To       domain.UIN          `json:"to"`
	Elements domain.MessageChain `json:"elements"`
}

type MessageReceiptPayload struct {
	Seq  int32 `json:"seq"`
	Time int64 `json:"time"`
}

// EventPayload is a tagged union: Kind names the single non-nil field.
type EventPayload struct {
	Kind             domain.EventKind         `json:"kind"`
	FriendMessage    *domain.FriendMessage    `json:"friend_message,omitempty"`
	GroupMessage     *domain.GroupMessage     `json:"group_message,omitempty"`
	GroupTempMessage *domain.GroupTempMessage `json:"group_temp_message,omitempty"`
	GroupRequest     *domain.GroupRequest     `json:"group_request,omitempty"`
	FriendRequest    *domain.FriendRequest    `json:"friend_request,omitempty"`
	Unknown          *domain.UnknownEvent     `json:"unknown,omitempty"`
}

// NewEventPayload wraps ev for transmission.
func NewEventPayload(ev domain.Event) EventPayload {
	p := EventPayload{Kind: ev.Kind()}
	switch e := ev.(type) {
	case domain.FriendMessage:
		p.FriendMessage = &e
	case domain.GroupMessage:
		p.GroupMessage = &e
	case domain.GroupTempMessage:
		p.GroupTempMessage = &e
	case domain.GroupRequest:
		p.GroupRequest = &e
	case domain.FriendRequest:
		p.FriendRequest = &e
	case domain.UnknownEvent:
		p.Unknown = &e
	default:
		p.Kind = domain.EventUnknown
		p.Unknown = &domain.UnknownEvent{Type: string(ev.Kind())}
	}
	return p
}

// Event returns the carried event. A kind this client does not know, or a
// payload whose field does not match its kind, yields an UnknownEvent.
func (p EventPayload) Event() domain.Event {
	switch {
	case p.Kind == domain.EventFriendMessage && p.FriendMessage != nil:
		return *p.FriendMessage
	case p.Kind == domain.EventGroupMessage && p.GroupMessage != nil:
		return *p.GroupMessage
	case p.Kind == domain.EventGroupTempMessage && p.GroupTempMessage != nil:
		return *p.GroupTempMessage
	case p.Kind == domain.EventGroupRequest && p.GroupRequest != nil:
		return *p.GroupRequest
	case p.Kind == domain.EventFriendRequest && p.FriendRequest != nil:
		return *p.FriendRequest
	case p.Unknown != nil:
		return *p.Unknown
	default:
		return domain.UnknownEvent{Type: string(p.Kind)}
	}
}

// Error codes sent in ErrorPayload.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeStaleQRCode  = "stale_qrcode"
	CodeInvalidToken = "invalid_token"
	CodeInternal     = "internal"
)

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RemoteError is an error envelope returned by the gateway.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}
