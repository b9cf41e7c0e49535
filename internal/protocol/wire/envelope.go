package wire

import (
	"errors"
	"fmt"
	"time"
)

// Version is the protocol version carried in every envelope.
const Version = 1

const (
	TypeHello    = "hello"
	TypeHelloAck = "hello_ack"

	TypeQRCodeFetch     = "qrcode_fetch"
	TypeQRCodeImage     = "qrcode_image"
	TypeQRCodeQuery     = "qrcode_query"
	TypeQRCodeState     = "qrcode_state"
	TypeQRCodeLogin     = "qrcode_login"
	TypeDeviceLockLogin = "device_lock_login"
	TypeTokenLogin      = "token_login"
	TypeLoginResult     = "login_result"
	TypeAfterLogin      = "after_login"
	TypeOK              = "ok"
	TypeGenToken        = "gen_token"
	TypeToken           = "token"

	TypeFriendList        = "friend_list"
	TypeGroupList         = "group_list"
	TypeSendFriendMessage = "send_friend_message"
	TypeMessageReceipt    = "message_receipt"

	TypeEvent = "event"
	TypeError = "error"
)

var allowedTypes = map[string]struct{}{
	TypeHello:             {},
	TypeHelloAck:          {},
	TypeQRCodeFetch:       {},
	TypeQRCodeImage:       {},
	TypeQRCodeQuery:       {},
	TypeQRCodeState:       {},
	TypeQRCodeLogin:       {},
	TypeDeviceLockLogin:   {},
	TypeTokenLogin:        {},
	TypeLoginResult:       {},
	TypeAfterLogin:        {},
	TypeOK:                {},
	TypeGenToken:          {},
	TypeToken:             {},
	TypeFriendList:        {},
	TypeGroupList:         {},
	TypeSendFriendMessage: {},
	TypeMessageReceipt:    {},
	TypeEvent:             {},
	TypeError:             {},
}

// Envelope is one websocket message. Payload holds the payload encoded with
// the same codec as the envelope.
type Envelope struct {
	V       int
	Type    string
	ID      string
	TS      time.Time
	Payload []byte
}

// Validate checks the version and the fields every envelope must carry.
func (e Envelope) Validate() error {
	if e.V != Version {
		return fmt.Errorf("invalid protocol version: got=%d want=%d", e.V, Version)
	}
	if e.Type == "" {
		return errors.New("missing type")
	}
	if _, ok := allowedTypes[e.Type]; !ok {
		return fmt.Errorf("unsupported type: %s", e.Type)
	}
	if e.ID == "" {
		return errors.New("missing id")
	}
	if e.TS.IsZero() {
		return errors.New("missing ts")
	}
	if len(e.Payload) == 0 {
		return errors.New("missing payload")
	}
	return nil
}

// Encode builds and serializes an envelope of type typ around payload.
func Encode(c Codec, typ, id string, ts time.Time, payload any) ([]byte, error) {
	p, err := c.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wire: encode %s payload: %w", typ, err)
	}
	env := Envelope{V: Version, Type: typ, ID: id, TS: ts, Payload: p}
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}
	return c.EncodeEnvelope(env)
}

// Decode parses and validates one envelope.
func Decode(c Codec, data []byte) (Envelope, error) {
	env, err := c.DecodeEnvelope(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("wire: decode envelope: %w", err)
	}
	if err := env.Validate(); err != nil {
		return Envelope{}, fmt.Errorf("wire: decode: %w", err)
	}
	return env, nil
}

// DecodePayload unmarshals env's payload into v.
func DecodePayload(c Codec, env Envelope, v any) error {
	if err := c.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("wire: decode %s payload: %w", env.Type, err)
	}
	return nil
}
