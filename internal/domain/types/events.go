package types

import (
	"strconv"
	"strings"
)

// EventKind tags the variant carried by an Event.
type EventKind string

const (
	EventFriendMessage    EventKind = "friend_message"
	EventGroupMessage     EventKind = "group_message"
	EventGroupTempMessage EventKind = "group_temp_message"
	EventGroupRequest     EventKind = "group_request"
	EventFriendRequest    EventKind = "friend_request"
	EventUnknown          EventKind = "unknown"
)

// Event is one decoded occurrence pushed by the gateway once a session is
// active. Implementations are value types; modules receive the same value and
// must treat any slices inside it as read-only.
type Event interface {
	Kind() EventKind
}

// ElementType identifies a message element.
type ElementType string

const (
	ElementText  ElementType = "text"
	ElementFace  ElementType = "face"
	ElementImage ElementType = "image"
)

// Element is one segment of a message body.
type Element struct {
	Type   ElementType `json:"type"`
	Text   string      `json:"text,omitempty"`
	FaceID int32       `json:"face_id,omitempty"`
	URL    string      `json:"url,omitempty"`
	Data   []byte      `json:"data,omitempty"`
}

// MessageChain is an ordered message body.
type MessageChain []Element

// String renders the chain as plain text for logging.
func (c MessageChain) String() string {
	var b strings.Builder
	for _, e := range c {
		switch e.Type {
		case ElementText:
			b.WriteString(e.Text)
		case ElementFace:
			b.WriteString("[face:")
			b.WriteString(strconv.Itoa(int(e.FaceID)))
			b.WriteByte(']')
		case ElementImage:
			b.WriteString("[image]")
		default:
			b.WriteString("[" + string(e.Type) + "]")
		}
	}
	return b.String()
}

// FriendMessage is a direct message from a friend.
type FriendMessage struct {
	Seq      int32        `json:"seq"`
	From     UIN          `json:"from"`
	FromNick string       `json:"from_nick,omitempty"`
	Time     int64        `json:"time"`
	Elements MessageChain `json:"elements"`
}

// GroupMessage is a message posted in a group.
type GroupMessage struct {
	Seq       int32        `json:"seq"`
	GroupCode GroupCode    `json:"group_code"`
	GroupName string       `json:"group_name,omitempty"`
	From      UIN          `json:"from"`
	FromCard  string       `json:"from_card,omitempty"`
	Time      int64        `json:"time"`
	Elements  MessageChain `json:"elements"`
}

// GroupTempMessage is a temporary session message started from a group.
type GroupTempMessage struct {
	Seq       int32        `json:"seq"`
	GroupCode GroupCode    `json:"group_code"`
	From      UIN          `json:"from"`
	FromNick  string       `json:"from_nick,omitempty"`
	Time      int64        `json:"time"`
	Elements  MessageChain `json:"elements"`
}

// GroupRequest is a request to join a group managed by the account.
type GroupRequest struct {
	MsgSeq     int64     `json:"msg_seq"`
	GroupCode  GroupCode `json:"group_code"`
	GroupName  string    `json:"group_name,omitempty"`
	ReqUIN     UIN       `json:"req_uin"`
	ReqNick    string    `json:"req_nick,omitempty"`
	Message    string    `json:"message"`
	Suspicious bool      `json:"suspicious,omitempty"`
}

// FriendRequest is a request to add the account as a friend.
type FriendRequest struct {
	MsgSeq  int64  `json:"msg_seq"`
	ReqUIN  UIN    `json:"req_uin"`
	ReqNick string `json:"req_nick,omitempty"`
	Message string `json:"message"`
}

// UnknownEvent is an event kind this client does not decode.
type UnknownEvent struct {
	Type string `json:"type"`
	Raw  []byte `json:"raw,omitempty"`
}

func (FriendMessage) Kind() EventKind    { return EventFriendMessage }
func (GroupMessage) Kind() EventKind     { return EventGroupMessage }
func (GroupTempMessage) Kind() EventKind { return EventGroupTempMessage }
func (GroupRequest) Kind() EventKind     { return EventGroupRequest }
func (FriendRequest) Kind() EventKind    { return EventFriendRequest }
func (UnknownEvent) Kind() EventKind     { return EventUnknown }
