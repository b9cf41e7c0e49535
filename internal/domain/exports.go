package domain

import (
	interfaces "boarbot/internal/domain/interfaces"
	types "boarbot/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	UIN              = types.UIN
	GroupCode        = types.GroupCode
	Fingerprint      = types.Fingerprint
	X25519Public     = types.X25519Public
	X25519Private    = types.X25519Private
	Device           = types.Device
	SessionToken     = types.SessionToken
	QRPhase          = types.QRPhase
	QRChallenge      = types.QRChallenge
	QRConfirmed      = types.QRConfirmed
	QRState          = types.QRState
	LoginResultKind  = types.LoginResultKind
	LoginResult      = types.LoginResult
	Friend           = types.Friend
	Group            = types.Group
	EventKind        = types.EventKind
	Event            = types.Event
	ElementType      = types.ElementType
	Element          = types.Element
	MessageChain     = types.MessageChain
	FriendMessage    = types.FriendMessage
	GroupMessage     = types.GroupMessage
	GroupTempMessage = types.GroupTempMessage
	GroupRequest     = types.GroupRequest
	FriendRequest    = types.FriendRequest
	UnknownEvent     = types.UnknownEvent
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	DeviceStore   = interfaces.DeviceStore
	TokenStore    = interfaces.TokenStore
	QRCodeSink    = interfaces.QRCodeSink
	Authenticator = interfaces.Authenticator
	Directory     = interfaces.Directory
	MessageSender = interfaces.MessageSender
	EventSource   = interfaces.EventSource
	Connection    = interfaces.Connection
	Module        = interfaces.Module
)

// Constants re-exported from the types subpackage.
const (
	QRPhaseImageFetch        = types.QRPhaseImageFetch
	QRPhaseWaitingForScan    = types.QRPhaseWaitingForScan
	QRPhaseWaitingForConfirm = types.QRPhaseWaitingForConfirm
	QRPhaseTimeout           = types.QRPhaseTimeout
	QRPhaseConfirmed         = types.QRPhaseConfirmed
	QRPhaseCanceled          = types.QRPhaseCanceled

	LoginSuccess         = types.LoginSuccess
	LoginDeviceLockLogin = types.LoginDeviceLockLogin
	LoginDeviceLocked    = types.LoginDeviceLocked
	LoginNeedCaptcha     = types.LoginNeedCaptcha
	LoginAccountFrozen   = types.LoginAccountFrozen
	LoginUnknown         = types.LoginUnknown

	EventFriendMessage    = types.EventFriendMessage
	EventGroupMessage     = types.EventGroupMessage
	EventGroupTempMessage = types.EventGroupTempMessage
	EventGroupRequest     = types.EventGroupRequest
	EventFriendRequest    = types.EventFriendRequest
	EventUnknown          = types.EventUnknown

	ElementText  = types.ElementText
	ElementFace  = types.ElementFace
	ElementImage = types.ElementImage
)
