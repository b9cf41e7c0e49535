package devgateway

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"boarbot/internal/crypto"
	"boarbot/internal/domain"
	"boarbot/internal/protocol/wire"
)

// session is one websocket connection and its login progress.
type session struct {
	id     string
	conn   *websocket.Conn
	codec  wire.Codec
	server *Server

	mu        sync.Mutex
	device    domain.Fingerprint
	step      int
	sig       []byte
	confirmed *domain.QRConfirmed
	needLock  bool
	loggedIn  bool
	account   domain.UIN
}

func newSession(id string, conn *websocket.Conn, codec wire.Codec, server *Server) *session {
	return &session{id: id, conn: conn, codec: codec, server: server}
}

func (s *session) isLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

func (s *session) write(ctx context.Context, typ, id string, payload any) error {
	data, err := wire.Encode(s.codec, typ, id, time.Now().UTC(), payload)
	if err != nil {
		return err
	}
	mt := websocket.MessageText
	if s.codec.Binary() {
		mt = websocket.MessageBinary
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return s.conn.Write(ctx, mt, data)
}

func (s *session) writeError(ctx context.Context, id, code, msg string) error {
	return s.write(ctx, wire.TypeError, id, wire.ErrorPayload{Code: code, Message: msg})
}

// handle answers one request. Protocol violations are answered with an
// error envelope; only write failures end the session.
func (s *session) handle(ctx context.Context, env wire.Envelope) error {
	typ, payload, err := s.dispatch(env)
	if err != nil {
		code, msg := wire.CodeBadRequest, err.Error()
		var re *wire.RemoteError
		if errors.As(err, &re) {
			code, msg = re.Code, re.Message
		}
		return s.writeError(ctx, env.ID, code, msg)
	}
	return s.write(ctx, typ, env.ID, payload)
}

func (s *session) dispatch(env wire.Envelope) (string, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if env.Type != wire.TypeHello && s.device == "" {
		return "", nil, remote(wire.CodeUnauthorized, "hello required")
	}

	switch env.Type {
	case wire.TypeHello:
		var p wire.HelloPayload
		if err := wire.DecodePayload(s.codec, env, &p); err != nil {
			return "", nil, err
		}
		if len(p.PublicKey) != 32 {
			return "", nil, fmt.Errorf("public key must be 32 bytes")
		}
		if got := crypto.Fingerprint(p.PublicKey); domain.Fingerprint(got) != p.Device {
			return "", nil, remote(wire.CodeUnauthorized, "device fingerprint does not match public key")
		}
		s.device = p.Device
		return wire.TypeHelloAck, wire.HelloAckPayload{SessionID: s.id}, nil

	case wire.TypeQRCodeFetch:
		ch, err := s.newChallenge()
		if err != nil {
			return "", nil, remote(wire.CodeInternal, err.Error())
		}
		return wire.TypeQRCodeImage, ch, nil

	case wire.TypeQRCodeQuery:
		var p wire.QRCodeQueryPayload
		if err := wire.DecodePayload(s.codec, env, &p); err != nil {
			return "", nil, err
		}
		if s.sig == nil || !bytes.Equal(p.Sig, s.sig) {
			return "", nil, remote(wire.CodeStaleQRCode, "unknown or superseded qrcode signature")
		}
		st, err := s.nextState()
		if err != nil {
			return "", nil, remote(wire.CodeInternal, err.Error())
		}
		return wire.TypeQRCodeState, st, nil

	case wire.TypeQRCodeLogin:
		var p domain.QRConfirmed
		if err := wire.DecodePayload(s.codec, env, &p); err != nil {
			return "", nil, err
		}
		if s.confirmed == nil || !bytes.Equal(p.TempPassword, s.confirmed.TempPassword) {
			return wire.TypeLoginResult, domain.LoginResult{Kind: domain.LoginUnknown, Message: "qrcode not confirmed"}, nil
		}
		s.confirmed = nil
		if s.server.opts.DeviceLock {
			s.needLock = true
			return wire.TypeLoginResult, domain.LoginResult{Kind: domain.LoginDeviceLockLogin}, nil
		}
		return wire.TypeLoginResult, s.succeed(), nil

	case wire.TypeDeviceLockLogin:
		if !s.needLock {
			return wire.TypeLoginResult, domain.LoginResult{Kind: domain.LoginUnknown, Message: "no device lock pending"}, nil
		}
		s.needLock = false
		return wire.TypeLoginResult, s.succeed(), nil

	case wire.TypeTokenLogin:
		var tok domain.SessionToken
		if err := wire.DecodePayload(s.codec, env, &tok); err != nil {
			return "", nil, err
		}
		g, ok := s.server.lookupGrant(tok.AccessToken)
		if !ok || g.device != s.device {
			return wire.TypeLoginResult, domain.LoginResult{Kind: domain.LoginUnknown, Message: "invalid token"}, nil
		}
		s.account = g.account
		return wire.TypeLoginResult, s.succeed(), nil
	}

	if !s.loggedIn {
		return "", nil, remote(wire.CodeUnauthorized, "login required")
	}

	switch env.Type {
	case wire.TypeAfterLogin:
		return wire.TypeOK, wire.Empty{}, nil

	case wire.TypeGenToken:
		return wire.TypeToken, s.server.issueToken(s.device, s.account), nil

	case wire.TypeFriendList:
		return wire.TypeFriendList, wire.FriendListPayload{Friends: s.server.opts.Friends}, nil

	case wire.TypeGroupList:
		return wire.TypeGroupList, wire.GroupListPayload{Groups: s.server.opts.Groups}, nil

	case wire.TypeSendFriendMessage:
		var p wire.SendFriendMessagePayload
		if err := wire.DecodePayload(s.codec, env, &p); err != nil {
			return "", nil, err
		}
		seq := s.server.recordSent(SentMessage{Device: s.device, To: p.To, Elements: p.Elements})
		return wire.TypeMessageReceipt, wire.MessageReceiptPayload{Seq: seq, Time: time.Now().Unix()}, nil
	}

	return "", nil, fmt.Errorf("unsupported type: %s", env.Type)
}

// newChallenge replaces the current QR challenge. Must hold s.mu.
func (s *session) newChallenge() (domain.QRChallenge, error) {
	sig := []byte(uuid.NewString())
	img, err := renderQRCode(sig)
	if err != nil {
		return domain.QRChallenge{}, fmt.Errorf("render qrcode: %w", err)
	}
	s.sig = sig
	return domain.QRChallenge{Image: img, Sig: append([]byte(nil), sig...)}, nil
}

// nextState consumes one scripted phase. Must hold s.mu.
func (s *session) nextState() (domain.QRState, error) {
	phases := s.server.opts.Phases
	phase := phases[min(s.step, len(phases)-1)]
	s.step++

	st := domain.QRState{Phase: phase}
	switch phase {
	case domain.QRPhaseImageFetch:
		ch, err := s.newChallenge()
		if err != nil {
			return st, err
		}
		st.Challenge = &ch
	case domain.QRPhaseConfirmed:
		s.confirmed = &domain.QRConfirmed{
			Account:      s.server.opts.Account,
			TempPassword: randomBytes(16),
			NoPicSig:     randomBytes(16),
			TGTQR:        randomBytes(16),
		}
		c := *s.confirmed
		st.Confirmed = &c
	}
	return st, nil
}

// succeed marks the session logged in. Must hold s.mu.
func (s *session) succeed() domain.LoginResult {
	if s.account == 0 {
		s.account = s.server.opts.Account
	}
	s.loggedIn = true
	return domain.LoginResult{Kind: domain.LoginSuccess, Account: s.account}
}

func remote(code, msg string) error {
	return &wire.RemoteError{Code: code, Message: msg}
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}
