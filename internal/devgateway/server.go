package devgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"boarbot/internal/domain"
	"boarbot/internal/protocol/wire"
)

const (
	maxFrameBytes = 4 << 20
	writeTimeout  = 5 * time.Second
)

// DefaultPhases is the QR script used when Options.Phases is empty.
var DefaultPhases = []domain.QRPhase{
	domain.QRPhaseWaitingForScan,
	domain.QRPhaseWaitingForConfirm,
	domain.QRPhaseConfirmed,
}

// Options configures a Server. Zero values select defaults.
type Options struct {
	Phases []domain.QRPhase
	// DeviceLock makes every QR login require one device-lock login.
	DeviceLock bool
	Account    domain.UIN
	Friends    []domain.Friend
	Groups     []domain.Group
	Logger     *slog.Logger
}

// SentMessage is a friend message received from a client.
type SentMessage struct {
	Device   domain.Fingerprint
	To       domain.UIN
	Elements domain.MessageChain
}

type grant struct {
	device  domain.Fingerprint
	account domain.UIN
}

// Server is the development gateway. Its zero value is not usable; call New.
type Server struct {
	opts Options
	log  *slog.Logger
	mux  *http.ServeMux

	mu       sync.Mutex
	sessions map[string]*session
	grants   map[string]grant
	sent     []SentMessage
	seq      int32
}

// New returns a Server with opts applied.
func New(opts Options) *Server {
	if len(opts.Phases) == 0 {
		opts.Phases = DefaultPhases
	}
	if opts.Account == 0 {
		opts.Account = 10001
	}
	if opts.Friends == nil {
		opts.Friends = []domain.Friend{{UIN: 20001, Nick: "alice"}, {UIN: 20002, Nick: "bob"}}
	}
	if opts.Groups == nil {
		opts.Groups = []domain.Group{{Code: 30001, Name: "dev", MemberCount: 3}}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		opts:     opts,
		log:      log.With("component", "devgateway"),
		sessions: make(map[string]*session),
		grants:   make(map[string]grant),
	}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.HandleFunc("/inject", s.handleInject)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// Publish pushes ev to every logged-in session and returns how many received
// it.
func (s *Server) Publish(ctx context.Context, ev domain.Event) int {
	n := 0
	p := wire.NewEventPayload(ev)
	for _, sess := range s.snapshot() {
		if !sess.isLoggedIn() {
			continue
		}
		if err := sess.write(ctx, wire.TypeEvent, uuid.NewString(), p); err != nil {
			s.log.Warn("publish failed", "session_id", sess.id, "err", err)
			continue
		}
		n++
	}
	return n
}

// Sent returns the friend messages received so far.
func (s *Server) Sent() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMessage(nil), s.sent...)
}

// LoggedIn returns the number of sessions that completed a login.
func (s *Server) LoggedIn() int {
	n := 0
	for _, sess := range s.snapshot() {
		if sess.isLoggedIn() {
			n++
		}
	}
	return n
}

// CloseSessions ends every open websocket session with a going-away status.
func (s *Server) CloseSessions() {
	for _, sess := range s.snapshot() {
		_ = sess.conn.Close(websocket.StatusGoingAway, "gateway shutting down")
	}
}

// snapshot copies the session list so session locks are never taken while
// holding s.mu.
func (s *Server) snapshot() []*session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

func (s *Server) handleInject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var p wire.EventPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n := s.Publish(r.Context(), p.Event())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"delivered": n})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: wire.Subprotocols(),
	})
	if err != nil {
		s.log.Error("accept failed", "err", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	codec, err := wire.BySubprotocol(conn.Subprotocol())
	if err != nil || conn.Subprotocol() == "" {
		_ = conn.Close(websocket.StatusProtocolError, "subprotocol required")
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	sess := newSession(uuid.NewString(), conn, codec, s)
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.id)
		s.mu.Unlock()
	}()

	log := s.log.With("session_id", sess.id, "codec", codec.Name())
	log.Info("session opened")
	defer log.Info("session closed")

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		env, err := wire.Decode(codec, data)
		if err != nil {
			_ = sess.writeError(ctx, "invalid", wire.CodeBadRequest, err.Error())
			continue
		}
		if err := sess.handle(ctx, env); err != nil {
			log.Warn("request failed", "type", env.Type, "err", err)
			return
		}
	}
}

func (s *Server) issueToken(device domain.Fingerprint, account domain.UIN) domain.SessionToken {
	tok := domain.SessionToken{
		Account:     account,
		Device:      device,
		AccessToken: randomBytes(32),
		SessionKey:  randomBytes(16),
		IssuedAt:    time.Now().Unix(),
	}
	s.mu.Lock()
	s.grants[string(tok.AccessToken)] = grant{device: device, account: account}
	s.mu.Unlock()
	return tok
}

func (s *Server) lookupGrant(accessToken []byte) (grant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.grants[string(accessToken)]
	return g, ok
}

func (s *Server) recordSent(m SentMessage) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	s.seq++
	return s.seq
}

func (s *Server) String() string {
	return fmt.Sprintf("devgateway(account=%d, device_lock=%t)", s.opts.Account, s.opts.DeviceLock)
}
