package login

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"boarbot/internal/domain"
	"boarbot/internal/metrics"
)

// DefaultPollInterval is the delay between two QR login polls.
const DefaultPollInterval = 5 * time.Second

// Method names how a session was obtained.
type Method string

const (
	MethodToken  Method = "token"
	MethodQRCode Method = "qrcode"
)

// Outcome describes a completed login.
type Outcome struct {
	Method  Method
	Account domain.UIN
	// Token is the freshly exported token that was persisted.
	Token domain.SessionToken
	// Challenges is the number of QR challenges fetched.
	Challenges int
	// Polls is the number of QR result queries issued.
	Polls int
}

// Options tunes a Service. Zero values select defaults.
type Options struct {
	PollInterval time.Duration
	Clock        clockwork.Clock
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// Service drives token and QR login against an Authenticator.
type Service struct {
	auth    domain.Authenticator
	tokens  domain.TokenStore
	qrcodes domain.QRCodeSink
	device  domain.Fingerprint

	interval time.Duration
	clock    clockwork.Clock
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// New returns a login service for the device identified by device.
func New(
	auth domain.Authenticator,
	tokens domain.TokenStore,
	qrcodes domain.QRCodeSink,
	device domain.Fingerprint,
	opts Options,
) *Service {
	s := &Service{
		auth:     auth,
		tokens:   tokens,
		qrcodes:  qrcodes,
		device:   device,
		interval: opts.PollInterval,
		clock:    opts.Clock,
		metrics:  opts.Metrics,
		log:      opts.Logger,
	}
	if s.interval <= 0 {
		s.interval = DefaultPollInterval
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("component", "login")
	return s
}

// Login authenticates the connection, finalizes the session and persists the
// exported token. A stored token is used when present; its failure is
// returned as is, without falling back to QR login.
func (s *Service) Login(ctx context.Context) (Outcome, error) {
	tok, ok, err := s.tokens.LoadToken()
	if err != nil {
		return Outcome{}, fmt.Errorf("login: load token: %w", err)
	}

	method := MethodQRCode
	if ok {
		method = MethodToken
	}

	out, err := s.authenticate(ctx, method, tok)
	if err != nil {
		s.metrics.Logins.WithLabelValues(string(method), "failure").Inc()
		return out, err
	}
	if err := s.finalize(ctx, &out); err != nil {
		s.metrics.Logins.WithLabelValues(string(method), "failure").Inc()
		return out, err
	}

	s.metrics.Logins.WithLabelValues(string(method), "success").Inc()
	s.log.Info("logged in", "method", out.Method, "account", out.Account)
	return out, nil
}

func (s *Service) authenticate(ctx context.Context, method Method, tok domain.SessionToken) (Outcome, error) {
	if method == MethodToken {
		return s.tokenLogin(ctx, tok)
	}
	return s.qrcodeLogin(ctx)
}

func (s *Service) tokenLogin(ctx context.Context, tok domain.SessionToken) (Outcome, error) {
	out := Outcome{Method: MethodToken, Account: tok.Account}
	if tok.Device != s.device {
		return out, fmt.Errorf("login: token for device %s, running as %s: %w", tok.Device, s.device, ErrTokenDeviceMismatch)
	}

	s.log.Info("resuming session from token", "account", tok.Account)
	if err := s.auth.TokenLogin(ctx, tok); err != nil {
		return out, fmt.Errorf("login: token login: %w", err)
	}
	return out, nil
}

// finalize runs the after-login step, then exports and saves a fresh token.
func (s *Service) finalize(ctx context.Context, out *Outcome) error {
	if err := s.auth.AfterLogin(ctx); err != nil {
		return fmt.Errorf("login: after login: %w", err)
	}
	tok, err := s.auth.GenToken(ctx)
	if err != nil {
		return fmt.Errorf("login: export token: %w", err)
	}
	if tok.Device == "" {
		tok.Device = s.device
	}
	if err := s.tokens.SaveToken(tok); err != nil {
		return fmt.Errorf("login: save token: %w", err)
	}

	out.Token = tok
	if out.Account == 0 {
		out.Account = tok.Account
	}
	return nil
}
