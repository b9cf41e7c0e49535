package login

import (
	"context"
	"fmt"

	"boarbot/internal/domain"
)

// qrAction is what the login loop does after the gateway reports a phase.
type qrAction int

const (
	// qrAdopt takes the challenge carried by the state as the current one.
	qrAdopt qrAction = iota + 1
	// qrWait reports progress and polls again.
	qrWait
	// qrRefetch replaces the expired challenge with a new one.
	qrRefetch
	// qrLogin completes the login with the confirmed secrets.
	qrLogin
	// qrCancel aborts the login.
	qrCancel
)

// qrTransitions is the single source of truth for the QR login loop. Every
// action except qrLogin and qrCancel is followed by a fixed delay and a poll
// with the current signature.
var qrTransitions = map[domain.QRPhase]qrAction{
	domain.QRPhaseImageFetch:        qrAdopt,
	domain.QRPhaseWaitingForScan:    qrWait,
	domain.QRPhaseWaitingForConfirm: qrWait,
	domain.QRPhaseTimeout:           qrRefetch,
	domain.QRPhaseConfirmed:         qrLogin,
	domain.QRPhaseCanceled:          qrCancel,
}

// qrSession is the state of one interactive login attempt.
type qrSession struct {
	challenge domain.QRChallenge
	phase     domain.QRPhase
}

func (s *Service) qrcodeLogin(ctx context.Context) (Outcome, error) {
	out := Outcome{Method: MethodQRCode}
	sess := &qrSession{}

	first, err := s.fetchChallenge(ctx, &out)
	if err != nil {
		return out, err
	}
	state := domain.QRState{Phase: domain.QRPhaseImageFetch, Challenge: &first}

	for {
		action, ok := qrTransitions[state.Phase]
		if !ok {
			return out, fmt.Errorf("login: qrcode: unexpected phase %q", state.Phase)
		}
		sess.phase = state.Phase

		switch action {
		case qrAdopt:
			if state.Challenge == nil {
				return out, fmt.Errorf("login: qrcode: %s without a challenge", state.Phase)
			}
			if err := s.adopt(sess, *state.Challenge); err != nil {
				return out, err
			}
		case qrWait:
			s.log.Info("qrcode "+progressText(state.Phase), "phase", state.Phase)
		case qrRefetch:
			s.log.Info("qrcode expired, fetching a new one")
			next, err := s.fetchChallenge(ctx, &out)
			if err != nil {
				return out, err
			}
			if err := s.adopt(sess, next); err != nil {
				return out, err
			}
		case qrLogin:
			if state.Confirmed == nil {
				return out, fmt.Errorf("login: qrcode: %s without login secrets", state.Phase)
			}
			s.log.Info("qrcode confirmed")
			account, err := s.confirm(ctx, *state.Confirmed)
			out.Account = account
			return out, err
		case qrCancel:
			return out, fmt.Errorf("login: qrcode: %w", ErrQRCodeCanceled)
		}

		select {
		case <-ctx.Done():
			return out, fmt.Errorf("login: qrcode: %w", ctx.Err())
		case <-s.clock.After(s.interval):
		}

		state, err = s.auth.QueryQRCodeResult(ctx, sess.challenge.Sig)
		out.Polls++
		if err != nil {
			return out, fmt.Errorf("login: qrcode poll: %w", err)
		}
		s.metrics.QRCodePolls.WithLabelValues(string(state.Phase)).Inc()
	}
}

func (s *Service) fetchChallenge(ctx context.Context, out *Outcome) (domain.QRChallenge, error) {
	ch, err := s.auth.FetchQRCode(ctx)
	if err != nil {
		return domain.QRChallenge{}, fmt.Errorf("login: qrcode fetch: %w", err)
	}
	out.Challenges++
	s.metrics.QRCodeFetches.Inc()
	return ch, nil
}

// adopt publishes the challenge image and makes its signature the only one
// used for subsequent polls.
func (s *Service) adopt(sess *qrSession, ch domain.QRChallenge) error {
	if len(ch.Sig) == 0 {
		return fmt.Errorf("login: qrcode: challenge without signature")
	}
	if err := s.qrcodes.WriteQRCode(ch.Image); err != nil {
		return fmt.Errorf("login: qrcode: %w", err)
	}
	sess.challenge = domain.QRChallenge{
		Image: ch.Image,
		Sig:   append([]byte(nil), ch.Sig...),
	}

	attrs := []any{"bytes", len(ch.Image)}
	if p, ok := s.qrcodes.(interface{ Path() string }); ok {
		attrs = append(attrs, "path", p.Path())
	}
	s.log.Info("qrcode ready, scan it with the mobile app", attrs...)
	return nil
}

// confirm exchanges the confirmed secrets for a session, following a
// device-lock request with exactly one device-lock login.
func (s *Service) confirm(ctx context.Context, c domain.QRConfirmed) (domain.UIN, error) {
	res, err := s.auth.QRCodeLogin(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("login: qrcode login: %w", err)
	}
	step := "qrcode login"

	if res.Kind == domain.LoginDeviceLockLogin {
		s.log.Info("device lock login required")
		step = "device lock login"
		if res, err = s.auth.DeviceLockLogin(ctx); err != nil {
			return 0, fmt.Errorf("login: device lock login: %w", err)
		}
	}
	if res.Kind != domain.LoginSuccess {
		return 0, &RejectedError{Step: step, Result: res}
	}

	if res.Account != 0 {
		return res.Account, nil
	}
	return c.Account, nil
}

func progressText(p domain.QRPhase) string {
	switch p {
	case domain.QRPhaseWaitingForScan:
		return "waiting for scan"
	case domain.QRPhaseWaitingForConfirm:
		return "scanned, waiting for confirmation"
	default:
		return string(p)
	}
}
