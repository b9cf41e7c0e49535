package login_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boarbot/internal/domain"
	"boarbot/internal/metrics"
	"boarbot/internal/services/login"
	"boarbot/internal/store"
)

const (
	testDevice   = domain.Fingerprint("00112233445566778899")
	testInterval = 5 * time.Second
)

var testEpoch = time.Unix(0, 0)

type harness struct {
	auth    *fakeAuth
	tokens  *memTokens
	qrcodes *memQRCodes
	clock   *clockwork.FakeClock
	metrics *metrics.Metrics
	svc     *login.Service
	// waits counts the poll delays the service slept through.
	waits int
}

func newHarness(t *testing.T, states ...domain.QRState) *harness {
	t.Helper()
	h := &harness{
		auth:    newFakeAuth(testDevice, states...),
		tokens:  &memTokens{},
		qrcodes: &memQRCodes{},
		clock:   clockwork.NewFakeClockAt(testEpoch),
		metrics: metrics.New(),
	}
	h.svc = login.New(h.auth, h.tokens, h.qrcodes, testDevice, login.Options{
		PollInterval: testInterval,
		Clock:        h.clock,
		Metrics:      h.metrics,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return h
}

// login runs Login, advancing the fake clock by one poll interval every time
// the service blocks on it.
func (h *harness) login() (login.Outcome, error) {
	ctx, stop := context.WithCancel(context.Background())
	advanced := make(chan struct{})
	go func() {
		defer close(advanced)
		for {
			if err := h.clock.BlockUntilContext(ctx, 1); err != nil {
				return
			}
			h.clock.Advance(testInterval)
			h.waits++
		}
	}()

	out, err := h.svc.Login(ctx)
	stop()
	<-advanced
	return out, err
}

func storedToken() domain.SessionToken {
	return domain.SessionToken{
		Account:     10001,
		Device:      testDevice,
		AccessToken: []byte("stored"),
	}
}

func TestLogin_Token_SkipsQRCode(t *testing.T) {
	h := newHarness(t)
	h.tokens.tok, h.tokens.ok = storedToken(), true

	out, err := h.login()
	require.NoError(t, err)

	assert.Equal(t, login.MethodToken, out.Method)
	assert.Equal(t, []string{"token_login", "after_login", "gen_token"}, h.auth.Calls())
	assert.Empty(t, h.qrcodes.images)
	assert.Zero(t, out.Challenges)

	// The token is re-exported so rotation by the gateway is kept.
	assert.Equal(t, 1, h.tokens.saves)
	assert.NotEqual(t, []byte("stored"), h.tokens.tok.AccessToken)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Logins.WithLabelValues("token", "success")))
}

func TestLogin_Token_FailureIsFatalWithoutFallback(t *testing.T) {
	h := newHarness(t)
	h.tokens.tok, h.tokens.ok = storedToken(), true
	h.auth.tokenErr = errors.New("token expired")

	_, err := h.login()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token login")
	assert.Contains(t, err.Error(), "token expired")

	assert.Equal(t, []string{"token_login"}, h.auth.Calls())
	assert.Zero(t, h.tokens.saves)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Logins.WithLabelValues("token", "failure")))
}

func TestLogin_Token_DeviceMismatch(t *testing.T) {
	h := newHarness(t)
	tok := storedToken()
	tok.Device = "ffffffffffffffffffff"
	h.tokens.tok, h.tokens.ok = tok, true

	_, err := h.login()
	require.ErrorIs(t, err, login.ErrTokenDeviceMismatch)
	assert.Empty(t, h.auth.Calls())
}

func TestLogin_CorruptToken_IsFatal(t *testing.T) {
	h := newHarness(t)
	h.tokens.loadErr = store.ErrCorruptToken

	_, err := h.login()
	require.ErrorIs(t, err, store.ErrCorruptToken)
	assert.Empty(t, h.auth.Calls())
}

func TestLogin_QRCode_HappyPath(t *testing.T) {
	h := newHarness(t,
		waiting(domain.QRPhaseWaitingForScan),
		waiting(domain.QRPhaseWaitingForConfirm),
		confirmed(),
	)

	out, err := h.login()
	require.NoError(t, err)

	assert.Equal(t, login.MethodQRCode, out.Method)
	assert.Equal(t, domain.UIN(10001), out.Account)
	assert.Equal(t, 1, out.Challenges)
	assert.Equal(t, 3, out.Polls)
	assert.Equal(t, []string{
		"fetch_qrcode",
		"query_qrcode", "query_qrcode", "query_qrcode",
		"qrcode_login", "after_login", "gen_token",
	}, h.auth.Calls())
	assert.Equal(t, []string{"image-1"}, h.qrcodes.images)
	assert.Equal(t, 3, h.waits)
	assert.Equal(t, testEpoch.Add(3*testInterval), h.clock.Now())

	assert.Equal(t, 1, h.tokens.saves)
	assert.Equal(t, testDevice, h.tokens.tok.Device)
	assert.Equal(t, out.Token, h.tokens.tok)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.QRCodeFetches))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Logins.WithLabelValues("qrcode", "success")))
}

func TestLogin_QRCode_TimeoutReplacesChallenge(t *testing.T) {
	h := newHarness(t,
		waiting(domain.QRPhaseWaitingForScan),
		waiting(domain.QRPhaseTimeout),
		waiting(domain.QRPhaseWaitingForConfirm),
		confirmed(),
	)

	out, err := h.login()
	require.NoError(t, err)

	assert.Equal(t, 2, out.Challenges)
	assert.Equal(t, []string{"image-1", "image-2"}, h.qrcodes.images)
	assert.Equal(t, []string{"sig-1", "sig-1", "sig-2", "sig-2"}, h.auth.pollSigs)

	// The superseded signature is rejected by the connection.
	_, err = h.auth.QueryQRCodeResult(context.Background(), []byte("sig-1"))
	require.ErrorIs(t, err, errStaleSig)
}

func TestLogin_QRCode_ImageFetchDuringPollIsAdopted(t *testing.T) {
	h := newHarness(t,
		domain.QRState{
			Phase:     domain.QRPhaseImageFetch,
			Challenge: &domain.QRChallenge{Image: []byte("pushed"), Sig: []byte("sig-pushed")},
		},
		confirmed(),
	)

	_, err := h.login()
	require.NoError(t, err)

	assert.Equal(t, []string{"image-1", "pushed"}, h.qrcodes.images)
	assert.Equal(t, []string{"sig-1", "sig-pushed"}, h.auth.pollSigs)
}

func TestLogin_QRCode_CanceledPersistsNothing(t *testing.T) {
	h := newHarness(t,
		waiting(domain.QRPhaseWaitingForScan),
		waiting(domain.QRPhaseCanceled),
	)

	_, err := h.login()
	require.ErrorIs(t, err, login.ErrQRCodeCanceled)

	assert.Zero(t, h.tokens.saves)
	assert.False(t, h.tokens.ok)
	assert.Zero(t, h.auth.count("after_login"))
	assert.Zero(t, h.auth.count("qrcode_login"))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Logins.WithLabelValues("qrcode", "failure")))
}

func TestLogin_QRCode_DeviceLockAddsOneLogin(t *testing.T) {
	h := newHarness(t, confirmed())
	h.auth.qrLoginResult = domain.LoginResult{Kind: domain.LoginDeviceLockLogin}

	out, err := h.login()
	require.NoError(t, err)

	assert.Equal(t, 1, h.auth.count("qrcode_login"))
	assert.Equal(t, 1, h.auth.count("device_lock_login"))
	assert.Equal(t, domain.UIN(10001), out.Account)
	assert.Equal(t, 1, h.tokens.saves)
}

func TestLogin_QRCode_DeviceLockRejected(t *testing.T) {
	h := newHarness(t, confirmed())
	h.auth.qrLoginResult = domain.LoginResult{Kind: domain.LoginDeviceLockLogin}
	h.auth.deviceLockResult = domain.LoginResult{
		Kind:      domain.LoginDeviceLocked,
		VerifyURL: "https://verify.example/abc",
	}

	_, err := h.login()
	require.ErrorIs(t, err, login.ErrLoginRejected)

	var rejected *login.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "device lock login", rejected.Step)
	assert.Contains(t, err.Error(), "https://verify.example/abc")
	assert.Equal(t, 1, h.auth.count("device_lock_login"))
	assert.Zero(t, h.tokens.saves)
}

func TestLogin_QRCode_LoginRejected(t *testing.T) {
	h := newHarness(t, confirmed())
	h.auth.qrLoginResult = domain.LoginResult{Kind: domain.LoginNeedCaptcha, Message: "slider"}

	_, err := h.login()
	require.ErrorIs(t, err, login.ErrLoginRejected)
	assert.Contains(t, err.Error(), "need_captcha")
	assert.Zero(t, h.auth.count("device_lock_login"))
}

func TestLogin_QRCode_PollErrorIsFatal(t *testing.T) {
	h := newHarness(t, waiting(domain.QRPhaseWaitingForScan))
	h.auth.pollErr = errors.New("connection reset")

	out, err := h.login()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qrcode poll")
	assert.Equal(t, 1, out.Polls)
	assert.Zero(t, h.tokens.saves)
}

func TestLogin_QRCode_UnknownPhase(t *testing.T) {
	h := newHarness(t, waiting(domain.QRPhase("bogus")))

	_, err := h.login()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestLogin_AfterLoginFailure_NoToken(t *testing.T) {
	h := newHarness(t, confirmed())
	h.auth.afterLoginErr = errors.New("register failed")

	_, err := h.login()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after login")
	assert.Zero(t, h.tokens.saves)
}

func TestLogin_ContextCanceledWhileWaiting(t *testing.T) {
	h := newHarness(t, waiting(domain.QRPhaseWaitingForScan))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := login.New(h.auth, h.tokens, h.qrcodes, testDevice, login.Options{
		PollInterval: time.Hour,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	_, err := svc.Login(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
