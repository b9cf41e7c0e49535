package login_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"boarbot/internal/domain"
)

var errStaleSig = errors.New("stale qrcode signature")

// fakeAuth is a scripted Authenticator. Polls return the scripted states in
// order and are rejected unless they carry the signature of the most recent
// challenge.
type fakeAuth struct {
	mu sync.Mutex

	states     []domain.QRState
	pollErr    error
	challenges int
	currentSig []byte
	pollSigs   []string

	qrLoginResult    domain.LoginResult
	deviceLockResult domain.LoginResult
	tokenErr         error
	afterLoginErr    error
	device           domain.Fingerprint

	calls []string
}

func newFakeAuth(device domain.Fingerprint, states ...domain.QRState) *fakeAuth {
	return &fakeAuth{
		states:           states,
		device:           device,
		qrLoginResult:    domain.LoginResult{Kind: domain.LoginSuccess, Account: 10001},
		deviceLockResult: domain.LoginResult{Kind: domain.LoginSuccess, Account: 10001},
	}
}

func (f *fakeAuth) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeAuth) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAuth) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAuth) FetchQRCode(context.Context) (domain.QRChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("fetch_qrcode")
	f.challenges++
	f.currentSig = []byte(fmt.Sprintf("sig-%d", f.challenges))
	return domain.QRChallenge{
		Image: []byte(fmt.Sprintf("image-%d", f.challenges)),
		Sig:   append([]byte(nil), f.currentSig...),
	}, nil
}

func (f *fakeAuth) QueryQRCodeResult(_ context.Context, sig []byte) (domain.QRState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("query_qrcode")
	f.pollSigs = append(f.pollSigs, string(sig))
	if !bytes.Equal(sig, f.currentSig) {
		return domain.QRState{}, errStaleSig
	}
	if f.pollErr != nil {
		return domain.QRState{}, f.pollErr
	}
	if len(f.states) == 0 {
		return domain.QRState{}, errors.New("no scripted state left")
	}
	st := f.states[0]
	f.states = f.states[1:]
	if st.Phase == domain.QRPhaseImageFetch && st.Challenge != nil {
		f.currentSig = append([]byte(nil), st.Challenge.Sig...)
	}
	return st, nil
}

func (f *fakeAuth) QRCodeLogin(context.Context, domain.QRConfirmed) (domain.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("qrcode_login")
	return f.qrLoginResult, nil
}

func (f *fakeAuth) DeviceLockLogin(context.Context) (domain.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("device_lock_login")
	return f.deviceLockResult, nil
}

func (f *fakeAuth) TokenLogin(context.Context, domain.SessionToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("token_login")
	return f.tokenErr
}

func (f *fakeAuth) AfterLogin(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("after_login")
	return f.afterLoginErr
}

func (f *fakeAuth) GenToken(context.Context) (domain.SessionToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("gen_token")
	return domain.SessionToken{
		Account:     10001,
		Device:      f.device,
		AccessToken: []byte(fmt.Sprintf("fresh-%d", len(f.calls))),
	}, nil
}

var _ domain.Authenticator = (*fakeAuth)(nil)

// memTokens is an in-memory TokenStore.
type memTokens struct {
	tok     domain.SessionToken
	ok      bool
	loadErr error
	saves   int
}

func (m *memTokens) LoadToken() (domain.SessionToken, bool, error) {
	return m.tok, m.ok, m.loadErr
}

func (m *memTokens) SaveToken(tok domain.SessionToken) error {
	m.tok, m.ok = tok, true
	m.saves++
	return nil
}

func (m *memTokens) DeleteToken() error {
	m.tok, m.ok = domain.SessionToken{}, false
	return nil
}

// memQRCodes records every image written.
type memQRCodes struct {
	images []string
}

func (m *memQRCodes) WriteQRCode(image []byte) error {
	m.images = append(m.images, string(image))
	return nil
}

func waiting(phase domain.QRPhase) domain.QRState {
	return domain.QRState{Phase: phase}
}

func confirmed() domain.QRState {
	return domain.QRState{
		Phase: domain.QRPhaseConfirmed,
		Confirmed: &domain.QRConfirmed{
			Account:      10001,
			TempPassword: []byte("tmp"),
			NoPicSig:     []byte("nopic"),
			TGTQR:        []byte("tgt"),
		},
	}
}
