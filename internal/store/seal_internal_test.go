package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boarbot/internal/domain"
)

var fastScrypt = scryptParams{N: 1 << 10, R: 8, P: 1}

func TestSeal_RoundTrip(t *testing.T) {
	b, err := seal("pw", []byte("payload"), fastScrypt)
	require.NoError(t, err)

	pt, err := unseal("pw", b)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), pt)
}

func TestSeal_FreshNonceAndSalt(t *testing.T) {
	a, err := seal("pw", []byte("payload"), fastScrypt)
	require.NoError(t, err)
	b, err := seal("pw", []byte("payload"), fastScrypt)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestUnseal_Tampered(t *testing.T) {
	b, err := seal("pw", []byte("payload"), fastScrypt)
	require.NoError(t, err)

	var f sealedFile
	require.NoError(t, json.Unmarshal(b, &f))
	f.Cipher[0] ^= 0xff
	tampered, err := json.Marshal(f)
	require.NoError(t, err)

	_, err = unseal("pw", tampered)
	require.ErrorIs(t, err, errWrongPassphrase)
}

func TestUnseal_BadNonce(t *testing.T) {
	b, err := seal("pw", []byte("payload"), fastScrypt)
	require.NoError(t, err)

	var f sealedFile
	require.NoError(t, json.Unmarshal(b, &f))
	f.Nonce = f.Nonce[:12]
	short, err := json.Marshal(f)
	require.NoError(t, err)

	_, err = unseal("pw", short)
	require.Error(t, err)
}

func TestUnseal_RejectsOversizedScryptParams(t *testing.T) {
	b, err := seal("pw", []byte("payload"), fastScrypt)
	require.NoError(t, err)

	for name, mutate := range map[string]func(*sealedFile){
		"huge N":     func(f *sealedFile) { f.N = 1 << 30 },
		"N not pow2": func(f *sealedFile) { f.N = 1000 },
		"huge r":     func(f *sealedFile) { f.R = 1 << 20 },
		"huge p":     func(f *sealedFile) { f.P = 64 },
		"zero p":     func(f *sealedFile) { f.P = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			var f sealedFile
			require.NoError(t, json.Unmarshal(b, &f))
			mutate(&f)
			bad, err := json.Marshal(f)
			require.NoError(t, err)

			_, err = unseal("pw", bad)
			require.ErrorContains(t, err, "out of range")
		})
	}
}

func TestTokenStore_OversizedScryptIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.token")
	s := NewSealedTokenFileStore(path, "pw")
	require.NoError(t, s.SaveToken(domain.SessionToken{
		Account:     1,
		Device:      "abc",
		AccessToken: []byte("x"),
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var f sealedFile
	require.NoError(t, json.Unmarshal(raw, &f))
	f.N = 1 << 30
	bad, err := json.Marshal(f)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, bad, 0o600))

	_, _, err = s.LoadToken()
	require.ErrorIs(t, err, ErrCorruptToken)
}
