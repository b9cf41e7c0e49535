package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boarbot/internal/domain"
	"boarbot/internal/store"
)

func sampleToken() domain.SessionToken {
	return domain.SessionToken{
		Account:     10001,
		Device:      domain.Fingerprint("0011223344556677aabb"),
		AccessToken: []byte("access"),
		SessionKey:  []byte("session-key"),
		IssuedAt:    1700000000,
	}
}

func TestToken_Absent_NotAnError(t *testing.T) {
	s := store.NewTokenFileStore(filepath.Join(t.TempDir(), "session.token"))

	_, ok, err := s.LoadToken()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToken_SaveLoad_OK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.token")
	s := store.NewTokenFileStore(path)

	require.NoError(t, s.SaveToken(sampleToken()))

	got, ok, err := s.LoadToken()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleToken(), got)
}

func TestToken_Save_Overwrites(t *testing.T) {
	s := store.NewTokenFileStore(filepath.Join(t.TempDir(), "session.token"))
	require.NoError(t, s.SaveToken(sampleToken()))

	next := sampleToken()
	next.AccessToken = []byte("rotated")
	require.NoError(t, s.SaveToken(next))

	got, ok, err := s.LoadToken()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("rotated"), got.AccessToken)
}

func TestToken_Corrupt_IsFatal(t *testing.T) {
	cases := map[string]string{
		"bad json":         "not json at all",
		"missing contents": `{"account": 1}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.token")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			_, ok, err := store.NewTokenFileStore(path).LoadToken()
			require.ErrorIs(t, err, store.ErrCorruptToken)
			assert.False(t, ok)
		})
	}
}

func TestToken_Sealed_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.token")
	s := store.NewSealedTokenFileStore(path, "correct horse")

	require.NoError(t, s.SaveToken(sampleToken()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "session-key")

	got, ok, err := s.LoadToken()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleToken(), got)
}

func TestToken_Sealed_WrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.token")
	require.NoError(t, store.NewSealedTokenFileStore(path, "correct").SaveToken(sampleToken()))

	_, _, err := store.NewSealedTokenFileStore(path, "wrong").LoadToken()
	require.ErrorIs(t, err, store.ErrCorruptToken)
}

func TestToken_Sealed_RejectsPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.token")
	require.NoError(t, store.NewTokenFileStore(path).SaveToken(sampleToken()))

	_, _, err := store.NewSealedTokenFileStore(path, "secret").LoadToken()
	require.ErrorIs(t, err, store.ErrCorruptToken)
}

func TestToken_Delete_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.token")
	s := store.NewTokenFileStore(path)
	require.NoError(t, s.SaveToken(sampleToken()))

	require.NoError(t, s.DeleteToken())
	assert.NoFileExists(t, path)
	require.NoError(t, s.DeleteToken())
}
