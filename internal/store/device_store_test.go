package store_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boarbot/internal/crypto"
	"boarbot/internal/store"
)

func TestDevice_CreateThenLoad_Identical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.json")
	s := store.NewDeviceFileStore(path)

	first, created, err := s.LoadOrCreate()
	require.NoError(t, err)
	assert.True(t, created)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, created, err := store.NewDeviceFileStore(path).LoadOrCreate()
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, second)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, onDisk, after, "loading must not rewrite the device file")
}

func TestDevice_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state", "device.json")

	_, created, err := store.NewDeviceFileStore(path).LoadOrCreate()
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, path)
}

func TestDevice_Corrupt_IsFatalAndUntouched(t *testing.T) {
	cases := map[string]string{
		"bad json":     "{not json",
		"empty object": "{}",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "device.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			_, _, err := store.NewDeviceFileStore(path).LoadOrCreate()
			require.ErrorIs(t, err, store.ErrCorruptDevice)
			assert.Contains(t, err.Error(), path)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, content, string(got))
		})
	}
}

func TestDevice_MismatchedKeyPair_IsCorrupt(t *testing.T) {
	d, err := crypto.GenerateDevice()
	require.NoError(t, err)
	other, err := crypto.GenerateDevice()
	require.NoError(t, err)
	d.PublicKey = other.PublicKey

	b, err := json.Marshal(d)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "device.json")
	require.NoError(t, os.WriteFile(path, b, 0o600))

	_, _, err = store.NewDeviceFileStore(path).LoadOrCreate()
	require.ErrorIs(t, err, store.ErrCorruptDevice)
	assert.Contains(t, err.Error(), "does not match")
}
