package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"boarbot/internal/util/memzero"
)

const sealFormatVersion = 1

// sealLabel is bound into every ciphertext as associated data so a sealed
// token cannot be swapped for another sealed file type.
const sealLabel = "boarbot/session-token"

var errWrongPassphrase = errors.New("wrong passphrase or corrupted token")

// sealedFile is the on-disk JSON form of a sealed payload.
type sealedFile struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_n"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

type scryptParams struct{ N, R, P int }

var defaultScrypt = scryptParams{N: 1 << 15, R: 8, P: 1}

// check rejects parameters outside (0, defaultScrypt], so a tampered file
// cannot make unseal allocate or spin beyond what seal would have used.
func (k scryptParams) check() error {
	if k.N <= 1 || k.N&(k.N-1) != 0 || k.N > defaultScrypt.N {
		return fmt.Errorf("scrypt N %d out of range", k.N)
	}
	if k.R < 1 || k.R > defaultScrypt.R || k.P < 1 || k.P > defaultScrypt.P {
		return fmt.Errorf("scrypt r=%d p=%d out of range", k.R, k.P)
	}
	return nil
}

func deriveKey(passphrase string, salt []byte, kdf scryptParams) ([]byte, error) {
	pw := []byte(passphrase)
	defer memzero.Zero(pw)
	return scrypt.Key(pw, salt, kdf.N, kdf.R, kdf.P, chacha20poly1305.KeySize)
}

// seal encrypts raw under a key derived from passphrase.
func seal(passphrase string, raw []byte, kdf scryptParams) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	key, err := deriveKey(passphrase, salt, kdf)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(sealedFile{
		V:      sealFormatVersion,
		Salt:   salt,
		N:      kdf.N,
		R:      kdf.R,
		P:      kdf.P,
		Nonce:  nonce,
		Cipher: aead.Seal(nil, nonce, raw, []byte(sealLabel)),
	}, "", "  ")
}

// unseal reverses seal.
func unseal(passphrase string, b []byte) ([]byte, error) {
	var f sealedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if f.V != sealFormatVersion {
		return nil, fmt.Errorf("unsupported sealed format version %d", f.V)
	}
	kdf := scryptParams{N: f.N, R: f.R, P: f.P}
	if err := kdf.check(); err != nil {
		return nil, err
	}
	if len(f.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("bad nonce length %d", len(f.Nonce))
	}

	key, err := deriveKey(passphrase, f.Salt, kdf)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, f.Nonce, f.Cipher, []byte(sealLabel))
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}
