package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"boarbot/internal/domain"
)

// TokenFileStore persists the session token at a fixed path. When a
// passphrase is set the token is sealed with the scrypt/ChaCha20-Poly1305
// keystore envelope instead of being stored as plain JSON.
type TokenFileStore struct {
	path       string
	passphrase string
	mu         sync.Mutex
}

// NewTokenFileStore returns a plain JSON TokenFileStore for path.
func NewTokenFileStore(path string) *TokenFileStore {
	return &TokenFileStore{path: path}
}

// NewSealedTokenFileStore returns a TokenFileStore that encrypts the token
// with passphrase.
func NewSealedTokenFileStore(path, passphrase string) *TokenFileStore {
	return &TokenFileStore{path: path, passphrase: passphrase}
}

// Path returns the file backing the store.
func (s *TokenFileStore) Path() string { return s.path }

// LoadToken reads the stored token. A missing file yields ok=false.
func (s *TokenFileStore) LoadToken() (domain.SessionToken, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.path)
	if err != nil {
		return domain.SessionToken{}, false, fmt.Errorf("read token %s: %w", s.path, err)
	}
	if b == nil {
		return domain.SessionToken{}, false, nil
	}

	if s.passphrase != "" {
		if b, err = unseal(s.passphrase, b); err != nil {
			return domain.SessionToken{}, false, fmt.Errorf("%w %s: %v", ErrCorruptToken, s.path, err)
		}
	}

	var tok domain.SessionToken
	if err := json.Unmarshal(b, &tok); err != nil {
		return domain.SessionToken{}, false, fmt.Errorf("%w %s: %v", ErrCorruptToken, s.path, err)
	}
	if len(tok.AccessToken) == 0 || tok.Device == "" {
		return domain.SessionToken{}, false, fmt.Errorf("%w %s: missing access token or device", ErrCorruptToken, s.path)
	}
	return tok, true, nil
}

// SaveToken replaces the stored token.
func (s *TokenFileStore) SaveToken(tok domain.SessionToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if s.passphrase != "" {
		if raw, err = seal(s.passphrase, raw, defaultScrypt); err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
	}
	if err := writeFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write token %s: %w", s.path, err)
	}
	return nil
}

// DeleteToken removes the stored token. Deleting a missing token is not an
// error.
func (s *TokenFileStore) DeleteToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete token %s: %w", s.path, err)
	}
	return nil
}

// Compile-time assertion that TokenFileStore implements domain.TokenStore.
var _ domain.TokenStore = (*TokenFileStore)(nil)
