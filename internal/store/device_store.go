package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"boarbot/internal/crypto"
	"boarbot/internal/domain"
)

// DeviceFileStore persists the device identity as JSON at a fixed path.
type DeviceFileStore struct {
	path     string
	generate func() (domain.Device, error)
	mu       sync.Mutex
}

// NewDeviceFileStore returns a DeviceFileStore for path that generates new
// identities with crypto.GenerateDevice.
func NewDeviceFileStore(path string) *DeviceFileStore {
	return &DeviceFileStore{path: path, generate: crypto.GenerateDevice}
}

// Path returns the file backing the store.
func (s *DeviceFileStore) Path() string { return s.path }

// LoadOrCreate returns the stored device. When the file is absent a fresh
// device is generated and written before it is returned.
func (s *DeviceFileStore) LoadOrCreate() (domain.Device, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.path)
	if err != nil {
		return domain.Device{}, false, fmt.Errorf("read device %s: %w", s.path, err)
	}
	if b != nil {
		var d domain.Device
		if err := json.Unmarshal(b, &d); err != nil {
			return domain.Device{}, false, fmt.Errorf("%w %s: %v", ErrCorruptDevice, s.path, err)
		}
		if err := validateDevice(d); err != nil {
			return domain.Device{}, false, fmt.Errorf("%w %s: %v", ErrCorruptDevice, s.path, err)
		}
		return d, false, nil
	}

	d, err := s.generate()
	if err != nil {
		return domain.Device{}, false, fmt.Errorf("generate device: %w", err)
	}
	if err := writeJSON(s.path, d, 0o600); err != nil {
		return domain.Device{}, false, fmt.Errorf("write device %s: %w", s.path, err)
	}
	return d, true, nil
}

func validateDevice(d domain.Device) error {
	switch {
	case d.GUID == "":
		return fmt.Errorf("missing guid")
	case len(d.Seed) == 0:
		return fmt.Errorf("missing seed")
	case d.PublicKey == (domain.X25519Public{}):
		return fmt.Errorf("missing public key")
	}
	pub, err := crypto.PublicKey(d.PrivateKey)
	if err != nil {
		return fmt.Errorf("private key: %w", err)
	}
	if pub != d.PublicKey {
		return fmt.Errorf("public key does not match private key")
	}
	return nil
}

// Compile-time assertion that DeviceFileStore implements domain.DeviceStore.
var _ domain.DeviceStore = (*DeviceFileStore)(nil)
