package client

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/99designs/keyring"
)

// CredentialStore persists the access token between runs. Load returns ""
// with a nil error when nothing is stored.
type CredentialStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

const (
	keyringService = "taskhub"
	tokenKey       = "access_token"
)

// KeyringCredentials keeps the token in the OS keyring, falling back to an
// encrypted file under dir when no native backend is available.
type KeyringCredentials struct {
	ring keyring.Keyring
}

func OpenKeyring(dir string) (*KeyringCredentials, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt("taskhub-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyringCredentials(ring), nil
}

func NewKeyringCredentials(ring keyring.Keyring) *KeyringCredentials {
	return &KeyringCredentials{ring: ring}
}

func (k *KeyringCredentials) Load() (string, error) {
	item, err := k.ring.Get(tokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", tokenKey, err)
	}
	return string(item.Data), nil
}

func (k *KeyringCredentials) Save(token string) error {
	err := k.ring.Set(keyring.Item{
		Key:   tokenKey,
		Data:  []byte(token),
		Label: "TaskHub access token",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", tokenKey, err)
	}
	return nil
}

func (k *KeyringCredentials) Clear() error {
	err := k.ring.Remove(tokenKey)
	if err == nil || errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("deleting credential %q: %w", tokenKey, err)
}

// MemoryCredentials keeps the token in process memory.
type MemoryCredentials struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryCredentials) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryCredentials) Save(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryCredentials) Clear() error {
	return m.Save("")
}
