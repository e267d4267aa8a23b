// Package credentials resolves and persists the Notion API token.
//
// A token is looked up in the environment first and then in a Store. Stores
// keep the token between sessions: a plain file in the home directory (the
// default) or the operating system keychain.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

// EnvVar is the environment variable checked before any store.
const EnvVar = "NOTION_TOKEN"

// Source names where a resolved token came from.
type Source string

const (
	SourceNone  Source = "none"
	SourceEnv   Source = "env"
	SourceStore Source = "store"
)

// Store persists a single token.
type Store interface {
	// Load returns the stored token, or "" with a nil error when nothing is stored.
	Load() (string, error)
	Save(token string) error
	Delete() error
	// Describe returns a short human-readable location, e.g. a file path.
	Describe() string
}

// Resolver finds the token to start a session with.
type Resolver struct {
	EnvVar string
	Store  Store
}

// NewResolver creates a resolver reading EnvVar and then store.
func NewResolver(store Store) *Resolver {
	return &Resolver{EnvVar: EnvVar, Store: store}
}

// Resolve returns the first non-empty token from the environment or the
// store. A missing token is not an error: the editor starts unauthenticated.
func (r *Resolver) Resolve() (string, Source, error) {
	if r.EnvVar != "" {
		if token := strings.TrimSpace(os.Getenv(r.EnvVar)); token != "" {
			return token, SourceEnv, nil
		}
	}

	if r.Store == nil {
		return "", SourceNone, nil
	}
	token, err := r.Store.Load()
	if err != nil {
		return "", SourceNone, fmt.Errorf("loading token from %s: %w", r.Store.Describe(), err)
	}
	if token == "" {
		return "", SourceNone, nil
	}
	return token, SourceStore, nil
}

// FileStore keeps the raw token in a file readable only by the user.
type FileStore struct {
	Path string
}

// DefaultTokenPath returns ~/.notion_token.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".notion_token"), nil
}

func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) Save(token string) error {
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.Path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("writing token file %s: %w", s.Path, err)
	}
	return nil
}

func (s *FileStore) Delete() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file %s: %w", s.Path, err)
	}
	return nil
}

func (s *FileStore) Describe() string { return s.Path }

// KeyringStore keeps the token in the operating system keychain.
type KeyringStore struct {
	Service string
	User    string
}

// DefaultKeyringStore returns the keychain entry used by notion-editor.
func DefaultKeyringStore() *KeyringStore {
	return &KeyringStore{Service: "notion-editor", User: "notion_token"}
}

func (s *KeyringStore) Load() (string, error) {
	token, err := keyring.Get(s.Service, s.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *KeyringStore) Save(token string) error {
	if err := keyring.Set(s.Service, s.User, token); err != nil {
		return fmt.Errorf("store token in keychain: %w", err)
	}
	return nil
}

func (s *KeyringStore) Delete() error {
	if err := keyring.Delete(s.Service, s.User); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("remove token from keychain: %w", err)
	}
	return nil
}

func (s *KeyringStore) Describe() string { return "keychain (" + s.Service + ")" }
