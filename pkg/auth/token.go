// Package auth stores the inference API token in the OS keychain with a
// private file fallback.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "cloutcheck"
	keyringUser    = "inference_token"
	tokenFileName  = "inference_token"
	fileMode       = 0600
)

// ErrNoToken is returned when no token has been stored.
var ErrNoToken = errors.New("no stored token")

// TokenStore keeps the token for one home directory.
type TokenStore struct {
	dir string
}

// NewTokenStore creates a store using dir for the file fallback.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{dir: dir}
}

func (s *TokenStore) path() string {
	return filepath.Join(s.dir, tokenFileName)
}

// Save stores token in the keychain, or in the token file when the
// keychain is unavailable.
func (s *TokenStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token required")
	}
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return s.saveFile(token)
	}

	// clean up file from an earlier fallback
	os.Remove(s.path())
	return nil
}

// Get returns the stored token. A token found only in the file is moved
// to the keychain when possible.
func (s *TokenStore) Get() (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token, nil
	}

	token, err = s.getFile()
	if err != nil {
		return "", err
	}

	if migrateErr := keyring.Set(keyringService, keyringUser, token); migrateErr == nil {
		slog.Info("migrated token from file to OS keychain")
		os.Remove(s.path())
	}
	return token, nil
}

// Delete removes the token from the keychain and the file.
func (s *TokenStore) Delete() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		slog.Debug("keychain delete failed", "error", err)
	}
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

func (s *TokenStore) saveFile(token string) error {
	if err := os.WriteFile(s.path(), []byte(token), fileMode); err != nil {
		return fmt.Errorf("writing token file %s: %w", s.path(), err)
	}
	return nil
}

func (s *TokenStore) getFile() (string, error) {
	b, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("reading token file %s: %w", s.path(), err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
