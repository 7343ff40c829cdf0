package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoPersistedToken is returned when the token file does not exist.
var ErrNoPersistedToken = errors.New("no persisted refresh token")

// TokenStore persists a single refresh token.
type TokenStore interface {
	Save(refreshToken string) error
	Load() (string, error)
	Delete() error
}

// FileStore keeps the refresh token in a local file.
//
// The file holds a JSON string literal whose contents are themselves the JSON
// object {"refresh_token": "..."}. The nesting matches files written by
// earlier tooling and must not change.
type FileStore struct {
	Path string
}

// NewFileStore returns a store rooted at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Save writes the refresh token, creating parent directories with 0700
// permissions. The file is written with 0600 permissions.
func (s *FileStore) Save(refreshToken string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return err
	}

	data, err := encodeRecord(refreshToken)
	if err != nil {
		return err
	}

	return os.WriteFile(s.Path, data, 0600)
}

// Load reads the refresh token. A missing file yields ErrNoPersistedToken.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoPersistedToken
		}
		return "", err
	}
	return decodeRecord(data)
}

// Delete removes the token file. Returns nil if the file doesn't exist.
func (s *FileStore) Delete() error {
	err := os.Remove(s.Path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// DefaultTokenPath returns the path to the token file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/schwab.
func DefaultTokenPath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "schwab")
	} else {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config", "schwab")
	}
	return filepath.Join(configDir, "token.json")
}

type tokenRecord struct {
	RefreshToken string `json:"refresh_token"`
}

// encodeRecord produces `"{\"refresh_token\": \"<token>\"}"`, key separator
// included, so existing files round-trip byte for byte.
func encodeRecord(refreshToken string) ([]byte, error) {
	value, err := marshalString(refreshToken)
	if err != nil {
		return nil, err
	}
	out, err := marshalString(`{"refresh_token": ` + value + `}`)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func decodeRecord(data []byte) (string, error) {
	var inner string
	if err := json.Unmarshal(data, &inner); err != nil {
		return "", fmt.Errorf("failed to decode token file: %w", err)
	}

	var rec tokenRecord
	if err := json.Unmarshal([]byte(inner), &rec); err != nil {
		return "", fmt.Errorf("failed to decode token record: %w", err)
	}
	if rec.RefreshToken == "" {
		return "", fmt.Errorf("token record has no refresh_token")
	}
	return rec.RefreshToken, nil
}

func marshalString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
