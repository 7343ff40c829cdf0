// Package keyring stores the API credentials outside the config file.
package keyring

import (
	"errors"
	"fmt"
	"os"

	gokeyring "github.com/zalando/go-keyring"
)

const (
	// ServiceName namespaces every entry this CLI writes.
	ServiceName = "io.github.jonandersen.schwab"

	KeyClientID     = "client_id"
	KeyClientSecret = "client_secret"

	// EnvClientID and EnvClientSecret override keyring lookups for
	// CI/headless environments.
	EnvClientID     = "SCHWAB_CLIENT_ID"
	EnvClientSecret = "SCHWAB_CLIENT_SECRET"
)

// ErrNotFound is returned when a secret is not found in the keyring.
var ErrNotFound = errors.New("secret not found")

// Store provides an interface for secure secret storage.
type Store interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// SystemStore implements Store using the system keyring.
type SystemStore struct{}

// NewSystemStore creates a new system keyring store.
func NewSystemStore() *SystemStore {
	return &SystemStore{}
}

func (s *SystemStore) Get(service, key string) (string, error) {
	secret, err := gokeyring.Get(service, key)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return secret, nil
}

func (s *SystemStore) Set(service, key, value string) error {
	return gokeyring.Set(service, key, value)
}

func (s *SystemStore) Delete(service, key string) error {
	err := gokeyring.Delete(service, key)
	if err != nil && errors.Is(err, gokeyring.ErrNotFound) {
		return nil
	}
	return err
}

var envKeys = map[string]string{
	KeyClientID:     EnvClientID,
	KeyClientSecret: EnvClientSecret,
}

// EnvStore wraps another Store and checks environment variables first.
type EnvStore struct {
	underlying Store
}

// NewEnvStore creates a new EnvStore wrapping the given store.
func NewEnvStore(underlying Store) *EnvStore {
	return &EnvStore{underlying: underlying}
}

// Get returns the environment value for known keys when it is set, and
// falls back to the wrapped store otherwise.
func (e *EnvStore) Get(service, key string) (string, error) {
	if name, ok := envKeys[key]; ok {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return e.underlying.Get(service, key)
}

func (e *EnvStore) Set(service, key, value string) error {
	return e.underlying.Set(service, key, value)
}

func (e *EnvStore) Delete(service, key string) error {
	return e.underlying.Delete(service, key)
}

// Credentials reads the client id and secret. Both must be present.
func Credentials(store Store) (clientID, clientSecret string, err error) {
	clientID, err = store.Get(ServiceName, KeyClientID)
	if err != nil {
		return "", "", fmt.Errorf("failed to read client id: %w", err)
	}
	clientSecret, err = store.Get(ServiceName, KeyClientSecret)
	if err != nil {
		return "", "", fmt.Errorf("failed to read client secret: %w", err)
	}
	return clientID, clientSecret, nil
}

// SaveCredentials stores the client id and secret.
func SaveCredentials(store Store, clientID, clientSecret string) error {
	if err := store.Set(ServiceName, KeyClientID, clientID); err != nil {
		return fmt.Errorf("failed to store client id: %w", err)
	}
	if err := store.Set(ServiceName, KeyClientSecret, clientSecret); err != nil {
		return fmt.Errorf("failed to store client secret: %w", err)
	}
	return nil
}

// DeleteCredentials removes both credentials.
func DeleteCredentials(store Store) error {
	if err := store.Delete(ServiceName, KeyClientID); err != nil {
		return err
	}
	return store.Delete(ServiceName, KeyClientSecret)
}
