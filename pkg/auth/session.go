// Package auth manages the OAuth2 session against the Schwab token endpoint:
// authorization-code exchange, refresh-token grants and persistence of the
// refresh token between runs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// DefaultAuthURL is the browser-facing authorization endpoint.
	DefaultAuthURL = "https://api.schwabapi.com/v1/oauth/authorize"

	// DefaultTokenURL is the token endpoint for both grant types.
	DefaultTokenURL = "https://api.schwabapi.com/v1/oauth/token"
)

// Credential identifies the registered application.
type Credential struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// State describes whether the session currently holds an access token.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session owns the token pair for one credential.
//
// The access token lives only in memory and is never expiry-checked locally:
// it is used until the API rejects it, at which point the caller invokes
// Refresh. Refresh and ExchangeCode are serialized; AccessToken readers share.
type Session struct {
	cred       Credential
	authURL    string
	tokenURL   string
	httpClient *http.Client
	store      TokenStore
	logger     *zap.Logger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	idToken      string
}

// Option configures a Session.
type Option func(*Session)

// WithEndpoint overrides the authorization and token endpoints.
func WithEndpoint(authURL, tokenURL string) Option {
	return func(s *Session) {
		if authURL != "" {
			s.authURL = authURL
		}
		if tokenURL != "" {
			s.tokenURL = tokenURL
		}
	}
}

// WithHTTPClient sets the client used for token requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithStore sets where the refresh token is persisted.
func WithStore(store TokenStore) Option {
	return func(s *Session) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates an unauthenticated session for cred.
func NewSession(cred Credential, opts ...Option) *Session {
	s := &Session{
		cred:     cred,
		authURL:  DefaultAuthURL,
		tokenURL: DefaultTokenURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store:  NewFileStore(DefaultTokenPath()),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cred.ClientID,
		ClientSecret: s.cred.ClientSecret,
		RedirectURL:  s.cred.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.authURL,
			TokenURL:  s.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func (s *Session) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// AuthorizationURL returns the URL the operator opens to grant access.
// The query carries client_id, redirect_uri and response_type=code.
func (s *Session) AuthorizationURL() string {
	return s.oauthConfig().AuthCodeURL("")
}

// ExchangeCode trades an authorization code for a token pair. A code that is
// still percent-encoded (as copied from the redirect URL) is decoded first.
// On failure the session is left untouched and an *ExchangeError is returned.
func (s *Session) ExchangeCode(ctx context.Context, code string) error {
	code, err := decodeCode(code)
	if err != nil {
		return &ExchangeError{Err: fmt.Errorf("invalid authorization code: %w", err)}
	}
	if code == "" {
		return &ExchangeError{Err: errors.New("empty authorization code")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.oauthConfig().Exchange(s.clientContext(ctx), code)
	if err != nil {
		exErr := &ExchangeError{Err: err}
		exErr.StatusCode, exErr.Body = retrieveDetails(err)
		s.logger.Warn("authorization code exchange failed", zap.Int("status", exErr.StatusCode))
		return exErr
	}

	s.accessToken = tok.AccessToken
	s.refreshToken = tok.RefreshToken
	s.idToken, _ = tok.Extra("id_token").(string)
	s.logger.Info("authorization code exchanged")
	return nil
}

// Refresh obtains a new access token with the stored refresh token. The
// refresh token itself is kept as is, even if the provider returns another.
// On failure the session is left untouched and a *RefreshError is returned.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.refreshToken == "" {
		return ErrNoRefreshToken
	}

	src := s.oauthConfig().TokenSource(s.clientContext(ctx), &oauth2.Token{RefreshToken: s.refreshToken})
	tok, err := src.Token()
	if err != nil {
		rErr := &RefreshError{Err: err}
		rErr.StatusCode, rErr.Body = retrieveDetails(err)
		s.logger.Warn("access token refresh failed", zap.Int("status", rErr.StatusCode))
		return rErr
	}

	s.accessToken = tok.AccessToken
	if id, ok := tok.Extra("id_token").(string); ok && id != "" {
		s.idToken = id
	}
	s.logger.Debug("access token refreshed")
	return nil
}

// AccessToken returns the in-memory access token. When there is none it
// loads the persisted refresh token (if no refresh token is held) and
// refreshes.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	tok := s.accessToken
	s.mu.RUnlock()
	if tok != "" {
		return tok, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if s.accessToken != "" {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		rt, err := s.store.Load()
		if err != nil {
			return "", fmt.Errorf("failed to load refresh token: %w", err)
		}
		s.refreshToken = rt
	}

	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

// Token implements schwab.TokenProvider.
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.AccessToken(ctx)
}

// Persist writes the current refresh token to the token store.
func (s *Session) Persist() error {
	s.mu.RLock()
	rt := s.refreshToken
	s.mu.RUnlock()

	if rt == "" {
		return ErrNoRefreshToken
	}
	if err := s.store.Save(rt); err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}
	return nil
}

// LoadPersisted reads the refresh token from the token store. The access
// token is not touched.
func (s *Session) LoadPersisted() error {
	rt, err := s.store.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.refreshToken = rt
	s.mu.Unlock()
	return nil
}

// Logout forgets all tokens and removes the persisted refresh token.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.idToken = ""
	s.mu.Unlock()

	return s.store.Delete()
}

// State reports whether an access token is held in memory.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.accessToken != "" {
		return Authenticated
	}
	return Unauthenticated
}

// IDToken returns the identity token from the last code exchange.
func (s *Session) IDToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idToken
}

// HasRefreshToken reports whether a refresh token is held in memory.
func (s *Session) HasRefreshToken() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken != ""
}

// decodeCode undoes percent-encoding left over from the redirect URL.
// '+' is kept literally.
func decodeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if !strings.Contains(code, "%") {
		return code, nil
	}
	return url.PathUnescape(code)
}

func retrieveDetails(err error) (int, string) {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return 0, ""
	}
	status := 0
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	return status, string(re.Body)
}
