package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoRefreshToken is returned by Refresh when the session holds no refresh
// token and none could be loaded.
var ErrNoRefreshToken = errors.New("no refresh token available")

// ExchangeError reports a failed authorization-code exchange.
type ExchangeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ExchangeError) Error() string {
	return tokenErrorString("token exchange failed", e.StatusCode, e.Body, e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// RefreshError reports a failed refresh-token grant.
type RefreshError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RefreshError) Error() string {
	return tokenErrorString("token refresh failed", e.StatusCode, e.Body, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

func tokenErrorString(prefix string, status int, body string, err error) string {
	switch {
	case status != 0 && body != "":
		return fmt.Sprintf("%s: %d - %s", prefix, status, body)
	case status != 0:
		return fmt.Sprintf("%s: %d %s", prefix, status, http.StatusText(status))
	case err != nil:
		return fmt.Sprintf("%s: %v", prefix, err)
	default:
		return prefix
	}
}
