// Package capture obtains the authorization code after the user signs in.
package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ErrNoCode is returned when the redirect carries no code parameter.
var ErrNoCode = errors.New("redirect URL has no code parameter")

// Capturer sends the user to authURL and returns the authorization code
// handed back on the redirect.
type Capturer interface {
	Capture(ctx context.Context, authURL string) (string, error)
}

// CodeFromRedirect extracts the code query parameter from a redirect URL.
// The value is returned still percent-encoded. A bare value without a
// query string is taken as the code itself.
func CodeFromRedirect(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoCode
	}
	if !strings.Contains(raw, "?") && !strings.Contains(raw, "://") {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect URL: %w", err)
	}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if v, ok := strings.CutPrefix(pair, "code="); ok && v != "" {
			return v, nil
		}
	}
	return "", ErrNoCode
}

// Terminal prints the authorization URL and reads the redirect URL the
// user pastes back.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

func (t Terminal) Capture(ctx context.Context, authURL string) (string, error) {
	fmt.Fprintf(t.Out, "Open this URL in your browser and sign in:\n\n  %s\n\n", authURL)
	fmt.Fprint(t.Out, "Paste the URL you were redirected to: ")

	lines := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(t.In).ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			errs <- err
			return
		}
		lines <- line
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errs:
		return "", fmt.Errorf("failed to read redirect URL: %w", err)
	case line := <-lines:
		return CodeFromRedirect(line)
	}
}
