package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonandersen/schwab/internal/capture"
	"github.com/jonandersen/schwab/pkg/auth"
)

// tokenServer answers both grant types and records the forms it received.
type tokenServer struct {
	*httptest.Server
	forms       []map[string]string
	refreshFail bool
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		ts.forms = append(ts.forms, form)

		w.Header().Set("Content-Type", "application/json")
		if form["grant_type"] == "refresh_token" && ts.refreshFail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-" + form["grant_type"],
			"refresh_token": "refresh-1",
			"id_token":      "id-1",
			"token_type":    "Bearer",
			"expires_in":    1800,
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newAuthTestOptions(t *testing.T, tokenURL string) (authOptions, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token.json")
	opts := authOptions{
		session: func() (*auth.Session, error) {
			return auth.NewSession(
				auth.Credential{ClientID: "id", ClientSecret: "secret", RedirectURI: "https://127.0.0.1"},
				auth.WithEndpoint("https://example.com/authorize", tokenURL),
				auth.WithStore(auth.NewFileStore(path)),
			), nil
		},
		browser: func() (capture.Capturer, error) {
			return nil, errors.New("no browser in tests")
		},
	}
	return opts, path
}

type fakeCapturer struct {
	code    string
	authURL string
}

func (f *fakeCapturer) Capture(_ context.Context, authURL string) (string, error) {
	f.authURL = authURL
	return f.code, nil
}

func TestAuthLogin_PastedRedirect(t *testing.T) {
	ts := newTokenServer(t)
	opts, path := newAuthTestOptions(t, ts.URL)

	cmd := newAuthCmd(opts)
	cmd.SetIn(strings.NewReader("https://127.0.0.1/?code=C0.abc%40def&session=xyz\n"))
	out, _, err := execute(cmd, "login")
	require.NoError(t, err)

	assert.Contains(t, out, "https://example.com/authorize?client_id=id")
	assert.Contains(t, out, "Signed in.")
	assert.Contains(t, out, "Refresh token saved.")

	require.Len(t, ts.forms, 1)
	assert.Equal(t, "authorization_code", ts.forms[0]["grant_type"])
	assert.Equal(t, "C0.abc@def", ts.forms[0]["code"])
	assert.Equal(t, "https://127.0.0.1", ts.forms[0]["redirect_uri"])

	rt, err := auth.NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", rt)
}

func TestAuthLogin_NoPersist(t *testing.T) {
	ts := newTokenServer(t)
	opts, path := newAuthTestOptions(t, ts.URL)

	cmd := newAuthCmd(opts)
	cmd.SetIn(strings.NewReader("CODE123\n"))
	out, _, err := execute(cmd, "login", "--no-persist")
	require.NoError(t, err)

	assert.NotContains(t, out, "Refresh token saved.")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAuthLogin_Browser(t *testing.T) {
	ts := newTokenServer(t)
	opts, _ := newAuthTestOptions(t, ts.URL)
	fc := &fakeCapturer{code: "BROWSERCODE"}
	opts.browser = func() (capture.Capturer, error) { return fc, nil }

	_, _, err := execute(newAuthCmd(opts), "login", "--browser")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(fc.authURL, "https://example.com/authorize?"))
	assert.Equal(t, "BROWSERCODE", ts.forms[0]["code"])
}

func TestAuthLogin_NoCode(t *testing.T) {
	ts := newTokenServer(t)
	opts, _ := newAuthTestOptions(t, ts.URL)

	cmd := newAuthCmd(opts)
	cmd.SetIn(strings.NewReader("https://127.0.0.1/?session=xyz\n"))
	_, _, err := execute(cmd, "login")
	require.Error(t, err)
	assert.ErrorIs(t, err, capture.ErrNoCode)
	assert.Empty(t, ts.forms)
}

func TestAuthRefresh(t *testing.T) {
	ts := newTokenServer(t)
	opts, path := newAuthTestOptions(t, ts.URL)
	require.NoError(t, auth.NewFileStore(path).Save("stored-refresh"))

	out, _, err := execute(newAuthCmd(opts), "refresh")
	require.NoError(t, err)

	assert.Equal(t, "Access token refreshed.\n", out)
	require.Len(t, ts.forms, 1)
	assert.Equal(t, "refresh_token", ts.forms[0]["grant_type"])
	assert.Equal(t, "stored-refresh", ts.forms[0]["refresh_token"])
}

func TestAuthRefresh_NotLoggedIn(t *testing.T) {
	ts := newTokenServer(t)
	opts, _ := newAuthTestOptions(t, ts.URL)

	_, _, err := execute(newAuthCmd(opts), "refresh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestAuthStatus(t *testing.T) {
	ts := newTokenServer(t)
	opts, path := newAuthTestOptions(t, ts.URL)

	out, _, err := execute(newAuthCmd(opts), "status")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in\n", out)

	require.NoError(t, auth.NewFileStore(path).Save("stored-refresh"))
	out, _, err = execute(newAuthCmd(opts), "status")
	require.NoError(t, err)
	assert.Equal(t, "Logged in (authenticated)\n", out)

	ts.refreshFail = true
	out, _, err = execute(newAuthCmd(opts), "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Refresh token rejected (400)")
}

func TestAuthLogout(t *testing.T) {
	ts := newTokenServer(t)
	opts, path := newAuthTestOptions(t, ts.URL)
	require.NoError(t, auth.NewFileStore(path).Save("stored-refresh"))

	out, _, err := execute(newAuthCmd(opts), "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out.\n", out)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAuthCmd_SessionError(t *testing.T) {
	opts := authOptions{session: func() (*auth.Session, error) {
		return nil, errors.New("credentials missing")
	}}

	_, _, err := execute(newAuthCmd(opts), "status")
	assert.EqualError(t, err, "credentials missing")
}
