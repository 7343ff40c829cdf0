package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jonandersen/schwab/internal/output"
	"github.com/jonandersen/schwab/pkg/schwab"
)

// testClient returns a clientFunc pointed at baseURL with a fixed token.
func testClient(baseURL string) clientFunc {
	return func() (*schwab.Client, error) {
		return schwab.NewClientWithToken(baseURL, "test-token"), nil
	}
}

func modeOf(m output.Mode) func() output.Mode {
	return func() output.Mode { return m }
}

// newJSONServer serves body at path for every GET.
func newJSONServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// execute runs cmd with args and returns stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
