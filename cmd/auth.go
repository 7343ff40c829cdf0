package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonandersen/schwab/internal/capture"
	"github.com/jonandersen/schwab/pkg/auth"
)

// authOptions holds dependencies for the auth commands.
type authOptions struct {
	session func() (*auth.Session, error)
	// browser returns the capturer used by login --browser.
	browser func() (capture.Capturer, error)
}

func newAuthCmd(opts authOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the OAuth session",
		Long: `Sign in to Schwab and manage the stored refresh token.

Examples:
  schwab auth login            # Paste the redirect URL after signing in
  schwab auth login --browser  # Capture the redirect automatically
  schwab auth status
  schwab auth logout`,
	}

	cmd.AddCommand(newAuthLoginCmd(opts))
	cmd.AddCommand(newAuthRefreshCmd(opts))
	cmd.AddCommand(newAuthStatusCmd(opts))
	cmd.AddCommand(newAuthLogoutCmd(opts))

	return cmd
}

func newAuthLoginCmd(opts authOptions) *cobra.Command {
	var useBrowser, noPersist bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store a refresh token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}

			var c capture.Capturer = capture.Terminal{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			if useBrowser {
				if c, err = opts.browser(); err != nil {
					return err
				}
			}

			code, err := c.Capture(cmd.Context(), s.AuthorizationURL())
			if err != nil {
				return fmt.Errorf("failed to capture authorization code: %w", err)
			}
			if err := s.ExchangeCode(cmd.Context(), code); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			if noPersist {
				return nil
			}
			if err := s.Persist(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Refresh token saved.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&useBrowser, "browser", false, "Open a browser and capture the redirect automatically")
	cmd.Flags().BoolVar(&noPersist, "no-persist", false, "Do not save the refresh token")
	cmd.SilenceUsage = true

	return cmd
}

func newAuthRefreshCmd(opts authOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Obtain a new access token from the stored refresh token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}
			if err := s.LoadPersisted(); err != nil {
				return notLoggedIn(err)
			}
			if err := s.Refresh(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Access token refreshed.")
			return nil
		},
	}
	cmd.SilenceUsage = true
	return cmd
}

func newAuthStatusCmd(opts authOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether the stored refresh token still works",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := s.LoadPersisted(); err != nil {
				if errors.Is(err, auth.ErrNoPersistedToken) {
					_, _ = fmt.Fprintln(out, "Not logged in")
					return nil
				}
				return err
			}

			if err := s.Refresh(cmd.Context()); err != nil {
				var rErr *auth.RefreshError
				if errors.As(err, &rErr) {
					_, _ = fmt.Fprintf(out, "Refresh token rejected (%d)\nRun 'schwab auth login' again.\n", rErr.StatusCode)
					return nil
				}
				return err
			}

			_, _ = fmt.Fprintf(out, "Logged in (%s)\n", s.State())
			return nil
		},
	}
	cmd.SilenceUsage = true
	return cmd
}

func newAuthLogoutCmd(opts authOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored refresh token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}
			if err := s.Logout(); err != nil {
				return fmt.Errorf("failed to remove refresh token: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
	cmd.SilenceUsage = true
	return cmd
}

func notLoggedIn(err error) error {
	if errors.Is(err, auth.ErrNoPersistedToken) {
		return fmt.Errorf("not logged in\nRun 'schwab auth login' first")
	}
	return err
}

func init() {
	rootCmd.AddCommand(newAuthCmd(authOptions{
		session: func() (*auth.Session, error) {
			rt, err := loadRuntime()
			if err != nil {
				return nil, err
			}
			return rt.session()
		},
		browser: func() (capture.Capturer, error) {
			rt, err := loadRuntime()
			if err != nil {
				return nil, err
			}
			return capture.Browser{RedirectURI: rt.cfg.RedirectURI}, nil
		},
	}))
}
