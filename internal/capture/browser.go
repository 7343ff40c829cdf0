package capture

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"
)

// DefaultBrowserTimeout bounds how long the user has to sign in.
const DefaultBrowserTimeout = 5 * time.Minute

// Browser opens a Chromium window on the authorization URL and intercepts
// the request to the redirect URI. The redirect target does not need to be
// served.
type Browser struct {
	RedirectURI string
	Timeout     time.Duration
	Headless    bool
}

func (b Browser) Capture(ctx context.Context, authURL string) (string, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}

	pw, err := playwright.Run()
	if err != nil {
		return "", fmt.Errorf("failed to start Playwright: %w", err)
	}
	defer func() { _ = pw.Stop() }()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.Headless),
	})
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	bctx, err := browser.NewContext()
	if err != nil {
		return "", fmt.Errorf("failed to create context: %w", err)
	}
	defer func() { _ = bctx.Close() }()

	page, err := bctx.NewPage()
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}

	redirects := make(chan string, 1)
	err = page.Route(redirectPattern(b.RedirectURI), func(route playwright.Route) {
		select {
		case redirects <- route.Request().URL():
		default:
		}
		_ = route.Abort()
	})
	if err != nil {
		return "", fmt.Errorf("failed to set route: %w", err)
	}

	if _, err := page.Goto(authURL, playwright.PageGotoOptions{Timeout: playwright.Float(60000)}); err != nil {
		return "", fmt.Errorf("failed to open authorization page: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", fmt.Errorf("timed out after %s waiting for sign-in", timeout)
	case u := <-redirects:
		return CodeFromRedirect(u)
	}
}

// redirectPattern matches any URL under redirectURI.
func redirectPattern(redirectURI string) *regexp.Regexp {
	return regexp.MustCompile("^" + regexp.QuoteMeta(redirectURI))
}
