package oauth2

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/browser"

	"github.com/kbukum/authkit/errors"
)

// Redirector sends the user agent to an authorization URL.
type Redirector interface {
	Redirect(ctx context.Context, url string) error
}

// RedirectorFunc is an adapter to use ordinary functions as Redirector.
type RedirectorFunc func(ctx context.Context, url string) error

// Redirect implements Redirector.
func (f RedirectorFunc) Redirect(ctx context.Context, url string) error {
	return f(ctx, url)
}

// NopRedirector does nothing; the URL reaches the caller through the
// *RedirectError returned by Authorize. Server-side callers use this and
// issue the HTTP redirect themselves.
type NopRedirector struct{}

func (NopRedirector) Redirect(context.Context, string) error { return nil }

// BrowserRedirector opens the URL in the system browser, printing it to Out
// (stderr by default) when no browser can be launched.
type BrowserRedirector struct {
	Out io.Writer
}

func (r BrowserRedirector) Redirect(_ context.Context, url string) error {
	if err := browser.OpenURL(url); err != nil {
		out := r.Out
		if out == nil {
			out = os.Stderr
		}
		fmt.Fprintf(out, "Please open this URL in your browser: %s\n", url)
	}
	return nil
}

// RedirectError is returned by the redirect leg of Authorize. It matches
// errors.ErrRedirectInProgress.
type RedirectError struct {
	Provider string
	URL      string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect in progress: %s", e.URL)
}

// Unwrap exposes the REDIRECT_IN_PROGRESS AppError.
func (e *RedirectError) Unwrap() error {
	return errors.RedirectInProgress(e.Provider, e.URL)
}

// RedirectURL extracts the authorization URL from a redirect-leg error.
func RedirectURL(err error) (string, bool) {
	var re *RedirectError
	if errors.As(err, &re) {
		return re.URL, true
	}
	return "", false
}
