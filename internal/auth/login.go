package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ErrStateMismatch is returned when the redirect carries a different state
// than the one sent with the authorization request.
var ErrStateMismatch = errors.New("oauth state mismatch")

// LoginFlow obtains an authorization code from the user.
type LoginFlow interface {
	// AuthorizationCode sends the user to authURL and returns the code the
	// authorization server redirected back with.
	AuthorizationCode(ctx context.Context, authURL, state string) (string, error)
}

// TerminalLogin prints the authorization URL and reads the redirected URL
// back from the terminal.
type TerminalLogin struct {
	In  io.Reader
	Out io.Writer
}

// AuthorizationCode implements LoginFlow.
func (l *TerminalLogin) AuthorizationCode(ctx context.Context, authURL, state string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	_, _ = fmt.Fprintln(l.Out, "Open this URL in your browser and log in:")
	_, _ = fmt.Fprintln(l.Out)
	_, _ = fmt.Fprintf(l.Out, "  %s\n", authURL)
	_, _ = fmt.Fprintln(l.Out)
	_, _ = fmt.Fprint(l.Out, "Paste the URL you were redirected to: ")

	scanner := bufio.NewScanner(l.In)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read redirect URL: %w", err)
		}
		return "", fmt.Errorf("no redirect URL entered")
	}

	return ParseRedirect(scanner.Text(), state)
}

// ParseRedirect extracts the authorization code from the URL the browser
// was redirected to. An empty state skips the state check.
func ParseRedirect(raw, state string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid redirect URL: %w", err)
	}

	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s", e)
	}
	if state != "" && q.Get("state") != state {
		return "", ErrStateMismatch
	}

	code := q.Get("code")
	if code == "" {
		return "", fmt.Errorf("no authorization code in redirect URL")
	}
	return code, nil
}
