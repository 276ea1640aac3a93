package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrNotLoggedIn indicates the Azure CLI has no active session. Callers should
// surface the remedy to the user rather than treat this as fatal plumbing.
var ErrNotLoggedIn = errors.New("not logged in to Azure CLI (run 'az login')")

// TokenProvider supplies bearer tokens for a given resource scope.
// Implemented by *CLICredential and by test fakes.
type TokenProvider interface {
	Token(ctx context.Context, scope string) (string, error)
}

// Ensure CLICredential implements TokenProvider at compile time.
var _ TokenProvider = (*CLICredential)(nil)

// expirySkew is subtracted from a token's lifetime so we refresh before the
// service starts rejecting it.
const expirySkew = 2 * time.Minute

// CLICredential obtains access tokens by shelling out to the Azure CLI.
// Tokens are cached per scope until close to expiry.
type CLICredential struct {
	mu     sync.Mutex
	cached map[string]cachedToken

	// run executes the az command and returns its stdout. Replaceable in tests.
	run func(ctx context.Context, scope string) ([]byte, error)

	// now is replaceable in tests.
	now func() time.Time
}

type cachedToken struct {
	token   string
	expires time.Time
}

// tokenResponse matches `az account get-access-token --output json`.
type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresOn   string `json:"expires_on,omitempty"`
	Expires     string `json:"expiresOn,omitempty"`
}

// NewCLICredential builds a credential backed by the az CLI.
func NewCLICredential() *CLICredential {
	return &CLICredential{
		cached: make(map[string]cachedToken),
		run:    runAzToken,
		now:    time.Now,
	}
}

// Token returns a bearer token for the given resource scope, fetching a fresh
// one when the cached token is missing or near expiry.
func (c *CLICredential) Token(ctx context.Context, scope string) (string, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return "", fmt.Errorf("token scope is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.cached[scope]; ok && c.now().Before(entry.expires) {
		return entry.token, nil
	}

	out, err := c.run(ctx, scope)
	if err != nil {
		if isNotLoggedIn(err) {
			return "", ErrNotLoggedIn
		}
		return "", fmt.Errorf("acquire token for %s: %w", scope, err)
	}

	var resp tokenResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return "", fmt.Errorf("parse az token output: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("az returned empty access token")
	}

	c.cached[scope] = cachedToken{
		token:   resp.AccessToken,
		expires: parseExpiry(resp, c.now()).Add(-expirySkew),
	}
	return resp.AccessToken, nil
}

// ResourceScope converts an environment URL into the scope string the CLI
// expects, e.g. https://org.crm.dynamics.com -> https://org.crm.dynamics.com/.
func ResourceScope(envURL string) string {
	return strings.TrimRight(strings.TrimSpace(envURL), "/")
}

func runAzToken(ctx context.Context, scope string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "az", "account", "get-access-token",
		"--resource", scope, "--output", "json")
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("az exited: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("run az: %w", err)
	}
	return out, nil
}

func isNotLoggedIn(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "az login") ||
		strings.Contains(msg, "please run 'az login'") ||
		strings.Contains(msg, "no subscription found")
}

// parseExpiry prefers the numeric expires_on epoch, then the expiresOn local
// timestamp, and finally falls back to a conservative lifetime.
func parseExpiry(resp tokenResponse, now time.Time) time.Time {
	if resp.ExpiresOn != "" {
		var epoch int64
		if _, err := fmt.Sscanf(resp.ExpiresOn, "%d", &epoch); err == nil && epoch > 0 {
			return time.Unix(epoch, 0)
		}
	}
	if resp.Expires != "" {
		if t, err := time.ParseInLocation("2006-01-02 15:04:05", resp.Expires, time.Local); err == nil {
			return t
		}
	}
	return now.Add(10 * time.Minute)
}
