package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestCredential(run func(ctx context.Context, scope string) ([]byte, error)) *CLICredential {
	c := NewCLICredential()
	c.run = run
	return c
}

func TestToken_ParsesAndCaches(t *testing.T) {
	calls := 0
	c := newTestCredential(func(ctx context.Context, scope string) ([]byte, error) {
		calls++
		expires := time.Now().Add(time.Hour).Unix()
		return []byte(fmt.Sprintf(`{"accessToken":"tok-%d","expires_on":"%d"}`, calls, expires)), nil
	})

	tok, err := c.Token(context.Background(), "https://org.crm.dynamics.com")
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if tok != "tok-1" {
		t.Fatalf("Token = %q, want tok-1", tok)
	}

	// Second call within expiry should not re-run az.
	tok, err = c.Token(context.Background(), "https://org.crm.dynamics.com")
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if tok != "tok-1" || calls != 1 {
		t.Fatalf("Token = %q calls = %d, want cached tok-1 with 1 call", tok, calls)
	}

	// Different scope fetches separately.
	if _, err := c.Token(context.Background(), "https://globaldisco.crm.dynamics.com"); err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 after second scope", calls)
	}
}

func TestToken_RefreshesWhenExpired(t *testing.T) {
	calls := 0
	c := newTestCredential(func(ctx context.Context, scope string) ([]byte, error) {
		calls++
		// Already-expired token forces a refetch on the next call.
		return []byte(fmt.Sprintf(`{"accessToken":"tok-%d","expires_on":"%d"}`, calls, time.Now().Add(-time.Hour).Unix())), nil
	})

	if _, err := c.Token(context.Background(), "scope"); err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if _, err := c.Token(context.Background(), "scope"); err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want refetch when expired", calls)
	}
}

func TestToken_NotLoggedIn(t *testing.T) {
	c := newTestCredential(func(ctx context.Context, scope string) ([]byte, error) {
		return nil, errors.New("az exited: ERROR: Please run 'az login' to setup account")
	})

	_, err := c.Token(context.Background(), "scope")
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("Token error = %v, want ErrNotLoggedIn", err)
	}
}

func TestToken_MalformedOutput(t *testing.T) {
	c := newTestCredential(func(ctx context.Context, scope string) ([]byte, error) {
		return []byte("{nope"), nil
	})

	_, err := c.Token(context.Background(), "scope")
	if err == nil {
		t.Fatalf("Token returned nil error, want parse error")
	}
}

func TestToken_EmptyScopeErrors(t *testing.T) {
	c := newTestCredential(nil)
	if _, err := c.Token(context.Background(), "  "); err == nil {
		t.Fatalf("Token returned nil error, want error for empty scope")
	}
}

func TestResourceScope_TrimsTrailingSlash(t *testing.T) {
	got := ResourceScope(" https://org.crm.dynamics.com/ ")
	if got != "https://org.crm.dynamics.com" {
		t.Fatalf("ResourceScope = %q", got)
	}
}
