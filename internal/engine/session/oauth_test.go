package session

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"cordial/internal/crmtest"
)

func TestLoginWithOAuth(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()

	mgr, store := newManager(t, srv)

	opened := make(chan string, 1)
	user, err := mgr.LoginWithOAuth(context.Background(), "google", "127.0.0.1:0", func(u string) error {
		opened <- u
		// Stand in for the browser: follow the authorization URL, which
		// ends at the loopback callback carrying the tokens.
		go http.Get(u)
		return nil
	})
	if err != nil {
		t.Fatalf("LoginWithOAuth: %v", err)
	}
	if user.Email != srv.User().Email {
		t.Errorf("unexpected user %q", user.Email)
	}

	authURL := <-opened
	if !strings.Contains(authURL, "access_token=") {
		t.Errorf("authorization URL missing tokens: %q", authURL)
	}

	tokens, err := store.Tokens()
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	if tokens.Access == "" || tokens.Refresh == "" {
		t.Error("token pair not persisted after oauth login")
	}
	if tokens.ExpiresAt.IsZero() {
		t.Error("token expiry not recorded from expires_in")
	}
	if !mgr.LoggedIn() {
		t.Error("LoggedIn() false after oauth login")
	}
}

func TestLoginWithOAuthProviderDenied(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()

	mgr, store := newManager(t, srv)

	_, err := mgr.LoginWithOAuth(context.Background(), "google", "127.0.0.1:0", func(u string) error {
		// Simulate the provider denying: hit the callback with an error
		// instead of tokens.
		parsed, perr := url.Parse(u)
		if perr != nil {
			return perr
		}
		callback := "http://" + parsed.Host + parsed.Path + "?error=access_denied"
		go http.Get(callback)
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "access_denied") {
		t.Fatalf("expected a denial error, got %v", err)
	}

	tokens, _ := store.Tokens()
	if tokens.Access != "" {
		t.Error("tokens persisted after a denied flow")
	}
	if mgr.LoggedIn() {
		t.Error("LoggedIn() true after a denied flow")
	}
}

func TestLoginWithOAuthHonorsContext(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()

	mgr, _ := newManager(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// The browser never completes the flow; the context deadline must
	// end the wait.
	_, err := mgr.LoginWithOAuth(ctx, "google", "127.0.0.1:0", func(string) error { return nil })
	if err != context.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}
