package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"cordial/internal/crm"
)

// callbackResult is what the backend's OAuth redirect delivers to the
// loopback listener.
type callbackResult struct {
	tokens crm.Token
	err    error
}

// LoginWithOAuth runs the provider flow: ask the backend for the
// authorization URL, open it in the user's browser, and wait on a
// loopback HTTP listener for the redirect carrying the issued tokens.
// openURL is injected so tests (and headless environments) can intercept
// the browser step.
func (m *Manager) LoginWithOAuth(ctx context.Context, provider, listenAddr string, openURL func(string) error) (*crm.User, error) {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("start oauth callback listener: %w", err)
	}

	_, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		ln.Close()
		return nil, err
	}
	redirectURI := "http://127.0.0.1:" + port + "/callback"

	authURL, err := m.client.Auth.OAuthURL(ctx, provider, redirectURI)
	if err != nil {
		ln.Close()
		return nil, err
	}

	results := make(chan callbackResult, 1)
	srv := &http.Server{Handler: callbackHandler(results)}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			results <- callbackResult{err: err}
		}
	}()
	defer srv.Close()

	log.Info().Str("provider", provider).Str("redirect_uri", redirectURI).Msg("starting oauth flow")
	if err := openURL(authURL); err != nil {
		return nil, fmt.Errorf("open authorization URL: %w", err)
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}

	if err := m.store.SetTokens(crm.TokensFromResponse(&res.tokens)); err != nil {
		return nil, err
	}
	user, err := m.client.Auth.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.store.SetUser(user); err != nil {
		return nil, err
	}

	log.Info().Str("email", user.Email).Str("provider", provider).Msg("logged in via oauth")
	return user, nil
}

func callbackHandler(results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			http.NotFound(w, r)
			return
		}

		q := r.URL.Query()
		if errMsg := q.Get("error"); errMsg != "" {
			http.Error(w, "Sign-in failed. You can close this window.", http.StatusBadRequest)
			results <- callbackResult{err: fmt.Errorf("oauth callback error: %s", errMsg)}
			return
		}

		access := q.Get("access_token")
		refresh := q.Get("refresh_token")
		if access == "" || refresh == "" {
			http.Error(w, "Missing tokens in callback.", http.StatusBadRequest)
			results <- callbackResult{err: errors.New("oauth callback missing tokens")}
			return
		}

		expiresIn := 0
		if v := q.Get("expires_in"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				expiresIn = n
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>Signed in. You can close this window.</body></html>")

		results <- callbackResult{tokens: crm.Token{
			AccessToken:  access,
			RefreshToken: refresh,
			TokenType:    "bearer",
			ExpiresIn:    expiresIn,
		}}
	})
}

// WaitTimeout bounds how long the flow waits for the browser round-trip.
const WaitTimeout = 3 * time.Minute
