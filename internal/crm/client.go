package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// expiryLeeway is how close to its expiry an access token may get before
// the client refreshes it ahead of sending a request.
const expiryLeeway = 30 * time.Second

// StoredTokens is the client-side view of a token pair. ExpiresAt is the
// access token's recorded expiry; the zero value means unknown.
type StoredTokens struct {
	Access    string    `json:"access_token,omitempty"`
	Refresh   string    `json:"refresh_token,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// TokenStore persists the token pair across runs. Implementations must be
// safe for concurrent use.
type TokenStore interface {
	Tokens() (StoredTokens, error)
	SetTokens(StoredTokens) error
	ClearSession() error
}

// Client is the HTTP core shared by the resource services. It attaches
// bearer tokens, injects the active organization header, and recovers
// from expired access tokens with a single-flight refresh.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenStore
	orgID   func() string

	refreshGroup singleflight.Group

	Auth          *AuthService
	Organizations *OrganizationsService
	Memberships   *MembershipsService
	Invites       *InvitesService
	Contacts      *ContactsService
	Deals         *DealsService
	Activities    *ActivitiesService
	Dashboard     *DashboardService
}

func NewClient(baseURL string, tokens TokenStore, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	c := &Client{
		baseURL: u,
		http:    httpClient,
		tokens:  tokens,
		orgID:   func() string { return "" },
	}
	c.Auth = &AuthService{c: c}
	c.Organizations = &OrganizationsService{c: c}
	c.Memberships = &MembershipsService{c: c}
	c.Invites = &InvitesService{c: c}
	c.Contacts = &ContactsService{c: c}
	c.Deals = &DealsService{c: c}
	c.Activities = &ActivitiesService{c: c}
	c.Dashboard = &DashboardService{c: c}
	return c, nil
}

// SetOrgSource installs the provider of the active organization id. An
// empty return value means no organization header is attached.
func (c *Client) SetOrgSource(fn func() string) {
	if fn != nil {
		c.orgID = fn
	}
}

// publicPaths are served without authentication; the client must not
// attach a bearer token to them.
var publicPaths = map[string]bool{
	"/auth/register":            true,
	"/auth/login":               true,
	"/auth/refresh":             true,
	"/auth/providers":           true,
	"/auth/forgot-password":     true,
	"/auth/reset-password":      true,
	"/auth/verify-email":        true,
	"/auth/resend-verification": true,
}

func isPublic(path string) bool {
	if publicPaths[path] {
		return true
	}
	// OAuth starts and invite previews are reachable pre-login.
	return strings.HasPrefix(path, "/auth/oauth/") || strings.HasPrefix(path, "/invites/code/")
}

// orgScoped reports whether the organization header belongs on a request.
// Auth endpoints and the organization listing/creation endpoint itself
// are exempt.
func orgScoped(path string) bool {
	if strings.HasPrefix(path, "/auth/") {
		return false
	}
	if path == "/organizations" {
		return false
	}
	return true
}

// get/post/put/del are the verbs the resource services build on.

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) del(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	public := isPublic(path)

	access := ""
	if !public {
		tok, err := c.tokens.Tokens()
		if err != nil {
			return fmt.Errorf("load tokens: %w", err)
		}
		// Refresh ahead of time when the recorded expiry is imminent,
		// through the same single-flight path as the 401 fallback.
		if tok.Access != "" && tok.Refresh != "" && !tok.ExpiresAt.IsZero() &&
			time.Until(tok.ExpiresAt) < expiryLeeway {
			if refreshed, err := c.refreshTokens(ctx); err == nil {
				tok.Access = refreshed
			}
		}
		access = tok.Access
	}

	resp, requestID, err := c.send(ctx, method, path, query, payload, access)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !public && path != "/auth/refresh" {
		resp.Body.Close()

		refreshed, rerr := c.refreshTokens(ctx)
		if rerr != nil {
			// Unrecoverable: tear the session down and surface it.
			if cerr := c.tokens.ClearSession(); cerr != nil {
				log.Warn().Err(cerr).Msg("failed to clear session after refresh failure")
			}
			log.Warn().Str("path", path).Err(rerr).Msg("token refresh failed, session cleared")
			return fmt.Errorf("%w: %v", ErrSessionExpired, rerr)
		}

		log.Debug().Str("method", method).Str("path", path).Msg("retrying after token refresh")
		resp, requestID, err = c.send(ctx, method, path, query, payload, refreshed)
		if err != nil {
			return err
		}
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, requestID)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, access string) (*http.Response, string, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/api" + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader *bytes.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, "", err
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	if orgScoped(path) {
		if orgID := c.orgID(); orgID != "" {
			req.Header.Set("X-Organization-ID", orgID)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Str("method", method).Str("path", path).Err(err).Msg("request failed")
		return nil, "", &TransportError{Err: err}
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("request")

	return resp, requestID, nil
}

// refreshTokens exchanges the stored refresh token for a new token pair.
// Concurrent callers share a single in-flight exchange; every caller of
// an overlapping batch observes the same outcome.
func (c *Client) refreshTokens(ctx context.Context) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		tok, err := c.tokens.Tokens()
		if err != nil {
			return "", err
		}
		if tok.Refresh == "" {
			return "", ErrNoRefreshToken
		}

		payload, _ := json.Marshal(map[string]string{"refresh_token": tok.Refresh})
		resp, requestID, err := c.send(ctx, http.MethodPost, "/auth/refresh", nil, payload, "")
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", decodeError(resp, requestID)
		}

		var refreshed Token
		if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
			return "", fmt.Errorf("decode refresh response: %w", err)
		}

		stored := TokensFromResponse(&refreshed)
		if err := c.tokens.SetTokens(stored); err != nil {
			return "", fmt.Errorf("store refreshed tokens: %w", err)
		}

		log.Info().Msg("access token refreshed")
		return stored.Access, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// TokensFromResponse converts a token envelope into its stored form,
// preferring the JWT's own exp claim over the advertised expires_in.
func TokensFromResponse(t *Token) StoredTokens {
	stored := StoredTokens{Access: t.AccessToken, Refresh: t.RefreshToken}
	if exp, ok := accessTokenExpiry(t.AccessToken); ok {
		stored.ExpiresAt = exp
	} else if t.ExpiresIn > 0 {
		stored.ExpiresAt = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return stored
}

// accessTokenExpiry reads the exp claim without verifying the signature.
// Verification is the server's job; the client only needs the deadline.
func accessTokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
