// Package session owns the authenticated-user lifecycle: logging in and
// out, keeping the persisted user record fresh, and running the OAuth
// loopback flow. At most one session exists at a time; every credential
// mutation goes through the state store.
package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"cordial/internal/crm"
	"cordial/internal/platform/state"
)

var ErrNotLoggedIn = errors.New("not logged in")

type Manager struct {
	client *crm.Client
	store  *state.Store
}

func NewManager(client *crm.Client, store *state.Store) *Manager {
	return &Manager{client: client, store: store}
}

func (m *Manager) LoggedIn() bool {
	tokens, err := m.store.Tokens()
	if err != nil {
		return false
	}
	return tokens.Access != "" || tokens.Refresh != ""
}

// Login exchanges credentials for a token pair and persists tokens and
// user record together.
func (m *Manager) Login(ctx context.Context, email, password string) (*crm.User, error) {
	tok, err := m.client.Auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	stored := crm.TokensFromResponse(tok)
	if err := m.store.SetTokens(stored); err != nil {
		return nil, err
	}

	user, err := m.client.Auth.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.store.SetUser(user); err != nil {
		return nil, err
	}

	log.Info().Str("email", user.Email).Msg("logged in")
	return user, nil
}

// Register creates the account, then logs in with the same credentials.
// An invite code joins the new account to the inviting organization.
func (m *Manager) Register(ctx context.Context, email, password, fullName, inviteCode string) (*crm.User, error) {
	if _, err := m.client.Auth.Register(ctx, crm.RegisterRequest{
		Email:      email,
		Password:   password,
		FullName:   fullName,
		InviteCode: inviteCode,
	}); err != nil {
		return nil, err
	}
	return m.Login(ctx, email, password)
}

// Logout revokes the session server-side when it can, and clears local
// state unconditionally. A failed server call never keeps credentials on
// disk.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.client.Auth.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
	}
	return m.store.ClearSession()
}

// LogoutAll revokes every session of the account, then clears local
// state with the same guarantee as Logout.
func (m *Manager) LogoutAll(ctx context.Context) error {
	if err := m.client.Auth.LogoutAll(ctx); err != nil {
		log.Warn().Err(err).Msg("server logout-all failed, clearing local session anyway")
	}
	return m.store.ClearSession()
}

// CurrentUser fetches /auth/me and refreshes the persisted user record.
func (m *Manager) CurrentUser(ctx context.Context) (*crm.User, error) {
	if !m.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	user, err := m.client.Auth.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.store.SetUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// CachedUser returns the persisted user record without a network call.
func (m *Manager) CachedUser() (*crm.User, error) {
	user, err := m.store.User()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	return user, nil
}
