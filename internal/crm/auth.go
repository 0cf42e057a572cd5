package crm

import (
	"context"
	"net/url"
)

// AuthService covers registration, credential login, session teardown and
// the password/email maintenance endpoints. Token refresh itself lives in
// the client core.
type AuthService struct {
	c *Client
}

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	InviteCode string `json:"invite_code,omitempty"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := s.c.post(ctx, "/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Token, error) {
	body := map[string]string{"email": email, "password": password}
	var tok Token
	if err := s.c.post(ctx, "/auth/login", body, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.post(ctx, "/auth/logout", nil, nil)
}

// LogoutAll revokes every refresh token issued to the account.
func (s *AuthService) LogoutAll(ctx context.Context) error {
	return s.c.post(ctx, "/auth/logout-all", nil, nil)
}

func (s *AuthService) Me(ctx context.Context) (*User, error) {
	var user User
	if err := s.c.get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.c.post(ctx, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword}
	return s.c.post(ctx, "/auth/reset-password", body, nil)
}

func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return s.c.post(ctx, "/auth/change-password", body, nil)
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	return s.c.post(ctx, "/auth/verify-email", map[string]string{"token": token}, nil)
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	return s.c.post(ctx, "/auth/resend-verification", map[string]string{"email": email}, nil)
}

func (s *AuthService) Providers(ctx context.Context) ([]Provider, error) {
	var out struct {
		Providers []Provider `json:"providers"`
	}
	if err := s.c.get(ctx, "/auth/providers", nil, &out); err != nil {
		return nil, err
	}
	return out.Providers, nil
}

// OAuthURL asks the backend for the provider's authorization URL. The
// backend performs the code exchange and redirects to redirectURI with
// the issued tokens.
func (s *AuthService) OAuthURL(ctx context.Context, provider, redirectURI string) (string, error) {
	query := url.Values{}
	if redirectURI != "" {
		query.Set("redirect_uri", redirectURI)
	}
	var out struct {
		AuthorizationURL string `json:"authorization_url"`
	}
	if err := s.c.get(ctx, "/auth/oauth/"+provider, query, &out); err != nil {
		return "", err
	}
	return out.AuthorizationURL, nil
}
