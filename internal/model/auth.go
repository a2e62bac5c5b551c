package model

import (
	"context"
	"net/http"

	"github.com/readmegen-lab/backend/internal/common"
	"github.com/readmegen-lab/backend/pkg/xcontext"
)

// Access Token and Refresh Token payloads.
type AccessToken struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RefreshToken struct {
	ID string `json:"id"`
}

// OAuth2 Login
type OAuth2LoginRequest struct{}

type OAuth2LoginResponse struct {
	RedirectURL string `json:"-"`
	State       string `json:"-"`
}

func (r OAuth2LoginResponse) RedirectInfo() (int, string) {
	return http.StatusFound, r.RedirectURL
}

func (r OAuth2LoginResponse) SessionInfo() map[string]any {
	return map[string]any{"state": r.State}
}

// OAuth2 Callback
type OAuth2CallbackRequest struct {
	Code         string `json:"code"`
	State        string `json:"state"`
	Error        string `json:"error"`
	SessionState string `session:"state,delete"`
}

type OAuth2CallbackResponse struct {
	RedirectURL  string `json:"-"`
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
}

func (r OAuth2CallbackResponse) RedirectInfo() (int, string) {
	return http.StatusFound, r.RedirectURL
}

func (r OAuth2CallbackResponse) CookieInfo(ctx context.Context) []http.Cookie {
	// The error path redirects without issuing a session.
	if r.AccessToken == "" {
		return nil
	}

	cfg := xcontext.Configs(ctx)
	return []http.Cookie{
		common.NewCookie(cfg, common.AccessTokenKind, r.AccessToken),
		common.NewCookie(cfg, common.RefreshTokenKind, r.RefreshToken),
	}
}

// Auth Status
type AuthStatusRequest struct{}

type AuthStatusResponse struct {
	Authenticated bool `json:"authenticated"`
	User          User `json:"user"`
}

// Logout
type LogoutRequest struct{}

type LogoutResponse struct{}

func (r LogoutResponse) CookieInfo(ctx context.Context) []http.Cookie {
	cfg := xcontext.Configs(ctx)
	return []http.Cookie{
		common.ClearedCookie(cfg, common.AccessTokenKind),
		common.ClearedCookie(cfg, common.RefreshTokenKind),
	}
}
