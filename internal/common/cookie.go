package common

import (
	"net/http"
	"strings"
	"time"

	"github.com/readmegen-lab/backend/config"
	"github.com/readmegen-lab/backend/pkg/errorx"
)

type TokenKind int

const (
	AccessTokenKind TokenKind = iota
	RefreshTokenKind
)

// CookieOptions is the single source of cookie attributes for both
// issuing and clearing. Browsers silently ignore a clear whose
// attributes differ from the set, so every call site must derive its
// cookie from here.
type CookieOptions struct {
	Name     string
	Path     string
	MaxAge   int
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

func CookieOptionsFor(cfg config.Configs, kind TokenKind) CookieOptions {
	tokenCfg := cfg.Auth.AccessToken
	if kind == RefreshTokenKind {
		tokenCfg = cfg.Auth.RefreshToken
	}

	sameSite := http.SameSiteLaxMode
	secure := false
	if cfg.IsProduction() {
		// SameSite=None without Secure is rejected by browsers, so
		// Secure is forced true whenever None is chosen.
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	return CookieOptions{
		Name:     tokenCfg.Name,
		Path:     "/",
		MaxAge:   int(tokenCfg.Expiration / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}

func NewCookie(cfg config.Configs, kind TokenKind, value string) http.Cookie {
	opts := CookieOptionsFor(cfg, kind)
	return http.Cookie{
		Name:     opts.Name,
		Value:    value,
		Path:     opts.Path,
		MaxAge:   opts.MaxAge,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	}
}

func ClearedCookie(cfg config.Configs, kind TokenKind) http.Cookie {
	cookie := NewCookie(cfg, kind, "")
	cookie.MaxAge = -1
	return cookie
}

// ValidateEnvironment rejects a production setup whose frontend origin
// cannot receive secure cross-site cookies.
func ValidateEnvironment(cfg config.Configs) error {
	if cfg.IsProduction() && !strings.HasPrefix(cfg.Frontend.URL, "https://") {
		return errorx.New(errorx.Config,
			"Production requires an https frontend url, got %s", cfg.Frontend.URL)
	}

	return nil
}
