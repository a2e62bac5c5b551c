package common_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/readmegen-lab/backend/config"
	"github.com/readmegen-lab/backend/internal/common"
	"github.com/stretchr/testify/require"
)

func testConfigs(env string) config.Configs {
	return config.Configs{
		Env: env,
		Auth: config.AuthConfigs{
			AccessToken:  config.TokenConfigs{Name: "access_token", Expiration: time.Hour},
			RefreshToken: config.TokenConfigs{Name: "refresh_token", Expiration: 24 * time.Hour},
		},
		Frontend: config.FrontendConfigs{URL: "http://localhost:3000"},
	}
}

func TestCookieSetClearSymmetry(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		for _, kind := range []common.TokenKind{common.AccessTokenKind, common.RefreshTokenKind} {
			cfg := testConfigs(env)
			set := common.NewCookie(cfg, kind, "token-value")
			cleared := common.ClearedCookie(cfg, kind)

			require.Equal(t, set.Name, cleared.Name)
			require.Equal(t, set.Path, cleared.Path)
			require.Equal(t, set.HttpOnly, cleared.HttpOnly)
			require.Equal(t, set.Secure, cleared.Secure)
			require.Equal(t, set.SameSite, cleared.SameSite)
			require.Equal(t, -1, cleared.MaxAge)
		}
	}
}

func TestCookieEnvironmentAttributes(t *testing.T) {
	dev := common.CookieOptionsFor(testConfigs("dev"), common.AccessTokenKind)
	require.True(t, dev.HttpOnly)
	require.False(t, dev.Secure)
	require.Equal(t, http.SameSiteLaxMode, dev.SameSite)
	require.Equal(t, int(time.Hour/time.Second), dev.MaxAge)

	prod := common.CookieOptionsFor(testConfigs("prod"), common.RefreshTokenKind)
	require.True(t, prod.HttpOnly)
	require.Equal(t, http.SameSiteNoneMode, prod.SameSite)
	// SameSite=None must force Secure.
	require.True(t, prod.Secure)
	require.Equal(t, int(24*time.Hour/time.Second), prod.MaxAge)
}

func TestValidateEnvironment(t *testing.T) {
	cfg := testConfigs("dev")
	require.NoError(t, common.ValidateEnvironment(cfg))

	cfg = testConfigs("prod")
	require.Error(t, common.ValidateEnvironment(cfg))

	cfg.Frontend.URL = "https://app.example.com"
	require.NoError(t, common.ValidateEnvironment(cfg))
}
