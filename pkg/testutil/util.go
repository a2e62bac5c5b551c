package testutil

import (
	"context"
	"time"

	"github.com/readmegen-lab/backend/config"
	"github.com/readmegen-lab/backend/internal/entity"
	"github.com/readmegen-lab/backend/pkg/logger"
	"github.com/readmegen-lab/backend/pkg/session"
	"github.com/readmegen-lab/backend/pkg/token"
	"github.com/readmegen-lab/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MockContext returns a context wired like a running server: an
// in-memory database with migrated tables, dev configs, both token
// engines and a session store.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Env: "dev",
		ApiServer: config.ServerConfigs{
			Host: "localhost",
			Port: "8080",
		},
		Auth: config.AuthConfigs{
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Secret:     "access-secret",
				Expiration: 15 * time.Minute,
			},
			RefreshToken: config.TokenConfigs{
				Name:       "refresh_token",
				Secret:     "refresh-secret",
				Expiration: 14 * 24 * time.Hour,
			},
			TokenCipherSecret: "token-cipher-secret",
			GitHub: config.OAuth2Configs{
				Name:        "github",
				ClientID:    "client-id",
				CallbackURL: "http://localhost:8080/auth/github/callback",
				Scopes:      []string{"read:user", "user:email"},
			},
		},
		Session: config.SessionConfigs{
			Secret: "session-secret",
			Name:   "auth_session",
		},
		Frontend: config.FrontendConfigs{
			URL:           "http://localhost:3000",
			LoginPath:     "/login",
			DashboardPath: "/dashboard",
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithAccessTokenEngine(ctx, token.NewEngine(cfg.Auth.AccessToken.Secret))
	ctx = xcontext.WithRefreshTokenEngine(ctx, token.NewEngine(cfg.Auth.RefreshToken.Secret))
	ctx = xcontext.WithSessionStore(ctx, session.NewCookieStore(cfg.Session.Name, []byte(cfg.Session.Secret)))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(db); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
