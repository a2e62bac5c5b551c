package middleware

import (
	"context"
	"strings"

	"github.com/readmegen-lab/backend/internal/model"
	"github.com/readmegen-lab/backend/internal/repository"
	"github.com/readmegen-lab/backend/pkg/errorx"
	"github.com/readmegen-lab/backend/pkg/router"
	"github.com/readmegen-lab/backend/pkg/xcontext"
)

type AuthVerifier struct {
	useAccessToken bool
	userRepo       repository.UserRepository
}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

func (v *AuthVerifier) WithAccessToken(userRepo repository.UserRepository) *AuthVerifier {
	v.useAccessToken = true
	v.userRepo = userRepo
	return v
}

// Middleware verifies the session on every protected request: extract
// the token, verify the signature, load the user, attach it. Missing
// cookie, bad token and deleted user all collapse into the same 401 so
// the client cannot tell which check failed.
func (v *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if !v.useAccessToken {
			return nil, nil
		}

		tokenValue := getAccessToken(ctx)
		if tokenValue == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		var accessToken model.AccessToken
		if err := xcontext.AccessTokenEngine(ctx).Verify(tokenValue, &accessToken); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		user, err := v.userRepo.GetByID(ctx, accessToken.ID)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot load user of access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return xcontext.WithRequestUser(ctx, user), nil
	}
}

// getAccessToken reads the session cookie. The bearer header is a
// fallback for non-browser callers, the cookie is the canonical
// transport.
func getAccessToken(ctx context.Context) string {
	r := xcontext.HTTPRequest(ctx)

	cookie, err := r.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authorization := r.Header.Get("Authorization")
	if auth, token, found := strings.Cut(authorization, " "); found && auth == "Bearer" {
		return token
	}

	return ""
}
