package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/readmegen-lab/backend/internal/model"
	"github.com/readmegen-lab/backend/internal/repository"
	"github.com/readmegen-lab/backend/pkg/api/github"
	"github.com/readmegen-lab/backend/pkg/crypto"
	"github.com/readmegen-lab/backend/pkg/errorx"
	"github.com/readmegen-lab/backend/pkg/testutil"
	"github.com/readmegen-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestAuthDomain(endpoint github.IEndpoint) (AuthDomain, repository.UserRepository) {
	userRepo := repository.NewUserRepository(crypto.NewTokenCipher("test-secret"))
	return NewAuthDomain(userRepo, endpoint), userRepo
}

func Test_authDomain_Login(t *testing.T) {
	ctx := testutil.MockContext()
	authDomain, _ := newTestAuthDomain(&testutil.MockGithubEndpoint{
		AuthCodeURLFunc: func(state string) string {
			return "https://github.com/login/oauth/authorize?state=" + state
		},
	})

	resp, err := authDomain.Login(ctx, &model.OAuth2LoginRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, resp.State)
	require.Equal(t, "https://github.com/login/oauth/authorize?state="+resp.State, resp.RedirectURL)
}

func Test_authDomain_Login_NotConfigured(t *testing.T) {
	ctx := testutil.MockContext()
	cfg := xcontext.Configs(ctx)
	cfg.Auth.GitHub.ClientID = ""
	ctx = xcontext.WithConfigs(ctx, cfg)

	authDomain, _ := newTestAuthDomain(&testutil.MockGithubEndpoint{})

	_, err := authDomain.Login(ctx, &model.OAuth2LoginRequest{})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Config, errx.Code)
}

func Test_authDomain_Callback_HappyPath(t *testing.T) {
	ctx := testutil.MockContext()
	authDomain, userRepo := newTestAuthDomain(&testutil.MockGithubEndpoint{
		ExchangeCodeFunc: func(ctx context.Context, code string) (string, error) {
			require.Equal(t, "auth-code", code)
			return "gho_access", nil
		},
		GetUserFunc: func(ctx context.Context, accessToken string) (github.UserInfo, error) {
			return github.UserInfo{
				ExternalID: "42",
				Login:      "Alice",
				AvatarURL:  "https://avatars.example.com/alice",
			}, nil
		},
		GetPrimaryEmailFunc: func(ctx context.Context, accessToken string) (string, error) {
			return "alice@example.com", nil
		},
	})

	resp, err := authDomain.Callback(ctx, &model.OAuth2CallbackRequest{
		Code:         "auth-code",
		State:        "some-state",
		SessionState: "some-state",
	})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000/dashboard", resp.RedirectURL)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	// The login name is normalized and the refresh token hash is pinned.
	user, err := userRepo.GetByServiceUserIDOrEmail(ctx, "42", "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Name)
	require.Equal(t, "alice@example.com", user.Email)
	require.True(t, user.RefreshToken.Valid)
	require.Equal(t, crypto.SHA256([]byte(resp.RefreshToken)), user.RefreshToken.String)

	// The access token carries the session identity.
	var accessToken model.AccessToken
	require.NoError(t, xcontext.AccessTokenEngine(ctx).Verify(resp.AccessToken, &accessToken))
	require.Equal(t, user.ID, accessToken.ID)
	require.Equal(t, "alice", accessToken.Name)
}

func Test_authDomain_Callback_ProviderError(t *testing.T) {
	ctx := testutil.MockContext()
	authDomain, userRepo := newTestAuthDomain(&testutil.MockGithubEndpoint{})

	resp, err := authDomain.Callback(ctx, &model.OAuth2CallbackRequest{
		Error: "access_denied",
	})
	require.NoError(t, err)
	require.Equal(t,
		"http://localhost:3000/login?error=oauth_failed&details=access_denied",
		resp.RedirectURL)
	require.Empty(t, resp.AccessToken)

	count, err := userRepo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func Test_authDomain_Callback_MissingCode(t *testing.T) {
	ctx := testutil.MockContext()
	authDomain, _ := newTestAuthDomain(&testutil.MockGithubEndpoint{})

	_, err := authDomain.Callback(ctx, &model.OAuth2CallbackRequest{})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)
	require.Equal(t, "Not found authorization code", errx.Message)
}

func Test_authDomain_Callback_StateMismatch(t *testing.T) {
	ctx := testutil.MockContext()
	authDomain, _ := newTestAuthDomain(&testutil.MockGithubEndpoint{})

	resp, err := authDomain.Callback(ctx, &model.OAuth2CallbackRequest{
		Code:         "auth-code",
		State:        "attacker-state",
		SessionState: "expected-state",
	})
	require.NoError(t, err)
	require.Equal(t,
		"http://localhost:3000/login?error=oauth_failed&details=invalid_state",
		resp.RedirectURL)
	require.Empty(t, resp.AccessToken)
}

func Test_authDomain_Callback_ExchangeFailed(t *testing.T) {
	ctx := testutil.MockContext()
	authDomain, _ := newTestAuthDomain(&testutil.MockGithubEndpoint{
		ExchangeCodeFunc: func(ctx context.Context, code string) (string, error) {
			return "", errors.New("upstream down")
		},
	})

	resp, err := authDomain.Callback(ctx, &model.OAuth2CallbackRequest{
		Code:         "auth-code",
		State:        "some-state",
		SessionState: "some-state",
	})
	require.NoError(t, err)
	require.Equal(t,
		"http://localhost:3000/login?error=oauth_failed&details=token_exchange_failed",
		resp.RedirectURL)
}

func Test_authDomain_Callback_Idempotent(t *testing.T) {
	ctx := testutil.MockContext()
	avatar := "https://avatars.example.com/alice-v1"
	authDomain, userRepo := newTestAuthDomain(&testutil.MockGithubEndpoint{
		ExchangeCodeFunc: func(ctx context.Context, code string) (string, error) {
			return "gho_access", nil
		},
		GetUserFunc: func(ctx context.Context, accessToken string) (github.UserInfo, error) {
			return github.UserInfo{ExternalID: "42", Login: "alice", AvatarURL: avatar}, nil
		},
		GetPrimaryEmailFunc: func(ctx context.Context, accessToken string) (string, error) {
			return "alice@example.com", nil
		},
	})

	req := &model.OAuth2CallbackRequest{
		Code: "auth-code", State: "s", SessionState: "s",
	}

	_, err := authDomain.Callback(ctx, req)
	require.NoError(t, err)

	avatar = "https://avatars.example.com/alice-v2"
	_, err = authDomain.Callback(ctx, req)
	require.NoError(t, err)

	count, err := userRepo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	user, err := userRepo.GetByServiceUserIDOrEmail(ctx, "42", "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "https://avatars.example.com/alice-v2", user.ProfilePicture)
}

func Test_authDomain_Status(t *testing.T) {
	ctx := testutil.MockContext()
	authDomain, userRepo := newTestAuthDomain(&testutil.MockGithubEndpoint{})

	user := testutil.SampleUser(nil)
	require.NoError(t, userRepo.Create(ctx, user))

	got, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)

	resp, err := authDomain.Status(xcontext.WithRequestUser(ctx, got), &model.AuthStatusRequest{})
	require.NoError(t, err)
	require.True(t, resp.Authenticated)
	require.Equal(t, "alice", resp.User.Name)

	_, err = authDomain.Status(ctx, &model.AuthStatusRequest{})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Unauthenticated, errx.Code)
}

func Test_authDomain_Logout(t *testing.T) {
	ctx := testutil.MockContext()
	authDomain, userRepo := newTestAuthDomain(&testutil.MockGithubEndpoint{})

	user := testutil.SampleUser(nil)
	require.NoError(t, userRepo.Create(ctx, user))
	require.NoError(t, userRepo.SetRefreshToken(ctx, user.ID, "hashed-token"))

	_, err := authDomain.Logout(
		xcontext.WithRequestUserID(ctx, user.ID), &model.LogoutRequest{})
	require.NoError(t, err)

	got, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, got.RefreshToken.Valid)
}
