package domain

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/readmegen-lab/backend/internal/common"
	"github.com/readmegen-lab/backend/internal/entity"
	"github.com/readmegen-lab/backend/internal/model"
	"github.com/readmegen-lab/backend/internal/repository"
	"github.com/readmegen-lab/backend/pkg/api/github"
	"github.com/readmegen-lab/backend/pkg/crypto"
	"github.com/readmegen-lab/backend/pkg/errorx"
	"github.com/readmegen-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type AuthDomain interface {
	Login(context.Context, *model.OAuth2LoginRequest) (*model.OAuth2LoginResponse, error)
	Callback(context.Context, *model.OAuth2CallbackRequest) (*model.OAuth2CallbackResponse, error)
	Status(context.Context, *model.AuthStatusRequest) (*model.AuthStatusResponse, error)
	Logout(context.Context, *model.LogoutRequest) (*model.LogoutResponse, error)
}

type authDomain struct {
	userRepo       repository.UserRepository
	githubEndpoint github.IEndpoint
}

func NewAuthDomain(
	userRepo repository.UserRepository,
	githubEndpoint github.IEndpoint,
) AuthDomain {
	return &authDomain{
		userRepo:       userRepo,
		githubEndpoint: githubEndpoint,
	}
}

// Login redirects the browser to the provider consent page. A missing
// client configuration fails here with a server error, before any
// redirect is sent.
func (d *authDomain) Login(
	ctx context.Context, req *model.OAuth2LoginRequest,
) (*model.OAuth2LoginResponse, error) {
	githubCfg := xcontext.Configs(ctx).Auth.GitHub
	if githubCfg.ClientID == "" || githubCfg.CallbackURL == "" {
		return nil, errorx.New(errorx.Config, "OAuth client is not configured")
	}

	state, err := crypto.GenerateRandomString()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate oauth state: %v", err)
		return nil, errorx.Unknown
	}

	return &model.OAuth2LoginResponse{
		RedirectURL: d.githubEndpoint.AuthCodeURL(state),
		State:       state,
	}, nil
}

// Callback finishes the oauth flow. The browser is mid-navigation here,
// so upstream and storage failures redirect back to the frontend login
// page with an error code instead of rendering a json error.
func (d *authDomain) Callback(
	ctx context.Context, req *model.OAuth2CallbackRequest,
) (*model.OAuth2CallbackResponse, error) {
	if req.Error != "" {
		return d.redirectWithError(ctx, req.Error), nil
	}

	if req.Code == "" {
		return nil, errorx.New(errorx.BadRequest, "Not found authorization code")
	}

	if err := common.ValidateEnvironment(xcontext.Configs(ctx)); err != nil {
		return nil, err
	}

	if req.State == "" || req.State != req.SessionState {
		xcontext.Logger(ctx).Warnf("Mismatched oauth state")
		return d.redirectWithError(ctx, "invalid_state"), nil
	}

	serviceToken, err := d.githubEndpoint.ExchangeCode(ctx, req.Code)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot exchange authorization code: %v", err)
		return d.redirectWithError(ctx, "token_exchange_failed"), nil
	}

	serviceUser, err := d.githubEndpoint.GetUser(ctx, serviceToken)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get provider user: %v", err)
		return d.redirectWithError(ctx, "profile_fetch_failed"), nil
	}

	email, err := d.githubEndpoint.GetPrimaryEmail(ctx, serviceToken)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get primary email: %v", err)
		return d.redirectWithError(ctx, "email_fetch_failed"), nil
	}

	user, err := d.findOrCreateUser(ctx, serviceUser, email, serviceToken)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot find or create user: %v", err)
		return d.redirectWithError(ctx, "login_failed"), nil
	}

	accessToken, refreshToken, err := d.issueSession(ctx, user.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot issue session: %v", err)
		return d.redirectWithError(ctx, "login_failed"), nil
	}

	return &model.OAuth2CallbackResponse{
		RedirectURL:  xcontext.Configs(ctx).Frontend.DashboardURL(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Status reports the session attached by the auth middleware. The
// negative case never reaches this handler.
func (d *authDomain) Status(
	ctx context.Context, req *model.AuthStatusRequest,
) (*model.AuthStatusResponse, error) {
	user := xcontext.RequestUser(ctx)
	if user == nil {
		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}

	return &model.AuthStatusResponse{
		Authenticated: true,
		User:          model.ConvertUser(user),
	}, nil
}

// Logout invalidates the stored refresh token and clears both cookies
// with the exact options used to set them.
func (d *authDomain) Logout(
	ctx context.Context, req *model.LogoutRequest,
) (*model.LogoutResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if err := d.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot clear refresh token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.LogoutResponse{}, nil
}

func (d *authDomain) redirectWithError(ctx context.Context, details string) *model.OAuth2CallbackResponse {
	return &model.OAuth2CallbackResponse{
		RedirectURL: xcontext.Configs(ctx).Frontend.LoginURL() + "?error=oauth_failed&details=" + details,
	}
}

// findOrCreateUser looks up the account by provider id or email. An
// existing account gets its provider id, avatar and provider token
// refreshed in place, so repeated logins stay idempotent.
func (d *authDomain) findOrCreateUser(
	ctx context.Context, serviceUser github.UserInfo, email, serviceToken string,
) (*entity.User, error) {
	user, err := d.userRepo.GetByServiceUserIDOrEmail(ctx, serviceUser.ExternalID, email)
	if err == nil {
		update := &entity.User{
			ServiceUserID:  sql.NullString{Valid: true, String: serviceUser.ExternalID},
			ProfilePicture: serviceUser.AvatarURL,
			ServiceToken:   serviceToken,
		}
		if err := d.userRepo.UpdateByID(ctx, user.ID, update); err != nil {
			return nil, err
		}

		return d.userRepo.GetByID(ctx, user.ID)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &entity.User{
		Base:           entity.Base{ID: uuid.NewString()},
		ServiceUserID:  sql.NullString{Valid: true, String: serviceUser.ExternalID},
		Name:           strings.ToLower(serviceUser.Login),
		Email:          email,
		ProfilePicture: serviceUser.AvatarURL,
		ServiceToken:   serviceToken,
	}

	if err := d.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// issueSession mints the access/refresh pair and pins the refresh token
// hash on the user record. The user disappearing mid-flight is fatal
// for the callback, not retryable.
func (d *authDomain) issueSession(ctx context.Context, userID string) (string, string, error) {
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", "", errorx.New(errorx.Internal, "Cannot load user for session")
	}

	cfg := xcontext.Configs(ctx)
	accessToken, err := xcontext.AccessTokenEngine(ctx).Generate(
		cfg.Auth.AccessToken.Expiration,
		model.AccessToken{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		})
	if err != nil {
		return "", "", err
	}

	refreshToken, err := xcontext.RefreshTokenEngine(ctx).Generate(
		cfg.Auth.RefreshToken.Expiration,
		model.RefreshToken{ID: user.ID})
	if err != nil {
		return "", "", err
	}

	err = d.userRepo.SetRefreshToken(ctx, user.ID, crypto.SHA256([]byte(refreshToken)))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}
