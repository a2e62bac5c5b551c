package github

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/readmegen-lab/backend/config"
	"github.com/readmegen-lab/backend/pkg/api"
	"github.com/readmegen-lab/backend/pkg/errorx"
	"github.com/readmegen-lab/backend/pkg/xcontext"
	"golang.org/x/oauth2"
	oauth2github "golang.org/x/oauth2/github"
)

const apiDomain = "https://api.github.com"

type UserInfo struct {
	ExternalID string
	Login      string
	AvatarURL  string
	Email      string
}

type Repository struct {
	Name          string `mapstructure:"name"`
	FullName      string `mapstructure:"full_name"`
	Description   string `mapstructure:"description"`
	Private       bool   `mapstructure:"private"`
	DefaultBranch string `mapstructure:"default_branch"`
	HTMLURL       string `mapstructure:"html_url"`
}

type IEndpoint interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	GetUser(ctx context.Context, accessToken string) (UserInfo, error)
	GetPrimaryEmail(ctx context.Context, accessToken string) (string, error)
	GetRepositories(ctx context.Context, accessToken string) ([]Repository, error)
}

type Endpoint struct {
	oauth2Config oauth2.Config
	apiGenerator api.Generator
}

func New(cfg config.OAuth2Configs) *Endpoint {
	return &Endpoint{
		oauth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       cfg.Scopes,
			Endpoint:     oauth2github.Endpoint,
		},
		apiGenerator: api.NewGenerator(apiDomain),
	}
}

func (e *Endpoint) AuthCodeURL(state string) string {
	return e.oauth2Config.AuthCodeURL(state)
}

// ExchangeCode trades the authorization code for a provider access
// token. No retry, a failed exchange surfaces as an upstream error.
func (e *Endpoint) ExchangeCode(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, xcontext.HTTPClient(ctx))

	token, err := e.oauth2Config.Exchange(ctx, code)
	if err != nil {
		if retrieveErr, ok := err.(*oauth2.RetrieveError); ok {
			return "", errorx.New(errorx.Upstream,
				"Token exchange failed with status %d", retrieveErr.Response.StatusCode)
		}

		return "", errorx.New(errorx.Upstream, "Token exchange failed")
	}

	if token.AccessToken == "" {
		return "", errorx.New(errorx.Upstream, "Provider omitted the access token")
	}

	return token.AccessToken, nil
}

func (e *Endpoint) GetUser(ctx context.Context, accessToken string) (UserInfo, error) {
	resp, err := e.apiGenerator.New("/user").
		Header("Authorization", "Bearer "+accessToken).
		Header("Accept", "application/vnd.github+json").
		GET(ctx)
	if err != nil {
		return UserInfo{}, err
	}

	if resp.Code != 200 {
		return UserInfo{}, errorx.New(errorx.Upstream,
			"Cannot get user profile, got status %d", resp.Code)
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return UserInfo{}, errorx.New(errorx.Upstream, "Got an invalid profile body")
	}

	rawID, err := body.Get("id")
	if err != nil {
		return UserInfo{}, errorx.New(errorx.Upstream, "Profile has no id field")
	}

	var externalID string
	switch id := rawID.(type) {
	case float64:
		externalID = fmt.Sprintf("%.0f", id)
	case string:
		externalID = id
	default:
		return UserInfo{}, errorx.New(errorx.Upstream, "Profile has an invalid id field")
	}

	login, err := body.GetString("login")
	if err != nil || login == "" {
		return UserInfo{}, errorx.New(errorx.Upstream, "Profile has no login field")
	}

	// Avatar and public email are optional.
	avatarURL, _ := body.GetString("avatar_url")
	email, _ := body.GetString("email")

	return UserInfo{
		ExternalID: externalID,
		Login:      login,
		AvatarURL:  avatarURL,
		Email:      email,
	}, nil
}

// GetPrimaryEmail returns the email flagged primary. Guessing a
// fallback is a policy violation, no primary means an upstream error.
func (e *Endpoint) GetPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	resp, err := e.apiGenerator.New("/user/emails").
		Header("Authorization", "Bearer "+accessToken).
		Header("Accept", "application/vnd.github+json").
		GET(ctx)
	if err != nil {
		return "", err
	}

	if resp.Code != 200 {
		return "", errorx.New(errorx.Upstream, "Cannot get user emails, got status %d", resp.Code)
	}

	emails, ok := resp.Body.(api.Array)
	if !ok {
		return "", errorx.New(errorx.Upstream, "Got an invalid emails body")
	}

	for _, record := range emails {
		primary, err := record.GetBool("primary")
		if err != nil || !primary {
			continue
		}

		if verified, err := record.GetBool("verified"); err != nil || !verified {
			continue
		}

		return record.GetString("email")
	}

	return "", errorx.New(errorx.Upstream, "No primary verified email")
}

func (e *Endpoint) GetRepositories(ctx context.Context, accessToken string) ([]Repository, error) {
	resp, err := e.apiGenerator.New("/user/repos").
		Header("Authorization", "Bearer "+accessToken).
		Header("Accept", "application/vnd.github+json").
		Query(api.Parameter{"per_page": "100", "sort": "updated"}).
		GET(ctx)
	if err != nil {
		return nil, err
	}

	if resp.Code != 200 {
		return nil, errorx.New(errorx.Upstream, "Cannot list repositories, got status %d", resp.Code)
	}

	records, ok := resp.Body.(api.Array)
	if !ok {
		return nil, errorx.New(errorx.Upstream, "Got an invalid repositories body")
	}

	repositories := []Repository{}
	for _, record := range records {
		var repository Repository
		if err := mapstructure.Decode(map[string]any(record), &repository); err != nil {
			return nil, errorx.New(errorx.Upstream, "Got an invalid repository record")
		}

		repositories = append(repositories, repository)
	}

	return repositories, nil
}
