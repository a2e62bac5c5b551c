package testutil

import (
	"context"

	"github.com/readmegen-lab/backend/pkg/api/github"
)

// MockGithubEndpoint overrides individual calls per test. A call with
// no override returns the zero value.
type MockGithubEndpoint struct {
	AuthCodeURLFunc     func(state string) string
	ExchangeCodeFunc    func(ctx context.Context, code string) (string, error)
	GetUserFunc         func(ctx context.Context, accessToken string) (github.UserInfo, error)
	GetPrimaryEmailFunc func(ctx context.Context, accessToken string) (string, error)
	GetRepositoriesFunc func(ctx context.Context, accessToken string) ([]github.Repository, error)
}

func (e *MockGithubEndpoint) AuthCodeURL(state string) string {
	if e.AuthCodeURLFunc != nil {
		return e.AuthCodeURLFunc(state)
	}
	return ""
}

func (e *MockGithubEndpoint) ExchangeCode(ctx context.Context, code string) (string, error) {
	if e.ExchangeCodeFunc != nil {
		return e.ExchangeCodeFunc(ctx, code)
	}
	return "", nil
}

func (e *MockGithubEndpoint) GetUser(ctx context.Context, accessToken string) (github.UserInfo, error) {
	if e.GetUserFunc != nil {
		return e.GetUserFunc(ctx, accessToken)
	}
	return github.UserInfo{}, nil
}

func (e *MockGithubEndpoint) GetPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	if e.GetPrimaryEmailFunc != nil {
		return e.GetPrimaryEmailFunc(ctx, accessToken)
	}
	return "", nil
}

func (e *MockGithubEndpoint) GetRepositories(ctx context.Context, accessToken string) ([]github.Repository, error) {
	if e.GetRepositoriesFunc != nil {
		return e.GetRepositoriesFunc(ctx, accessToken)
	}
	return nil, nil
}
