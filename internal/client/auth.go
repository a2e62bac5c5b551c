package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/readmegen-lab/backend/internal/model"
	"github.com/readmegen-lab/backend/pkg/api"
	"github.com/readmegen-lab/backend/pkg/retry"
)

type ErrorCategory string

const (
	AuthFailure  ErrorCategory = "auth_failure"
	NetworkError ErrorCategory = "network_error"
	ServerError  ErrorCategory = "server_error"
	UnknownError ErrorCategory = "unknown"
)

// AuthState is a snapshot of the store. Consumers receive copies, never
// the live struct.
type AuthState struct {
	IsLoading       bool
	HasCheckedAuth  bool
	IsAuthenticated bool
	User            *model.User
	Error           string
	RetryCount      int
}

// AuthStore keeps the client view of the session. A status check runs
// through a retry policy, but a clean "not authenticated" answer is a
// final result, not a failure.
type AuthStore struct {
	generator api.Generator
	breaker   *RedirectBreaker
	policy    retry.Policy
	sleep     func(time.Duration)

	mutex          sync.Mutex
	checking       bool
	logoutInFlight bool
	state          AuthState
}

func NewAuthStore(backendURL string, breaker *RedirectBreaker) *AuthStore {
	return &AuthStore{
		generator: api.NewGenerator(backendURL),
		breaker:   breaker,
		policy: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			Multiplier:  2,
		},
	}
}

func (s *AuthStore) State() AuthState {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// CheckStatus asks the backend whether the session cookie is valid.
// Network and server errors are retried with exponential backoff, a
// 401 short-circuits the retry loop. Concurrent calls are suppressed.
func (s *AuthStore) CheckStatus(ctx context.Context) AuthState {
	s.mutex.Lock()
	if s.checking {
		state := s.state
		s.mutex.Unlock()
		return state
	}
	s.checking = true
	s.state.IsLoading = true
	s.state.Error = ""
	s.mutex.Unlock()

	var user *model.User
	var attempts int
	err := s.policy.Do(ctx, s.sleep, func(attempt int) error {
		attempts = attempt
		u, err := s.fetchStatus(ctx)
		if err != nil {
			if classifyError(err) == AuthFailure {
				return retry.Stop(err)
			}
			return err
		}

		user = u
		return nil
	})

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.checking = false
	s.state.IsLoading = false
	s.state.HasCheckedAuth = true

	switch {
	case err == nil:
		s.state.IsAuthenticated = user != nil
		s.state.User = user
		s.state.Error = ""
		s.state.RetryCount = 0
	case classifyError(err) == AuthFailure:
		s.state.IsAuthenticated = false
		s.state.User = nil
		s.state.Error = ""
		s.state.RetryCount = 0
	default:
		s.state.IsAuthenticated = false
		s.state.User = nil
		s.state.Error = fmt.Sprintf("Authentication check failed: %s", classifyError(err))
		s.state.RetryCount = attempts + 1
	}

	return s.state
}

// Login starts the OAuth flow. An already-authenticated user is sent to
// the dashboard instead of a second provider round trip.
func (s *AuthStore) Login(ctx context.Context, dashboardPath string) error {
	s.mutex.Lock()
	authenticated := s.state.IsAuthenticated
	s.mutex.Unlock()

	if authenticated {
		return s.breaker.PerformSafeRedirect(ctx, dashboardPath, RedirectOptions{})
	}

	return s.breaker.PerformSafeRedirect(ctx, "/auth/github", RedirectOptions{})
}

// Logout clears the session. The local state is reset and the user is
// redirected to the login page even when the server call fails, a stale
// cookie must never trap the user in a logged-in shell.
func (s *AuthStore) Logout(ctx context.Context, loginPath string) error {
	s.mutex.Lock()
	if s.logoutInFlight {
		s.mutex.Unlock()
		return nil
	}
	s.logoutInFlight = true
	s.mutex.Unlock()

	resp, err := s.generator.New("/auth/logout").POST(ctx)
	if err == nil && resp.Code >= http.StatusInternalServerError {
		err = fmt.Errorf("logout failed with status %d", resp.Code)
	}

	s.mutex.Lock()
	s.logoutInFlight = false
	s.state = AuthState{HasCheckedAuth: true}
	s.mutex.Unlock()

	redirectErr := s.breaker.PerformSafeRedirect(ctx, loginPath, RedirectOptions{Force: true})
	if err != nil {
		return err
	}

	return redirectErr
}

func (s *AuthStore) fetchStatus(ctx context.Context) (*model.User, error) {
	resp, err := s.generator.New("/auth/status").GET(ctx)
	if err != nil {
		return nil, networkError{err}
	}

	switch {
	case resp.Code == http.StatusUnauthorized || resp.Code == http.StatusForbidden:
		return nil, authError{resp.Code}
	case resp.Code >= http.StatusInternalServerError:
		return nil, serverError{resp.Code}
	case resp.Code != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d", resp.Code)
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, fmt.Errorf("unexpected response body (%T)", resp.Body)
	}

	rawUser, err := body.Get("data.user")
	if err != nil {
		return nil, fmt.Errorf("cannot read user of response: %w", err)
	}

	var user model.User
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
		Result:     &user,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(rawUser); err != nil {
		return nil, fmt.Errorf("cannot decode user: %w", err)
	}

	return &user, nil
}

type networkError struct{ err error }

func (e networkError) Error() string { return fmt.Sprintf("network error: %v", e.err) }
func (e networkError) Unwrap() error { return e.err }

type authError struct{ code int }

func (e authError) Error() string { return fmt.Sprintf("authentication rejected with status %d", e.code) }

type serverError struct{ code int }

func (e serverError) Error() string { return fmt.Sprintf("server error with status %d", e.code) }

func classifyError(err error) ErrorCategory {
	switch err.(type) {
	case authError:
		return AuthFailure
	case networkError:
		return NetworkError
	case serverError:
		return ServerError
	}

	if strings.Contains(err.Error(), "network error") {
		return NetworkError
	}

	return UnknownError
}
