package client

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type RedirectDecision string

const (
	RedirectAllowed              RedirectDecision = "allowed"
	RedirectCircuitOpen          RedirectDecision = "circuit_open"
	RedirectSamePage             RedirectDecision = "same_page_redirect"
	RedirectMaxExceeded          RedirectDecision = "max_redirects_exceeded"
	RedirectAuthenticatedToLogin RedirectDecision = "authenticated_to_login"
)

const (
	maxRedirectsPerWindow = 3
	redirectWindow        = time.Minute
	circuitCooldown       = 5 * time.Minute
	debounceDelay         = 100 * time.Millisecond
)

type RedirectRecord struct {
	Type string    `json:"type"`
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

type BreakerState struct {
	Records      []RedirectRecord `json:"records"`
	CircuitOpen  bool             `json:"circuit_open"`
	OpenedAt     time.Time        `json:"opened_at"`
	CurrentPath  string           `json:"current_path"`
	LoginPath    string           `json:"login_path"`
	DashboardPath string          `json:"dashboard_path"`
}

type CheckResult struct {
	Allowed       bool
	Reason        RedirectDecision
	SuggestedPath string
}

// RedirectBreaker guards navigation against redirect loops. Every
// redirect is recorded with its type and target, too many identical
// redirects in a short window open the circuit, and an open circuit
// blocks all non-forced redirects until the cooldown passes.
type RedirectBreaker struct {
	storage  Storage
	now      func() time.Time
	navigate func(ctx context.Context, path string) error
	sleep    func(time.Duration)

	mutex sync.Mutex
	state BreakerState
}

type BreakerOption func(*RedirectBreaker)

func WithClock(now func() time.Time) BreakerOption {
	return func(b *RedirectBreaker) { b.now = now }
}

func WithNavigator(navigate func(ctx context.Context, path string) error) BreakerOption {
	return func(b *RedirectBreaker) { b.navigate = navigate }
}

func WithSleeper(sleep func(time.Duration)) BreakerOption {
	return func(b *RedirectBreaker) { b.sleep = sleep }
}

func NewRedirectBreaker(storage Storage, loginPath, dashboardPath string, options ...BreakerOption) *RedirectBreaker {
	b := &RedirectBreaker{
		storage:  storage,
		now:      time.Now,
		navigate: func(ctx context.Context, path string) error { return nil },
		sleep:    time.Sleep,
	}

	for _, option := range options {
		option(b)
	}

	if err := storage.Load(&b.state); err != nil {
		b.state = BreakerState{}
	}

	b.state.LoginPath = loginPath
	b.state.DashboardPath = dashboardPath

	return b
}

func (b *RedirectBreaker) SetCurrentPath(path string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.state.CurrentPath = path
	b.persist()
}

type RedirectOptions struct {
	Force         bool
	RedirectType  string
	Authenticated bool
}

// CanRedirect evaluates a proposed redirect without performing it.
// Checks run in a fixed priority order so callers always see the most
// severe reason first.
func (b *RedirectBreaker) CanRedirect(target string, options RedirectOptions) CheckResult {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.purgeStale()

	if b.state.CircuitOpen && !options.Force {
		return CheckResult{Allowed: false, Reason: RedirectCircuitOpen}
	}

	if target == b.state.CurrentPath && !options.Force {
		return CheckResult{Allowed: false, Reason: RedirectSamePage}
	}

	redirectType := options.RedirectType
	if redirectType == "" {
		redirectType = "navigation"
	}

	identical := 0
	for _, record := range b.state.Records {
		if record.Type == redirectType && record.Path == target {
			identical++
		}
	}

	if identical >= maxRedirectsPerWindow && !options.Force {
		b.state.CircuitOpen = true
		b.state.OpenedAt = b.now()
		b.persist()
		return CheckResult{Allowed: false, Reason: RedirectMaxExceeded}
	}

	if options.Authenticated && target == b.state.LoginPath && !options.Force {
		return CheckResult{
			Allowed:       false,
			Reason:        RedirectAuthenticatedToLogin,
			SuggestedPath: b.state.DashboardPath,
		}
	}

	return CheckResult{Allowed: true, Reason: RedirectAllowed}
}

// BlockedError reports a denied redirect. The suggested path, when
// present, is a hint for the caller, the breaker never navigates on its
// own after a denial.
type BlockedError struct {
	Target        string
	Reason        RedirectDecision
	SuggestedPath string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("redirect to %s blocked: %s", e.Target, e.Reason)
}

// PerformSafeRedirect runs the check, debounces, records the redirect
// and navigates. A forced redirect skips the check entirely but is
// still recorded. A denial returns a BlockedError without navigating.
func (b *RedirectBreaker) PerformSafeRedirect(ctx context.Context, target string, options RedirectOptions) error {
	if !options.Force {
		result := b.CanRedirect(target, options)
		if !result.Allowed {
			return &BlockedError{
				Target:        target,
				Reason:        result.Reason,
				SuggestedPath: result.SuggestedPath,
			}
		}
	}

	b.sleep(debounceDelay)

	b.mutex.Lock()
	redirectType := options.RedirectType
	if redirectType == "" {
		redirectType = "navigation"
	}
	b.state.Records = append(b.state.Records, RedirectRecord{
		Type: redirectType,
		Path: target,
		At:   b.now(),
	})
	b.state.CurrentPath = target
	b.persist()
	b.mutex.Unlock()

	return b.navigate(ctx, target)
}

// ResetCircuit closes the circuit and drops the redirect history. Meant
// for an explicit user action, not for automated recovery.
func (b *RedirectBreaker) ResetCircuit() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.state.CircuitOpen = false
	b.state.OpenedAt = time.Time{}
	b.state.Records = nil
	b.persist()
}

func (b *RedirectBreaker) CircuitOpen() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.purgeStale()
	return b.state.CircuitOpen
}

// purgeStale drops records outside the window and auto-closes the
// circuit after the cooldown. Callers must hold the mutex.
func (b *RedirectBreaker) purgeStale() {
	now := b.now()

	if b.state.CircuitOpen && now.Sub(b.state.OpenedAt) >= circuitCooldown {
		b.state.CircuitOpen = false
		b.state.OpenedAt = time.Time{}
		b.state.Records = nil
		b.persist()
		return
	}

	kept := b.state.Records[:0]
	for _, record := range b.state.Records {
		if now.Sub(record.At) < redirectWindow {
			kept = append(kept, record)
		}
	}

	if len(kept) != len(b.state.Records) {
		b.state.Records = kept
		b.persist()
	}
}

func (b *RedirectBreaker) persist() {
	// Best effort, an unwritable storage must not block navigation.
	_ = b.storage.Save(b.state)
}
