package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestBreaker(clock *fakeClock) (*RedirectBreaker, *[]string) {
	visited := []string{}
	breaker := NewRedirectBreaker(
		NewMemoryStorage(), "/login", "/dashboard",
		WithClock(clock.Now),
		WithNavigator(func(ctx context.Context, path string) error {
			visited = append(visited, path)
			return nil
		}),
		WithSleeper(func(time.Duration) {}),
	)
	return breaker, &visited
}

func Test_RedirectBreaker_OpensAfterRepeatedRedirects(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	breaker, visited := newTestBreaker(clock)

	ctx := context.Background()
	for i := 0; i < maxRedirectsPerWindow; i++ {
		breaker.SetCurrentPath("/somewhere")
		require.NoError(t, breaker.PerformSafeRedirect(ctx, "/login", RedirectOptions{}))
		clock.Advance(time.Second)
	}
	require.Len(t, *visited, 3)

	breaker.SetCurrentPath("/somewhere")
	result := breaker.CanRedirect("/login", RedirectOptions{})
	require.False(t, result.Allowed)
	require.Equal(t, RedirectMaxExceeded, result.Reason)

	// The circuit is now open, every target is blocked.
	result = breaker.CanRedirect("/elsewhere", RedirectOptions{})
	require.False(t, result.Allowed)
	require.Equal(t, RedirectCircuitOpen, result.Reason)
}

func Test_RedirectBreaker_SamePage(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	breaker, _ := newTestBreaker(clock)

	breaker.SetCurrentPath("/dashboard")
	result := breaker.CanRedirect("/dashboard", RedirectOptions{})
	require.False(t, result.Allowed)
	require.Equal(t, RedirectSamePage, result.Reason)

	result = breaker.CanRedirect("/dashboard", RedirectOptions{Force: true})
	require.True(t, result.Allowed)
}

func Test_RedirectBreaker_AuthenticatedToLogin(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	breaker, visited := newTestBreaker(clock)

	breaker.SetCurrentPath("/settings")
	result := breaker.CanRedirect("/login", RedirectOptions{Authenticated: true})
	require.False(t, result.Allowed)
	require.Equal(t, RedirectAuthenticatedToLogin, result.Reason)
	require.Equal(t, "/dashboard", result.SuggestedPath)

	// The denial carries the suggestion but never navigates by itself.
	err := breaker.PerformSafeRedirect(
		context.Background(), "/login", RedirectOptions{Authenticated: true})
	var blocked *BlockedError
	require.ErrorAs(t, err, &blocked)
	require.Equal(t, RedirectAuthenticatedToLogin, blocked.Reason)
	require.Equal(t, "/dashboard", blocked.SuggestedPath)
	require.Empty(t, *visited)
}

// A forced redirect skips every check, even with the window full or the
// circuit open, so logout can never fail closed.
func Test_RedirectBreaker_ForceBypassesChecks(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	breaker, visited := newTestBreaker(clock)

	ctx := context.Background()
	for i := 0; i < maxRedirectsPerWindow+2; i++ {
		breaker.SetCurrentPath("/somewhere")
		require.NoError(t, breaker.PerformSafeRedirect(ctx, "/login", RedirectOptions{Force: true}))
	}
	require.Len(t, *visited, maxRedirectsPerWindow+2)
	require.False(t, breaker.CircuitOpen())

	// The forced attempts were still recorded, a normal redirect now
	// trips the breaker and opens the circuit.
	breaker.SetCurrentPath("/somewhere")
	require.Equal(t, RedirectMaxExceeded, breaker.CanRedirect("/login", RedirectOptions{}).Reason)
	require.True(t, breaker.CircuitOpen())

	// Even the open circuit does not block a forced redirect.
	breaker.SetCurrentPath("/somewhere")
	require.NoError(t, breaker.PerformSafeRedirect(ctx, "/login", RedirectOptions{Force: true}))
}

func Test_RedirectBreaker_CooldownClosesCircuit(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	breaker, _ := newTestBreaker(clock)

	ctx := context.Background()
	for i := 0; i < maxRedirectsPerWindow; i++ {
		breaker.SetCurrentPath("/somewhere")
		require.NoError(t, breaker.PerformSafeRedirect(ctx, "/login", RedirectOptions{}))
	}

	breaker.SetCurrentPath("/somewhere")
	require.Equal(t, RedirectMaxExceeded, breaker.CanRedirect("/login", RedirectOptions{}).Reason)
	require.True(t, breaker.CircuitOpen())

	clock.Advance(circuitCooldown)
	require.False(t, breaker.CircuitOpen())

	result := breaker.CanRedirect("/login", RedirectOptions{})
	require.True(t, result.Allowed)
}

func Test_RedirectBreaker_WindowExpiresRecords(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	breaker, _ := newTestBreaker(clock)

	ctx := context.Background()
	for i := 0; i < maxRedirectsPerWindow-1; i++ {
		breaker.SetCurrentPath("/somewhere")
		require.NoError(t, breaker.PerformSafeRedirect(ctx, "/login", RedirectOptions{}))
	}

	// Old records fall out of the window, the next redirect does not trip.
	clock.Advance(redirectWindow)
	breaker.SetCurrentPath("/somewhere")
	result := breaker.CanRedirect("/login", RedirectOptions{})
	require.True(t, result.Allowed)
}

func Test_RedirectBreaker_ResetCircuit(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	breaker, _ := newTestBreaker(clock)

	ctx := context.Background()
	for i := 0; i < maxRedirectsPerWindow; i++ {
		breaker.SetCurrentPath("/somewhere")
		require.NoError(t, breaker.PerformSafeRedirect(ctx, "/login", RedirectOptions{}))
	}
	breaker.SetCurrentPath("/somewhere")
	require.Equal(t, RedirectMaxExceeded, breaker.CanRedirect("/login", RedirectOptions{}).Reason)

	breaker.ResetCircuit()
	require.False(t, breaker.CircuitOpen())
	require.True(t, breaker.CanRedirect("/login", RedirectOptions{}).Allowed)
}

func Test_RedirectBreaker_PersistsAcrossRestarts(t *testing.T) {
	path := t.TempDir() + "/breaker.json"
	clock := &fakeClock{now: time.Unix(1000, 0)}

	breaker := NewRedirectBreaker(
		NewFileStorage(path), "/login", "/dashboard",
		WithClock(clock.Now),
		WithSleeper(func(time.Duration) {}),
	)

	ctx := context.Background()
	for i := 0; i < maxRedirectsPerWindow; i++ {
		breaker.SetCurrentPath("/somewhere")
		require.NoError(t, breaker.PerformSafeRedirect(ctx, "/login", RedirectOptions{}))
	}
	breaker.SetCurrentPath("/somewhere")
	require.Equal(t, RedirectMaxExceeded, breaker.CanRedirect("/login", RedirectOptions{}).Reason)

	reloaded := NewRedirectBreaker(
		NewFileStorage(path), "/login", "/dashboard",
		WithClock(clock.Now),
		WithSleeper(func(time.Duration) {}),
	)
	require.True(t, reloaded.CircuitOpen())
}
