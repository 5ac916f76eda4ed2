package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldes/invctl/internal/domain"
	"github.com/mvaldes/invctl/internal/ports"
)

type fakeAuthAPI struct {
	mu         sync.Mutex
	refreshFn  func(ctx context.Context, refreshToken string) (ports.LoginResult, error)
	refreshGot []string
	calls      atomic.Int64
}

func (f *fakeAuthAPI) Login(context.Context, ports.LoginRequest) (ports.LoginResult, error) {
	return ports.LoginResult{}, nil
}

func (f *fakeAuthAPI) Refresh(ctx context.Context, refreshToken string) (ports.LoginResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.refreshGot = append(f.refreshGot, refreshToken)
	fn := f.refreshFn
	f.mu.Unlock()
	return fn(ctx, refreshToken)
}

func (f *fakeAuthAPI) Logout(context.Context) error { return nil }

type recordingNavigator struct {
	mu       sync.Mutex
	signIns  []string
	safeView []string
}

func (r *recordingNavigator) ToSignIn(returnURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signIns = append(r.signIns, returnURL)
}

func (r *recordingNavigator) ToSafeView(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.safeView = append(r.safeView, reason)
}

type recordingNotifier struct {
	mu      sync.Mutex
	expired []string
}

func (r *recordingNotifier) SessionExpired(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expired = append(r.expired, reason)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.expired)
}

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

var refresherTestNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestRefresher(t *testing.T, api *fakeAuthAPI) (*Refresher, *Store, *recordingNavigator, *recordingNotifier) {
	t.Helper()
	store := NewStore(newMemoryStorage(), zerolog.Nop())
	nav := &recordingNavigator{}
	notify := &recordingNotifier{}
	return NewRefresher(store, api, nav, notify, fixedClock{now: refresherTestNow}, zerolog.Nop()), store, nav, notify
}

func TestRefreshRenewsTokensSilently(t *testing.T) {
	t.Parallel()

	api := &fakeAuthAPI{
		refreshFn: func(_ context.Context, _ string) (ports.LoginResult, error) {
			return ports.LoginResult{Tokens: domain.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2", ExpiresIn: 900}}, nil
		},
	}
	refresher, store, _, notify := newTestRefresher(t, api)
	ctx := context.Background()
	require.NoError(t, store.SetSession(ctx, domain.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}, testUser()))

	outcome, err := refresher.Refresh(ctx)
	require.NoError(t, err)

	assert.Equal(t, "access-2", outcome.AccessToken)
	assert.Equal(t, "access-2", store.AccessToken())
	assert.Equal(t, "refresh-2", store.RefreshToken())
	assert.Equal(t, refresherTestNow.Add(15*time.Minute).Unix(), store.Snapshot().ExpiresAt)
	assert.Equal(t, []string{"refresh-1"}, api.refreshGot)
	assert.Zero(t, notify.count(), "successful refresh must stay invisible to the user")
}

func TestRefreshWithoutRefreshTokenTearsDown(t *testing.T) {
	t.Parallel()

	api := &fakeAuthAPI{
		refreshFn: func(_ context.Context, _ string) (ports.LoginResult, error) {
			t.Fatal("refresh endpoint must not be called without a refresh token")
			return ports.LoginResult{}, nil
		},
	}
	refresher, store, nav, notify := newTestRefresher(t, api)

	_, err := refresher.Refresh(context.Background())
	require.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.False(t, store.Authenticated())
	assert.Equal(t, 1, notify.count())
	assert.Len(t, nav.signIns, 1)
}

func TestRefreshFailureTearsDownOnce(t *testing.T) {
	t.Parallel()

	api := &fakeAuthAPI{
		refreshFn: func(_ context.Context, _ string) (ports.LoginResult, error) {
			return ports.LoginResult{}, domain.ErrUnauthenticated
		},
	}
	refresher, store, nav, notify := newTestRefresher(t, api)
	ctx := context.Background()
	require.NoError(t, store.SetSession(ctx, domain.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}, testUser()))

	_, err := refresher.Refresh(ctx)
	require.ErrorIs(t, err, domain.ErrSessionExpired)

	assert.False(t, store.Authenticated())
	assert.Equal(t, 1, notify.count())
	assert.Len(t, nav.signIns, 1)
	assert.Equal(t, StateUnauthenticated, refresher.State())
}

func TestConcurrentRefreshIsSingleFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	api := &fakeAuthAPI{
		refreshFn: func(_ context.Context, _ string) (ports.LoginResult, error) {
			<-release
			return ports.LoginResult{Tokens: domain.TokenPair{AccessToken: "access-2"}}, nil
		},
	}
	refresher, store, _, _ := newTestRefresher(t, api)
	ctx := context.Background()
	require.NoError(t, store.SetSession(ctx, domain.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}, testUser()))

	const callers = 8
	outcomes := make(chan Outcome, callers)
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := refresher.Refresh(ctx)
			outcomes <- outcome
			errs <- err
		}()
	}

	// Let every caller pile onto the in-flight renewal before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(outcomes)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	for outcome := range outcomes {
		assert.Equal(t, "access-2", outcome.AccessToken)
	}
	assert.Equal(t, int64(1), api.calls.Load(), "one renewal serves every concurrent caller")
}

func TestRefreshSurvivesCallerCancellation(t *testing.T) {
	t.Parallel()

	api := &fakeAuthAPI{
		refreshFn: func(ctx context.Context, _ string) (ports.LoginResult, error) {
			if err := ctx.Err(); err != nil {
				return ports.LoginResult{}, err
			}
			return ports.LoginResult{Tokens: domain.TokenPair{AccessToken: "access-2"}}, nil
		},
	}
	refresher, store, _, _ := newTestRefresher(t, api)
	require.NoError(t, store.SetSession(context.Background(), domain.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}, testUser()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := refresher.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-2", outcome.AccessToken)
}

func TestRefreshDiscardsResponseForSupersededSession(t *testing.T) {
	t.Parallel()

	var store *Store
	api := &fakeAuthAPI{}
	api.refreshFn = func(_ context.Context, _ string) (ports.LoginResult, error) {
		// Logout lands while the refresh response is in flight.
		require.NoError(t, store.ClearSession(context.Background()))
		return ports.LoginResult{Tokens: domain.TokenPair{AccessToken: "late-token"}}, nil
	}

	refresher, s, nav, notify := newTestRefresher(t, api)
	store = s
	ctx := context.Background()
	require.NoError(t, store.SetSession(ctx, domain.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}, testUser()))

	_, err := refresher.Refresh(ctx)
	require.ErrorIs(t, err, domain.ErrSessionSuperseded)

	// The stale response is dropped without a second teardown or notification.
	assert.False(t, store.Authenticated())
	assert.Empty(t, store.AccessToken())
	assert.Zero(t, notify.count())
	assert.Empty(t, nav.signIns)
}

func TestStateReflectsLifecycle(t *testing.T) {
	t.Parallel()

	api := &fakeAuthAPI{
		refreshFn: func(_ context.Context, _ string) (ports.LoginResult, error) {
			return ports.LoginResult{Tokens: domain.TokenPair{AccessToken: "access-2"}}, nil
		},
	}
	refresher, store, _, _ := newTestRefresher(t, api)
	assert.Equal(t, StateUnauthenticated, refresher.State())

	require.NoError(t, store.SetSession(context.Background(), domain.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}, testUser()))
	assert.Equal(t, StateAuthenticated, refresher.State())
}
