package session

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mvaldes/invctl/internal/domain"
	"github.com/mvaldes/invctl/internal/ports"
)

// State describes where the coordinator currently sits in its lifecycle.
type State string

const (
	StateAuthenticated   State = "authenticated"
	StateRefreshing      State = "refreshing"
	StateUnauthenticated State = "unauthenticated"
)

// Outcome is the explicit result of a renewal: the access token every pending
// caller retries with. Failure is an error, never a zero Outcome.
type Outcome struct {
	AccessToken string
}

// Refresher owns the refresh-access-token operation. Refresh is single
// flight: when several requests fail with 401 at once, the first caller
// performs the renewal and the rest wait for the same Outcome, then all retry
// with the resulting token or all fail together.
type Refresher struct {
	store  *Store
	api    ports.AuthAPI
	nav    ports.Navigator
	notify ports.Notifier
	clock  ports.Clock
	log    zerolog.Logger

	group      singleflight.Group
	refreshing atomic.Bool
}

func NewRefresher(store *Store, api ports.AuthAPI, nav ports.Navigator, notify ports.Notifier, clock ports.Clock, logger zerolog.Logger) *Refresher {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Refresher{
		store:  store,
		api:    api,
		nav:    nav,
		notify: notify,
		clock:  clock,
		log:    logger.With().Str("component", "refresher").Logger(),
	}
}

func (r *Refresher) State() State {
	if r.refreshing.Load() {
		return StateRefreshing
	}
	if r.store.Authenticated() {
		return StateAuthenticated
	}
	return StateUnauthenticated
}

// Refresh renews the access token. On success the credential store holds the
// new tokens and the Outcome carries the access token to retry with; nothing
// is announced to the user. On failure the session is torn down, a single
// session-expired notification is raised and the caller gets
// domain.ErrSessionExpired.
func (r *Refresher) Refresh(ctx context.Context) (Outcome, error) {
	// Detached from the first caller's context so one canceled request does
	// not fail the renewal every other pending request is waiting on.
	result, err, shared := r.group.Do("refresh", func() (any, error) {
		r.refreshing.Store(true)
		defer r.refreshing.Store(false)
		return r.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return Outcome{}, err
	}
	if shared {
		r.log.Debug().Msg("refresh outcome shared with concurrent caller")
	}
	return result.(Outcome), nil
}

func (r *Refresher) refresh(ctx context.Context) (Outcome, error) {
	generation := r.store.Generation()
	refreshToken := r.store.RefreshToken()
	if refreshToken == "" {
		r.log.Warn().Msg("refresh requested without a refresh token")
		r.teardown(ctx, "no refresh token")
		return Outcome{}, domain.ErrSessionExpired
	}

	result, err := r.api.Refresh(ctx, refreshToken)
	if err != nil {
		r.log.Warn().Err(err).Msg("token refresh failed")
		r.teardown(ctx, "refresh rejected")
		return Outcome{}, domain.ErrSessionExpired
	}

	tokens := result.Tokens.WithCalculatedExpiry(r.clock.Now())
	err = r.store.CommitRefreshed(ctx, generation, tokens, result.User)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSessionSuperseded):
		// The session was logged out or replaced while the refresh was in
		// flight. The response belongs to a dead session; drop it without
		// tearing anything down.
		r.log.Debug().Uint64("generation", generation).Msg("discarding stale refresh response")
		return Outcome{}, domain.ErrSessionSuperseded
	default:
		r.log.Error().Err(err).Msg("commit refreshed session")
		r.teardown(ctx, "refresh commit failed")
		return Outcome{}, domain.ErrSessionExpired
	}

	r.log.Debug().Msg("access token renewed")
	return Outcome{AccessToken: r.store.AccessToken()}, nil
}

func (r *Refresher) teardown(ctx context.Context, reason string) {
	if err := r.store.ClearSession(ctx); err != nil {
		r.log.Warn().Err(err).Msg("clear session during teardown")
	}
	r.notify.SessionExpired(reason)
	r.nav.ToSignIn("")
}
