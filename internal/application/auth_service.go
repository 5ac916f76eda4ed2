package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mvaldes/invctl/internal/domain"
	"github.com/mvaldes/invctl/internal/ports"
	"github.com/mvaldes/invctl/internal/session"
)

// expirySkew is how close to its expiry an access token is considered
// already stale.
const expirySkew = time.Minute

// AuthService orchestrates the explicit session transitions: login, logout
// and the startup restore. Mid-request refreshes belong to the Refresher.
type AuthService struct {
	store *session.Store
	api   ports.AuthAPI
	clock ports.Clock
	log   zerolog.Logger
}

func NewAuthService(store *session.Store, api ports.AuthAPI, clock ports.Clock, logger zerolog.Logger) *AuthService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &AuthService{
		store: store,
		api:   api,
		clock: clock,
		log:   logger.With().Str("component", "auth").Logger(),
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string, rememberMe bool) (*domain.UserProfile, error) {
	result, err := s.api.Login(ctx, ports.LoginRequest{
		Username:   username,
		Password:   password,
		RememberMe: rememberMe,
		DeviceInfo: deviceInfo(),
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if result.User == nil {
		return nil, errors.New("login result carries no user")
	}

	tokens := result.Tokens.WithCalculatedExpiry(s.clock.Now())
	if err := s.store.SetSession(ctx, tokens, *result.User); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.log.Info().Str("username", result.User.Username).Str("session_id", result.SessionID).Msg("signed in")
	return result.User, nil
}

// Logout tears the local session down no matter what the server says. The
// server-side call is best effort: a network failure must never leave the
// user locally signed in.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("server-side logout failed, clearing local session anyway")
	}

	if err := s.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	s.log.Info().Msg("signed out")
	return nil
}

// Restore rehydrates the persisted session on startup. A corrupt persisted
// session comes back as domain.ErrSessionInvalid with the store cleared.
func (s *AuthService) Restore(ctx context.Context) error {
	if err := s.store.Restore(ctx); err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			return err
		}
		return fmt.Errorf("restore session: %w", err)
	}

	snapshot := s.store.Snapshot()
	if snapshot.Authenticated() {
		pair := domain.TokenPair{AccessToken: snapshot.AccessToken, ExpiresAt: snapshot.ExpiresAt}
		if pair.ExpiringSoon(s.clock.Now(), expirySkew) {
			s.log.Debug().Int64("expires_at", snapshot.ExpiresAt).Msg("restored access token expired or expiring, first call will refresh")
		}
	}

	return nil
}

func deviceInfo() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}
	return fmt.Sprintf("invctl/%s/%s", hostname, uuid.NewString())
}
