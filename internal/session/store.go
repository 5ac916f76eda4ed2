package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mvaldes/invctl/internal/domain"
	"github.com/mvaldes/invctl/internal/ports"
)

// Subscriber receives session snapshots on every mutation. Fan-out is
// synchronous: SetSession and ClearSession return only after every subscriber
// has observed the new state.
type Subscriber func(domain.Session)

// Store owns the current session. It is the single writer of the credential
// fields: login, refresh and logout all mutate state through it, every
// mutation writes through to durable storage before readers can observe it.
type Store struct {
	storage ports.CredentialStorage
	log     zerolog.Logger

	mu          sync.RWMutex
	current     domain.Session
	subscribers map[int]Subscriber
	nextSubID   int

	// pubMu serializes fan-out so no two publishes overlap.
	pubMu sync.Mutex
}

func NewStore(storage ports.CredentialStorage, logger zerolog.Logger) *Store {
	return &Store{
		storage:     storage,
		log:         logger.With().Str("component", "session-store").Logger(),
		subscribers: map[int]Subscriber{},
	}
}

// Restore rehydrates a previously persisted session. Missing credentials are
// not an error: the store simply starts unauthenticated. Malformed or
// incomplete persisted data clears the session and reports
// domain.ErrSessionInvalid so the caller can ask the user to sign in again.
func (s *Store) Restore(ctx context.Context) error {
	accessToken, err := s.storage.Load(ctx, ports.StorageKeyAccessToken)
	if err != nil && !errors.Is(err, domain.ErrCredentialNotFound) {
		return fmt.Errorf("load access token: %w", err)
	}
	refreshToken, err := s.storage.Load(ctx, ports.StorageKeyRefreshToken)
	if err != nil && !errors.Is(err, domain.ErrCredentialNotFound) {
		return fmt.Errorf("load refresh token: %w", err)
	}
	rawUser, err := s.storage.Load(ctx, ports.StorageKeyUserInfo)
	if err != nil && !errors.Is(err, domain.ErrCredentialNotFound) {
		return fmt.Errorf("load user info: %w", err)
	}
	rawExpiry, err := s.storage.Load(ctx, ports.StorageKeyTokenExpiry)
	if err != nil && !errors.Is(err, domain.ErrCredentialNotFound) {
		return fmt.Errorf("load token expiry: %w", err)
	}

	if accessToken == "" && refreshToken == "" && rawUser == "" {
		return nil
	}

	user, parseErr := parseStoredUser(rawUser)
	if parseErr != nil || accessToken == "" {
		s.log.Warn().AnErr("cause", parseErr).Msg("persisted session is unusable, clearing")
		if clearErr := s.ClearSession(ctx); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("clear invalid persisted session")
		}
		return domain.ErrSessionInvalid
	}

	s.mu.Lock()
	s.current = domain.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		ExpiresAt:    parseStoredExpiry(rawExpiry),
		Generation:   s.current.Generation + 1,
	}
	snapshot := s.current
	s.mu.Unlock()

	s.publish(snapshot)
	return nil
}

// parseStoredExpiry tolerates a missing or mangled expiry: the token itself
// is still usable, the first 401 corrects any wrong guess.
func parseStoredExpiry(raw string) int64 {
	if raw == "" {
		return 0
	}
	expiresAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || expiresAt < 0 {
		return 0
	}
	return expiresAt
}

func parseStoredUser(raw string) (*domain.UserProfile, error) {
	if raw == "" {
		return nil, domain.ErrSessionInvalid
	}
	var user domain.UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode stored user info: %w", err)
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.AccessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.RefreshToken
}

func (s *Store) CurrentUser() *domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.User == nil {
		return nil
	}
	user := *s.current.User
	return &user
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Authenticated()
}

func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Generation
}

// SetSession persists the token pair and user profile and publishes the
// authenticated state. Storage is written before the in-memory state so no
// reader observes a token without its matching user.
func (s *Store) SetSession(ctx context.Context, tokens domain.TokenPair, user domain.UserProfile) error {
	if tokens.AccessToken == "" {
		return errors.New("access token is empty")
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validate user profile: %w", err)
	}

	if err := s.persist(ctx, tokens, user); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = domain.Session{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         &user,
		ExpiresAt:    tokens.ExpiresAt,
		Generation:   s.current.Generation + 1,
	}
	snapshot := s.current
	s.mu.Unlock()

	s.publish(snapshot)
	return nil
}

// CommitRefreshed installs the outcome of a token refresh, but only if the
// session generation still matches the one captured before the refresh call
// was issued. A response that arrives after a logout or a newer login is
// discarded with domain.ErrSessionSuperseded.
func (s *Store) CommitRefreshed(ctx context.Context, generation uint64, tokens domain.TokenPair, user *domain.UserProfile) error {
	if tokens.AccessToken == "" {
		return errors.New("refreshed access token is empty")
	}

	s.mu.Lock()
	if s.current.Generation != generation {
		s.mu.Unlock()
		return domain.ErrSessionSuperseded
	}
	merged := s.current
	merged.AccessToken = tokens.AccessToken
	// The old expiry belongs to the replaced token; zero means unknown.
	merged.ExpiresAt = tokens.ExpiresAt
	if tokens.RefreshToken != "" {
		merged.RefreshToken = tokens.RefreshToken
	}
	if user != nil {
		copied := *user
		merged.User = &copied
	}
	if merged.User == nil {
		s.mu.Unlock()
		return domain.ErrSessionInvalid
	}
	mergedTokens := domain.TokenPair{
		AccessToken:  merged.AccessToken,
		RefreshToken: merged.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		ExpiresAt:    tokens.ExpiresAt,
	}
	mergedUser := *merged.User
	s.mu.Unlock()

	if err := s.persist(ctx, mergedTokens, mergedUser); err != nil {
		return err
	}

	s.mu.Lock()
	if s.current.Generation != generation {
		s.mu.Unlock()
		return domain.ErrSessionSuperseded
	}
	merged.Generation = s.current.Generation + 1
	s.current = merged
	snapshot := s.current
	s.mu.Unlock()

	s.publish(snapshot)
	return nil
}

// ClearSession removes the persisted credentials and publishes the
// unauthenticated state. It is idempotent and always clears the in-memory
// session, even when storage deletion fails.
func (s *Store) ClearSession(ctx context.Context) error {
	var deleteErr error
	for _, key := range []string{ports.StorageKeyAccessToken, ports.StorageKeyRefreshToken, ports.StorageKeyUserInfo, ports.StorageKeyTokenExpiry} {
		if err := s.storage.Delete(ctx, key); err != nil {
			deleteErr = errors.Join(deleteErr, fmt.Errorf("delete %s: %w", key, err))
		}
	}

	s.mu.Lock()
	wasAuthenticated := s.current.AccessToken != "" || s.current.RefreshToken != "" || s.current.User != nil
	if wasAuthenticated {
		s.current = domain.Session{Generation: s.current.Generation + 1}
	}
	snapshot := s.current
	s.mu.Unlock()

	if wasAuthenticated {
		s.publish(snapshot)
	}

	return deleteErr
}

// Subscribe registers a subscriber and returns its cancel function. The
// subscriber immediately receives the current snapshot.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	snapshot := s.current
	s.mu.Unlock()

	s.pubMu.Lock()
	fn(snapshot)
	s.pubMu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) persist(ctx context.Context, tokens domain.TokenPair, user domain.UserProfile) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user info: %w", err)
	}

	if err := s.storage.Store(ctx, ports.StorageKeyAccessToken, tokens.AccessToken); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	if err := s.storage.Store(ctx, ports.StorageKeyRefreshToken, tokens.RefreshToken); err != nil {
		return fmt.Errorf("persist refresh token: %w", err)
	}
	if err := s.storage.Store(ctx, ports.StorageKeyUserInfo, string(rawUser)); err != nil {
		return fmt.Errorf("persist user info: %w", err)
	}
	if err := s.storage.Store(ctx, ports.StorageKeyTokenExpiry, strconv.FormatInt(tokens.ExpiresAt, 10)); err != nil {
		return fmt.Errorf("persist token expiry: %w", err)
	}

	return nil
}

func (s *Store) publish(snapshot domain.Session) {
	s.mu.RLock()
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}
