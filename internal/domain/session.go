package domain

import (
	"strings"
	"time"
)

type RoleName string

const (
	RoleAdmin    RoleName = "ADMIN"
	RoleManager  RoleName = "MANAGER"
	RoleOperator RoleName = "OPERATOR"
)

// UserProfile is the authenticated user as returned by the backend and
// persisted alongside the token pair.
type UserProfile struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email"`
	Role        RoleName `json:"role"`
	Active      bool     `json:"active"`
}

func (u UserProfile) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrSessionInvalid
	}
	if strings.TrimSpace(u.Username) == "" {
		return ErrSessionInvalid
	}
	return nil
}

// TokenPair carries the short-lived access token and the long-lived refresh
// token issued by the login and refresh endpoints.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
	ExpiresAt    int64  `json:"expiresAt,omitempty"`
}

func (t TokenPair) WithCalculatedExpiry(now time.Time) TokenPair {
	if t.ExpiresIn > 0 {
		t.ExpiresAt = now.Add(time.Duration(t.ExpiresIn) * time.Second).Unix()
	}
	return t
}

func (t TokenPair) ExpiringSoon(now time.Time, skew time.Duration) bool {
	if t.ExpiresAt <= 0 {
		return false
	}
	expiresAt := time.Unix(t.ExpiresAt, 0)
	return !expiresAt.After(now.Add(skew))
}

// Session is an immutable snapshot of the authenticated context as observed
// by subscribers. Authenticated requires the access token and the user; the
// refresh token is deliberately not required, since a backend may issue a
// session without one (the first 401 then ends it).
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *UserProfile
	// ExpiresAt is the access token's expiry as a unix timestamp, zero when
	// the backend reported none.
	ExpiresAt int64
	// Generation increases on every session mutation. A refresh outcome
	// carrying a stale generation belongs to a superseded session and is
	// discarded instead of committed.
	Generation uint64
}

func (s Session) Authenticated() bool {
	return s.AccessToken != "" && s.User != nil
}
