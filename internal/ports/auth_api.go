package ports

import (
	"context"

	"github.com/mvaldes/invctl/internal/domain"
)

type LoginRequest struct {
	Username   string
	Password   string
	RememberMe bool
	DeviceInfo string
}

// LoginResult mirrors the login and refresh endpoint response shape. A refresh
// response that omits the refresh token means the previous one stays valid.
type LoginResult struct {
	Tokens      domain.TokenPair
	User        *domain.UserProfile
	Authorities []string
	SessionID   string
}

// AuthAPI is the session boundary of the REST backend.
type AuthAPI interface {
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (LoginResult, error)
	// Logout is best effort: a returned error never blocks local teardown.
	Logout(ctx context.Context) error
}
