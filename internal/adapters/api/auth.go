package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mvaldes/invctl/internal/domain"
	"github.com/mvaldes/invctl/internal/ports"
)

const (
	loginPath   = "/api/auth/login"
	refreshPath = "/api/auth/refresh"
	logoutPath  = "/api/auth/logout"
)

// AuthClient talks to the session endpoints.
type AuthClient struct {
	*Client
}

var _ ports.AuthAPI = (*AuthClient)(nil)

func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{Client: client}
}

type loginPayload struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe,omitempty"`
	DeviceInfo string `json:"deviceInfo,omitempty"`
}

type refreshPayload struct {
	RefreshToken string `json:"refreshToken"`
}

type sessionResponse struct {
	Success      bool                `json:"success"`
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken,omitempty"`
	User         *domain.UserProfile `json:"user,omitempty"`
	ExpiresIn    int64               `json:"expiresIn,omitempty"`
	Authorities  []string            `json:"authorities,omitempty"`
	SessionID    string              `json:"sessionId,omitempty"`
}

func (a *AuthClient) Login(ctx context.Context, req ports.LoginRequest) (ports.LoginResult, error) {
	var resp sessionResponse
	err := a.do(ctx, http.MethodPost, loginPath, loginPayload{
		Username:   req.Username,
		Password:   req.Password,
		RememberMe: req.RememberMe,
		DeviceInfo: req.DeviceInfo,
	}, &resp)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("login: %w", err)
	}
	if !resp.Success || resp.AccessToken == "" || resp.User == nil {
		return ports.LoginResult{}, errors.New("login response missing required fields")
	}

	return toLoginResult(resp), nil
}

// Refresh exchanges the refresh token for a new access token. The response
// may omit the refresh token, meaning the current one stays valid, and may
// omit the user, meaning the stored profile is kept.
func (a *AuthClient) Refresh(ctx context.Context, refreshToken string) (ports.LoginResult, error) {
	if refreshToken == "" {
		return ports.LoginResult{}, domain.ErrNoRefreshToken
	}

	var resp sessionResponse
	err := a.do(ctx, http.MethodPost, refreshPath, refreshPayload{RefreshToken: refreshToken}, &resp)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("refresh token: %w", err)
	}
	if !resp.Success || resp.AccessToken == "" {
		return ports.LoginResult{}, errors.New("refresh response missing access token")
	}

	return toLoginResult(resp), nil
}

func (a *AuthClient) Logout(ctx context.Context) error {
	if err := a.do(ctx, http.MethodPost, logoutPath, nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func toLoginResult(resp sessionResponse) ports.LoginResult {
	return ports.LoginResult{
		Tokens: domain.TokenPair{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			ExpiresIn:    resp.ExpiresIn,
		},
		User:        resp.User,
		Authorities: resp.Authorities,
		SessionID:   resp.SessionID,
	}
}
