package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mvaldes/invctl/internal/domain"
)

const (
	usersPath = "/api/users"
	rolesPath = "/api/roles"
)

type UsersClient struct {
	*Client
}

func NewUsersClient(client *Client) *UsersClient {
	return &UsersClient{Client: client}
}

func (u *UsersClient) List(ctx context.Context) ([]domain.UserProfile, error) {
	var users []domain.UserProfile
	if err := u.do(ctx, http.MethodGet, usersPath, nil, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (u *UsersClient) Get(ctx context.Context, id string) (domain.UserProfile, error) {
	var user domain.UserProfile
	if err := u.do(ctx, http.MethodGet, usersPath+"/"+url.PathEscape(id), nil, &user); err != nil {
		return domain.UserProfile{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return user, nil
}

type RolesClient struct {
	*Client
}

func NewRolesClient(client *Client) *RolesClient {
	return &RolesClient{Client: client}
}

type roleSchema struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Authorities []string `json:"authorities,omitempty"`
}

func (r *RolesClient) List(ctx context.Context) ([]domain.Role, error) {
	var entries []roleSchema
	if err := r.do(ctx, http.MethodGet, rolesPath, nil, &entries); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	roles := make([]domain.Role, 0, len(entries))
	for _, entry := range entries {
		roles = append(roles, domain.Role{
			Name:        domain.RoleName(entry.Name),
			Description: entry.Description,
			Authorities: entry.Authorities,
		})
	}

	return roles, nil
}
