package domain

import "errors"

var (
	// ErrUnauthenticated marks a request that was refused locally because no
	// access token was available. No network call is made.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrSessionExpired marks a session torn down after a failed refresh.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionInvalid marks persisted session data that could not be
	// restored (corrupt or incomplete); the user has to sign in again.
	ErrSessionInvalid = errors.New("stored session is invalid, sign in again")

	// ErrSessionSuperseded marks a refresh that completed after the session
	// it belonged to was replaced or cleared.
	ErrSessionSuperseded = errors.New("session superseded during refresh")

	ErrNoRefreshToken     = errors.New("no refresh token available")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrProfileExists      = errors.New("profile already exists")
	ErrProfileMissing     = errors.New("profile not found")
)
