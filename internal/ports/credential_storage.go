package ports

import "context"

// Durable storage keys for the persisted session. The user profile is stored
// JSON-serialized; the tokens are stored as opaque strings.
const (
	StorageKeyAccessToken  = "accessToken"
	StorageKeyRefreshToken = "refreshToken"
	StorageKeyUserInfo     = "userInfo"
	// StorageKeyTokenExpiry holds the access token's expiry as a unix
	// timestamp, or "0" when the backend reported none.
	StorageKeyTokenExpiry = "tokenExpiry"
)

// CredentialStorage is the durable backing of the in-memory credential store.
// Implementations report missing keys on Load with domain.ErrCredentialNotFound.
type CredentialStorage interface {
	Load(ctx context.Context, key string) (string, error)
	Store(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
