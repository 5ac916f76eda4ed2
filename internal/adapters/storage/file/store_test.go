package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvaldes/invctl/internal/domain"
	"github.com/mvaldes/invctl/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, ports.StorageKeyAccessToken, "token-abc"))

	value, err := store.Load(ctx, ports.StorageKeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "token-abc", value)
}

func TestStoreLoadMissingKeyReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	_, err := store.Load(context.Background(), ports.StorageKeyRefreshToken)
	require.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, ports.StorageKeyUserInfo, `{"id":"u1"}`))
	require.NoError(t, store.Delete(ctx, ports.StorageKeyUserInfo))
	require.NoError(t, store.Delete(ctx, ports.StorageKeyUserInfo))

	_, err := store.Load(ctx, ports.StorageKeyUserInfo)
	require.ErrorIs(t, err, domain.ErrCredentialNotFound)
}

func TestStoreWritesPrivateFileMode(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)

	require.NoError(t, store.Store(context.Background(), ports.StorageKeyAccessToken, "token"))

	info, err := os.Stat(filepath.Join(root, ports.StorageKeyAccessToken))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreRejectsTraversalKeys(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	require.Error(t, store.Store(context.Background(), "../escape", "value"))
	_, err := store.Load(context.Background(), "")
	require.Error(t, err)
}
