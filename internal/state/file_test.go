package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		IsAuthenticated: true,
		UserID:          "user-1",
		Username:        "amina",
		Email:           "amina@example.com",
		EmailVerified:   true,
		AccessToken:     "access-token",
		RefreshToken:    "refresh-token",
		TokenExpiresAt:  time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC),
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path, "")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSnapshot()))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, sampleSnapshot(), loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreMissingFileIsAnonymous(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"), "")

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path, "")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSnapshot()))
	require.NoError(t, store.Clear(ctx))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing twice is not an error.
	require.NoError(t, store.Clear(ctx))
}

func TestFileStoreSealedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	store := NewFileStore(path, "super-secret")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSnapshot()))

	// Tokens must not be readable at rest.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "refresh-token")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), loaded)
}

func TestFileStoreWrongSecretFailsToLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	ctx := context.Background()

	require.NoError(t, NewFileStore(path, "secret-a").Save(ctx, sampleSnapshot()))

	_, err := NewFileStore(path, "secret-b").Load(ctx)
	assert.Error(t, err)
}

func TestFileStoreCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	store := NewFileStore(path, "")

	require.NoError(t, store.Save(context.Background(), sampleSnapshot()))

	_, err := os.Stat(path)
	require.NoError(t, err)
}
