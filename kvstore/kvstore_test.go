package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore()
	require.NoError(t, s.Initialize(ctx))

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
	assert.True(t, s.Ping(ctx))
}

func newFileStore(t *testing.T, path string) *FileStore {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewFileStore(path, logger)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "kv.json")

	s := newFileStore(t, path)
	require.NoError(t, s.Initialize(ctx))

	_, ok, err := s.Get(ctx, "@RocketShoes:cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "@RocketShoes:cart", `[{"id":1}]`))
	require.NoError(t, s.Set(ctx, "other", "x"))
	require.NoError(t, s.Close())

	reopened := newFileStore(t, path)
	v, ok, err := reopened.Get(ctx, "@RocketShoes:cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, v)

	v, _, _ = reopened.Get(ctx, "other")
	assert.Equal(t, "x", v)
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := newFileStore(t, filepath.Join(dir, "kv.json"))
	require.NoError(t, s.Initialize(ctx))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Set(ctx, "k", "v"))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kv.json", entries[0].Name())
}

func TestFileStore_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	err := newFileStore(t, path).Initialize(context.Background())
	assert.Error(t, err)
}

func TestFileStore_FailedWriteKeepsPreviousValue(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := newFileStore(t, filepath.Join(dir, "kv.json"))
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Set(ctx, "k", "old"))

	// Point the store at a directory that no longer exists.
	s.path = filepath.Join(dir, "gone", "kv.json")
	assert.Error(t, s.Set(ctx, "k", "new"))
	assert.False(t, s.Ping(ctx))

	v, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "old", v)
}
