package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1")) // NORMAL
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(ctx, path)
	require.NoError(t, err)
	storeTag(t, s1, "horror")
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, path)
	require.NoError(t, err)
	defer s2.Close()

	tags, err := s2.Find(ctx, "tag", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"horror"}, titles(tags))
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	storeMovie(t, s, "Alien")
	movies, err := s.Find(context.Background(), "movie", nil)
	require.NoError(t, err)
	assert.Len(t, movies, 1)
}

func TestOpen_ModerncDriver(t *testing.T) {
	s := createTestStore(t, WithDriver(DriverModernc))
	assert.Equal(t, DriverModernc, s.Driver())

	movie := storeMovie(t, s, "Alien")
	horror := storeTag(t, s, "horror")
	ctx := context.Background()
	require.NoError(t, s.Associate(ctx, movie, horror))

	rows, err := s.QueryTagged(ctx, "movie", []string{"horror"}, true, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alien", rows[0]["title"].Any())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), ":memory:", WithDriver("postgres"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported driver "postgres"`)
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.DB().Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestOpen_UniqueTagTitlesOptional(t *testing.T) {
	s := createTestStore(t, WithUniqueTagTitles(false))

	storeTag(t, s, "horror")
	storeTag(t, s, "horror")

	tags, err := s.Find(context.Background(), "tag", nil)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestClose_Idempotent(t *testing.T) {
	var s Store
	assert.NoError(t, s.Close())
}
