package session_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/quill/internal/adapters/session"
	"go.trai.ch/quill/internal/core/domain"
)

func TestStore_SaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".quill", "session.json")
	store := session.NewStore(path)

	sess := &domain.Session{
		BaseURL: "http://localhost:3000/api",
		Cookies: []domain.SessionCookie{{Name: "sid", Value: "abc", Path: "/", HTTPOnly: true}},
		SavedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(sess))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.PrivateFilePerm), info.Mode().Perm())
}

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()

	store := session.NewStore(filepath.Join(t.TempDir(), "missing.json"))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_LoadCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), domain.PrivateFilePerm))

	_, err := session.NewStore(path).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionReadFailed)
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	store := session.NewStore(path)
	require.NoError(t, store.Save(&domain.Session{BaseURL: "http://x"}))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice is not an error")

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
