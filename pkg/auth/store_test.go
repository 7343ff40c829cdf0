package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "token.json"))

	require.NoError(t, store.Save("refresh-abc.123@"))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "refresh-abc.123@", got)
}

func TestFileStore_DoubleEncodedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileStore(path)

	require.NoError(t, store.Save("abc"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `"{\"refresh_token\": \"abc\"}"`, string(data))
}

func TestFileStore_LoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	err := os.WriteFile(path, []byte(`"{\"refresh_token\":\"legacy-token\"}"`), 0600)
	require.NoError(t, err)

	got, err := NewFileStore(path).Load()

	require.NoError(t, err)
	assert.Equal(t, "legacy-token", got)
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "token.json")

	require.NoError(t, NewFileStore(path).Save("abc"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestFileStore_LoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nonexistent"))

	_, err := store.Load()

	assert.ErrorIs(t, err, ErrNoPersistedToken)
}

func TestFileStore_LoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "not valid json"},
		{name: "single encoded", content: `{"refresh_token": "abc"}`},
		{name: "inner not json", content: `"abc"`},
		{name: "empty token", content: `"{\"refresh_token\": \"\"}"`},
		{name: "empty file", content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "token.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := NewFileStore(path).Load()

			require.Error(t, err)
		})
	}
}

func TestFileStore_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewFileStore(path)
	require.NoError(t, store.Save("abc"))

	require.NoError(t, store.Delete())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Deleting again is not an error
	require.NoError(t, store.Delete())
}

func TestDefaultTokenPath(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		assert.Equal(t, "/custom/config/schwab/token.json", DefaultTokenPath())
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, _ := os.UserHomeDir()
		assert.Equal(t, filepath.Join(home, ".config", "schwab", "token.json"), DefaultTokenPath())
	})
}
