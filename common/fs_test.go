package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupDataDir(t *testing.T) {
	t.Parallel()

	dataDir := filepath.Join(t.TempDir(), "icon-data")

	require.NoError(t, SetupDataDir(dataDir, []string{"wallets", "other"}, 0750))
	require.True(t, DirectoryExists(filepath.Join(dataDir, "wallets")))
	require.True(t, DirectoryExists(filepath.Join(dataDir, "other")))

	// existing directories owned by the current user are accepted
	require.NoError(t, SetupDataDir(dataDir, []string{"wallets"}, 0750))

	file := filepath.Join(dataDir, "journal.db")
	require.NoError(t, os.WriteFile(file, nil, 0600))
	require.Error(t, CreateDirSafe(file, 0750))
	require.Error(t, CreateDirSafe("", 0750))
}

func TestSaveFileSafe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "wallet_alice.json")

	require.False(t, FileExists(path))
	require.NoError(t, SaveFileSafe(path, []byte(`{"address":"hx01"}`), 0440))
	require.True(t, FileExists(path))
	require.False(t, DirectoryExists(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0440), info.Mode().Perm())

	require.NoError(t, SaveFileSafe(path, []byte(`{"address":"hx02"}`), 0440))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"address":"hx02"}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.Error(t, SaveFileSafe(dir, []byte("x"), 0440))
	require.False(t, FileExists(""))
}
