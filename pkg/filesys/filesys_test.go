package filesys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateDirForceVsNonForce(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "segments")

	require.NoError(t, CreateDir(dir, 0o755, true))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	require.NoError(t, CreateDir(dir, 0o755, true))

	err = CreateDir(dir, 0o755, false)
	require.Error(t, err)
}

func TestCreateDirRejectsExistingFile(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "not-a-dir")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	err := CreateDir(path, 0o755, true)
	require.ErrorIs(t, err, ErrIsNotDir)
}

func TestReadDirMatchesGlobPattern(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1.log", "2.log", "engine"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	files, err := ReadDir(filepath.Join(dir, "*.log"))
	require.NoError(t, err)
	require.Len(t, files, 2)
}
