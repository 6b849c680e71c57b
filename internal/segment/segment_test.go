package segment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameAndPath(t *testing.T) {
	require.Equal(t, "42.log", Name(42))
	require.Equal(t, filepath.Join("/data", "42.log"), Path("/data", 42))
}

func TestListOrdersAscendingAndIgnoresJunk(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"3.log", "1.log", "2.log", "engine", "notanumber.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	gens, err := List(dir)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, gens)
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()

	_, ok, err := Latest(dir)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "5.log"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "9.log"), nil, 0o644))

	gen, ok, err := Latest(dir)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(9), gen)
}
