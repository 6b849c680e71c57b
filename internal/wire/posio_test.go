package wire

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionedReaderReadAtSeeksAndSequentialReuse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seg")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	r, err := NewPositionedReader(path)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 5)
	require.NoError(t, r.ReadAt(buf, 6))
	require.Equal(t, "world", string(buf))

	require.NoError(t, r.ReadAt(buf, 0))
	require.Equal(t, "hello", string(buf))
}

func TestNewPositionedReaderFromFileSharesHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seg")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)

	r := NewPositionedReaderFromFile(f)
	defer r.Close()
	require.Same(t, f, r.File())

	buf := make([]byte, 3)
	require.NoError(t, r.ReadAt(buf, 0))
	require.Equal(t, "abc", string(buf))
}
