package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(context.Background(), &Config{DataDir: t.TempDir(), Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	return idx
}

func TestIndexPutGetDelete(t *testing.T) {
	idx := newTestIndex(t)

	_, ok := idx.Get("missing")
	require.False(t, ok)

	pos := CmdPos{Gen: 1, Offset: 0, Length: 10}
	old, existed := idx.Put("key", pos)
	require.False(t, existed)
	require.Zero(t, old)

	got, ok := idx.Get("key")
	require.True(t, ok)
	require.Equal(t, pos, got)

	newPos := CmdPos{Gen: 2, Offset: 5, Length: 20}
	old, existed = idx.Put("key", newPos)
	require.True(t, existed)
	require.Equal(t, pos, old)

	require.Equal(t, 1, idx.Len())

	old, existed = idx.Delete("key")
	require.True(t, existed)
	require.Equal(t, newPos, old)
	require.Equal(t, 0, idx.Len())
}

func TestIndexCompareAndPutRejectsStaleGeneration(t *testing.T) {
	idx := newTestIndex(t)

	idx.Put("key", CmdPos{Gen: 5, Offset: 0, Length: 1})

	ok := idx.CompareAndPut("key", CmdPos{Gen: 2, Offset: 0, Length: 1})
	require.False(t, ok, "a lower generation must never overwrite a newer one")

	got, _ := idx.Get("key")
	require.Equal(t, uint64(5), got.Gen)

	ok = idx.CompareAndPut("key", CmdPos{Gen: 7, Offset: 0, Length: 1})
	require.True(t, ok)

	got, _ = idx.Get("key")
	require.Equal(t, uint64(7), got.Gen)
}

func TestIndexRangeIsSortedAndStopsEarly(t *testing.T) {
	idx := newTestIndex(t)
	idx.Put("c", CmdPos{Gen: 1})
	idx.Put("a", CmdPos{Gen: 1})
	idx.Put("b", CmdPos{Gen: 1})

	var seen []string
	idx.Range(func(key string, pos CmdPos) bool {
		seen = append(seen, key)
		return key != "b"
	})
	require.Equal(t, []string{"a", "b"}, seen)
}

func TestIndexCloseRejectsDoubleClose(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.Close())
	require.ErrorIs(t, idx.Close(), ErrIndexClosed)
}
