package readerpool

import (
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ignitedb/ignite/internal/index"
	"github.com/ignitedb/ignite/internal/segment"
	"github.com/ignitedb/ignite/internal/wire"
)

func writeSegment(t *testing.T, dir string, gen uint64, cmds ...wire.Command) []index.CmdPos {
	t.Helper()

	f, err := os.Create(segment.Path(dir, gen))
	require.NoError(t, err)
	defer f.Close()

	var positions []index.CmdPos
	var offset int64
	for _, cmd := range cmds {
		b, err := cmd.Encode()
		require.NoError(t, err)
		n, err := f.Write(b)
		require.NoError(t, err)
		positions = append(positions, index.CmdPos{Gen: gen, Offset: offset, Length: int64(n)})
		offset += int64(n)
	}
	return positions
}

func TestPoolReadRoundTripsSetAndRemove(t *testing.T) {
	dir := t.TempDir()
	positions := writeSegment(t, dir, 1, wire.NewSet("k", "v"), wire.NewRemove("k"))

	safePoint := &atomic.Uint64{}
	pool := New(dir, safePoint, zap.NewNop().Sugar())
	defer pool.Close()

	value, err := pool.ReadValue("k", positions[0])
	require.NoError(t, err)
	require.Equal(t, "v", value)

	_, err = pool.ReadValue("k", positions[1])
	require.Error(t, err, "a pointer at a tombstone record is an invariant violation")
}

func TestPoolCachesHandlesAcrossReads(t *testing.T) {
	dir := t.TempDir()
	positions := writeSegment(t, dir, 1, wire.NewSet("a", "1"), wire.NewSet("b", "2"))

	safePoint := &atomic.Uint64{}
	pool := New(dir, safePoint, zap.NewNop().Sugar())
	defer pool.Close()

	_, err := pool.ReadValue("a", positions[0])
	require.NoError(t, err)

	pool.mu.Lock()
	_, cached := pool.handles[1]
	pool.mu.Unlock()
	require.True(t, cached)

	_, err = pool.ReadValue("b", positions[1])
	require.NoError(t, err)
}

func TestPoolEvictsHandlesBelowSafePoint(t *testing.T) {
	dir := t.TempDir()
	pos1 := writeSegment(t, dir, 1, wire.NewSet("a", "1"))
	pos2 := writeSegment(t, dir, 2, wire.NewSet("b", "2"))

	safePoint := &atomic.Uint64{}
	pool := New(dir, safePoint, zap.NewNop().Sugar())
	defer pool.Close()

	_, err := pool.ReadValue("a", pos1[0])
	require.NoError(t, err)
	_, err = pool.ReadValue("b", pos2[0])
	require.NoError(t, err)

	pool.mu.Lock()
	require.Len(t, pool.handles, 2)
	pool.mu.Unlock()

	safePoint.Store(2)

	_, err = pool.ReadValue("b", pos2[0])
	require.NoError(t, err)

	pool.mu.Lock()
	_, stillCached := pool.handles[1]
	_, newCached := pool.handles[2]
	pool.mu.Unlock()
	require.False(t, stillCached, "generation below the safe point must be evicted")
	require.True(t, newCached)
}
