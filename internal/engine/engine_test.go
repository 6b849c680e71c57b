package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/options"
)

func testConfig(t *testing.T, dir string) *Config {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = dir
	opts.CompactionThreshold = 256
	return &Config{Options: &opts, Logger: zap.NewNop().Sugar()}
}

func TestEngineSetGetRemove(t *testing.T) {
	eng, err := Open(context.Background(), testConfig(t, t.TempDir()))
	require.NoError(t, err)
	defer eng.Close()

	_, found, err := eng.Get("missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, eng.Set("key", "value"))

	value, found, err := eng.Get("key")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "value", value)

	require.NoError(t, eng.Set("key", "value2"))
	value, found, err = eng.Get("key")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "value2", value)

	require.NoError(t, eng.Remove("key"))
	_, found, err = eng.Get("key")
	require.NoError(t, err)
	require.False(t, found)

	err = eng.Remove("key")
	var engineErr *errors.EngineError
	require.ErrorAs(t, err, &engineErr)
	require.Equal(t, errors.ErrorCodeKeyNotFound, engineErr.Code())
}

func TestEnginePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	eng, err := Open(context.Background(), testConfig(t, dir))
	require.NoError(t, err)
	require.NoError(t, eng.Set("a", "1"))
	require.NoError(t, eng.Set("b", "2"))
	require.NoError(t, eng.Remove("a"))
	require.NoError(t, eng.Close())

	reopened, err := Open(context.Background(), testConfig(t, dir))
	require.NoError(t, err)
	defer reopened.Close()

	_, found, err := reopened.Get("a")
	require.NoError(t, err)
	require.False(t, found)

	value, found, err := reopened.Get("b")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2", value)
}

func TestEngineReturnsLatestValueAcrossCompaction(t *testing.T) {
	dir := t.TempDir()
	eng, err := Open(context.Background(), testConfig(t, dir))
	require.NoError(t, err)
	defer eng.Close()

	// Each overwrite of the same key adds its old record's bytes to the
	// stale counter; enough of them crosses the 256-byte test threshold
	// and triggers at least one rotation plus compaction round.
	for i := 0; i < 100; i++ {
		require.NoError(t, eng.Set("hot-key", fmt.Sprintf("value-%03d", i)))
	}

	value, found, err := eng.Get("hot-key")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "value-099", value)
}

func TestEngineCloneSharesStateWithPrivateReaderCache(t *testing.T) {
	eng, err := Open(context.Background(), testConfig(t, t.TempDir()))
	require.NoError(t, err)
	defer eng.Close()

	require.NoError(t, eng.Set("shared", "v1"))

	clone := eng.Clone()
	defer clone.Close()

	value, found, err := clone.Get("shared")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v1", value)

	require.NoError(t, clone.Set("from-clone", "v2"))
	value, found, err = eng.Get("from-clone")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v2", value)
}

func TestEngineConcurrentReadersAndWriter(t *testing.T) {
	eng, err := Open(context.Background(), testConfig(t, t.TempDir()))
	require.NoError(t, err)
	defer eng.Close()

	const n = 50
	for i := 0; i < n; i++ {
		require.NoError(t, eng.Set(fmt.Sprintf("key-%d", i), fmt.Sprintf("value-%d", i)))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clone := eng.Clone()
			defer clone.Close()

			value, found, err := clone.Get(fmt.Sprintf("key-%d", i))
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, fmt.Sprintf("value-%d", i), value)
		}(i)
	}
	wg.Wait()
}

func TestReplayIgnoresNonSegmentFiles(t *testing.T) {
	dir := t.TempDir()
	segDir := filepath.Join(dir, "segments")
	require.NoError(t, os.MkdirAll(segDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(segDir, "engine"), []byte("kvs"), 0o644))

	opts := options.NewDefaultOptions()
	opts.DataDir = dir
	opts.SegmentOptions.Directory = "segments"

	eng, err := Open(context.Background(), &Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	defer eng.Close()

	require.NoError(t, eng.Set("k", "v"))
	value, found, err := eng.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v", value)
}
