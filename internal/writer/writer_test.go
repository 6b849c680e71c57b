package writer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ignitedb/ignite/internal/index"
)

func newTestWriter(t *testing.T, threshold uint64) (*Writer, *index.Index, <-chan uint64) {
	t.Helper()

	idx, err := index.New(context.Background(), &index.Config{DataDir: t.TempDir(), Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)

	jobs := make(chan uint64, 16)
	w, err := Open(Config{
		Dir:                 t.TempDir(),
		CurrentGen:          1,
		Index:               idx,
		CompactionThreshold: threshold,
		CompactionCh:        jobs,
		Logger:              zap.NewNop().Sugar(),
	})
	require.NoError(t, err)

	return w, idx, jobs
}

func TestWriterSetUpdatesIndex(t *testing.T) {
	w, idx, _ := newTestWriter(t, 1<<30)
	defer w.Close()

	require.NoError(t, w.Set("key", "value"))

	pos, ok := idx.Get("key")
	require.True(t, ok)
	require.Equal(t, uint64(1), pos.Gen)
}

func TestWriterRemoveRequiresExistingKey(t *testing.T) {
	w, idx, _ := newTestWriter(t, 1<<30)
	defer w.Close()

	err := w.Remove("missing")
	require.Error(t, err)

	require.NoError(t, w.Set("key", "value"))
	require.NoError(t, w.Remove("key"))

	_, ok := idx.Get("key")
	require.False(t, ok)
}

func TestWriterRotatesOnceStaleThresholdCrossed(t *testing.T) {
	w, _, jobs := newTestWriter(t, 10)
	defer w.Close()

	startGen := w.CurrentGen()

	for i := 0; i < 10; i++ {
		require.NoError(t, w.Set("key", "some-reasonably-long-value"))
	}

	require.Greater(t, w.CurrentGen(), startGen)
	require.Equal(t, uint64(0), w.StaleBytes())

	select {
	case gen := <-jobs:
		require.Greater(t, gen, startGen)
	default:
		t.Fatal("expected a compaction job to have been published")
	}
}

func TestWriterRejectsOperationsAfterClose(t *testing.T) {
	w, _, _ := newTestWriter(t, 1<<30)
	require.NoError(t, w.Close())

	require.ErrorIs(t, w.Set("k", "v"), ErrWriterClosed)
	require.ErrorIs(t, w.Close(), ErrWriterClosed)
}
