package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewBuildsEachKind(t *testing.T) {
	log := zap.NewNop().Sugar()

	naive, err := New(KindNaive, 0, log)
	require.NoError(t, err)
	require.IsType(t, &NaivePool{}, naive)

	shared, err := New(KindShared, 4, log)
	require.NoError(t, err)
	require.IsType(t, &SharedPool{}, shared)
	shared.Shutdown()

	external, err := New(KindExternal, 4, log)
	require.NoError(t, err)
	require.IsType(t, &ExternalPool{}, external)

	_, err = New(Kind("bogus"), 1, log)
	require.Error(t, err)
}

func TestNaivePoolRunsEveryJob(t *testing.T) {
	pool := NewNaivePool()

	var n int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt32(&n, 1)
		})
	}
	wg.Wait()
	require.EqualValues(t, 20, n)
	pool.Shutdown()
}

func TestSharedPoolRunsEveryJob(t *testing.T) {
	pool, err := NewSharedPool(4, zap.NewNop().Sugar())
	require.NoError(t, err)

	var n int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt32(&n, 1)
		})
	}
	wg.Wait()
	require.EqualValues(t, 50, n)
	pool.Shutdown()
}

func TestSharedPoolSurvivesPanickingJob(t *testing.T) {
	pool, err := NewSharedPool(2, zap.NewNop().Sugar())
	require.NoError(t, err)
	defer pool.Shutdown()

	var panicked sync.WaitGroup
	panicked.Add(1)
	pool.Submit(func() {
		defer panicked.Done()
		panic("boom")
	})
	panicked.Wait()

	// Give the supervisor's deferred handler a moment to respawn the
	// worker before checking the pool is still at full capacity.
	time.Sleep(50 * time.Millisecond)

	var n int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt32(&n, 1)
		})
	}
	wg.Wait()
	require.EqualValues(t, 10, n, "pool must keep accepting and completing work after a job panics")
}

func TestNewSharedPoolRejectsNonPositiveSize(t *testing.T) {
	_, err := NewSharedPool(0, zap.NewNop().Sugar())
	require.Error(t, err)
}

func TestExternalPoolRunsEveryJob(t *testing.T) {
	pool := NewExternalPool(4)

	var n int32
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			atomic.AddInt32(&n, 1)
		})
	}
	pool.Shutdown()
	require.EqualValues(t, 20, n)
}
