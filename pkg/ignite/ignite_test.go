package ignite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignitedb/ignite/pkg/options"
)

func newTestInstance(t *testing.T) *Instance {
	t.Helper()
	inst, err := NewInstance(context.Background(), "ignite-test", options.WithDataDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { inst.Close(context.Background()) })
	return inst
}

func TestInstanceSetGetDelete(t *testing.T) {
	inst := newTestInstance(t)
	ctx := context.Background()

	value, err := inst.Get(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, value)

	require.NoError(t, inst.Set(ctx, "key", []byte("value")))

	value, err = inst.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), value)

	require.NoError(t, inst.Delete(ctx, "key"))

	value, err = inst.Get(ctx, "key")
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestInstanceSetXReportsUnsupported(t *testing.T) {
	inst := newTestInstance(t)
	err := inst.SetX(context.Background(), "key", []byte("value"), 0)
	require.Error(t, err)
}

func TestInstancePersistsAcrossCloseAndReopen(t *testing.T) {
	dir := t.TempDir()

	inst, err := NewInstance(context.Background(), "ignite-test", options.WithDataDir(dir))
	require.NoError(t, err)
	require.NoError(t, inst.Set(context.Background(), "key", []byte("value")))
	require.NoError(t, inst.Close(context.Background()))

	reopened, err := NewInstance(context.Background(), "ignite-test", options.WithDataDir(dir))
	require.NoError(t, err)
	defer reopened.Close(context.Background())

	value, err := reopened.Get(context.Background(), "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), value)
}
