// Command ignite-server runs the ignite key-value store behind a TCP
// listener.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ignitedb/ignite/internal/backend"
	"github.com/ignitedb/ignite/internal/engine"
	"github.com/ignitedb/ignite/internal/server"
	"github.com/ignitedb/ignite/internal/workerpool"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
)

const engineFileName = "engine"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var addr string
	var engineName string
	var dataDir string
	var poolKind string
	var poolSize int

	cmd := &cobra.Command{
		Use:   "ignite-server",
		Short: "Runs the ignite key-value store server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), addr, dataDir, engineName, poolKind, poolSize)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "127.0.0.1:4000", "TCP address to listen on")
	flags.StringVar(&engineName, "engine", "", "storage engine: kvs or bbolt (defaults to whatever this data directory was created with, or kvs)")
	flags.StringVar(&dataDir, "data-dir", options.DefaultDataDir, "directory to store data in")
	flags.StringVar(&poolKind, "pool", string(workerpool.KindShared), "connection worker pool: naive, shared, or external")
	flags.IntVar(&poolSize, "pool-size", 8, "worker count for the shared/external pools")

	return cmd
}

func run(ctx context.Context, addr, dataDir, requestedEngine, poolKind string, poolSize int) error {
	log, err := logger.New("ignite-server")
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	resolvedEngine, err := resolveEngineName(dataDir, requestedEngine)
	if err != nil {
		return err
	}

	pool, err := workerpool.New(workerpool.Kind(poolKind), poolSize, log)
	if err != nil {
		return err
	}
	defer pool.Shutdown()

	newHandlerStore, closeStore, err := openBackend(ctx, dataDir, resolvedEngine, log)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := server.New(server.Config{
		Addr:            addr,
		NewHandlerStore: newHandlerStore,
		Pool:            pool,
		Logger:          log,
	})

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(sigCtx) }()

	select {
	case <-sigCtx.Done():
		srv.Close()
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// openBackend wires up the resolved storage engine and returns the
// per-connection store factory the server needs, along with a func that
// releases whatever the backend opened.
func openBackend(ctx context.Context, dataDir, resolvedEngine string, log *zap.SugaredLogger) (server.NewHandlerStore, func(), error) {
	switch resolvedEngine {
	case "kvs":
		opts := options.NewDefaultOptions()
		opts.DataDir = dataDir

		eng, err := engine.Open(ctx, &engine.Config{Options: &opts, Logger: log})
		if err != nil {
			return nil, nil, err
		}

		newHandlerStore := func() (backend.Store, func()) {
			clone := eng.Clone()
			return clone, func() { clone.Close() }
		}
		return newHandlerStore, func() { eng.Close() }, nil

	case "bbolt":
		store, err := backend.OpenBbolt(filepath.Join(dataDir, "ignite.bbolt"))
		if err != nil {
			return nil, nil, err
		}

		newHandlerStore := func() (backend.Store, func()) { return store, nil }
		return newHandlerStore, func() { store.Close() }, nil

	default:
		return nil, nil, errors.NewEngineNameParseError(fmt.Sprintf("ignite-server: unknown engine %q", resolvedEngine))
	}
}

// resolveEngineName implements the engine-file round-trip contract: the
// engine a data directory was first opened with is persisted to an
// "engine" marker file in that directory; a later run requesting a
// different engine against the same directory is a fatal configuration
// error rather than a silent switch.
func resolveEngineName(dataDir, requested string) (string, error) {
	path := filepath.Join(dataDir, engineFileName)

	persisted := ""
	if b, err := os.ReadFile(path); err == nil {
		persisted = strings.TrimSpace(string(b))
	} else if !os.IsNotExist(err) {
		return "", err
	}

	name := requested
	if name == "" {
		name = persisted
	}
	if name == "" {
		name = options.DefaultEngineName
	}

	if persisted != "" && persisted != name {
		return "", errors.NewEngineNameParseError(fmt.Sprintf(
			"ignite-server: data directory %s was created with engine %q, cannot reopen with %q",
			dataDir, persisted, name,
		))
	}

	if persisted == "" {
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			return "", err
		}
	}

	return name, nil
}
