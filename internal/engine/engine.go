// Package engine provides the core database engine implementation for the
// Ignite storage system.
//
// The engine is the central coordinator for all database operations. It
// orchestrates the interaction between four subsystems:
//   - index: the in-memory map from key to on-disk location
//   - writer: the single serialized append path, including rotation
//   - readerpool: per-owner cached handles for resolving a CmdPos to a value
//   - compaction: the background goroutine that reclaims stale bytes
//
// On Open, the engine replays every existing segment in generation order to
// rebuild the index and the writer's stale-byte count, then begins
// appending to a fresh generation and launches the compactor.
package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ignitedb/ignite/internal/compaction"
	"github.com/ignitedb/ignite/internal/index"
	"github.com/ignitedb/ignite/internal/readerpool"
	"github.com/ignitedb/ignite/internal/segment"
	"github.com/ignitedb/ignite/internal/wire"
	"github.com/ignitedb/ignite/internal/writer"
	"github.com/ignitedb/ignite/pkg/filesys"
	"github.com/ignitedb/ignite/pkg/options"
)

var (
	// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
	ErrEngineClosed = errors.New("operation failed: cannot access closed engine")
)

// Engine is the main database engine that coordinates all subsystems. A
// root Engine (returned by Open) owns the writer, the index, and the
// compactor's lifecycle; a cloned Engine (returned by Clone) shares all of
// those but carries its own reader-pool cache, the way a new connection
// handler gets its own warm set of segment handles without duplicating the
// write path.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger
	closed  atomic.Bool

	dir       string
	idx       *index.Index
	wr        *writer.Writer
	readers   *readerpool.Pool
	safePoint *atomic.Uint64

	// owner is non-nil only on the root Engine; it is the side that owns
	// the writer, index and compactor and is responsible for shutting
	// them down. Clones leave this nil.
	owner *ownedState
}

type ownedState struct {
	compactor *compaction.Compactor
	jobs      chan uint64
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// Open creates (if necessary) the configured data directory, replays any
// existing segments to rebuild the index, and returns an Engine ready to
// serve Set/Get/Remove and with its compactor already running.
func Open(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.New("engine: configuration is required")
	}

	opts := config.Options
	log := config.Logger

	segDir := filepath.Join(opts.DataDir, opts.SegmentOptions.Directory)
	if err := filesys.CreateDir(segDir, 0o755, true); err != nil {
		return nil, err
	}

	idx, err := index.New(ctx, &index.Config{DataDir: segDir, Logger: log})
	if err != nil {
		return nil, err
	}

	log.Infow("Replaying segments", "dir", segDir)
	staleBytes, err := replay(segDir, idx)
	if err != nil {
		return nil, err
	}

	gens, err := segment.List(segDir)
	if err != nil {
		return nil, err
	}
	var nextGen uint64 = 1
	if len(gens) > 0 {
		nextGen = gens[len(gens)-1] + 1
	}

	safePoint := &atomic.Uint64{}

	jobs := make(chan uint64, 16)
	wr, err := writer.Open(writer.Config{
		Dir:                 segDir,
		CurrentGen:          nextGen,
		Index:               idx,
		CompactionThreshold: opts.CompactionThreshold,
		CompactionCh:        jobs,
		Sync:                opts.Sync,
		Logger:              log,
		StaleBytes:          staleBytes,
	})
	if err != nil {
		return nil, err
	}

	readers := readerpool.New(segDir, safePoint, log)
	compactor := compaction.New(segDir, idx, readers, safePoint, jobs, log)
	go compactor.Run()

	log.Infow("Engine opened", "dataDir", opts.DataDir, "activeGen", nextGen, "keys", idx.Len())

	return &Engine{
		options:   opts,
		log:       log,
		dir:       segDir,
		idx:       idx,
		wr:        wr,
		readers:   readers,
		safePoint: safePoint,
		owner:     &ownedState{compactor: compactor, jobs: jobs},
	}, nil
}

// replay rebuilds idx from every segment in dir, in ascending generation
// order, and returns the total stale-byte count accumulated across all of
// them — replaced Set records plus tombstones, the same accounting the
// writer keeps live once it resumes appending.
func replay(dir string, idx *index.Index) (uint64, error) {
	gens, err := segment.List(dir)
	if err != nil {
		return 0, err
	}

	var stale uint64
	for _, gen := range gens {
		if err := replaySegment(dir, gen, idx, &stale); err != nil {
			return 0, err
		}
	}
	return stale, nil
}

func replaySegment(dir string, gen uint64, idx *index.Index, stale *uint64) error {
	f, err := os.Open(segment.Path(dir, gen))
	if err != nil {
		return err
	}
	defer f.Close()

	return wire.Scan(f, func(rec wire.Record) error {
		pos := index.CmdPos{Gen: gen, Offset: rec.Offset, Length: rec.Length}
		switch {
		case rec.Cmd.Set != nil:
			if old, existed := idx.Put(rec.Cmd.Set.Key, pos); existed {
				*stale += uint64(old.Length)
			}
		case rec.Cmd.Rm != nil:
			if old, existed := idx.Delete(rec.Cmd.Rm.Key); existed {
				*stale += uint64(old.Length)
			}
			*stale += uint64(rec.Length)
		}
		return nil
	})
}

// Set stores value under key, appending a record to the active segment.
func (e *Engine) Set(key, value string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return e.wr.Set(key, value)
}

// Get returns the value stored under key, and whether it was found.
func (e *Engine) Get(key string) (string, bool, error) {
	if e.closed.Load() {
		return "", false, ErrEngineClosed
	}

	pos, ok := e.idx.Get(key)
	if !ok {
		return "", false, nil
	}

	value, err := e.readers.ReadValue(key, pos)
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Remove deletes key, appending a tombstone record. It reports
// KeyNotFound if key was already absent.
func (e *Engine) Remove(key string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return e.wr.Remove(key)
}

// Clone returns a new Engine handle sharing the same index, writer and
// compactor, but with its own private reader-pool cache. Use one clone per
// long-lived owner (a server connection handler, a worker) so concurrent
// readers never contend over the same cached file handles.
func (e *Engine) Clone() *Engine {
	return &Engine{
		options:   e.options,
		log:       e.log,
		dir:       e.dir,
		idx:       e.idx,
		wr:        e.wr,
		safePoint: e.safePoint,
		readers:   readerpool.New(e.dir, e.safePoint, e.log),
	}
}

// Close releases this handle's reader-pool cache. If this is the root
// Engine returned by Open, it additionally stops the compactor and closes
// the writer and index — callers must ensure every clone has been closed
// first, or is no longer in use, before closing the root.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	err := e.readers.Close()

	if e.owner != nil {
		close(e.owner.jobs)
		e.owner.compactor.Wait()
		err = multierr.Append(err, e.wr.Close())
		err = multierr.Append(err, e.idx.Close())
	}

	return err
}
