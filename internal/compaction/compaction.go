// Package compaction runs the background goroutine that reclaims stale
// bytes: given a generation the writer has decided to retire, it rewrites
// every key still pointing into older generations into one fresh segment,
// advances the safe point, and unlinks whatever falls below it.
package compaction

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ignitedb/ignite/internal/index"
	"github.com/ignitedb/ignite/internal/readerpool"
	"github.com/ignitedb/ignite/internal/segment"
	"github.com/ignitedb/ignite/internal/wire"
)

// Compactor owns the background rewrite loop. It never touches the active
// writer's segment — the writer always hands off a compactionGen that is
// strictly below its own new current generation, so the two never
// contend for the same file.
type Compactor struct {
	dir       string
	idx       *index.Index
	readers   *readerpool.Pool
	safePoint *atomic.Uint64
	log       *zap.SugaredLogger

	jobs chan uint64
	done chan struct{}
}

// New constructs a Compactor. jobs is the channel the writer publishes
// retiring generations to; safePoint is shared with every reader pool
// derived from the same engine.
func New(dir string, idx *index.Index, readers *readerpool.Pool, safePoint *atomic.Uint64, jobs chan uint64, log *zap.SugaredLogger) *Compactor {
	return &Compactor{
		dir:       dir,
		idx:       idx,
		readers:   readers,
		safePoint: safePoint,
		log:       log,
		jobs:      jobs,
		done:      make(chan struct{}),
	}
}

// Run processes compaction jobs until jobs is closed. Intended to be
// launched in its own goroutine by the engine.
func (c *Compactor) Run() {
	defer close(c.done)
	for gen := range c.jobs {
		if err := c.compact(gen); err != nil {
			c.log.Errorw("Compaction round failed", "gen", gen, "error", err)
		}
	}
}

// Wait blocks until Run has observed the close of the jobs channel and
// finished the current round (if any). The engine owns the channel and
// closes it; Wait does not close anything itself.
func (c *Compactor) Wait() {
	<-c.done
}

// compact rewrites every key the index still points at a generation below
// gen into a single new segment named gen, then advances the safe point
// and unlinks everything that falls below it.
func (c *Compactor) compact(gen uint64) error {
	path := segment.Path(c.dir, gen)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	pw, err := wire.NewPositionedWriter(f)
	if err != nil {
		f.Close()
		return err
	}

	type rewrite struct {
		key string
		pos index.CmdPos
	}
	var rewrites []rewrite

	var rewriteErr error
	c.idx.Range(func(key string, pos index.CmdPos) bool {
		if pos.Gen >= gen {
			return true
		}

		value, err := c.readers.ReadValue(key, pos)
		if err != nil {
			rewriteErr = err
			return false
		}

		cmd := wire.NewSet(key, value)
		b, err := cmd.Encode()
		if err != nil {
			rewriteErr = err
			return false
		}

		offset := pw.Pos()
		if _, err := pw.Write(b); err != nil {
			rewriteErr = err
			return false
		}
		if err := pw.Flush(); err != nil {
			rewriteErr = err
			return false
		}

		rewrites = append(rewrites, rewrite{
			key: key,
			pos: index.CmdPos{Gen: gen, Offset: offset, Length: int64(len(b))},
		})
		return true
	})

	if rewriteErr != nil {
		f.Close()
		return rewriteErr
	}
	if err := f.Close(); err != nil {
		return err
	}

	// CompareAndPut, not Put: a key concurrently rewritten by the live
	// writer into a generation >= gen since Range took its snapshot must
	// not be clobbered by this now-stale rewritten location.
	for _, r := range rewrites {
		c.idx.CompareAndPut(r.key, r.pos)
	}

	c.safePoint.Store(gen)

	gens, err := segment.List(c.dir)
	if err != nil {
		return err
	}
	for _, g := range gens {
		if g >= gen {
			continue
		}
		if err := os.Remove(segment.Path(c.dir, g)); err != nil {
			c.log.Warnw("Failed removing retired segment", "gen", g, "error", err)
		}
	}

	return nil
}
