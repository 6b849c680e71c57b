// Package readerpool caches open, memory-mapped segment handles so that
// repeated reads against the same generation don't pay an open() syscall
// every time. Each Engine clone owns its own Pool — the Go equivalent of
// the original's thread-local reader cache, keyed here by pool ownership
// rather than by OS thread id, since a goroutine has no stable identity to
// key off of.
package readerpool

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tysonmote/gommap"
	"go.uber.org/zap"

	"github.com/ignitedb/ignite/internal/index"
	"github.com/ignitedb/ignite/internal/segment"
	"github.com/ignitedb/ignite/internal/wire"
	"github.com/ignitedb/ignite/pkg/errors"
)

// handle is one open view onto a segment file. The file is mapped
// read-only at open time; bytes appended to the segment afterward (the
// active generation is read through a Pool too, while the writer is still
// appending to it) fall outside the mapped region and are served by the
// wrapped PositionedReader instead.
type handle struct {
	reader *wire.PositionedReader
	mmap   gommap.MMap
}

func openHandle(path string) (*handle, error) {
	r, err := wire.NewPositionedReader(path)
	if err != nil {
		return nil, err
	}
	f := r.File()

	fi, err := f.Stat()
	if err != nil {
		r.Close()
		return nil, err
	}
	if fi.Size() == 0 {
		return &handle{reader: r}, nil
	}

	m, err := gommap.Map(f.Fd(), gommap.PROT_READ, gommap.MAP_SHARED)
	if err != nil {
		r.Close()
		return nil, err
	}
	return &handle{reader: r, mmap: m}, nil
}

func (h *handle) readAt(offset, length int64) ([]byte, error) {
	buf := make([]byte, length)
	if h.mmap != nil && int64(len(h.mmap)) >= offset+length {
		copy(buf, h.mmap[offset:offset+length])
		return buf, nil
	}
	if err := h.reader.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	return buf, nil
}

func (h *handle) Close() error {
	return h.reader.Close()
}

// Pool is a per-owner cache of open segment handles, evicted below a
// shared safe point before every read so that a generation retired by the
// compactor is never reopened once its file has been unlinked.
type Pool struct {
	dir       string
	safePoint *atomic.Uint64
	log       *zap.SugaredLogger

	mu      sync.Mutex
	handles map[uint64]*handle
}

// New creates a Pool reading segments out of dir. safePoint is shared with
// the engine's compactor: every generation below its current value is
// guaranteed retired and must never be reopened.
func New(dir string, safePoint *atomic.Uint64, log *zap.SugaredLogger) *Pool {
	return &Pool{
		dir:       dir,
		safePoint: safePoint,
		log:       log,
		handles:   make(map[uint64]*handle),
	}
}

// Read fetches and decodes the command located by pos.
func (p *Pool) Read(pos index.CmdPos) (wire.Command, error) {
	p.evictStale()

	h, err := p.handleFor(pos.Gen)
	if err != nil {
		return wire.Command{}, err
	}

	buf, err := h.readAt(pos.Offset, pos.Length)
	if err != nil {
		return wire.Command{}, err
	}

	return wire.Decode(buf)
}

// ReadValue resolves pos to the value of the live Set it points at. A
// CmdPos pointing at a Rm record indicates index/writer state got out of
// sync — the index should never hold a pointer to a tombstone — so it is
// reported as an undefined-command engine error rather than silently
// treated as a miss.
func (p *Pool) ReadValue(key string, pos index.CmdPos) (string, error) {
	cmd, err := p.Read(pos)
	if err != nil {
		return "", err
	}
	if cmd.Set == nil {
		return "", errors.NewUndefinedCommandError(key)
	}
	return cmd.Set.Value, nil
}

func (p *Pool) handleFor(gen uint64) (*handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.handles[gen]; ok {
		return h, nil
	}

	h, err := openHandle(segment.Path(p.dir, gen))
	if err != nil {
		return nil, err
	}
	p.handles[gen] = h
	return h, nil
}

// evictStale closes and forgets every cached handle whose generation has
// fallen below the current safe point, in ascending order, matching the
// reference close_stale_handle behavior.
func (p *Pool) evictStale() {
	sp := p.safePoint.Load()

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.handles) == 0 {
		return
	}

	gens := make([]uint64, 0, len(p.handles))
	for g := range p.handles {
		gens = append(gens, g)
	}
	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })

	for _, g := range gens {
		if g >= sp {
			break
		}
		if h, ok := p.handles[g]; ok {
			if err := h.Close(); err != nil {
				p.log.Warnw("Failed closing stale segment handle", "gen", g, "error", err)
			}
			delete(p.handles, g)
		}
	}
}

// Close releases every cached handle. It does not error on partial
// failure; each close failure is logged so shutdown always completes.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for g, h := range p.handles {
		if err := h.Close(); err != nil {
			p.log.Warnw("Failed closing segment handle on pool shutdown", "gen", g, "error", err)
		}
	}
	p.handles = make(map[uint64]*handle)
	return nil
}
