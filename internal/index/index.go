// Package index provides the in-memory hash table implementation for the
// ignite key-value store. This package embodies the core Bitcask
// architectural principle: keep every key in memory with minimal metadata
// while the associated values stay on disk.
//
// The index enables O(1) key lookups through an in-memory hash table while
// keeping storage overhead minimal, so the system can handle datasets far
// larger than available RAM while maintaining predictable read latency.
package index

import (
	"context"
	stdErrors "errors"
	"sort"

	"github.com/ignitedb/ignite/pkg/errors"
)

var (
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// New creates and initializes a new Index instance configured according to
// the provided parameters. The returned Index is immediately ready for
// concurrent use and includes a pre-sized map to cut down on early
// rehashing.
func New(ctx context.Context, config *Config) (*Index, error) {
	if config == nil || config.DataDir == "" || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{
		log:     config.Logger,
		dataDir: config.DataDir,
		entries: make(map[string]CmdPos, 2046),
	}, nil
}

// Get returns the CmdPos currently on file for key, and whether it exists.
func (idx *Index) Get(key string) (CmdPos, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	pos, ok := idx.entries[key]
	return pos, ok
}

// Put records pos as key's current location, replacing whatever was there
// before, and returns the replaced entry (if any) so the caller — the
// writer, accounting for stale bytes — knows how much the old record cost.
func (idx *Index) Put(key string, pos CmdPos) (CmdPos, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	old, existed := idx.entries[key]
	idx.entries[key] = pos
	return old, existed
}

// CompareAndPut replaces key's entry with pos only if its current
// generation is <= pos.Gen, reporting whether the replacement happened.
// The compactor uses this instead of a bare Put so that a key concurrently
// rewritten by the live writer into a newer generation, while the
// compactor's rewrite of an older generation is still in flight, never
// gets clobbered by the compactor's now-stale view of that key (spec.md's
// noted race between compaction and concurrent writes).
func (idx *Index) CompareAndPut(key string, pos CmdPos) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	cur, ok := idx.entries[key]
	if ok && cur.Gen > pos.Gen {
		return false
	}
	idx.entries[key] = pos
	return true
}

// Delete removes key from the index and returns the entry it held, if any.
func (idx *Index) Delete(key string) (CmdPos, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	old, existed := idx.entries[key]
	delete(idx.entries, key)
	return old, existed
}

// Len returns the number of live keys currently tracked.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Range calls fn once for every key, in a consistent sorted-by-key order,
// over a point-in-time snapshot taken under a single read lock. It is
// weakly consistent: a key written or removed after the snapshot is taken
// will not be reflected. The compactor uses this ordering to give rewritten
// segments some key locality, and iteration stops early if fn returns
// false.
func (idx *Index) Range(fn func(key string, pos CmdPos) bool) {
	idx.mu.RLock()
	keys := make([]string, 0, len(idx.entries))
	snapshot := make(map[string]CmdPos, len(idx.entries))
	for k, v := range idx.entries {
		keys = append(keys, k)
		snapshot[k] = v
	}
	idx.mu.RUnlock()

	sort.Strings(keys)
	for _, k := range keys {
		if !fn(k, snapshot[k]) {
			return
		}
	}
}

// Close gracefully shuts down the Index, releasing the underlying map and
// ensuring the index cannot be used after closure.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("Closing index system")

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clear(idx.entries)
	idx.entries = nil

	idx.log.Infow("Index system closed successfully")
	return nil
}
