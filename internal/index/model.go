package index

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// CmdPos is the in-memory pointer to a live command record on disk: which
// generation's segment holds it, where it starts, and how many bytes it
// occupies. The value itself is never cached here — Get always re-reads
// the record from its segment through a CmdPos, keeping index memory
// proportional to key count rather than to total data size.
//
// Gen identifies a segment by generation number rather than by filename or
// open file handle, so the index stays independent of how segments are
// named and where the reader pool or writer currently have them open.
type CmdPos struct {
	Gen    uint64
	Offset int64
	Length int64
}

// Index is the concurrent in-memory map from key to its most recent
// CmdPos. It is consulted by every Get before touching disk, and updated
// by the writer (on Set/Remove) and by the compactor (when it rewrites a
// key into a new generation) before either considers its write durable.
type Index struct {
	dataDir string
	log     *zap.SugaredLogger
	entries map[string]CmdPos
	mu      sync.RWMutex
	closed  atomic.Bool
}

// Config encapsulates the configuration parameters required to initialize an Index.
type Config struct {
	DataDir string
	Logger  *zap.SugaredLogger
}
