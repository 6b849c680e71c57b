package options

import "time"

const (
	// Specifies the default base directory where IgniteDB will store its data files.
	// If no other directory is specified during initialization, this path will be used.
	DefaultDataDir = "/var/lib/ignitedb"

	// Default value of Options.CompactInterval (5 hours). Compaction itself
	// is triggered by DefaultCompactionThreshold, not by this interval.
	DefaultCompactInterval = time.Hour * 5

	// Represents the minimum allowed size for a segment file in bytes (512MB).
	MinSegmentSize uint64 = 512 * 1024 * 1024

	// Represents the maximum allowed size for a segment file in bytes (4GB).
	MaxSegmentSize uint64 = 4 * 1024 * 1024 * 1024

	// Default value of Options.SegmentOptions.Size in bytes (1GB); the writer
	// does not rotate by size.
	DefaultSegmentSize uint64 = 1 * 1024 * 1024 * 1024

	// Specifies the default subdirectory within the main data directory
	// where segment files will be stored.
	DefaultSegmentDirectory = "/segments"

	// Default value of Options.SegmentOptions.Prefix. Segment files are
	// named "<gen>.log" regardless of it.
	DefaultSegmentPrefix = "segment"

	// DefaultCompactionThreshold is the number of stale bytes (overwritten
	// Sets, tombstoned Removes, and the tombstones themselves) the writer
	// tolerates before triggering a compaction (spec.md §3).
	DefaultCompactionThreshold uint64 = 1 * 1024 * 1024

	// DefaultEngineName is the storage engine used when none is persisted
	// in the data directory's "engine" file and none is requested.
	DefaultEngineName = "kvs"
)

// NewDefaultOptions returns a fresh Options value with its own SegmentOptions,
// so callers that mutate the result (via the With* functional options) never
// share state with each other or with a package-level default.
func NewDefaultOptions() Options {
	return Options{
		DataDir:             DefaultDataDir,
		CompactInterval:     DefaultCompactInterval,
		CompactionThreshold: DefaultCompactionThreshold,
		EngineName:          DefaultEngineName,
		Sync:                false,
		SegmentOptions: &segmentOptions{
			Size:      DefaultSegmentSize,
			Prefix:    DefaultSegmentPrefix,
			Directory: DefaultSegmentDirectory,
		},
	}
}
