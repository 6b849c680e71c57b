// Package options provides data structures and functions for configuring
// the Ignite database. It defines various parameters that control Ignite's
// storage behavior, performance, and maintenance operations, such as
// directory paths, segment characteristics, and compaction intervals.
package options

import (
	"strings"
	"time"
)

// Defines configurable parameters for each segment.
// It provides fine-grained control over segment behavior, performance, and resource utilization.
type segmentOptions struct {
	// Holds a target segment size. The engine does not read it: the writer
	// rotates segments only when its stale-byte count crosses
	// CompactionThreshold, never by segment size.
	//
	//  - Default: 1GB
	//  - Maximum: 4GB
	//  - Minimum: 512MB
	Size uint64 `json:"maxSegmentSize"`

	// Specifies where segment files are stored.
	//
	// Default: "/var/lib/ignitedb/segments"
	Directory string `json:"directory"`

	// Holds a filename prefix for segment files. The engine does not read
	// it: segment files are always named "<gen>.log".
	//
	// Default: "segment"
	Prefix string `json:"prefix"`
}

// Defines the configuration parameters for Ignite DB.
// It provides control over storage, performance and maintenance aspects.
type Options struct {
	// Specifies the base path where files will be stored.
	//
	// Default: "/var/lib/ignitedb"
	DataDir string `json:"dataDir"`

	// Holds a compaction interval. The engine does not read it: compaction
	// is not scheduled by time, it runs when the writer's stale-byte count
	// crosses CompactionThreshold.
	//
	// Default: 5h
	CompactInterval time.Duration `json:"compactInterval"`

	// Configures segment management including size limits and naming convention.
	SegmentOptions *segmentOptions `json:"segmentOptions"`

	// CompactionThreshold is the number of stale bytes the writer tolerates
	// before handing a generation off to the background compactor.
	//
	// Default: 1MiB
	CompactionThreshold uint64 `json:"compactionThreshold"`

	// EngineName names a storage engine: "kvs" (the built-in log-structured
	// engine) or "bbolt" (the external embedded-store adapter). Neither
	// engine.Open nor ignite.NewInstance reads it; both always open the
	// built-in engine. The server binary picks its engine from its --engine
	// flag and the data directory's "engine" file instead.
	//
	// Default: "kvs"
	EngineName string `json:"engineName"`

	// Sync controls whether the writer calls File.Sync() after every flush.
	// The contract never requires this (spec.md §1, Non-goals); it exists
	// purely as an opt-in stronger-durability knob.
	//
	// Default: false
	Sync bool `json:"sync"`
}

// OptionFunc is a function type that modifies the Ignite system's configuration.
type OptionFunc func(*Options)

// Applies a predefined set of default configuration values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
		o.SegmentOptions = opts.SegmentOptions
		o.CompactInterval = opts.CompactInterval
		o.CompactionThreshold = opts.CompactionThreshold
		o.EngineName = opts.EngineName
		o.Sync = opts.Sync
	}
}

// Sets the primary data directory for Ignite.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// Sets the interval at which Ignite performs compaction operations.
func WithCompactInterval(interval time.Duration) OptionFunc {
	return func(o *Options) {
		if interval > DefaultCompactInterval {
			o.CompactInterval = interval
		}
	}
}

// Sets the directory specifically for storing segment files.
func WithSegmentDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.SegmentOptions.Directory = directory
		}
	}
}

// Sets the file name prefix for segment files.
func WithSegmentPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.SegmentOptions.Prefix = prefix
		}
	}
}

// Sets the maximum size of individual segment files.
func WithSegmentSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size >= MinSegmentSize && size <= MaxSegmentSize {
			o.SegmentOptions.Size = size
		}
	}
}

// Sets the stale-byte threshold that triggers background compaction.
func WithCompactionThreshold(bytes uint64) OptionFunc {
	return func(o *Options) {
		if bytes > 0 {
			o.CompactionThreshold = bytes
		}
	}
}

// Sets Options.EngineName ("kvs" or "bbolt"); see that field for which code
// reads it.
func WithEngineName(name string) OptionFunc {
	return func(o *Options) {
		name = strings.TrimSpace(name)
		if name != "" {
			o.EngineName = name
		}
	}
}

// Enables an fsync after every writer flush. Off by default; the contract
// never requires it (spec.md §1).
func WithSync(sync bool) OptionFunc {
	return func(o *Options) {
		o.Sync = sync
	}
}
