// Package segment is the sole source of generation ordering for the
// ignite storage engine. A segment is an append-only file named "<gen>.log"
// where gen is the generation number that identifies it; this package
// enumerates, names, and orders those files within a data directory.
package segment

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ignitedb/ignite/pkg/filesys"
)

// Extension is the fixed suffix every segment file carries.
const Extension = ".log"

// Path returns the on-disk path of the segment file for generation gen
// inside dir.
func Path(dir string, gen uint64) string {
	return filepath.Join(dir, Name(gen))
}

// Name returns the filename (without directory) of the segment file for
// generation gen: "<gen>.log".
func Name(gen uint64) string {
	return strconv.FormatUint(gen, 10) + Extension
}

// List enumerates every "<u64>.log" file directly inside dir and returns
// their generation numbers in ascending order. Filenames that don't parse
// as "<uint64>.log" are ignored rather than treated as an error — a data
// directory may legitimately contain the "engine" marker file or other
// non-segment entries alongside the log segments.
func List(dir string) ([]uint64, error) {
	entries, err := filesys.ReadDir(filepath.Join(dir, "*"+Extension))
	if err != nil {
		return nil, err
	}

	gens := make([]uint64, 0, len(entries))
	for _, entry := range entries {
		base := filepath.Base(entry)
		idStr := strings.TrimSuffix(base, Extension)
		gen, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			continue
		}
		gens = append(gens, gen)
	}

	slices.Sort(gens)
	return gens, nil
}

// Latest returns the highest generation number present in dir, and whether
// any segment exists at all.
func Latest(dir string) (uint64, bool, error) {
	gens, err := List(dir)
	if err != nil {
		return 0, false, err
	}
	if len(gens) == 0 {
		return 0, false, nil
	}
	return gens[len(gens)-1], true, nil
}
