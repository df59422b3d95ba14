package discover

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// SortKey selects the order files are emitted in.
type SortKey int

const (
	SortName SortKey = iota
	SortSize
	SortMtime
)

var sortKeyNames = map[SortKey]string{
	SortName:  "name",
	SortSize:  "size",
	SortMtime: "mtime",
}

func (k SortKey) String() string {
	if s, ok := sortKeyNames[k]; ok {
		return s
	}
	return fmt.Sprintf("SortKey(%d)", int(k))
}

// ParseSortKey accepts name, size or mtime in any case.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "":
		return SortName, nil
	case "size":
		return SortSize, nil
	case "mtime":
		return SortMtime, nil
	}
	return 0, fmt.Errorf("invalid sort key %q (expected name, size or mtime)", s)
}

// Record is a discovered file. Path is its identity.
type Record struct {
	Path    string
	Size    int64
	ModTime time.Time
	// Ext is the lowercase extension without the dot.
	Ext string
}

// Collector accumulates matched paths into a duplicate-free set.
type Collector struct {
	root  string
	seen  map[string]struct{}
	paths []string
}

// NewCollector returns an empty collector. root is used to stat relative
// paths and never appears in the collected paths.
func NewCollector(root string) *Collector {
	return &Collector{root: root, seen: make(map[string]struct{})}
}

// Add inserts paths, ignoring ones already present after normalization.
func (c *Collector) Add(paths ...string) {
	for _, p := range paths {
		p = normalizePath(p)
		if _, ok := c.seen[p]; ok {
			continue
		}
		c.seen[p] = struct{}{}
		c.paths = append(c.paths, p)
	}
}

// Len returns the number of distinct paths collected so far.
func (c *Collector) Len() int {
	return len(c.paths)
}

// Records stats every collected path and returns them ordered by key, with the
// path string as tie-break. Files that can no longer be stat'ed sort as empty
// and old; reading them later reports the failure.
func (c *Collector) Records(key SortKey) []Record {
	records := make([]Record, 0, len(c.paths))
	for _, p := range c.paths {
		rec := Record{Path: p, Ext: extensionOf(p)}
		if info, err := os.Stat(Resolve(c.root, p)); err == nil {
			rec.Size = info.Size()
			rec.ModTime = info.ModTime()
		}
		records = append(records, rec)
	}
	SortRecords(records, key)
	return records
}

// SortRecords orders records in place.
func SortRecords(records []Record, key SortKey) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch key {
		case SortSize:
			if a.Size != b.Size {
				return a.Size < b.Size
			}
		case SortMtime:
			if !a.ModTime.Equal(b.ModTime) {
				return a.ModTime.Before(b.ModTime)
			}
		}
		return a.Path < b.Path
	})
}
