// Package pipeline runs discovery, reading and formatting for one invocation.
package pipeline

import (
	"time"

	"github.com/PyBalance/printfiles/internal/discover"
	"github.com/PyBalance/printfiles/internal/format"
	"github.com/PyBalance/printfiles/internal/reader"
)

// DefaultParallelConvertTimeout bounds a conversion when reads run in
// parallel and no timeout was configured.
const DefaultParallelConvertTimeout = 30 * time.Second

// Config is the fully resolved configuration of a run.
type Config struct {
	// Items are the raw pattern and directory arguments, before splitting.
	Items []string

	Backend reader.Backend
	// Extensions restricts directory walks. Empty keeps every file.
	Extensions []string
	// RelativeFrom is the root display paths are shown relative to. A
	// relative value is resolved against WorkDir.
	RelativeFrom string
	// MaxSize is the largest file read, in bytes. reader.NoSizeLimit disables it.
	MaxSize        int64
	Binary         reader.BinaryPolicy
	Sort           discover.SortKey
	FollowSymlinks bool
	Divider        format.Scheme

	Clip           *reader.ClipSpec
	DetectEncoding bool
	GitIgnore      bool
	Exclude        []string

	// Jobs is the number of files read concurrently. Values below 2 read
	// sequentially.
	Jobs int
	// ConvertTimeout bounds one document conversion. Zero means no limit,
	// or DefaultParallelConvertTimeout when Jobs > 1.
	ConvertTimeout time.Duration

	// WorkDir is the directory relative tokens and display paths are
	// resolved against. Empty means the process working directory.
	WorkDir string
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Backend:        reader.BackendText,
		MaxSize:        reader.NoSizeLimit,
		Binary:         reader.BinarySkip,
		Sort:           discover.SortName,
		FollowSymlinks: true,
		Divider:        format.Equals,
		Jobs:           1,
	}
}

func (c Config) convertTimeout() time.Duration {
	if c.ConvertTimeout == 0 && c.Jobs > 1 {
		return DefaultParallelConvertTimeout
	}
	return c.ConvertTimeout
}
