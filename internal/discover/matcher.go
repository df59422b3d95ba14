package discover

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// ErrNoMatch is reported when a token resolves to no files.
var ErrNoMatch = errors.New("no matching files")

// Matcher resolves a single token to existing file paths.
type Matcher struct {
	// Root is the working directory relative tokens are resolved against.
	// Empty means the process working directory.
	Root string
	// Extensions filters directory walks only. Empty keeps every file.
	Extensions []string
	// FollowSymlinks descends into symlinked directories during walks and
	// glob expansion.
	FollowSymlinks bool
	// RespectGitIgnore and Exclude feed the directory walk Filter.
	RespectGitIgnore bool
	Exclude          []string

	Logger *zap.Logger
}

// Match returns the files named by token, in no particular order. Problems
// are reported as warnings and yield no paths; they never stop the run.
func (m *Matcher) Match(token string) []string {
	logger := m.logger()

	info, err := os.Stat(Resolve(m.Root, token))
	if err == nil && info.IsDir() {
		paths, err := m.walkRoot(token)
		if err != nil {
			logger.Warn("directory walk failed", zap.String("dir", token), zap.Error(err))
		}
		return paths
	}

	if !hasGlobMeta(token) {
		if err != nil {
			logger.Warn("path does not exist", zap.String("path", token), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			logger.Warn("path is not a regular file", zap.String("path", token))
			return nil
		}
		return []string{normalizePath(token)}
	}

	paths, err := m.glob(token)
	if err != nil {
		logger.Warn("invalid pattern or no matches", zap.String("pattern", token), zap.Error(err))
		return nil
	}
	return paths
}

func (m *Matcher) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}

func (m *Matcher) walkRoot(dir string) ([]string, error) {
	fsDir := Resolve(m.Root, dir)
	filter, err := NewFilter(fsDir, FilterOptions{
		Extensions:       m.Extensions,
		RespectGitIgnore: m.RespectGitIgnore,
		Exclude:          m.Exclude,
	})
	if err != nil {
		return nil, err
	}

	var out []string
	visited := map[string]bool{realPath(fsDir): true}
	m.walk(dir, fsDir, "", filter, visited, func(display, rel string) {
		if filter.IncludeFile(rel) {
			out = append(out, normalizePath(display))
		}
	})
	return out, nil
}

// walk recurses through fsDir and calls visit for every regular file. display
// is the same directory spelled the way the user named it, rel is the slash
// path below the walk root. A nil filter keeps every directory. Directories
// are entered at most once by resolved identity, which bounds symlink cycles.
func (m *Matcher) walk(display, fsDir, rel string, filter *Filter, visited map[string]bool, visit func(display, rel string)) {
	entries, err := os.ReadDir(fsDir)
	if err != nil {
		m.logger().Warn("cannot read directory", zap.String("dir", display), zap.Error(err))
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		childDisplay := joinRaw(display, name)
		childFS := filepath.Join(fsDir, name)
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}

		isDir := entry.IsDir()
		isFile := entry.Type().IsRegular()
		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(childFS)
			if err != nil {
				m.logger().Debug("skipping dangling symlink", zap.String("path", childDisplay))
				continue
			}
			isDir = target.IsDir() && m.FollowSymlinks
			isFile = target.Mode().IsRegular()
		}

		switch {
		case isDir:
			if filter != nil && !filter.IncludeDir(childRel) {
				continue
			}
			id := realPath(childFS)
			if visited[id] {
				m.logger().Debug("directory already visited", zap.String("dir", childDisplay))
				continue
			}
			visited[id] = true
			m.walk(childDisplay, childFS, childRel, filter, visited, visit)
		case isFile:
			visit(childDisplay, childRel)
		}
	}
}

// glob expands token below its literal base. A followed ** pattern is matched
// against walk, since doublestar has no bound on link cycles.
func (m *Matcher) glob(token string) ([]string, error) {
	base, pattern := doublestar.SplitPattern(filepath.ToSlash(token))
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	fsBase := Resolve(m.Root, filepath.FromSlash(base))
	var matches []string
	var err error
	switch {
	case !m.FollowSymlinks:
		matches, err = doublestar.Glob(os.DirFS(fsBase), pattern, doublestar.WithNoFollow())
	case strings.Contains(pattern, "**"):
		matches, err = m.walkGlob(fsBase, pattern)
	default:
		matches, err = doublestar.Glob(os.DirFS(fsBase), pattern)
	}
	if err != nil {
		return nil, err
	}

	var out []string
	for _, match := range matches {
		info, err := os.Stat(filepath.Join(fsBase, filepath.FromSlash(match)))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, normalizePath(joinBase(base, match)))
	}
	if len(out) == 0 {
		return nil, ErrNoMatch
	}
	return out, nil
}

// walkGlob returns the slash paths below fsBase that match pattern, following
// symlinked directories once each.
func (m *Matcher) walkGlob(fsBase, pattern string) ([]string, error) {
	if info, err := os.Stat(fsBase); err != nil || !info.IsDir() {
		return nil, nil
	}

	var matches []string
	var matchErr error
	visited := map[string]bool{realPath(fsBase): true}
	m.walk(fsBase, fsBase, "", nil, visited, func(_, rel string) {
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			matchErr = err
			return
		}
		if ok {
			matches = append(matches, rel)
		}
	})
	return matches, matchErr
}

// Resolve returns the filesystem location of p, interpreting relative paths
// against root.
func Resolve(root, p string) string {
	if root == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func joinBase(base, match string) string {
	switch base {
	case "", ".":
		return match
	case "/":
		return "/" + match
	}
	return base + "/" + match
}

// joinRaw appends name to dir without cleaning the result.
func joinRaw(dir, name string) string {
	if strings.HasSuffix(dir, "/") || strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir + name
	}
	return dir + string(filepath.Separator) + name
}

func realPath(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	return p
}
