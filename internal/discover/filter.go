package discover

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Filter decides which entries of a directory walk are kept. It never applies
// to literal paths or glob matches.
type Filter struct {
	extensions map[string]bool
	gitIgnore  *ignore.GitIgnore
	excludes   *ignore.GitIgnore
	skipGit    bool
}

// FilterOptions configures a Filter for one directory root.
type FilterOptions struct {
	// Extensions is the lowercase allow-list without dots. Empty keeps all files.
	Extensions []string
	// RespectGitIgnore loads <root>/.gitignore and skips .git directories.
	RespectGitIgnore bool
	// Exclude holds extra gitignore-syntax patterns.
	Exclude []string
}

// NewFilter creates a filter for the directory root.
func NewFilter(root string, opts FilterOptions) (*Filter, error) {
	f := &Filter{skipGit: opts.RespectGitIgnore}

	if len(opts.Extensions) > 0 {
		f.extensions = make(map[string]bool, len(opts.Extensions))
		for _, ext := range opts.Extensions {
			f.extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
		}
	}

	if opts.RespectGitIgnore {
		gitIgnorePath := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(gitIgnorePath); err == nil {
			gi, err := ignore.CompileIgnoreFile(gitIgnorePath)
			if err != nil {
				return nil, err
			}
			f.gitIgnore = gi
		}
	}

	if len(opts.Exclude) > 0 {
		f.excludes = ignore.CompileIgnoreLines(opts.Exclude...)
	}

	return f, nil
}

// IncludeDir reports whether the walk should descend into rel, a slash
// separated path relative to the root.
func (f *Filter) IncludeDir(rel string) bool {
	if f.skipGit && (rel == ".git" || strings.HasSuffix(rel, "/.git")) {
		return false
	}
	return !f.ignored(rel + "/")
}

// IncludeFile reports whether the file at rel is kept.
func (f *Filter) IncludeFile(rel string) bool {
	if f.ignored(rel) {
		return false
	}
	if f.extensions == nil {
		return true
	}
	return f.extensions[extensionOf(rel)]
}

func (f *Filter) ignored(rel string) bool {
	if f.gitIgnore != nil && f.gitIgnore.MatchesPath(rel) {
		return true
	}
	return f.excludes != nil && f.excludes.MatchesPath(rel)
}

// extensionOf returns the lowercase extension without the dot, or "" when the
// name has none. Dotfiles such as ".bashrc" have no extension.
func extensionOf(p string) string {
	base := filepath.Base(p)
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

