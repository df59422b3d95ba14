package format

import (
	"path/filepath"
	"strings"
)

// DisplayPath returns the path shown in markers for a discovered path.
// relativeFrom and workDir must be absolute; either may be empty. A path
// under relativeFrom is shown relative to it, else a path under workDir is
// shown relative to workDir, else the discovered path is kept. A leading
// "./" is always removed.
func DisplayPath(path, relativeFrom, workDir string) string {
	abs := path
	if !filepath.IsAbs(abs) && workDir != "" {
		abs = filepath.Join(workDir, path)
	}

	if filepath.IsAbs(abs) {
		for _, base := range []string{relativeFrom, workDir} {
			if rel, ok := under(abs, base); ok {
				return stripDotSlash(filepath.ToSlash(rel))
			}
		}
	}
	return stripDotSlash(path)
}

func under(abs, base string) (string, bool) {
	if base == "" {
		return "", false
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

func stripDotSlash(p string) string {
	return strings.TrimPrefix(p, "./")
}
