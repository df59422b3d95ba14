package discover

import "strings"

// SplitTokens flattens positional arguments into pattern tokens. Each argument
// may hold several comma separated tokens; pieces are trimmed and empty ones
// dropped. Order is preserved.
func SplitTokens(args []string) []string {
	var tokens []string
	for _, arg := range args {
		for _, piece := range strings.Split(arg, ",") {
			if s := strings.TrimSpace(piece); s != "" {
				tokens = append(tokens, s)
			}
		}
	}
	return tokens
}

// ParseExtensions turns a comma list such as "MD, .txt" into lowercase
// extensions without the leading dot. An empty list means no filtering.
func ParseExtensions(csv string) []string {
	var exts []string
	for _, piece := range strings.Split(csv, ",") {
		e := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(piece), "."))
		if e != "" {
			exts = append(exts, e)
		}
	}
	return exts
}

func hasGlobMeta(token string) bool {
	return strings.ContainsAny(token, "*?[")
}

// normalizePath strips a single leading "./". Nothing else is rewritten so that
// symlinked or permission-restricted intermediate directories are never resolved.
func normalizePath(p string) string {
	return strings.TrimPrefix(p, "./")
}
