package reader

import (
	"fmt"
	"strconv"
	"strings"
)

// ClipSpec keeps the first Head and last Tail lines of a text body.
type ClipSpec struct {
	Head int
	Tail int
}

// DefaultClip is used when clipping is requested without a value.
var DefaultClip = ClipSpec{Head: 5, Tail: 3}

// ParseClip parses "N", "N:M", ":M" or "" (the default).
func ParseClip(raw string) (ClipSpec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultClip, nil
	}

	headStr, tailStr, _ := strings.Cut(s, ":")
	headStr = strings.TrimSpace(headStr)
	tailStr = strings.TrimSpace(tailStr)

	var spec ClipSpec
	var err error
	if headStr != "" {
		if spec.Head, err = strconv.Atoi(headStr); err != nil || spec.Head < 0 {
			return ClipSpec{}, fmt.Errorf("invalid --clip value (head part %q)", headStr)
		}
	}
	if tailStr != "" {
		if spec.Tail, err = strconv.Atoi(tailStr); err != nil || spec.Tail < 0 {
			return ClipSpec{}, fmt.Errorf("invalid --clip value (tail part %q)", tailStr)
		}
	}
	if spec.Head == 0 && spec.Tail == 0 {
		return ClipSpec{}, fmt.Errorf("invalid --clip value %q: head and tail cannot both be 0", raw)
	}
	return spec, nil
}

func (c ClipSpec) String() string {
	return fmt.Sprintf("%d:%d", c.Head, c.Tail)
}

// Apply returns text reduced to its head and tail lines with a marker line
// counting what was dropped. Text short enough to fit is returned unchanged.
func (c ClipSpec) Apply(text []byte) []byte {
	lines := splitInclusive(string(text))
	total := len(lines)
	if c.Head+c.Tail >= total {
		return text
	}

	var b strings.Builder
	for _, l := range lines[:c.Head] {
		b.WriteString(l)
	}
	skipped := total - c.Head - c.Tail
	fmt.Fprintf(&b, "... (snipped %d lines) ...\n", skipped)
	for _, l := range lines[total-c.Tail:] {
		b.WriteString(l)
	}
	return []byte(b.String())
}

func splitInclusive(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
