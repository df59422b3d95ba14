// Package format wraps file bodies in divider markers and computes the path
// shown in them.
package format

import (
	"fmt"
	"strings"
)

// Scheme is a divider style.
type Scheme int

const (
	// Equals writes ===path=== and ===end of 'path'===.
	Equals Scheme = iota
	// TripleBacktick writes a fenced block with the path on the info line.
	TripleBacktick
	// XMLTag writes <file path="..."> and </file>.
	XMLTag
)

var schemeNames = map[Scheme]string{
	Equals:         "equals",
	TripleBacktick: "triple-backtick",
	XMLTag:         "xml-tag",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme accepts equals, triple-backtick or xml-tag, ignoring case.
// Underscores are read as dashes.
func ParseScheme(raw string) (Scheme, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	switch name {
	case "", "equals":
		return Equals, nil
	case "triple-backtick", "backtick":
		return TripleBacktick, nil
	case "xml-tag", "xml":
		return XMLTag, nil
	}
	return Equals, fmt.Errorf("invalid divider %q (expected equals, triple-backtick, or xml-tag)", raw)
}

// Header returns the opening marker line without its trailing newline.
// encoding is the detected charset name, or empty. fence is the backtick
// fence used by TripleBacktick.
func (s Scheme) Header(path, encoding, fence string) string {
	switch s {
	case TripleBacktick:
		return fence + " " + path + encodingSuffix(encoding)
	case XMLTag:
		attr := ""
		if encoding != "" {
			attr = ` encoding="` + escapeAttr(encoding) + `"`
		}
		return fmt.Sprintf(`<file path="%s"%s>`, escapeAttr(path), attr)
	default:
		return "===" + path + encodingSuffix(encoding) + "==="
	}
}

// Footer returns the closing marker line without its trailing newline.
func (s Scheme) Footer(path, fence string) string {
	switch s {
	case TripleBacktick:
		return fence
	case XMLTag:
		return "</file>"
	default:
		return "===end of '" + path + "'==="
	}
}

func encodingSuffix(encoding string) string {
	if encoding == "" {
		return ""
	}
	return " [" + encoding + "]"
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"<", "&lt;",
	">", "&gt;",
)

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// Fence returns a backtick fence at least three long and longer than any
// backtick run in body.
func Fence(body []byte) string {
	longest, run := 0, 0
	for _, b := range body {
		if b == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}
