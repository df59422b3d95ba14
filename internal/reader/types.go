package reader

import (
	"fmt"
	"strings"
)

// Backend selects how text is obtained from a file.
type Backend int

const (
	// BackendText reads bytes directly.
	BackendText Backend = iota
	// BackendTextutil asks the document converter first.
	BackendTextutil
	// BackendAuto uses the converter for rich document extensions only.
	BackendAuto
)

// richDocumentExtensions are the extensions BackendAuto hands to the converter.
var richDocumentExtensions = map[string]bool{
	"rtf":        true,
	"rtfd":       true,
	"doc":        true,
	"docx":       true,
	"html":       true,
	"htm":        true,
	"odt":        true,
	"webarchive": true,
}

// IsRichDocument reports whether ext (lowercase, no dot) belongs to the rich
// document set.
func IsRichDocument(ext string) bool {
	return richDocumentExtensions[strings.ToLower(ext)]
}

// usesConverter is the single dispatch point for backend selection.
func (b Backend) usesConverter(ext string) bool {
	switch b {
	case BackendTextutil:
		return true
	case BackendAuto:
		return IsRichDocument(ext)
	default:
		return false
	}
}

func (b Backend) String() string {
	switch b {
	case BackendText:
		return "text"
	case BackendTextutil:
		return "textutil"
	case BackendAuto:
		return "auto"
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// ParseBackend accepts text, textutil or auto.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return BackendText, nil
	case "textutil":
		return BackendTextutil, nil
	case "auto":
		return BackendAuto, nil
	}
	return 0, fmt.Errorf("invalid reader %q (expected text, textutil or auto)", s)
}

// BinaryPolicy governs what is emitted for content judged binary.
type BinaryPolicy int

const (
	BinarySkip BinaryPolicy = iota
	BinaryHex
	BinaryBase64
	// BinaryPrint decodes binary content as lossy text anyway.
	BinaryPrint
)

func (p BinaryPolicy) String() string {
	switch p {
	case BinarySkip:
		return "skip"
	case BinaryHex:
		return "hex"
	case BinaryBase64:
		return "base64"
	case BinaryPrint:
		return "print"
	}
	return fmt.Sprintf("BinaryPolicy(%d)", int(p))
}

// ParseBinaryPolicy accepts skip, hex, base64 and print (alias force-text).
func ParseBinaryPolicy(s string) (BinaryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "skip", "":
		return BinarySkip, nil
	case "hex":
		return BinaryHex, nil
	case "base64":
		return BinaryBase64, nil
	case "print", "force-text":
		return BinaryPrint, nil
	}
	return 0, fmt.Errorf("invalid binary policy %q (expected skip, hex, base64 or print)", s)
}
