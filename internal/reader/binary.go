package reader

import "bytes"

// sniffLen is how much of a file the printable-ratio check looks at.
const sniffLen = 8000

// LooksBinary reports whether data is likely not text: it contains a NUL byte,
// or more than 30% of its leading bytes are control characters. Bytes >= 0x80
// count as printable so UTF-8 and legacy 8-bit encodings pass.
func LooksBinary(data []byte) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}

	sample := data
	if len(sample) > sniffLen {
		sample = sample[:sniffLen]
	}
	if len(sample) == 0 {
		return false
	}

	nonPrintable := 0
	for _, b := range sample {
		if !isPrintable(b) {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(sample)) > 0.3
}

func isPrintable(b byte) bool {
	switch {
	case b == '\n', b == '\r', b == '\t', b == '\f', b == '\v', b == 0x1b:
		return true
	case b < 0x20, b == 0x7f:
		return false
	}
	return true
}
