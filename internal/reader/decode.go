package reader

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// DecodeLossy converts data to valid UTF-8, replacing every invalid sequence
// with U+FFFD.
func DecodeLossy(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	return bytes.ToValidUTF8(data, []byte(string(utf8.RuneError)))
}

// DecodeDetected decodes data as UTF-8 when valid, otherwise guesses its
// charset. It returns the text and the detected charset name, which is empty
// for UTF-8 and for the lossy fallback.
func DecodeDetected(data []byte) ([]byte, string) {
	if utf8.Valid(data) {
		return data, ""
	}

	res, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || res == nil || strings.EqualFold(res.Charset, "UTF-8") {
		return DecodeLossy(data), ""
	}

	enc := lookupEncoding(res.Charset)
	if enc == nil {
		return DecodeLossy(data), ""
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return DecodeLossy(data), ""
	}
	return DecodeLossy(out), res.Charset
}

func lookupEncoding(name string) encoding.Encoding {
	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc
	}
	// chardet reports GB-18030 while the indexes know gb18030.
	if enc, err := htmlindex.Get(strings.ReplaceAll(name, "-", "")); err == nil && enc != nil {
		return enc
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc
	}
	return nil
}
