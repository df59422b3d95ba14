package reader

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksBinary(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"empty", nil, false},
		{"ascii", []byte("package main\n\nfunc main() {}\n"), false},
		{"utf8", []byte("naïve café ✓\n"), false},
		{"latin1", []byte("caf\xe9\n"), false},
		{"nul", []byte("abc\x00def"), true},
		{"late nul", append(bytes.Repeat([]byte("a"), 10000), 0), true},
		{"ansi colors", []byte("\x1b[31mred\x1b[0m\n"), false},
		{"control heavy", []byte("\x01\x02\x03\x04ab"), true},
		{"control light", []byte("\x01abcdefghij"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksBinary(tt.data))
		})
	}
}

func TestParseClip(t *testing.T) {
	tests := []struct {
		raw     string
		want    ClipSpec
		wantErr bool
	}{
		{"", DefaultClip, false},
		{"10", ClipSpec{Head: 10}, false},
		{"10:4", ClipSpec{Head: 10, Tail: 4}, false},
		{":4", ClipSpec{Tail: 4}, false},
		{" 2 : 3 ", ClipSpec{Head: 2, Tail: 3}, false},
		{"0:0", ClipSpec{}, true},
		{"-1:2", ClipSpec{}, true},
		{"a:b", ClipSpec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseClip(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "5:3", DefaultClip.String())
}

func TestClipApply(t *testing.T) {
	text := []byte("1\n2\n3\n4\n5\n")

	assert.Equal(t, text, ClipSpec{Head: 3, Tail: 2}.Apply(text), "fits exactly")
	assert.Equal(t, "1\n... (snipped 4 lines) ...\n",
		string(ClipSpec{Head: 1}.Apply(text)))
	assert.Equal(t, "... (snipped 3 lines) ...\n4\n5\n",
		string(ClipSpec{Tail: 2}.Apply(text)))
	assert.Equal(t, "1\n... (snipped 3 lines) ...\n5",
		string(ClipSpec{Head: 1, Tail: 1}.Apply([]byte("1\n2\n3\n4\n5"))),
		"missing final newline is preserved")
	assert.Empty(t, ClipSpec{Head: 1}.Apply(nil))
}

func TestDecodeLossy(t *testing.T) {
	valid := []byte("ok ✓")
	assert.Equal(t, valid, DecodeLossy(valid))
	assert.Equal(t, "a�b", string(DecodeLossy([]byte("a\xffb"))))
}

func TestDecodeDetected_Legacy(t *testing.T) {
	// Windows-1252/ISO-8859-1 French prose; long enough for detection.
	data := []byte("Le caf\xe9 \xe9tait d\xe9j\xe0 ferm\xe9 quand nous sommes arriv\xe9s " +
		"\xe0 la gare. Les employ\xe9s avaient d\xe9j\xe0 quitt\xe9 le b\xe2timent " +
		"et la fen\xeatre \xe9tait ferm\xe9e. Nous avons d\xfb attendre le matin.\n")

	text, enc := DecodeDetected(data)
	assert.NotEmpty(t, enc)
	assert.Contains(t, string(text), "caf")
	assert.True(t, utf8.Valid(text))
}

func TestTextutil_Unavailable(t *testing.T) {
	tr := &Textutil{Command: "printfiles-no-such-converter", Timeout: time.Second}

	_, err := tr.Convert(context.Background(), "doc.rtf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))

	// The lookup result is cached.
	_, err = tr.Convert(context.Background(), "other.rtf")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestConversionError(t *testing.T) {
	err := &ConversionError{Path: "a.doc", Stderr: "bad file", Err: context.DeadlineExceeded}
	assert.Contains(t, err.Error(), "a.doc")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
