package format

import (
	"bufio"
	"io"
)

// Writer emits divider-wrapped regions to a buffered sink. Nothing reaches
// the underlying writer until Flush, except when the buffer fills.
type Writer struct {
	out     *bufio.Writer
	scheme  Scheme
	regions int
}

// NewWriter returns a Writer for scheme on top of w.
func NewWriter(w io.Writer, scheme Scheme) *Writer {
	return &Writer{out: bufio.NewWriterSize(w, 64*1024), scheme: scheme}
}

// WriteRegion writes the header, body and footer of one file. A newline is
// inserted before the footer when body does not end with one.
func (w *Writer) WriteRegion(path, encoding string, body []byte) error {
	fence := ""
	if w.scheme == TripleBacktick {
		fence = Fence(body)
	}

	if _, err := w.out.WriteString(w.scheme.Header(path, encoding, fence) + "\n"); err != nil {
		return err
	}
	if _, err := w.out.Write(body); err != nil {
		return err
	}
	if len(body) > 0 && body[len(body)-1] != '\n' {
		if err := w.out.WriteByte('\n'); err != nil {
			return err
		}
	}
	if _, err := w.out.WriteString(w.scheme.Footer(path, fence) + "\n"); err != nil {
		return err
	}
	w.regions++
	return nil
}

// Regions reports how many regions have been written.
func (w *Writer) Regions() int {
	return w.regions
}

// Flush writes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return w.out.Flush()
}
