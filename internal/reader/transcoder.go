package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrUnavailable means the converter cannot be run on this system.
var ErrUnavailable = errors.New("document converter unavailable")

// ConversionError is returned when the converter ran but did not succeed.
type ConversionError struct {
	Path   string
	Stderr string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("convert %s: %v: %s", e.Path, e.Err, e.Stderr)
	}
	return fmt.Sprintf("convert %s: %v", e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Transcoder turns a rich document into plain text. Implementations return an
// error wrapping ErrUnavailable when they cannot run at all, and a
// *ConversionError when a conversion attempt fails.
type Transcoder interface {
	Convert(ctx context.Context, path string) ([]byte, error)
}

// DefaultConverterCommand is the macOS document conversion utility.
const DefaultConverterCommand = "textutil"

// Textutil runs `textutil -convert txt -stdout <file>`.
type Textutil struct {
	// Command overrides the executable name. Empty means textutil.
	Command string
	// Timeout bounds a single conversion. Zero means no limit.
	Timeout time.Duration

	once     sync.Once
	resolved string
	lookErr  error
}

// NewTextutil returns a converter using the default command.
func NewTextutil(timeout time.Duration) *Textutil {
	return &Textutil{Timeout: timeout}
}

func (t *Textutil) lookup() (string, error) {
	t.once.Do(func() {
		name := t.Command
		if name == "" {
			name = DefaultConverterCommand
		}
		path, err := exec.LookPath(name)
		if err != nil {
			t.lookErr = fmt.Errorf("%w: %s not found in PATH", ErrUnavailable, name)
			return
		}
		t.resolved = path
	})
	return t.resolved, t.lookErr
}

// Convert implements Transcoder. The lookup result is cached, so concurrent
// callers share one PATH lookup.
func (t *Textutil) Convert(ctx context.Context, path string) ([]byte, error) {
	bin, err := t.lookup()
	if err != nil {
		return nil, err
	}

	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, "-convert", "txt", "-stdout", path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &ConversionError{
			Path:   path,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}
