// Package reader obtains displayable text for discovered files: direct reads
// with lossy decoding, delegation to a document converter with fallback, and
// binary content policies.
package reader

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/PyBalance/printfiles/internal/discover"
	"go.uber.org/zap"
)

// NoSizeLimit disables the maximum size check.
const NoSizeLimit int64 = -1

// Placeholder bodies emitted instead of file content.
const (
	PlaceholderTooLarge = "(skipped: file exceeds max size)\n"
	PlaceholderBinary   = "(skipped binary file)\n"
)

// Result is the body to wrap for one file.
type Result struct {
	// Body is always set: content, an encoded payload or a placeholder.
	Body []byte
	// Encoding names a detected non-UTF-8 charset, if any.
	Encoding string
	// Err is the read failure, if any. Body then holds an error placeholder.
	Err error
}

// Dispatcher decides how to read each file.
type Dispatcher struct {
	// Root resolves relative record paths. Empty means the working directory.
	Root    string
	Backend Backend
	Binary  BinaryPolicy
	// MaxSize is the largest file read, in bytes. NoSizeLimit disables it.
	MaxSize int64
	// Transcoder converts rich documents. Nil behaves as unavailable.
	Transcoder Transcoder
	// Clip, when set, trims text bodies to head and tail lines.
	Clip *ClipSpec
	// DetectEncoding decodes non-UTF-8 text by guessing its charset instead
	// of replacing invalid bytes.
	DetectEncoding bool

	Logger *zap.Logger
}

// Read runs the per-file state machine. It never panics on I/O problems;
// failures are reported through Result.Err.
func (d *Dispatcher) Read(ctx context.Context, rec discover.Record) Result {
	logger := d.logger().With(zap.String("path", rec.Path))
	logger.Info("processing file")

	if d.MaxSize >= 0 && rec.Size > d.MaxSize {
		logger.Warn("skipping file larger than max size",
			zap.Int64("size", rec.Size),
			zap.Int64("max_size", d.MaxSize))
		return Result{Body: []byte(PlaceholderTooLarge)}
	}

	fsPath := discover.Resolve(d.Root, rec.Path)

	if d.Backend.usesConverter(rec.Ext) {
		if body, ok := d.convert(ctx, fsPath, logger); ok {
			return Result{Body: d.clip(DecodeLossy(body))}
		}
	}

	return d.readText(fsPath, logger)
}

func (d *Dispatcher) convert(ctx context.Context, fsPath string, logger *zap.Logger) ([]byte, bool) {
	if d.Transcoder == nil {
		logger.Warn("document converter unavailable, falling back to text")
		return nil, false
	}

	body, err := d.Transcoder.Convert(ctx, fsPath)
	var convErr *ConversionError
	switch {
	case err == nil:
		return body, true
	case errors.Is(err, ErrUnavailable):
		logger.Warn("document converter unavailable, falling back to text", zap.Error(err))
	case errors.As(err, &convErr):
		logger.Warn("document conversion failed, falling back to text", zap.Error(err))
	default:
		logger.Warn("document converter error, falling back to text", zap.Error(err))
	}
	return nil, false
}

func (d *Dispatcher) readText(fsPath string, logger *zap.Logger) Result {
	data, err := os.ReadFile(fsPath)
	if err != nil {
		logger.Error("failed to read file", zap.Error(err))
		cause := err
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			cause = pathErr.Err
		}
		return Result{
			Body: []byte(fmt.Sprintf("(error: %v)\n", cause)),
			Err:  err,
		}
	}

	if d.Binary != BinaryPrint && LooksBinary(data) {
		logger.Warn("binary file", zap.Stringer("policy", d.Binary))
		return Result{Body: encodeBinary(data, d.Binary)}
	}

	if d.DetectEncoding {
		text, enc := DecodeDetected(data)
		return Result{Body: d.clip(text), Encoding: enc}
	}
	return Result{Body: d.clip(DecodeLossy(data))}
}

// encodeBinary is the single dispatch point for binary policies other than
// BinaryPrint.
func encodeBinary(data []byte, policy BinaryPolicy) []byte {
	switch policy {
	case BinaryHex:
		return []byte(hex.EncodeToString(data) + "\n")
	case BinaryBase64:
		return []byte(base64.StdEncoding.EncodeToString(data) + "\n")
	default:
		return []byte(PlaceholderBinary)
	}
}

func (d *Dispatcher) clip(text []byte) []byte {
	if d.Clip == nil {
		return text
	}
	return d.Clip.Apply(text)
}

func (d *Dispatcher) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
