// Package logging builds the diagnostic logger used for everything that is
// not file content. It always writes to a stream other than the primary output.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Options selects the verbosity of the side-channel.
type Options struct {
	Verbose bool
	Quiet   bool
	// Color forces colored level names. When nil, color is enabled only if the
	// sink is a terminal.
	Color *bool
}

// Level maps the verbose/quiet pair to a zap level. Quiet wins over verbose.
func Level(verbose, quiet bool) zapcore.Level {
	switch {
	case quiet:
		return zapcore.ErrorLevel
	case verbose:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}

// New returns a console logger writing to w.
func New(w io.Writer, opts Options) *zap.Logger {
	cfg := zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}

	color := isTerminal(w)
	if opts.Color != nil {
		color = *opts.Color
	}
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(Level(opts.Verbose, opts.Quiet)),
	)
	return zap.New(core)
}

// Stderr is the logger used by the command.
func Stderr(opts Options) *zap.Logger {
	return New(os.Stderr, opts)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
