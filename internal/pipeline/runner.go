package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/PyBalance/printfiles/internal/discover"
	"github.com/PyBalance/printfiles/internal/format"
	"github.com/PyBalance/printfiles/internal/reader"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status is the aggregate outcome of a run, used as the process exit code.
type Status int

const (
	// StatusOK means every file was read and emitted.
	StatusOK Status = 0
	// StatusPartial means at least one file failed to read.
	StatusPartial Status = 1
	// StatusNoMatch means no token matched any file. Nothing was written.
	StatusNoMatch Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPartial:
		return "partial failure"
	case StatusNoMatch:
		return "no match"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Summary describes a finished run.
type Summary struct {
	Status Status
	// Files is the number of regions written.
	Files int
	// Failed is the number of files that could not be read.
	Failed int
}

// Runner executes a Config.
type Runner struct {
	cfg        Config
	logger     *zap.Logger
	transcoder reader.Transcoder
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the side-channel logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithTranscoder replaces the textutil converter.
func WithTranscoder(t reader.Transcoder) Option {
	return func(r *Runner) {
		r.transcoder = t
	}
}

// NewRunner returns a Runner for cfg.
func NewRunner(cfg Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.transcoder == nil {
		r.transcoder = reader.NewTextutil(cfg.convertTimeout())
	}
	if r.cfg.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			r.cfg.WorkDir = wd
		}
	}
	return r
}

// Run discovers, reads and writes every file to w. The returned error is
// set only when w fails or ctx is canceled; per-token and per-file problems
// are logged and folded into the Summary status.
func (r *Runner) Run(ctx context.Context, w io.Writer) (Summary, error) {
	records := r.discover()
	if len(records) == 0 {
		r.logger.Warn("no files matched")
		return Summary{Status: StatusNoMatch}, nil
	}

	results, err := r.read(ctx, records)
	if err != nil {
		return Summary{}, err
	}

	return r.write(w, records, results)
}

// write commits results in record order and flushes once.
func (r *Runner) write(w io.Writer, records []discover.Record, results []reader.Result) (Summary, error) {
	relativeFrom := r.relativeFrom()
	out := format.NewWriter(w, r.cfg.Divider)
	summary := Summary{Status: StatusOK}
	for i, rec := range records {
		res := results[i]
		display := format.DisplayPath(rec.Path, relativeFrom, r.cfg.WorkDir)
		if err := out.WriteRegion(display, res.Encoding, res.Body); err != nil {
			return summary, fmt.Errorf("failed to write output: %w", err)
		}
		summary.Files++
		if res.Err != nil {
			summary.Failed++
			summary.Status = StatusPartial
		}
	}
	if err := out.Flush(); err != nil {
		return summary, fmt.Errorf("failed to write output: %w", err)
	}
	return summary, nil
}

func (r *Runner) discover() []discover.Record {
	matcher := &discover.Matcher{
		Root:             r.cfg.WorkDir,
		Extensions:       r.cfg.Extensions,
		FollowSymlinks:   r.cfg.FollowSymlinks,
		RespectGitIgnore: r.cfg.GitIgnore,
		Exclude:          r.cfg.Exclude,
		Logger:           r.logger,
	}
	collector := discover.NewCollector(r.cfg.WorkDir)
	for _, token := range discover.SplitTokens(r.cfg.Items) {
		collector.Add(matcher.Match(token)...)
	}
	return collector.Records(r.cfg.Sort)
}

func (r *Runner) dispatcher() *reader.Dispatcher {
	return &reader.Dispatcher{
		Root:           r.cfg.WorkDir,
		Backend:        r.cfg.Backend,
		Binary:         r.cfg.Binary,
		MaxSize:        r.cfg.MaxSize,
		Transcoder:     r.transcoder,
		Clip:           r.cfg.Clip,
		DetectEncoding: r.cfg.DetectEncoding,
		Logger:         r.logger,
	}
}

// read obtains every body. With more than one job the reads run
// concurrently, but results stay indexed by record so commit order is the
// collector's order.
func (r *Runner) read(ctx context.Context, records []discover.Record) ([]reader.Result, error) {
	d := r.dispatcher()
	results := make([]reader.Result, len(records))

	if r.cfg.Jobs < 2 {
		for i, rec := range records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = d.Read(ctx, rec)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Jobs)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = d.Read(gctx, rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) relativeFrom() string {
	base := r.cfg.RelativeFrom
	if base == "" || filepath.IsAbs(base) {
		return base
	}
	return filepath.Join(r.cfg.WorkDir, base)
}
