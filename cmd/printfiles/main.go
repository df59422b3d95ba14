package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/PyBalance/printfiles/internal/discover"
	"github.com/PyBalance/printfiles/internal/format"
	"github.com/PyBalance/printfiles/internal/logging"
	"github.com/PyBalance/printfiles/internal/pipeline"
	"github.com/PyBalance/printfiles/internal/reader"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// options holds the raw flag values of one invocation.
type options struct {
	reader         string
	ext            string
	relativeFrom   string
	maxSize        int64
	binary         string
	sort           string
	followLinks    bool
	divider        string
	verbose        bool
	quiet          bool
	clip           string
	detectEncoding bool
	gitignore      bool
	exclude        []string
	jobs           int
	convertTimeout time.Duration

	printOut         bool
	copyOut          bool
	sshCopyOut       bool
	tokens           bool
	tokensModel      string
	profile          string
	setDefaultOutput string
}

// exitUsage is the status for bad flags, arguments and settings (EX_USAGE),
// kept apart from the statuses a run can end with.
const exitUsage = 64

// exitError carries a non-zero status out of RunE without printing usage.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func usageError(err error) error {
	return &exitError{code: exitUsage, err: err}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "printfiles [flags] <glob|dir>...",
		Short: "Print files matched by globs and directories between dividers",
		Long: `printfiles expands glob patterns and directories into a sorted, duplicate-free
list of files and prints each one wrapped in ===path=== / ===end of 'path'===
markers (or fenced code blocks, or <file> tags), ready to paste or diff.

Items may be separated by spaces or commas. Diagnostics go to stderr.
Exit status is 0 on success, 1 if some file could not be read, 2 if
nothing matched and 64 for invalid flags, arguments or settings.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("set-default-output") {
				return nil
			}
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args, stdout, stderr)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
	bindFlags(cmd, o)
	return cmd
}

func bindFlags(cmd *cobra.Command, o *options) {
	f := cmd.Flags()
	f.StringVar(&o.reader, "reader", "text", "Reader backend: text, textutil or auto")
	f.StringVar(&o.ext, "ext", "", "Comma-separated extensions kept when walking directories (e.g. go,md)")
	f.StringVar(&o.relativeFrom, "relative-from", "", "Show paths relative to this directory")
	f.Int64Var(&o.maxSize, "max-size", reader.NoSizeLimit, "Skip files larger than this many bytes (-1 for no limit)")
	f.StringVar(&o.binary, "binary", "skip", "Binary file handling: skip, hex, base64 or print")
	f.StringVar(&o.sort, "sort", "name", "Sort order: name, size or mtime")
	f.BoolVar(&o.followLinks, "follow-links", true, "Follow symbolic links to directories")
	f.StringVar(&o.divider, "divider", "equals", "Divider style: equals, triple-backtick or xml-tag")
	f.BoolVar(&o.verbose, "verbose", false, "Log every processed file")
	f.BoolVar(&o.quiet, "quiet", false, "Only log errors")
	f.StringVarP(&o.clip, "clip", "c", "", "Keep only the first N and last M lines of each file (N[:M], bare -c means 5:3)")
	f.Lookup("clip").NoOptDefVal = reader.DefaultClip.String()
	f.BoolVar(&o.detectEncoding, "detect-encoding", false, "Detect the charset of non-UTF-8 files instead of replacing invalid bytes")
	f.BoolVar(&o.gitignore, "gitignore", false, "Apply .gitignore rules and skip .git when walking directories")
	f.StringSliceVar(&o.exclude, "exclude", nil, "Gitignore-style patterns excluded when walking directories")
	f.IntVarP(&o.jobs, "jobs", "j", 1, "Number of files read in parallel")
	f.DurationVar(&o.convertTimeout, "convert-timeout", 0, "Timeout for one document conversion (default 30s when --jobs > 1)")
	f.BoolVar(&o.printOut, "print", false, "Write output to stdout")
	f.BoolVar(&o.copyOut, "copy", false, "Copy output to the system clipboard")
	f.BoolVar(&o.sshCopyOut, "ssh-copy", false, "Copy output to the local clipboard over SSH using OSC 52")
	f.BoolVar(&o.tokens, "tokens", false, "Report the token count of the output on stderr")
	f.StringVar(&o.tokensModel, "tokens-model", defaultTokenModel, "Model whose tokenizer --tokens uses")
	f.StringVar(&o.profile, "profile", "", "Profile from "+configFileName+" to apply")
	f.StringVar(&o.setDefaultOutput, "set-default-output", "", "Persist the default output mode (print, copy or ssh-copy) in ~/"+configFileName)
}

func run(cmd *cobra.Command, o *options, args []string, stdout, stderr io.Writer) error {
	if cmd.Flags().Changed("set-default-output") {
		if _, ok := normalizeOutputMode(o.setDefaultOutput); !ok {
			return usageError(fmt.Errorf("invalid output mode %q (expected print, copy, or ssh-copy)", o.setDefaultOutput))
		}
		path, err := writeHomeDefaultOutputMode(o.setDefaultOutput)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Default output mode saved to %s\n", path)
		if len(args) == 0 {
			return nil
		}
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	fileSettings, err := loadSettings(configFilePaths(workDir), o.profile)
	if err != nil {
		return usageError(err)
	}
	if err := applySettings(cmd, fileSettings); err != nil {
		return usageError(err)
	}

	mode, err := resolveOutputMode(fileSettings[outputKey], o.printOut, o.copyOut, o.sshCopyOut)
	if err != nil {
		return usageError(err)
	}

	cfg, err := o.config(cmd, args, workDir)
	if err != nil {
		return usageError(err)
	}

	logger := logging.New(stderr, logging.Options{Verbose: o.verbose, Quiet: o.quiet})
	defer func() { _ = logger.Sync() }()

	var buf bytes.Buffer
	out := io.Writer(&buf)
	if mode == outputModePrint && !o.tokens {
		out = stdout
	}

	summary, err := pipeline.NewRunner(cfg, pipeline.WithLogger(logger)).Run(cmd.Context(), out)
	if err != nil {
		return err
	}
	if summary.Status == pipeline.StatusNoMatch {
		return &exitError{code: int(pipeline.StatusNoMatch)}
	}

	if out == &buf {
		if err := emit(mode, buf.String(), stdout); err != nil {
			return err
		}
	}
	if mode != outputModePrint {
		logger.Info("output copied", zap.String("mode", mode), zap.Int("files", summary.Files))
	}
	if o.tokens {
		report, err := buildTokenReport(buf.String(), o.tokensModel, summary.Files)
		if err != nil {
			logger.Warn("token count failed", zap.Error(err))
		} else {
			fmt.Fprint(stderr, report)
		}
	}

	if summary.Status != pipeline.StatusOK {
		return &exitError{code: int(summary.Status)}
	}
	return nil
}

func emit(mode, data string, stdout io.Writer) error {
	switch mode {
	case outputModeCopy:
		return copyToClipboard(data)
	case outputModeSSHCopy:
		return copyToOSC52(stdout, data)
	default:
		_, err := io.WriteString(stdout, data)
		return err
	}
}

// config resolves flag values into a pipeline configuration.
func (o *options) config(cmd *cobra.Command, args []string, workDir string) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	cfg.Items = args
	cfg.WorkDir = workDir
	cfg.RelativeFrom = o.relativeFrom
	cfg.FollowSymlinks = o.followLinks
	cfg.Extensions = discover.ParseExtensions(o.ext)
	cfg.DetectEncoding = o.detectEncoding
	cfg.GitIgnore = o.gitignore
	cfg.Exclude = o.exclude
	cfg.ConvertTimeout = o.convertTimeout

	var err error
	if cfg.Backend, err = reader.ParseBackend(o.reader); err != nil {
		return cfg, err
	}
	if cfg.Binary, err = reader.ParseBinaryPolicy(o.binary); err != nil {
		return cfg, err
	}
	if cfg.Sort, err = discover.ParseSortKey(o.sort); err != nil {
		return cfg, err
	}
	if cfg.Divider, err = format.ParseScheme(o.divider); err != nil {
		return cfg, err
	}

	if o.maxSize < 0 && o.maxSize != reader.NoSizeLimit {
		return cfg, fmt.Errorf("invalid --max-size %d", o.maxSize)
	}
	cfg.MaxSize = o.maxSize

	if cmd.Flags().Changed("clip") {
		clip, err := reader.ParseClip(o.clip)
		if err != nil {
			return cfg, err
		}
		cfg.Clip = &clip
	}

	if o.jobs < 1 {
		return cfg, fmt.Errorf("invalid --jobs %d (must be at least 1)", o.jobs)
	}
	cfg.Jobs = o.jobs
	if o.convertTimeout < 0 {
		return cfg, fmt.Errorf("invalid --convert-timeout %s", o.convertTimeout)
	}
	return cfg, nil
}

func main() {
	err := newRootCmd(os.Stdout, os.Stderr).Execute()
	if err == nil {
		return
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintln(os.Stderr, exit.err)
		}
		os.Exit(exit.code)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
