package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is the application version, set via ldflags.
var version = "dev"

// streams are the standard streams of one invocation.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// newRootCmd builds the code2md command. Each call has its own viper
// instance, so commands built for tests do not share settings.
func newRootCmd(s streams) *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "code2md [DIRECTORY]",
		Short: "code2md collects source files into a Markdown document.",
		Long: `code2md walks a directory, keeps the files that pass the extension,
visibility, exclusion, .gitignore, size, modification time and content
filters, and writes each of them as a fenced code block.`,
		Version: version,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return &ConfigError{Op: "arguments", Err: err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, cfgFile); err != nil {
				return err
			}
			opts, err := loadOptions(v, cmd.Flags())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if cmd.Flags().Changed("directory") {
					return &ConfigError{Op: "arguments", Err: fmt.Errorf("directory given both as argument and with --directory")}
				}
				opts.Directory = args[0]
			}
			return run(cmd.Context(), opts, s)
		},
	}
	cmd.SetIn(s.in)
	cmd.SetOut(s.out)
	cmd.SetErr(s.err)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ConfigError{Op: "flags", Err: err}
	})

	flags := cmd.Flags()

	// Filtering
	flags.StringSliceP("type", "t", nil, "File extensions to include (repeatable, comma-separated, e.g. py,go)")
	flags.BoolP("recursive", "R", false, "Descend into subdirectories")
	flags.IntP("max-depth", "D", -1, "Maximum directory depth when recursive (-1 for no limit)")
	flags.BoolP("include-invisible", "A", false, "Include hidden files and directories")
	flags.StringArrayP("exclude", "e", nil, "Exclusion glob (repeatable): dir/** prunes a tree, dir/* only its files")
	flags.Bool("gitignore", false, "Respect .gitignore files")
	flags.String("file-size", "", `Size filter, e.g. ">1K" or "<=2MB"`)
	flags.String("modified-time", "", `Modification time filter, e.g. ">2024-01-01"`)
	flags.StringP("content-grep", "G", "", "Keep only files with a line matching this regular expression")
	flags.BoolP("follow-symlinks", "l", false, "Follow symbolic links")

	// Input
	flags.StringP("directory", "d", ".", "Directory to scan, or a git repository URL to clone")
	flags.String("encoding", "", "Decode every file with this encoding (e.g. utf-8, gbk, latin1)")
	flags.String("languages", "", "YAML file extending the extension to language table")

	// Output
	flags.StringP("output", "o", "-", "Output file, - for stdout")
	flags.BoolP("clipboard", "c", false, "Copy output to the clipboard")
	flags.String("pdf", "", "Save output as a syntax-highlighted PDF")
	flags.Bool("tree", false, "Prepend a tree of the matched files")
	flags.Bool("checksum", false, "Add the MD5 checksum of each file to its heading")
	flags.Bool("dry-run", false, "List matched files without reading them")

	// Interaction
	flags.BoolP("interactive", "i", false, "Ask before including each file")
	flags.Bool("pick", false, "Select files with a fuzzy finder before processing")
	flags.Bool("no-color", false, "Disable coloured progress output")
	flags.Bool("no-warn", false, "Suppress warnings")
	flags.Bool("verbose", false, "Print debug output")

	// Statistics
	flags.Bool("stats", false, "Print a summary to stderr")
	flags.String("tokenizer", "", "Count tokens with tiktoken or huggingface")
	flags.String("model", "", "Model name for the tokenizer (e.g. gpt-4o, gpt2)")
	flags.String("tokenizer-file", "", "Path to a local tokenizer.json")

	flags.StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.config/code2md/config.toml)")

	cobra.CheckErr(bindFlags(v, flags))
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

// run performs one invocation with resolved options.
func run(ctx context.Context, opts Options, s streams) error {
	logger := newLogger(s.err, logLevel(opts.NoWarn, opts.Verbose))
	defer func() { _ = logger.Sync() }()
	if opts.ConfigFile != "" {
		logger.Debug("using config file", zap.String("path", opts.ConfigFile))
	}

	spec, err := NewFilterSpec(opts, time.Local)
	if err != nil {
		return err
	}
	if opts.MaxDepth >= 0 && !opts.Recursive {
		logger.Debug("--max-depth has no effect without --recursive")
	}
	langs, err := LoadLanguageTable(opts.Languages)
	if err != nil {
		return err
	}
	if opts.Checksum && opts.DryRun {
		logger.Debug("--checksum is ignored with --dry-run")
	}
	reader, err := NewReader(opts.Encoding, opts.FallbackEncodings, opts.Checksum && !opts.DryRun)
	if err != nil {
		return err
	}
	sink, err := newSink(opts, s.out)
	if err != nil {
		return err
	}

	var tokenizer Tokenizer
	if opts.Tokenizer != "" && !opts.DryRun {
		tokenizer, err = newTokenizer(TokenizerConfig{Kind: opts.Tokenizer, Model: opts.Model, File: opts.TokenizerFile}, logger)
		if err != nil {
			return &ConfigError{Op: "tokenizer", Err: err}
		}
		defer tokenizer.Close()
	}

	root, rootName := opts.Directory, ""
	if isGitURL(root) {
		var progress io.Writer
		if opts.Verbose {
			progress = s.err
		}
		logger.Debug("cloning repository", zap.String("url", root))
		dir, cleanup, err := cloneGitRepo(ctx, root, progress)
		if err != nil {
			return &ConfigError{Op: "directory", Err: err}
		}
		defer cleanup()
		root, rootName = dir, strings.TrimSuffix(path.Base(opts.Directory), ".git")
	}
	if rootName == "" {
		if abs, err := filepath.Abs(root); err == nil {
			rootName = filepath.Base(abs)
		}
	}

	reporter := NewReporter(ReporterConfig{
		Progress: s.err,
		Color:    colorEnabled(s.err, opts.NoColor),
		DryRun:   opts.DryRun,
		Tree:     opts.Tree,
		RootName: rootName,
	})

	p := &Pipeline{
		Matcher:   NewMatcher(spec, logger),
		Reader:    reader,
		Formatter: NewFormatter(langs),
		Reporter:  reporter,
		Tokenizer: tokenizer,
		DryRun:    opts.DryRun,
		Logger:    logger,
	}
	if opts.Interactive && !opts.DryRun {
		if !stdinIsTerminal(s.in) {
			logger.Warn("standard input is not a terminal, answers are read from it")
		}
		p.Prompter = newLinePrompter(s.in, s.err)
	}
	if opts.Pick {
		p.Pick = pickEntries
	}

	if err := p.Run(ctx, root, outputPaths(opts)...); err != nil {
		return err
	}
	if err := reporter.Flush(sink); err != nil {
		return err
	}
	if opts.Stats {
		writeSummary(s.err, reporter.Summary(), tokenizer != nil)
	}
	return nil
}

// newSink selects where the document goes. At most one of a file, the
// clipboard and a PDF may be chosen; stdout is the default.
func newSink(opts Options, stdout io.Writer) (Sink, error) {
	toFile := opts.Output != "" && opts.Output != "-"
	chosen := 0
	for _, on := range []bool{toFile, opts.Clipboard, opts.PDF != ""} {
		if on {
			chosen++
		}
	}
	if chosen > 1 {
		return nil, &ConfigError{Op: "output", Err: fmt.Errorf("--output, --clipboard and --pdf are mutually exclusive")}
	}

	switch {
	case opts.PDF != "":
		if opts.DryRun {
			return nil, &ConfigError{Op: "output", Err: fmt.Errorf("--pdf cannot be combined with --dry-run")}
		}
		if err := checkWritable(opts.PDF); err != nil {
			return nil, err
		}
		return pdfSink{path: opts.PDF}, nil
	case opts.Clipboard:
		return clipboardSink{}, nil
	case toFile:
		if err := checkWritable(opts.Output); err != nil {
			return nil, err
		}
		return fileSink{path: opts.Output}, nil
	default:
		return writerSink{w: stdout, name: "stdout"}, nil
	}
}

// checkWritable fails early when an output file could not be created at the
// end of the run.
func checkWritable(p string) error {
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return &OutputError{Sink: p, Err: fmt.Errorf("is a directory")}
	}
	dir, err := os.Stat(filepath.Dir(p))
	if err != nil {
		return &OutputError{Sink: p, Err: err}
	}
	if !dir.IsDir() {
		return &OutputError{Sink: p, Err: fmt.Errorf("%s is not a directory", filepath.Dir(p))}
	}
	return nil
}

// outputPaths lists the files this run writes, so the walk never picks them up.
func outputPaths(opts Options) []string {
	var paths []string
	if opts.Output != "" && opts.Output != "-" {
		paths = append(paths, opts.Output)
	}
	if opts.PDF != "" {
		paths = append(paths, opts.PDF)
	}
	return paths
}

// colorEnabled reports whether progress output to w should be coloured.
func colorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
