package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// contentMatchTimeout bounds a single content pattern match.
const contentMatchTimeout = 2 * time.Second

// Options holds the resolved settings of one invocation, after defaults,
// the config file, environment variables and flags have been merged.
type Options struct {
	Types             []string
	Recursive         bool
	Output            string
	Directory         string
	IncludeHidden     bool
	Excludes          []string
	Gitignore         bool
	MaxDepth          int
	Encoding          string
	FallbackEncodings []string
	DryRun            bool
	ContentGrep       string
	FileSize          string
	ModifiedTime      string
	FollowSymlinks    bool
	Checksum          bool
	NoColor           bool
	Interactive       bool
	NoWarn            bool
	Verbose           bool
	Clipboard         bool
	PDF               string
	Tree              bool
	Pick              bool
	Stats             bool
	Tokenizer         string
	Model             string
	TokenizerFile     string
	Languages         string

	ConfigFile string // config file that was read, if any
}

// initConfig reads the config file and enables CODE2MD_* environment
// variables. A missing config file is not an error unless it was named
// explicitly.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "code2md"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	v.SetEnvPrefix("CODE2MD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return &ConfigError{Op: "read config file", Err: err}
	}
	return nil
}

// bindFlags binds every flag to a snake_case viper key and sets the
// defaults of the config-only keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "help" || f.Name == "version" {
			return
		}
		err = errors.Join(err, v.BindPFlag(configKey(f.Name), f))
	})
	v.SetDefault("fallback_encodings", []string{})
	v.SetDefault("default_excludes", []string{})
	return err
}

func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// loadOptions reads the merged settings from v.
func loadOptions(v *viper.Viper, flags *pflag.FlagSet) (Options, error) {
	opts := Options{
		Types:             v.GetStringSlice("type"),
		Recursive:         v.GetBool("recursive"),
		Output:            v.GetString("output"),
		Directory:         v.GetString("directory"),
		IncludeHidden:     v.GetBool("include_invisible"),
		Gitignore:         v.GetBool("gitignore"),
		MaxDepth:          v.GetInt("max_depth"),
		Encoding:          v.GetString("encoding"),
		FallbackEncodings: v.GetStringSlice("fallback_encodings"),
		DryRun:            v.GetBool("dry_run"),
		ContentGrep:       v.GetString("content_grep"),
		FileSize:          v.GetString("file_size"),
		ModifiedTime:      v.GetString("modified_time"),
		FollowSymlinks:    v.GetBool("follow_symlinks"),
		Checksum:          v.GetBool("checksum"),
		NoColor:           v.GetBool("no_color"),
		Interactive:       v.GetBool("interactive"),
		NoWarn:            v.GetBool("no_warn"),
		Verbose:           v.GetBool("verbose"),
		Clipboard:         v.GetBool("clipboard"),
		PDF:               v.GetString("pdf"),
		Tree:              v.GetBool("tree"),
		Pick:              v.GetBool("pick"),
		Stats:             v.GetBool("stats"),
		Tokenizer:         v.GetString("tokenizer"),
		Model:             v.GetString("model"),
		TokenizerFile:     v.GetString("tokenizer_file"),
		Languages:         v.GetString("languages"),
		ConfigFile:        v.ConfigFileUsed(),
	}

	// Exclusion patterns may contain commas inside character classes, so
	// flag values are taken as given instead of through viper's CSV split.
	switch {
	case flags.Changed("exclude"):
		excludes, err := flags.GetStringArray("exclude")
		if err != nil {
			return Options{}, &ConfigError{Op: "exclude", Err: err}
		}
		opts.Excludes = excludes
	case v.IsSet("exclude"):
		opts.Excludes = v.GetStringSlice("exclude")
	default:
		opts.Excludes = v.GetStringSlice("default_excludes")
	}
	return opts, nil
}

// NewFilterSpec validates opts and builds the filter configuration. Every
// failure is a ConfigError.
func NewFilterSpec(opts Options, loc *time.Location) (*FilterSpec, error) {
	spec := &FilterSpec{
		Extensions:     make(map[string]struct{}),
		Recursive:      opts.Recursive,
		MaxDepth:       opts.MaxDepth,
		IncludeHidden:  opts.IncludeHidden,
		UseGitignore:   opts.Gitignore,
		FollowSymlinks: opts.FollowSymlinks,
	}
	if spec.MaxDepth < 0 {
		spec.MaxDepth = -1
	}

	for _, t := range opts.Types {
		for _, ext := range strings.Split(t, ",") {
			ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if ext != "" {
				spec.Extensions[ext] = struct{}{}
			}
		}
	}

	for _, raw := range opts.Excludes {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		rule, err := ParseExcludeRule(raw)
		if err != nil {
			return nil, &ConfigError{Op: "exclude", Err: err}
		}
		spec.Excludes = append(spec.Excludes, rule)
	}

	if opts.FileSize != "" {
		f, err := ParseSizeFilter(opts.FileSize)
		if err != nil {
			return nil, &ConfigError{Op: "file-size", Err: err}
		}
		spec.Size = f
	}
	if opts.ModifiedTime != "" {
		f, err := ParseTimeFilter(opts.ModifiedTime, loc)
		if err != nil {
			return nil, &ConfigError{Op: "modified-time", Err: err}
		}
		spec.ModTime = f
	}
	if opts.ContentGrep != "" {
		re, err := regexp2.Compile(opts.ContentGrep, regexp2.None)
		if err != nil {
			return nil, &ConfigError{Op: "content-grep", Err: fmt.Errorf("invalid pattern %q: %w", opts.ContentGrep, err)}
		}
		re.MatchTimeout = contentMatchTimeout
		spec.Content = re
	}
	return spec, nil
}
