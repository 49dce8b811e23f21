package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"convert-generator/internal/config"
)

// envPrefix starts the environment variables overriding config keys, such
// as CONVERT_FILE_SUFFIX or CONVERT_LOG_LEVEL.
const envPrefix = "CONVERT"

// settings holds the persistent flags.
type settings struct {
	configPath string
	verbose    bool
	logLevel   string
	logFormat  string
	dryRun     bool
}

func (s *settings) register(flags *pflag.FlagSet) {
	flags.StringVar(&s.configPath, "config", "", "Path to the project file (default ./"+config.DefaultFilename+" when present)")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "Enable verbose output for debugging")
	flags.StringVar(&s.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&s.logFormat, "log-format", "", "Log format: console or json")
	flags.BoolVar(&s.dryRun, "dry-run", false, "Generate in memory without writing files")
}

// loadConfig reads the project file and layers environment variables and
// flags over it. A missing default project file is not an error; a missing
// file named with --config is.
func loadConfig(s *settings, flags *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Default()

	path := s.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFilename); err == nil {
			path = config.DefaultFilename
		}
	}

	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("patterns", cfg.Patterns)
	v.SetDefault("tag", cfg.Tag)
	v.SetDefault("file_suffix", cfg.FileSuffix)
	v.SetDefault("fallible_prefix", cfg.FalliblePrefix)
	v.SetDefault("comments", cfg.Comments)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)

	for key, flag := range map[string]string{"log.level": "log-level", "log.format": "log-format"} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}

	cfg.Patterns = v.GetStringSlice("patterns")
	cfg.Tag = v.GetString("tag")
	cfg.FileSuffix = v.GetString("file_suffix")
	cfg.FalliblePrefix = v.GetString("fallible_prefix")
	cfg.Comments = v.GetBool("comments")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")

	if s.verbose && !flags.Changed("log-level") {
		cfg.Log.Level = zerolog.DebugLevel.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newLogger builds the tool's logger. Console output is meant for humans on
// a terminal, json for CI logs.
func newLogger(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	if level == zerolog.NoLevel {
		return zerolog.Nop(), errors.New("log level must not be empty")
	}

	out := w
	if cfg.Format == config.FormatConsole {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
