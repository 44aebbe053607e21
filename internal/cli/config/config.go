// --- START OF FINAL REVISED FILE internal/cli/config/config.go ---
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/brandonaviram/proof/pkg/proof"
	"github.com/brandonaviram/proof/pkg/proof/cache"
	"github.com/brandonaviram/proof/pkg/proof/manifest"
	"github.com/brandonaviram/proof/pkg/util"
)

const (
	EnvPrefix         = "PROOF"
	DefaultConfigName = "proof"

	// Rotation settings for --log-file.
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// Overridable in tests.
var (
	now              = time.Now
	stderr io.Writer = os.Stderr
)

// flagKeys maps flag names onto the configuration keys they override.
// Inverted booleans (--no-tui, --no-cache) and --clear-cache are applied by hand.
var flagKeys = map[string]string{
	"client":          "client",
	"title":           "title",
	"date":            "date",
	"columns":         "columns",
	"output":          "outputPath",
	"manifest-only":   "manifestOnly",
	"manifest-format": "manifestFormat",
	"dry-run":         "dryRun",
	"verbose":         "verbose",
	"auto-orient":     "autoOrient",
	"concurrency":     "concurrency",
	"ignore":          "ignore",
	"template":        "templateFile",
	"log-file":        "logFile",
}

// DefineFlags registers every configuration flag on fs.
func DefineFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default searches ./proof.yaml, ~/.config/proof, ~/.proof)")
	fs.String("profile", "", "configuration profile to apply from the config file")

	fs.StringP("client", "c", proof.DefaultClient, "client name shown on the proof")
	fs.StringP("title", "t", "", "optional document title")
	fs.StringP("date", "d", "", "delivery date, YYYY-MM-DD (default today)")
	fs.Int("columns", proof.DefaultColumns, fmt.Sprintf("thumbnail grid columns (%d-%d)", proof.MinColumns, proof.MaxColumns))
	fs.StringP("output", "o", "", "output PDF path (default {client}-delivery-{date}.pdf)")
	fs.Bool("manifest-only", false, "print a manifest to stdout instead of rendering a PDF")
	fs.String("manifest-format", string(proof.DefaultManifestFormat), "manifest format: tsv, json, yaml or toml")
	fs.Bool("dry-run", false, "list the assets that would be processed and exit")
	fs.BoolP("verbose", "v", false, "enable debug logging")
	fs.Bool("no-tui", false, "disable the interactive dashboard")
	fs.Bool("auto-orient", proof.DefaultAutoOrient, "apply EXIF orientation before measuring images")
	fs.Int("concurrency", proof.DefaultConcurrency, "number of parallel workers (0 = number of CPUs)")
	fs.StringArray("ignore", nil, "gitignore-style pattern to skip (repeatable)")
	fs.Bool("no-cache", false, "do not read or write the metadata cache")
	fs.Bool("clear-cache", false, "clear the metadata cache before running")
	fs.String("template", "", "custom Typst template file")
	fs.String("log-file", "", "write logs to a rotating file")
}

// LoadAndValidate loads configuration from all sources (defaults, file, profile, env, flags),
// validates the merged result and derives the remaining values (date, output path,
// dashboard state). It also builds the run logger.
func LoadAndValidate(inputPath, cfgFile, profileName, appVersion string, flags *pflag.FlagSet) (proof.Options, *slog.Logger, error) {
	var opts proof.Options
	v := viper.New()

	// Early errors go to stderr before the final destination is known.
	tempLogger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	setDefaults(v)

	// --- Load Config File ---
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
			v.AddConfigPath(filepath.Join(home, "."+DefaultConfigName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			used := cfgFile
			if used == "" {
				used = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", used), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error reading config file '%s': %w", used, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
	}

	// --- Apply Profile ---
	opts.ProfileName = profileName
	if profileName != "" {
		profileKey := "profiles." + profileName
		profile := v.Sub(profileKey)
		if profile == nil {
			configPath := v.ConfigFileUsed()
			if configPath == "" {
				configPath = "(no config file found)"
			}
			err := fmt.Errorf("%w: profile '%s' not found in config file '%s'", proof.ErrConfigValidation, profileName, configPath)
			tempLogger.Error(err.Error())
			return opts, tempLogger, err
		}
		if err := v.MergeConfigMap(profile.AllSettings()); err != nil {
			return opts, tempLogger, fmt.Errorf("error merging profile '%s': %w", profileName, err)
		}
	}

	// --- Bind Environment Variables ---
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Bind Flags (Highest Priority) ---
	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return opts, tempLogger, fmt.Errorf("error binding flag '--%s': %w", name, err)
			}
		}
	}

	opts.AppVersion = appVersion
	if err := v.Unmarshal(&opts); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.Any("error", err))
		return opts, tempLogger, fmt.Errorf("error unmarshalling configuration: %w", err)
	}
	opts.InputPath = inputPath

	if flags != nil {
		if flags.Changed("no-tui") {
			if noTui, _ := flags.GetBool("no-tui"); noTui {
				opts.TuiEnabled = false
			}
		}
		if flags.Changed("no-cache") {
			if noCache, _ := flags.GetBool("no-cache"); noCache {
				opts.CacheEnabled = false
			}
		}
		opts.ClearCache, _ = flags.GetBool("clear-cache")
	}

	// --- Validation and Derivations ---
	if err := validateAndDeriveOptions(&opts); err != nil {
		tempLogger.Error("Invalid configuration", slog.String("error", err.Error()))
		return opts, tempLogger, err
	}

	// --- Setup Final Logger ---
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(logWriter(opts), &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	opts.Logger = logHandler

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", opts.ConfigFilePath),
		slog.String("profile", opts.ProfileName),
		slog.String("client", opts.Client),
		slog.String("date", opts.Date),
		slog.Int("columns", opts.Columns),
		slog.Bool("tui", opts.TuiEnabled),
		slog.Bool("cache", opts.CacheEnabled),
	)
	return opts, logger, nil
}

// setDefaults establishes the default values for configuration options in Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("client", proof.DefaultClient)
	v.SetDefault("title", "")
	v.SetDefault("date", "")
	v.SetDefault("columns", proof.DefaultColumns)
	v.SetDefault("outputPath", "")
	v.SetDefault("manifestOnly", false)
	v.SetDefault("manifestFormat", string(proof.DefaultManifestFormat))
	v.SetDefault("dryRun", false)
	v.SetDefault("verbose", false)
	v.SetDefault("tuiEnabled", proof.DefaultTuiEnabled)
	v.SetDefault("autoOrient", proof.DefaultAutoOrient)
	v.SetDefault("concurrency", proof.DefaultConcurrency)
	v.SetDefault("ignore", []string{})
	v.SetDefault("cache", proof.DefaultCacheEnabled)
	v.SetDefault("cacheFile", "")
	v.SetDefault("templateFile", "")
	v.SetDefault("logFile", "")
	v.SetDefault("tools.ffprobe", proof.DefaultFFprobe)
	v.SetDefault("tools.ffmpeg", proof.DefaultFFmpeg)
	v.SetDefault("tools.typst", proof.DefaultTypst)
}

func validateAndDeriveOptions(opts *proof.Options) error {
	if opts.InputPath == "" {
		return fmt.Errorf("%w: input directory is required", proof.ErrConfigValidation)
	}

	opts.Client = strings.TrimSpace(opts.Client)
	if opts.Client == "" {
		opts.Client = proof.DefaultClient
	}

	if opts.Date == "" {
		opts.Date = now().Format(proof.DateLayout)
	} else if _, err := time.Parse(proof.DateLayout, opts.Date); err != nil {
		return fmt.Errorf("%w: invalid value for 'date': '%s' (expected YYYY-MM-DD)", proof.ErrConfigValidation, opts.Date)
	}

	if opts.Columns < proof.MinColumns || opts.Columns > proof.MaxColumns {
		return fmt.Errorf("%w: invalid value for 'columns': %d (must be between %d and %d)",
			proof.ErrConfigValidation, opts.Columns, proof.MinColumns, proof.MaxColumns)
	}

	format, err := manifest.ParseFormat(string(opts.ManifestFormat))
	if err != nil {
		return fmt.Errorf("%w: invalid value for 'manifestFormat': %w", proof.ErrConfigValidation, err)
	}
	opts.ManifestFormat = format

	if opts.Concurrency < 0 {
		return fmt.Errorf("%w: invalid value for 'concurrency': %d (must be 0 or greater)", proof.ErrConfigValidation, opts.Concurrency)
	}

	if opts.OutputPath == "" {
		opts.OutputPath = DefaultOutputName(opts.Client, opts.Date)
	}

	if opts.TemplatePath != "" {
		abs, err := filepath.Abs(opts.TemplatePath)
		if err != nil {
			return fmt.Errorf("%w: cannot resolve 'templateFile' '%s': %w", proof.ErrConfigValidation, opts.TemplatePath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("%w: template file '%s' does not exist or cannot be accessed: %w", proof.ErrConfigValidation, abs, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: template path '%s' is a directory, not a file", proof.ErrConfigValidation, abs)
		}
		opts.TemplatePath = abs
	}

	if (opts.CacheEnabled || opts.ClearCache) && opts.CacheFilePath == "" {
		if p, err := cache.DefaultPath(); err == nil {
			opts.CacheFilePath = p
		} else {
			// No usable cache directory on this system.
			opts.CacheEnabled = false
		}
	}

	// The dashboard owns the terminal; any mode that prints to it disables it.
	if opts.ManifestOnly || opts.DryRun || opts.Verbose {
		opts.TuiEnabled = false
	}
	return nil
}

// DefaultOutputName returns "{client lowercased, spaces→-}-delivery-{date}.pdf".
func DefaultOutputName(client, date string) string {
	return fmt.Sprintf("%s-delivery-%s.pdf", util.Slugify(client), date)
}

// logWriter picks the log destination: the rotating log file when configured,
// nothing while the dashboard owns the terminal, stderr otherwise.
func logWriter(opts proof.Options) io.Writer {
	switch {
	case opts.LogFile != "":
		return &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
		}
	case opts.TuiEnabled:
		return io.Discard
	default:
		return stderr
	}
}

// --- END OF FINAL REVISED FILE internal/cli/config/config.go ---
