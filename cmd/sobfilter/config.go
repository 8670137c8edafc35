package main

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/sobfilter/internal/errors/cfgerror"
	"gitlab.com/gitlab-org/sobfilter/internal/log"
)

// Config is the configuration used to run sobfilter. It is loaded from an optional TOML file and
// the environment, where the environment takes precedence over the file. Command line flags are
// applied on top of both.
type Config struct {
	// Identity is the value written after "Signed-off-by: ". It is nil if no source has set it,
	// which is different from being set to an empty value.
	Identity *string `toml:"identity,omitempty" envconfig:"SOB"`
	// DeduplicateTrailers removes repeated Signed-off-by lines from rewritten messages.
	DeduplicateTrailers bool `toml:"deduplicate_trailers,omitempty" envconfig:"SOBFILTER_DEDUPLICATE_TRAILERS"`
	// LogDir is the directory sobfilter.log is written to. Logs are discarded if unset.
	LogDir string `toml:"log_dir,omitempty" envconfig:"SOBFILTER_LOG_DIR"`
	// LogFormat is either "text" or "json".
	LogFormat string `toml:"log_format,omitempty" envconfig:"SOBFILTER_LOG_FORMAT"`
	// LogLevel is the minimum level of log messages that are written.
	LogLevel string `toml:"log_level,omitempty" envconfig:"SOBFILTER_LOG_LEVEL"`
}

func defaultConfig() Config {
	return Config{
		LogFormat: log.FormatText,
		LogLevel:  logrus.InfoLevel.String(),
	}
}

// loadConfig loads the configuration from the TOML file at path, if given, and from the
// environment.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("load toml: %w", err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for sanity. All problems are reported at once.
func (cfg Config) Validate() error {
	return cfgerror.New().
		Append(cfgerror.IsSet(cfg.Identity), "identity").
		Append(cfgerror.IsSupportedValue(cfg.LogFormat, log.SupportedFormats...), "log_format").
		Append(validateLogLevel(cfg.LogLevel), "log_level").
		AsError()
}

func validateLogLevel(level string) error {
	_, err := logrus.ParseLevel(level)
	return err
}

func (cfg Config) logConfig() log.Config {
	return log.Config{
		Dir:    cfg.LogDir,
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	}
}
