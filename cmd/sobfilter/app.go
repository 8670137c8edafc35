package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"
	"gitlab.com/gitlab-org/labkit/tracing"
	"gitlab.com/gitlab-org/sobfilter/internal/git/trailer"
	"gitlab.com/gitlab-org/sobfilter/internal/log"
	"gitlab.com/gitlab-org/sobfilter/internal/version"
)

const binaryName = "sobfilter"

func init() {
	// Override the version printer so that the output format matches the other binaries.
	cli.VersionPrinter = func(cCtx *cli.Context) {
		fmt.Fprintln(cCtx.App.Writer, version.GetVersionString(binaryName))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  binaryName,
		Usage: "append a Signed-off-by trailer to the commit message read from stdin",
		Description: "sobfilter is meant to be used as a message filter when rewriting history, e.g.\n\n" +
			"   SOB='Jane Doe <jane@example.com>' git filter-branch --msg-filter sobfilter",
		Version:         version.GetVersion(),
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "load configuration from the given TOML `FILE`",
				EnvVars: []string{"SOBFILTER_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "identity",
				Usage: "sign off with `IDENTITY` instead of the value of $SOB",
			},
			&cli.BoolFlag{
				Name:  "deduplicate-trailers",
				Usage: "keep only the first occurrence of repeated Signed-off-by lines",
			},
			&cli.StringFlag{
				Name:  "log-dir",
				Usage: "write sobfilter.log into `DIR`",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format, one of " + strings.Join(log.SupportedFormats, ", "),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "minimum log `LEVEL`",
			},
		},
		// Usage errors must not print the help text, as standard output is the rewritten commit
		// message.
		OnUsageError: func(cCtx *cli.Context, err error, isSubcommand bool) error {
			return err
		},
		Action: filterAction,
	}
}

func filterAction(cCtx *cli.Context) error {
	if cCtx.Args().Present() {
		return fmt.Errorf("unexpected arguments: %q", cCtx.Args().Slice())
	}

	cfg, err := loadConfig(cCtx.String("config"))
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	applyFlags(cCtx, &cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// This is only used to extract the correlation ID. The finished() call to clean up the
	// tracing will be a NOP unless tracing has been configured.
	ctx, finished := tracing.ExtractFromEnv(cCtx.Context)
	defer finished()

	logger, closer, err := log.NewFilterLogger(ctx, cfg.logConfig())
	if err != nil {
		fmt.Fprintf(cCtx.App.ErrWriter, "WARNING: initializing log file for %s: %v\n", binaryName, err)
	}
	defer closer.Close()

	message, err := io.ReadAll(cCtx.App.Reader)
	if err != nil {
		return fmt.Errorf("reading commit message from stdin: %w", err)
	}

	var opts []trailer.Option
	if cfg.DeduplicateTrailers {
		opts = append(opts, trailer.WithDeduplication())
	}

	reworked, err := trailer.Rework(trailer.TrimSpace(message), []byte(*cfg.Identity), opts...)
	if err != nil {
		logger.WithError(err).Error("rework commit message")
		return fmt.Errorf("rework commit message: %w", err)
	}

	if _, err := cCtx.App.Writer.Write(reworked); err != nil {
		return fmt.Errorf("writing commit message: %w", err)
	}

	logger.WithFields(log.Fields{
		"identity":      *cfg.Identity,
		"input_bytes":   len(message),
		"output_bytes":  len(reworked),
		"deduplicating": cfg.DeduplicateTrailers,
	}).Info("rewrote commit message")

	return nil
}

// applyFlags overrides the configuration with all flags that have been passed explicitly.
func applyFlags(cCtx *cli.Context, cfg *Config) {
	if cCtx.IsSet("identity") {
		identity := cCtx.String("identity")
		cfg.Identity = &identity
	}
	if cCtx.IsSet("deduplicate-trailers") {
		cfg.DeduplicateTrailers = cCtx.Bool("deduplicate-trailers")
	}
	if cCtx.IsSet("log-dir") {
		cfg.LogDir = cCtx.String("log-dir")
	}
	if cCtx.IsSet("log-format") {
		cfg.LogFormat = cCtx.String("log-format")
	}
	if cCtx.IsSet("log-level") {
		cfg.LogLevel = cCtx.String("log-level")
	}
}
