package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	fieldselector "github.com/gpec/fieldselector"
	"github.com/gpec/fieldselector/internal/commands"
	"github.com/gpec/fieldselector/internal/config"
	"github.com/gpec/fieldselector/internal/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

func build() string {
	v, c := version, commit
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}
	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s) lib %s", v, c, fieldselector.GetVersion())
}

func main() {
	ctx := context.Background()

	var logCloser func()
	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "field-selector",
		Usage:     "Select fields of view for Ki67 scoring",
		UsageText: "field-selector [global options] command [command options]",
		Description: `field-selector pages a downsampled slide preview through a fixed-size panel and
keeps the selected fields of view in the selection string shared with the
scoring server and the nuclei counter.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("FIELD_SELECTOR_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("FIELD_SELECTOR_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.BoolFlag{
				Name:        "log-pretty",
				Usage:       "human-readable log output",
				Sources:     cli.EnvVars("FIELD_SELECTOR_LOG_PRETTY"),
				Value:       true,
				Destination: &flags.LogPretty,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("FIELD_SELECTOR_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			w, closer, err := logutils.Open(flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logCloser = closer

			logger, err := logutils.New(flags.LogLevel, w, flags.LogPretty && flags.LogFile == "")
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewDecodeCmd(flags).Register(app)
	app = commands.NewNormalizeCmd(flags).Register(app)
	app = commands.NewViewCmd(flags).Register(app)
	app = commands.NewOverlayCmd(flags).Register(app)
	app = commands.NewSuggestCmd(flags).Register(app)
	app = commands.NewExportCmd(flags).Register(app)

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
