// Command fainder parses, checks and runs dataset search queries.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fainder-search/fainder"
	"github.com/fainder-search/fainder/report"
)

// app carries the state shared by every subcommand.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg    *fainder.Config
	logger *zap.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		cfg:    fainder.DefaultConfig(),
		logger: zap.NewNop(),
	}
}

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)

	err := a.command().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "fainder",
		Usage:     "Parse and run dataset search queries with COLUMN(...) predicates",
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file (default: nearest .fainder.yaml)",
				Sources: cli.EnvVars("FAINDER_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format (text, json, yaml)",
				Value:   fainder.FormatText,
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "search backend URL (overrides config)",
				Sources: cli.EnvVars("FAINDER_ENDPOINT"),
			},
			&cli.StringFlag{
				Name:    "index-type",
				Usage:   "index type (rebinning, conversion)",
				Sources: cli.EnvVars("FAINDER_INDEX_TYPE"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: a.before,
		After:  a.after,
		Commands: []*cli.Command{
			a.parseCommand(),
			a.checkCommand(),
			a.searchCommand(),
			a.evalCommand(),
			a.replCommand(),
			a.cacheCommand(),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return ctx, err
	}

	if v := cmd.String("endpoint"); v != "" {
		cfg.Search.Endpoint = v
	}

	if v := cmd.String("index-type"); v != "" {
		cfg.Search.IndexType = v
	}

	err = cfg.Validate()
	if err != nil {
		return ctx, err
	}

	logger, err := newLogger(cfg.Log, cmd.Bool("debug"))
	if err != nil {
		return ctx, fmt.Errorf("building logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger

	logger.Debug("loaded config",
		zap.String("endpoint", cfg.Search.Endpoint),
		zap.String("index_type", cfg.Search.IndexType),
	)

	return ctx, nil
}

func (a *app) after(context.Context, *cli.Command) error {
	_ = a.logger.Sync()

	return nil
}

// newLogger writes to stderr so stdout stays clean for command output.
func newLogger(cfg fainder.LogConfig, debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if cfg.Development {
		config = zap.NewDevelopmentConfig()
	}

	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	if debug {
		level = zapcore.DebugLevel
	}

	config.Level = zap.NewAtomicLevelAt(level)

	return config.Build()
}

//nolint:ireturn
func (a *app) formatter(cmd *cli.Command) (report.Formatter, error) {
	return report.NewFormatter(cmd.String("format"), a.stdout)
}
