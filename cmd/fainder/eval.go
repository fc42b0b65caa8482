package main

import (
	"context"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/fainder-search/fainder"
	"github.com/fainder-search/fainder/eval"
)

func (a *app) evalCommand() *cli.Command {
	return &cli.Command{
		Name:      "eval",
		Usage:     "Evaluate a query's COLUMN terms against local column profiles",
		ArgsUsage: "[query...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profiles",
				Aliases: []string{"p"},
				Usage:   "column profile file, YAML or JSON (default: eval.profiles from config)",
			},
		},
		Action: a.runEval,
	}
}

func (a *app) runEval(_ context.Context, cmd *cli.Command) error {
	path := cmd.String("profiles")
	if path == "" {
		path = a.cfg.Eval.Profiles
	}

	if path == "" {
		return ErrNoProfiles
	}

	queries, err := a.queries(cmd)
	if err != nil {
		return err
	}

	profiles, err := eval.LoadProfiles(path)
	if err != nil {
		return err
	}

	a.logger.Debug("loaded profiles",
		zap.String("path", path),
		zap.Int("columns", len(profiles.Columns)),
	)

	ev := eval.New(profiles, eval.WithLogger(a.logger.Named("eval")))

	f, err := a.formatter(cmd)
	if err != nil {
		return err
	}

	for _, q := range queries {
		matches, err := ev.Evaluate(fainder.ParseQuery(q))
		if err != nil {
			return err
		}

		err = f.Matches(q, matches)
		if err != nil {
			return err
		}
	}

	return nil
}
