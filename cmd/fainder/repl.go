package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/fainder-search/fainder/repl"
)

func (a *app) replCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Interactive prompt showing the parse as you type",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "only parse, never contact the backend",
			},
		},
		Action: a.runRepl,
	}
}

func (a *app) runRepl(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("offline") {
		return repl.Run(ctx, nil, a.stdin, a.stdout)
	}

	c, err := a.newClient()
	if err != nil {
		return err
	}

	return repl.Run(ctx, c, a.stdin, a.stdout)
}
