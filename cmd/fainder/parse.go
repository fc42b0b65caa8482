package main

import (
	"bufio"
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/fainder-search/fainder"
)

func (a *app) parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Split a query into COLUMN terms and keyword text",
		ArgsUsage: "[query...]",
		Description: "The arguments are joined into one query. Without arguments, " +
			"every non-blank line of stdin is parsed as a query.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "normalize",
				Usage: "print only the normalized query",
			},
		},
		Action: a.runParse,
	}
}

func (a *app) runParse(_ context.Context, cmd *cli.Command) error {
	queries, err := a.queries(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("normalize") {
		for _, q := range queries {
			_, err := a.stdout.Write([]byte(fainder.FormatQuery(q) + "\n"))
			if err != nil {
				return err
			}
		}

		return nil
	}

	f, err := a.formatter(cmd)
	if err != nil {
		return err
	}

	for _, q := range queries {
		err := f.Parse(q, fainder.ParseQuery(q))
		if err != nil {
			return err
		}
	}

	return nil
}

// queries returns the joined arguments, or the non-blank lines of stdin when
// there are none.
func (a *app) queries(cmd *cli.Command) ([]string, error) {
	if cmd.Args().Present() {
		return []string{strings.Join(cmd.Args().Slice(), " ")}, nil
	}

	var queries []string

	sc := bufio.NewScanner(a.stdin)
	for sc.Scan() {
		if q := strings.TrimSpace(sc.Text()); q != "" {
			queries = append(queries, q)
		}
	}

	err := sc.Err()
	if err != nil {
		return nil, err
	}

	if len(queries) == 0 {
		return nil, ErrNoQuery
	}

	return queries, nil
}
