package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/fainder-search/fainder"
	"github.com/fainder-search/fainder/client"
)

func (a *app) searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Send a query to the search backend",
		ArgsUsage: "[query...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "page",
				Usage: "result page",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "per-page",
				Usage: "results per page (default: config)",
			},
			&cli.BoolFlag{
				Name:  "normalize",
				Usage: "send the normalized query instead of the raw text",
			},
		},
		Action: a.runSearch,
	}
}

func (a *app) newClient() (*client.Client, error) {
	return client.NewFromConfig(a.cfg.Search, client.WithLogger(a.logger.Named("client")))
}

func (a *app) runSearch(ctx context.Context, cmd *cli.Command) error {
	queries, err := a.queries(cmd)
	if err != nil {
		return err
	}

	c, err := a.newClient()
	if err != nil {
		return err
	}

	f, err := a.formatter(cmd)
	if err != nil {
		return err
	}

	for _, q := range queries {
		if cmd.Bool("normalize") {
			q = fainder.FormatQuery(q)
		}

		resp, err := c.Search(ctx, client.Request{
			Query:   q,
			Page:    cmd.Int("page"),
			PerPage: cmd.Int("per-page"),
		})
		if err != nil {
			return err
		}

		err = f.Search(resp)
		if err != nil {
			return err
		}
	}

	return nil
}

func (a *app) cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the backend's query cache",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Print cache hits, misses and size",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					c, err := a.newClient()
					if err != nil {
						return err
					}

					info, err := c.CacheStatistics(ctx)
					if err != nil {
						return err
					}

					f, err := a.formatter(cmd)
					if err != nil {
						return err
					}

					return f.Cache(info)
				},
			},
			{
				Name:  "clear",
				Usage: "Clear the query cache",
				Action: func(ctx context.Context, _ *cli.Command) error {
					c, err := a.newClient()
					if err != nil {
						return err
					}

					err = c.ClearCache(ctx)
					if err != nil {
						return err
					}

					_, err = fmt.Fprintln(a.stdout, "cache cleared")

					return err
				},
			},
		},
	}
}
