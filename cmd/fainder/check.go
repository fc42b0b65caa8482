package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/boyter/gocodewalker"
	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fainder-search/fainder"
	"github.com/fainder-search/fainder/report"
)

func (a *app) checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Parse every query in .fq files and report unparsed COLUMN clauses",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "exit non-zero when a COLUMN clause is left in the keyword text",
			},
		},
		Action: a.runCheck,
	}
}

func (a *app) runCheck(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		args = []string{"."}
	}

	files, err := collectQueryFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return ErrNoQueryFiles
	}

	a.logger.Debug("checking query files", zap.Int("files", len(files)))

	summary, readErr := checkFiles(ctx, files)

	f, err := a.formatter(cmd)
	if err != nil {
		return err
	}

	err = f.Check(summary)
	if err != nil {
		return err
	}

	if readErr != nil {
		return readErr
	}

	if cmd.Bool("strict") && !summary.Ok() {
		return cli.Exit("", 1)
	}

	return nil
}

// checkFiles reads and parses files concurrently. Files that cannot be read
// are left out of the summary and their errors combined.
func checkFiles(ctx context.Context, files []string) (*report.CheckSummary, error) {
	results := make([]*report.FileResult, len(files))
	errs := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range files {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			data, err := os.ReadFile(filepath.Clean(path))
			if err != nil {
				errs[i] = fmt.Errorf("reading %s: %w", path, err)

				return nil
			}

			fr := report.CheckFile(path, data)
			results[i] = &fr

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	summary := &report.CheckSummary{}

	for _, fr := range results {
		if fr != nil {
			summary.Files = append(summary.Files, *fr)
		}
	}

	return summary, multierr.Combine(errs...)
}

// collectQueryFiles expands directories to the .fq files below them,
// respecting .gitignore. Files named explicitly are kept as given.
func collectQueryFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, arg)

			continue
		}

		var (
			mu    sync.Mutex
			found []string
		)

		err = walkDir(arg, func(path string) {
			mu.Lock()
			found = append(found, path)
			mu.Unlock()
		})
		if err != nil {
			return nil, err
		}

		slices.Sort(found)
		files = append(files, found...)
	}

	return files, nil
}

// walkDir walks a directory for query files, respecting .gitignore.
func walkDir(root string, callback func(path string)) error {
	fileListQueue := make(chan *gocodewalker.File, 100)

	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)
	fileWalker.AllowListExtensions = []string{fainder.QueryFileExtension}

	var (
		mu      sync.Mutex
		walkErr error
	)

	// The handler runs on the walker's goroutines.
	fileWalker.SetErrorHandler(func(e error) bool {
		mu.Lock()
		walkErr = multierr.Append(walkErr, e)
		mu.Unlock()

		return true
	})

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for f := range fileListQueue {
			if strings.HasSuffix(f.Location, "."+fainder.QueryFileExtension) {
				callback(f.Location)
			}
		}
	}()

	err := fileWalker.Start()
	if err != nil {
		return err
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()

	return walkErr
}
