package main

import (
	"errors"
	"os"

	"github.com/fainder-search/fainder"
)

// loadConfig reads path when given, otherwise the nearest config walking up
// from the working directory. A missing config yields the defaults.
func loadConfig(path string) (*fainder.Config, error) {
	if path != "" {
		return fainder.LoadConfigFile(path)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := fainder.LoadConfig(wd)
	if errors.Is(err, fainder.ErrConfigNotFound) {
		return fainder.DefaultConfig(), nil
	}

	return cfg, err
}
