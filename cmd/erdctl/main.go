package main

import (
	"context"
	"os"

	"github.com/erd-studio/engine/internal/cli"
	"github.com/erd-studio/engine/internal/repository"
	"github.com/erd-studio/engine/internal/services"
	"github.com/erd-studio/engine/internal/templates"
	"github.com/erd-studio/engine/pkg/config"
	"github.com/erd-studio/engine/pkg/logger"
)

// open wires the project service to the configured store. Logs go to
// stderr so JSON output on stdout stays parseable.
func open(ctx context.Context, verbose bool) (services.ProjectService, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.InitWriter(level, "console", os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	store, release, err := repository.Open(ctx, cfg, log.Named("db"))
	if err != nil {
		return nil, nil, err
	}
	// No editor sessions live in this process, so there is nothing to evict.
	return services.NewProjectService(store, templates.New(), nil), func() error {
		logger.Sync()
		return release()
	}, nil
}

func main() {
	if err := cli.NewRootCommand(open).Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
