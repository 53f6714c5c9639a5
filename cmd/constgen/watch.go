package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"constgen/internal/watch"
)

// watchCmd regenerates constants whenever source files change
var watchCmd = &cobra.Command{
	Use:   "watch [packages...]",
	Short: "Watch package directories and regenerate on change",
	Long: `Runs an initial generation for each package directory, then watches
the directories for Go source changes and regenerates. Changes are
debounced so editor save bursts trigger a single regeneration.

Stop with Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	dirs, err := resolveDirs(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Initial pass so the watcher starts from a consistent state.
	for _, dir := range dirs {
		if err := generatePackage(ctx, cfg, logger, dir); err != nil {
			logger.Warn("initial generation failed", zap.String("dir", dir), zap.Error(err))
		}
	}

	regen := func(ctx context.Context, dir string) error {
		return generatePackage(ctx, cfg, logger, dir)
	}
	w, err := watch.New(dirs, cfg.Output, cfg.DebounceDuration(), regen, logger)
	if err != nil {
		return err
	}
	w.Start(ctx)
	defer w.Stop()

	logger.Info("watching for changes", zap.Strings("dirs", dirs))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		logger.Info("shutting down")
	case <-ctx.Done():
	}

	stats := w.GetStats()
	logger.Info("watch session finished",
		zap.Int("events", stats.Events),
		zap.Int("regenerations", stats.Regenerations),
		zap.Int("errors", stats.Errors))
	return nil
}
