package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"constgen/internal/config"
	"constgen/internal/gen"
	"constgen/internal/scan"
	"constgen/internal/verify"
)

// generateCmd regenerates the constant files for the given packages
var generateCmd = &cobra.Command{
	Use:   "generate [packages...]",
	Short: "Generate concatenated constants for the given package directories",
	Long: `Scans each package directory for //constgen: directives, folds the
segment expressions, and writes the generated file. With --recursive,
directories are walked and every package containing Go files is processed.

Packages without directives are skipped. The generated file is only
rewritten when its content changes.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	dirs, err := resolveDirs(args)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	for _, dir := range dirs {
		dir := dir
		g.Go(func() error {
			return generatePackage(ctx, cfg, logger, dir)
		})
	}
	return g.Wait()
}

// generatePackage runs the full pipeline for one package directory:
// scan, fold, render, verify, write.
func generatePackage(ctx context.Context, cfg *config.Config, log *zap.Logger, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pkg, err := scan.New(log).ScanPackage(dir, cfg.Output)
	if err != nil {
		return fmt.Errorf("%s: %w", dir, err)
	}
	if len(pkg.Plans) == 0 {
		log.Debug("no directives found", zap.String("dir", dir))
		return nil
	}

	emitter := gen.New(log)
	src, err := emitter.Render(pkg.Name, pkg.Plans, gen.Options{BuildTag: cfg.BuildTag})
	if err != nil {
		return fmt.Errorf("%s: %w", dir, err)
	}

	if cfg.Verify {
		result := verify.New(log).Verify(src, pkg.Name, pkg.Plans)
		if !result.Valid {
			return fmt.Errorf("%s: verification failed: %s", dir, strings.Join(result.Errors, "; "))
		}
	}

	if _, err := emitter.WriteIfChanged(filepath.Join(dir, cfg.Output), src); err != nil {
		return fmt.Errorf("%s: %w", dir, err)
	}
	return nil
}

// resolveDirs turns the command arguments into the list of package
// directories to process. Without --recursive each argument is taken as a
// package directory; with it, each argument is walked for Go packages.
func resolveDirs(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	if !recursive {
		for _, dir := range args {
			info, err := os.Stat(dir)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				return nil, fmt.Errorf("not a directory: %s", dir)
			}
		}
		return args, nil
	}

	var dirs []string
	seen := make(map[string]bool)
	for _, root := range args {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if excluded(cfg, d.Name()) && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), ".go") || strings.HasSuffix(d.Name(), "_test.go") {
				return nil
			}
			dir := filepath.Dir(path)
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return dirs, nil
}

func excluded(cfg *config.Config, name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	for _, ex := range cfg.Exclude {
		if name == ex {
			return true
		}
	}
	return false
}
