package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"constgen/internal/gen"
	"constgen/internal/scan"
	"constgen/internal/verify"
)

// verifyCmd checks generated files against the current directives
var verifyCmd = &cobra.Command{
	Use:   "verify [packages...]",
	Short: "Check that generated files are present and up to date",
	Long: `Re-folds the directives in each package and checks the generated file
on disk against the result: every declared constant must exist, hold the
expected value, and the file content must match a fresh render.

Exits non-zero when any package is stale. Intended for CI.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	dirs, err := resolveDirs(args)
	if err != nil {
		return err
	}

	var stale []string
	for _, dir := range dirs {
		if err := verifyPackage(dir); err != nil {
			logger.Error("verification failed", zap.String("dir", dir), zap.Error(err))
			stale = append(stale, dir)
		}
	}
	if len(stale) > 0 {
		return fmt.Errorf("stale or invalid generated files in: %s (run constgen generate)",
			strings.Join(stale, ", "))
	}
	logger.Info("all generated files verified", zap.Int("packages", len(dirs)))
	return nil
}

func verifyPackage(dir string) error {
	pkg, err := scan.New(logger).ScanPackage(dir, cfg.Output)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, cfg.Output)
	existing, err := os.ReadFile(path)
	if len(pkg.Plans) == 0 {
		if err == nil && gen.IsGenerated(existing) {
			return fmt.Errorf("%s exists but the package has no directives", cfg.Output)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("missing generated file %s: %w", cfg.Output, err)
	}

	result := verify.New(logger).Verify(existing, pkg.Name, pkg.Plans)
	if !result.Valid {
		return fmt.Errorf("%s", strings.Join(result.Errors, "; "))
	}

	fresh, err := gen.New(logger).Render(pkg.Name, pkg.Plans, gen.Options{BuildTag: cfg.BuildTag})
	if err != nil {
		return err
	}
	if !bytes.Equal(existing, fresh) {
		return fmt.Errorf("%s differs from a fresh render", cfg.Output)
	}
	return nil
}
