package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"constgen/internal/config"
)

var (
	// Global flags
	verbose   bool
	cfgPath   string
	output    string
	buildTag  string
	noVerify  bool
	recursive bool

	// Loaded in PersistentPreRunE
	logger *zap.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "constgen",
	Short: "constgen - compile-time constant concatenation for Go",
	Long: `constgen scans Go packages for //constgen: directives and emits a
generated file holding the concatenated constants.

Directives live on their own comment line inside a package:

  //constgen:string Greeting = "Hello, ", Name, '!'
  //constgen:bytes Magic = "\x7fELF", 0x01
  //constgen:slice Table []float64 = first, second

String results become untyped string constants; bytes and slices become
package-level variables. Segment expressions are evaluated in package
scope, so named constants and earlier directive results may be referenced.

Run without a subcommand to generate for the packages given as arguments
(default: current directory).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		// Flags win over the config file.
		if cmd.Flags().Changed("output") {
			cfg.Output = output
		}
		if cmd.Flags().Changed("build-tag") {
			cfg.BuildTag = buildTag
		}
		if noVerify {
			cfg.Verify = false
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runGenerate,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultFile, "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Name of the generated file")
	rootCmd.PersistentFlags().StringVar(&buildTag, "build-tag", "", "Build tag for the generated file")
	rootCmd.PersistentFlags().BoolVar(&noVerify, "no-verify", false, "Skip verification of generated declarations")
	rootCmd.PersistentFlags().BoolVarP(&recursive, "recursive", "r", false, "Walk package directories recursively")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
