package internal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goplus/runme/internal/driver"
	"github.com/goplus/runme/internal/logging"
	"github.com/goplus/runme/internal/runner"
	"github.com/goplus/runme/internal/variant"
)

var (
	verbose      bool
	noColor      bool
	variantsFile string
	dryRun       bool
)

var rootCmd = &cobra.Command{
	Use:   "runme",
	Short: "Configure, build and test every build variant",
	Long: `runme prepares one out-of-tree build directory per variant below build/,
configures each with cmake, builds each and runs each directory's test target.

The built-in variants are host, ming (cross-compiled with the MinGW toolchain
file) and ming-unicode (the same with -DUNICODE=1). The first failing command
stops the run and its exit status becomes runme's.`,
	Args:              usageArgs(cobra.NoArgs),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	RunE:              runAll,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured log output")
	rootCmd.PersistentFlags().StringVarP(&variantsFile, "file", "f", "", "Read variants from a YAML file instead of the built-in set")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the commands without running them")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}

// Execute runs the command line and returns the process exit code.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	logger := newLogger()
	logger.Error().Err(err).Msg("runme failed")
	return exitCode(err)
}

func newLogger() zerolog.Logger {
	logging.TraceErrors(verbose)
	return logging.New(os.Stderr, verbose, !noColor && logging.ColorEnabled(os.Stderr))
}

func setupLogging(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cmd.SetContext(logging.WithLogger(cmd.Context(), &logger))
	return nil
}

func loadVariants() (*variant.Set, error) {
	if variantsFile == "" {
		return variant.Default(), nil
	}
	return variant.Load(variantsFile)
}

func runAll(cmd *cobra.Command, args []string) error {
	set, err := loadVariants()
	if err != nil {
		return err
	}

	r := runner.New()
	r.DryRun = dryRun
	return driver.New(set, r).Run(cmd.Context())
}
