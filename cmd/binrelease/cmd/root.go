package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/binrelease/internal/config"
	"github.com/oshokin/binrelease/internal/logger"
	"github.com/oshokin/binrelease/internal/version"
)

var (
	// configPath to the release settings YAML file.
	configPath string
	// logLevel is the minimum level written to stderr.
	logLevel string

	// rootCmd represents the base command of the release pipeline.
	rootCmd = &cobra.Command{
		Use:   "binrelease",
		Short: "Build, package and publish a Go binary as npm platform packages",
		Long: `binrelease cross-compiles one Go executable for every supported platform,
wraps each binary in its own npm package selected through os/cpu fields,
keeps all package versions in step with the primary package.json and
publishes the primary package followed by every platform package.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%w: unknown log level %q", errUsage, logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
	}
)

// Execute runs the binrelease CLI and exits with the status matching the error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	code := ExitCode(err)
	if err != nil {
		logger.ErrorKV(ctx, "Command failed", "error", err, "exit_code", code)
	}

	os.Exit(code)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to release settings file")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	rootCmd.AddCommand(buildCmd, checkCmd, bumpCmd, publishCmd, initCmd)
}
