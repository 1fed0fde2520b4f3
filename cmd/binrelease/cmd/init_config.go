package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/binrelease/internal/config"
	"github.com/oshokin/binrelease/internal/logger"
)

var (
	// force overwrites an existing settings file.
	force bool

	errSettingsExist = errors.New("settings file already exists")

	// initCmd writes the default settings file.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a default release settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s: %w (use --force to overwrite)", configPath, errSettingsExist)
			}

			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			logger.InfoKV(cmd.Context(), "Release settings written", "path", configPath)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing settings file")
}
