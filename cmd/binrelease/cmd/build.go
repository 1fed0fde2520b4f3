package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/binrelease/internal/service/builder"
)

// buildCmd cleans the output directory, builds every target and synthesizes the platform packages.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Cross-compile every target and create the platform packages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return builder.Run(cmd.Context(), &builder.Options{ConfigPath: configPath})
	},
}
