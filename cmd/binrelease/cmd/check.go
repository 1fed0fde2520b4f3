package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/binrelease/internal/service/versioning"
)

// checkCmd reports version divergences without changing anything.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every package version agrees with package.json",
	Long: `Compares every platform package manifest and every optionalDependencies
entry with the version of the primary package.json. Nothing is modified;
the command exits with status 1 when any divergence is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return versioning.RunCheck(cmd.Context(), &versioning.CheckOptions{
			ConfigPath: configPath,
			Output:     cmd.OutOrStdout(),
		})
	},
}
