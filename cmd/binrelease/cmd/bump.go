package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/binrelease/internal/service/versioning"
)

// bumpCmd updates versions everywhere without building or publishing.
var bumpCmd = &cobra.Command{
	Use:   "bump <patch|minor|major|x.y.z>",
	Short: "Update the version in package.json and every platform package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return versioning.RunBump(cmd.Context(), &versioning.BumpOptions{
			ConfigPath:  configPath,
			Instruction: args[0],
		})
	},
}
