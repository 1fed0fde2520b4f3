package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/binrelease/internal/domain/release"
	"github.com/oshokin/binrelease/internal/service/publisher"
)

var (
	// dryRun simulates the registry publish.
	dryRun bool
	// tag is the distribution tag.
	tag string
	// noBuild skips rebuilding the platform packages.
	noBuild bool

	// publishCmd bumps the version, rebuilds and publishes every package.
	publishCmd = &cobra.Command{
		Use:   "publish <patch|minor|major|x.y.z>",
		Short: "Bump the version, rebuild and publish every package",
		Long: `Computes the new version, writes it into package.json and every platform
package, rebuilds the platform packages and publishes the primary package
followed by every platform package. The first failed publish stops the run.

Versions are written locally even with --dry-run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_, err := fmt.Fprint(cmd.OutOrStdout(), publisher.Usage())
				return err
			}

			return publisher.Run(cmd.Context(), &publisher.Options{
				ConfigPath:  configPath,
				Instruction: args[0],
				DryRun:      dryRun,
				Tag:         tag,
				SkipBuild:   noBuild,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	publishCmd.Flags().BoolVar(&dryRun, "dry-run", false, "simulate the publish; versions are still updated locally")
	publishCmd.Flags().StringVar(&tag, "tag", release.DefaultTag, "distribution tag")
	publishCmd.Flags().BoolVar(&noBuild, "no-build", false, "skip rebuilding the platform packages")
}
