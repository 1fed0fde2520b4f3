package cmd

import (
	"errors"

	"github.com/oshokin/binrelease/internal/config"
	"github.com/oshokin/binrelease/internal/domain/release"
	"github.com/oshokin/binrelease/internal/service/publisher"
	"github.com/oshokin/binrelease/internal/service/versioning"
)

// Exit codes returned by the binrelease CLI.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure (toolchain, filesystem, publish, divergence).
	ExitFailure = 1

	// ExitConfigError indicates a configuration error detected before any side effect.
	ExitConfigError = 2
)

// errUsage marks command line parsing failures.
var errUsage = errors.New("invalid usage")

//nolint:gochecknoglobals // Read-only classification table.
var configErrors = []error{
	errUsage,
	config.ErrInvalid,
	release.ErrUnknownOS,
	release.ErrUnknownArch,
	versioning.ErrInvalidVersion,
	versioning.ErrUnknownBumpClass,
	publisher.ErrInvalidTag,
}

// ExitCode maps an error returned by a command to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	for _, target := range configErrors {
		if errors.Is(err, target) {
			return ExitConfigError
		}
	}

	return ExitFailure
}
