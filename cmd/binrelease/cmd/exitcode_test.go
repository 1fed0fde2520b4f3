package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/binrelease/internal/config"
	"github.com/oshokin/binrelease/internal/domain/release"
	"github.com/oshokin/binrelease/internal/service/builder"
	"github.com/oshokin/binrelease/internal/service/publisher"
	"github.com/oshokin/binrelease/internal/service/versioning"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: ExitSuccess},
		{name: "invalid config", err: fmt.Errorf("load: %w", config.ErrInvalid), want: ExitConfigError},
		{name: "unknown os", err: fmt.Errorf("target plan9/amd64: %w", release.ErrUnknownOS), want: ExitConfigError},
		{name: "unknown arch", err: release.ErrUnknownArch, want: ExitConfigError},
		{name: "invalid version", err: versioning.ErrInvalidVersion, want: ExitConfigError},
		{name: "unknown bump class", err: versioning.ErrUnknownBumpClass, want: ExitConfigError},
		{name: "invalid tag", err: publisher.ErrInvalidTag, want: ExitConfigError},
		{name: "usage", err: fmt.Errorf("%w: unknown flag", errUsage), want: ExitConfigError},
		{name: "build failure", err: fmt.Errorf("%w: boom", builder.ErrBuildFailed), want: ExitFailure},
		{name: "divergence", err: versioning.ErrInconsistent, want: ExitFailure},
		{
			name: "publish failure",
			err:  &publisher.UnitError{Unit: "pkg", ExitCode: 1, Err: publisher.ErrPublishFailed},
			want: ExitFailure,
		},
		{name: "anything else", err: errors.New("disk full"), want: ExitFailure}, //nolint:err113 // Test input.
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
