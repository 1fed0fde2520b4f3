package release

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTargets_FixedOrder verifies the catalog content and order.
func TestTargets_FixedOrder(t *testing.T) {
	t.Parallel()

	got := Targets()
	require.Equal(t, []Target{
		{OS: "darwin", Arch: "amd64"},
		{OS: "darwin", Arch: "arm64"},
		{OS: "linux", Arch: "amd64"},
		{OS: "linux", Arch: "arm64"},
		{OS: "windows", Arch: "amd64", Suffix: ".exe"},
	}, got)

	// Callers get a copy.
	got[0].OS = "plan9"
	require.Equal(t, "darwin", Targets()[0].OS)
}

// TestPlatforms_TotalAndInjective checks every target maps and no two share an identifier pair.
func TestPlatforms_TotalAndInjective(t *testing.T) {
	t.Parallel()

	platforms, err := Platforms(Targets())
	require.NoError(t, err)
	require.Len(t, platforms, len(Targets()))

	seen := make(map[Platform]struct{}, len(platforms))
	for _, p := range platforms {
		_, dup := seen[p]
		require.False(t, dup, p.ID())

		seen[p] = struct{}{}
	}

	require.Equal(t, []string{"darwin-x64", "darwin-arm64", "linux-x64", "linux-arm64", "win32-x64"},
		[]string{platforms[0].ID(), platforms[1].ID(), platforms[2].ID(), platforms[3].ID(), platforms[4].ID()})
	require.True(t, platforms[4].IsWindows())
	require.False(t, platforms[2].IsWindows())
}

// TestMap_UnknownIdentifiers ensures unmapped names are configuration errors.
func TestMap_UnknownIdentifiers(t *testing.T) {
	t.Parallel()

	_, err := MapOS("freebsd")
	require.ErrorIs(t, err, ErrUnknownOS)

	_, err = MapArch("386")
	require.ErrorIs(t, err, ErrUnknownArch)

	_, err = Platforms([]Target{{OS: "linux", Arch: "riscv64"}})
	require.ErrorIs(t, err, ErrUnknownArch)
}

// TestNamingHelpers covers package names and constraints.
func TestNamingHelpers(t *testing.T) {
	t.Parallel()

	p := Platform{OS: "linux", CPU: "arm64"}
	require.Equal(t, "@winner-fed/go-deploy-linux-arm64", PackageName("@winner-fed/go-deploy", p))
	require.Equal(t, "^1.2.3", Constraint("1.2.3"))
	require.Contains(t, Divergence{Kind: DivergenceVersionMismatch, Entity: "x"}.String(), "version-mismatch")
}

func TestIsPlatformID(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"darwin-x64", "darwin-arm64", "linux-x64", "linux-arm64", "win32-x64", "win32-arm64"} {
		require.True(t, IsPlatformID(id), id)
	}

	for _, id := range []string{"helpers", "linux-amd64", "windows-x64", "linux", "linux-x64-old", ""} {
		require.False(t, IsPlatformID(id), id)
	}
}
