package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePrimary = `{
  "name": "@winner-fed/go-deploy",
  "version": "1.0.0",
  "description": "deploy tool & friends",
  "bin": {
    "go-deploy": "bin/go-deploy.js"
  },
  "optionalDependencies": {
    "@winner-fed/go-deploy-darwin-x64": "^1.0.0",
    "@winner-fed/go-deploy-win32-x64": "^0.9.0"
  },
  "license": "MIT"
}
`

// TestDocument_PreservesOrderAndUnknownFields rewrites one field and compares the output byte for byte.
func TestDocument_PreservesOrderAndUnknownFields(t *testing.T) {
	t.Parallel()

	doc, err := ParseDocument([]byte(samplePrimary))
	require.NoError(t, err)
	require.Equal(t, []string{"name", "version", "description", "bin", "optionalDependencies", "license"}, doc.Keys())

	require.NoError(t, doc.Set("version", "1.0.1"))

	out := doc.Bytes()

	want := `{
  "name": "@winner-fed/go-deploy",
  "version": "1.0.1",
  "description": "deploy tool & friends",
  "bin": {
    "go-deploy": "bin/go-deploy.js"
  },
  "optionalDependencies": {
    "@winner-fed/go-deploy-darwin-x64": "^1.0.0",
    "@winner-fed/go-deploy-win32-x64": "^0.9.0"
  },
  "license": "MIT"
}
`
	require.Equal(t, want, string(out))
}

// TestDocument_SetAppendsNewKeys checks that new keys land at the end.
func TestDocument_SetAppendsNewKeys(t *testing.T) {
	t.Parallel()

	doc, err := ParseDocument([]byte(`{"b":1,"a":2}`))
	require.NoError(t, err)
	require.NoError(t, doc.Set("c", []string{"x"}))
	require.True(t, doc.Has("c"))
	require.Equal(t, []string{"b", "a", "c"}, doc.Keys())
	require.Equal(t, []string{"x"}, doc.Strings("c"))
	require.JSONEq(t, `{"b":1,"a":2,"c":["x"]}`, string(doc.Bytes()))
}

// TestDocument_ScopedKeys sets and reads keys containing path characters.
func TestDocument_ScopedKeys(t *testing.T) {
	t.Parallel()

	doc, err := ParseDocument([]byte(`{"deps":{"@acme/tool.cli-linux-x64":"^1.0.0","other":"^1.0.0"}}`))
	require.NoError(t, err)

	path := "deps." + Key("@acme/tool.cli-linux-x64")
	require.Equal(t, "^1.0.0", doc.Get(path).String())

	require.NoError(t, doc.Set(path, "^2.0.0"))
	require.Equal(t,
		`{"deps":{"@acme/tool.cli-linux-x64":"^2.0.0","other":"^1.0.0"}}`,
		string(doc.Bytes()))
}

// TestParseDocument_CopiesInput keeps edits away from the caller's buffer.
func TestParseDocument_CopiesInput(t *testing.T) {
	t.Parallel()

	input := []byte(`{"version":"1.0.0"}`)

	doc, err := ParseDocument(input)
	require.NoError(t, err)
	require.NoError(t, doc.Set("version", "9.9.9"))
	require.Equal(t, `{"version":"1.0.0"}`, string(input))
}

// TestParseDocument_Rejects covers non-object and malformed input.
func TestParseDocument_Rejects(t *testing.T) {
	t.Parallel()

	for _, input := range []string{`[]`, `"x"`, `{"a":`, `{"a":1} {}`, ``} {
		_, err := ParseDocument([]byte(input))
		require.Error(t, err, input)
	}
}

// TestPrimary_VersionAndConstraints covers the primary manifest helpers.
func TestPrimary_VersionAndConstraints(t *testing.T) {
	t.Parallel()

	primary, err := ParsePrimary([]byte(samplePrimary))
	require.NoError(t, err)
	require.Equal(t, "@winner-fed/go-deploy", primary.Name())

	v, err := primary.Version()
	require.NoError(t, err)
	require.Equal(t, "1.0.0", v)

	require.NoError(t, primary.SetVersion("2.0.0"))
	require.NoError(t, primary.SetConstraints("^2.0.0"))

	deps, err := primary.Dependencies()
	require.NoError(t, err)
	require.Equal(t, []Dependency{
		{Name: "@winner-fed/go-deploy-darwin-x64", Constraint: "^2.0.0"},
		{Name: "@winner-fed/go-deploy-win32-x64", Constraint: "^2.0.0"},
	}, deps)

	require.Equal(t, strings.NewReplacer("1.0.0", "2.0.0", "0.9.0", "2.0.0").Replace(samplePrimary),
		string(primary.Bytes()))

	noVersion, err := ParsePrimary([]byte(`{"name":"x"}`))
	require.NoError(t, err)

	_, err = noVersion.Version()
	require.ErrorIs(t, err, ErrNoVersion)

	deps, err = noVersion.Dependencies()
	require.NoError(t, err)
	require.Empty(t, deps)
	require.NoError(t, noVersion.SetConstraints("^1.0.0"))
}

// TestPrimary_RejectsNonObjectDependencies refuses an optionalDependencies array.
func TestPrimary_RejectsNonObjectDependencies(t *testing.T) {
	t.Parallel()

	primary, err := ParsePrimary([]byte(`{"version":"1.0.0","optionalDependencies":["a"]}`))
	require.NoError(t, err)

	_, err = primary.Dependencies()
	require.ErrorIs(t, err, errNotObject)
	require.ErrorIs(t, primary.SetConstraints("^1.0.0"), errNotObject)
}
