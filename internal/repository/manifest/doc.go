// Package manifest reads and writes the package manifests of a release: the
// primary package.json and one package.json per platform package.
//
// Existing manifests are handled as ordered JSON documents so that rewriting a
// version keeps key order and unknown fields intact. Generated platform
// manifests are validated against an embedded JSON schema before they are
// written.
package manifest
