// Package integration holds end-to-end tests of the release pipeline run
// against temporary project trees with faked toolchain and registry commands.
package integration
