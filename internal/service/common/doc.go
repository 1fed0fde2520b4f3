// Package common holds helpers shared by several services.
//
// It detects who runs a release (hostname/username, recorded in the release
// description) and whether another binrelease process is running.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
