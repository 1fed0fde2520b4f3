// Package config defines the release settings shared by every pipeline step
// and provides helpers to load (file + BINRELEASE_* environment), validate and
// save them in YAML format.
package config
