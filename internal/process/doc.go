// Package process runs external commands (the Go toolchain, the registry CLI)
// and returns a structured Result, so the pipeline can be driven by a fake
// Runner in tests.
package process
