// Package builder cross-compiles the released executable for every catalog
// target in parallel and, through Run, chains the synthesizer to turn the
// binaries into platform packages.
//
// The output tree is clean-room: every platform subdirectory of the bin
// directory is removed before a build, while plain files and other directories
// next to them (such as a checked-in wrapper script) are kept.
package builder
