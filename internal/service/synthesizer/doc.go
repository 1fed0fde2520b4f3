// Package synthesizer turns built binaries into publishable platform packages.
//
// Each package directory is recreated from scratch and receives the binary
// (installed with checksum verification), a generated package.json restricted
// to its os/cpu, and an index.js that resolves to the bundled binary. After a
// full run a release.yaml records the SHA-512 checksum of every binary.
package synthesizer
