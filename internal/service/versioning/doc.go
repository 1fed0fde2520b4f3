// Package versioning computes release versions, propagates them from the
// primary manifest to every platform manifest and checks that they agree.
package versioning
