// Package publisher drives the ordered, fail-fast registry publish of the
// primary package followed by every platform package.
package publisher
