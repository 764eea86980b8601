// Package textutil provides small text helpers for file naming and
// human-readable output.
package textutil
