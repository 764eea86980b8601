// Package deps locates the external transcoder and segmenter executables.
//
// Lookup mirrors how the tool has always found its helpers: an explicit path
// wins, then each configured search directory (the working directory and the
// standard binary directories by default), then PATH.
package deps
