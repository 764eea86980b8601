// Package main hosts the hlsmaker CLI entrypoint and command graph.
//
// The root command generates a rendition set from flags that mirror the
// traditional hlsmaker invocation (-i source, -o output, -t tiers, -h
// transcoder, -m segmenter). Because -h names the transcoder, help is only
// available as --help. Subcommands cover preset listing, dependency checks,
// run history, log viewing and configuration scaffolding.
package main
