// Package handbrake wraps HandBrakeCLI for the per-preset transcode step.
//
// Each preset becomes a single synchronous HandBrakeCLI invocation that writes
// an MP4 sized and bit-rate limited for its tier. The client owns argument
// construction and verifies the output file afterwards; sequencing and
// failure policy belong to the hls package.
package handbrake
