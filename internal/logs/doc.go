// Package logs reads the hlsmaker log file for the `hlsmaker logs` command.
//
// Last returns the trailing lines with bounded memory and the byte offset
// where reading stopped. Follow resumes from that offset and polls for new
// lines until its context is cancelled.
package logs
