// Package args holds the parsed command-line arguments for a generation run
// and validates them before any external process is started.
//
// Validation reports every broken precondition at once so the user can fix
// them in a single pass; it never returns a Go error and never panics.
package args
