// Package command runs external executables synchronously and captures their
// output.
//
// Runner is the seam every tool client depends on: production code uses
// ExecRunner, tests inject stubs that record invocations. A run returns the
// captured stdout, the tail of stderr, the exit code, and the wall time. A
// non-zero exit is reported as *ExitError so callers can surface the code.
package command
