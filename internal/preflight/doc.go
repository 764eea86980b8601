// Package preflight provides filesystem and tool readiness checks.
//
// These checks run in two contexts:
//   - Argument validation calls CheckSourceFile, CheckOutputDirectory and the
//     tool resolver before any external process is started.
//   - The CLI "hlsmaker deps" command uses CheckTools and RunAll to display
//     environment health.
package preflight
