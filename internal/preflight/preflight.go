package preflight

import (
	"path/filepath"

	"hlsmaker/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the environment checks used by the deps command.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	if cfg.LogFilePath() != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if cfg.Metrics.TextfilePath != "" {
		results = append(results, CheckOutputDirectory("Metrics directory", filepath.Dir(cfg.Metrics.TextfilePath)))
	}

	return results
}
