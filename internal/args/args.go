package args

import (
	"path/filepath"
	"strings"

	"hlsmaker/internal/config"
	"hlsmaker/internal/preset"
)

// Arguments describes one generation run.
type Arguments struct {
	SourceFile       string
	OutputDirectory  string
	BaseName         string
	Tiers            []preset.Tier
	Aspect           preset.Aspect
	TranscoderPath   string
	SegmenterPath    string
	FailurePolicy    string
	KeepIntermediate bool
}

// Resolve fills unset fields from cfg and the working directory: the output
// directory defaults to workDir, the base name to the output directory's last
// path component, and tiers to the configured list or every tier.
func Resolve(a Arguments, cfg *config.Config, workDir string) Arguments {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}

	a.SourceFile = strings.TrimSpace(a.SourceFile)
	a.OutputDirectory = strings.TrimSpace(a.OutputDirectory)
	if a.OutputDirectory == "" {
		a.OutputDirectory = workDir
	}
	a.OutputDirectory = absolute(a.OutputDirectory, workDir)
	if a.SourceFile != "" {
		a.SourceFile = absolute(a.SourceFile, workDir)
	}

	a.BaseName = strings.TrimSpace(a.BaseName)
	if a.BaseName == "" && a.OutputDirectory != "" {
		a.BaseName = filepath.Base(a.OutputDirectory)
	}

	if len(a.Tiers) == 0 {
		if len(cfg.Output.Tiers) > 0 {
			tiers, errs := preset.ParseTiers(strings.Join(cfg.Output.Tiers, ","))
			if len(errs) == 0 {
				a.Tiers = tiers
			}
		} else {
			a.Tiers = preset.Tiers()
		}
	}

	if a.Aspect == "" {
		if aspect, err := preset.ParseAspect(cfg.Output.Aspect); err == nil {
			a.Aspect = aspect
		} else {
			a.Aspect = preset.AspectWidescreen
		}
	}

	if strings.TrimSpace(a.TranscoderPath) == "" {
		a.TranscoderPath = cfg.Tools.Transcoder
	}
	if strings.TrimSpace(a.SegmenterPath) == "" {
		a.SegmenterPath = cfg.Tools.Segmenter
	}
	if strings.TrimSpace(a.FailurePolicy) == "" {
		a.FailurePolicy = cfg.Output.FailurePolicy
	}
	a.FailurePolicy = strings.ToLower(strings.TrimSpace(a.FailurePolicy))
	a.KeepIntermediate = a.KeepIntermediate || cfg.Output.KeepIntermediate
	return a
}

func absolute(path, workDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if workDir == "" {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return filepath.Clean(path)
	}
	return filepath.Join(workDir, path)
}
