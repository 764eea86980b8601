package args

import (
	"fmt"
	"strings"

	"hlsmaker/internal/config"
	"hlsmaker/internal/deps"
	"hlsmaker/internal/preflight"
	"hlsmaker/internal/preset"
	"hlsmaker/internal/textutil"
)

// Field names reported in validation errors.
const (
	FieldSourceFile      = "source_file"
	FieldOutputDirectory = "output_directory"
	FieldBaseName        = "base_name"
	FieldTiers           = "tiers"
	FieldAspect          = "aspect"
	FieldTranscoder      = "transcoder"
	FieldSegmenter       = "segmenter"
	FieldFailurePolicy   = "failure_policy"
)

// ValidationError describes one unmet precondition.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Options controls how validation resolves external tools.
type Options struct {
	Resolver deps.Resolver
}

// ParseSelection parses raw tier lists and an aspect name. Each bad token
// yields its own ValidationError. An empty aspect name stays empty so Resolve
// can apply the configured default.
func ParseSelection(tierSpecs []string, aspectName string) ([]preset.Tier, preset.Aspect, []ValidationError) {
	var errs []ValidationError

	tiers, tierErrs := preset.ParseTiers(strings.Join(tierSpecs, ","))
	for _, err := range tierErrs {
		errs = append(errs, ValidationError{Field: FieldTiers, Message: err.Error() + " (-t)"})
	}

	var aspect preset.Aspect
	if strings.TrimSpace(aspectName) != "" {
		parsed, err := preset.ParseAspect(aspectName)
		if err != nil {
			errs = append(errs, ValidationError{Field: FieldAspect, Message: err.Error() + " (-r)"})
		} else {
			aspect = parsed
		}
	}
	return tiers, aspect, errs
}

// Validate reports every broken precondition in a. An empty result means the
// run may start.
func Validate(a Arguments, opts Options) []ValidationError {
	_, errs := Prepare(a, opts)
	return errs
}

// Prepare validates a and returns a copy with the base name sanitized and
// tool paths resolved to absolute executables.
func Prepare(a Arguments, opts Options) (Arguments, []ValidationError) {
	var errs []ValidationError
	add := func(field, format string, values ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, values...)})
	}

	if strings.TrimSpace(a.SourceFile) == "" {
		add(FieldSourceFile, "a source file is required (-i)")
	} else if result := preflight.CheckSourceFile("source", a.SourceFile); !result.Passed {
		add(FieldSourceFile, "%s", result.Detail)
	}

	if strings.TrimSpace(a.OutputDirectory) == "" {
		add(FieldOutputDirectory, "an output directory is required (-o)")
	} else if result := preflight.CheckOutputDirectory("output", a.OutputDirectory); !result.Passed {
		add(FieldOutputDirectory, "%s", result.Detail)
	}

	a.BaseName = textutil.SanitizeBaseName(a.BaseName)
	if a.BaseName == "" {
		add(FieldBaseName, "base name is empty after removing unsafe characters (-b)")
	}

	if len(a.Tiers) == 0 {
		add(FieldTiers, "at least one tier must be selected (-t)")
	}
	for _, tier := range a.Tiers {
		if !tier.Valid() {
			add(FieldTiers, "unknown tier %q", tier)
		}
	}

	if !a.Aspect.Valid() {
		add(FieldAspect, "unknown aspect %q (use widescreen or standard)", a.Aspect)
	}

	switch a.FailurePolicy {
	case config.FailurePolicyContinue, config.FailurePolicyHalt:
	default:
		add(FieldFailurePolicy, "must be %q or %q, got %q", config.FailurePolicyContinue, config.FailurePolicyHalt, a.FailurePolicy)
	}

	if resolved, err := opts.Resolver.Resolve(a.TranscoderPath); err != nil {
		add(FieldTranscoder, "%v (-h)", err)
	} else {
		a.TranscoderPath = resolved
	}
	if resolved, err := opts.Resolver.Resolve(a.SegmenterPath); err != nil {
		add(FieldSegmenter, "%v (-m)", err)
	} else {
		a.SegmenterPath = resolved
	}

	return a, errs
}
