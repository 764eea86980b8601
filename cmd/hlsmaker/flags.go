package main

import (
	"strings"

	"github.com/spf13/pflag"

	"hlsmaker/internal/args"
	"hlsmaker/internal/preset"
)

type generateFlags struct {
	source           string
	output           string
	baseName         string
	tierSpecs        []string
	transcoder       string
	segmenter        string
	aspect           string
	failurePolicy    string
	keepIntermediate bool
}

// Tier, aspect and policy values are kept raw so their errors are reported
// together with every other argument problem.
func registerGenerateFlags(flags *pflag.FlagSet, gen *generateFlags) {
	flags.StringVarP(&gen.source, "input", "i", "", "Source video file")
	flags.StringVarP(&gen.output, "output", "o", "", "Output directory (default: working directory)")
	flags.StringVarP(&gen.baseName, "base-name", "b", "", "Base name for playlists and segments (default: output directory name)")
	flags.VarP(&tierListValue{specs: &gen.tierSpecs}, "tiers", "t", "Comma-separated tiers or total kbps values (default: all)")
	flags.StringVarP(&gen.transcoder, "transcoder", "h", "", "HandBrakeCLI path or name")
	flags.StringVarP(&gen.segmenter, "segmenter", "m", "", "mediafilesegmenter path or name")
	flags.StringVarP(&gen.aspect, "aspect", "r", "", "Frame shape: widescreen (16:9) or standard (4:3)")
	flags.StringVar(&gen.failurePolicy, "on-failure", "", "What to do when a preset fails: continue or halt")
	flags.BoolVar(&gen.keepIntermediate, "keep-intermediate", false, "Keep the transcoded MP4 for each preset")
}

func (g *generateFlags) arguments() (args.Arguments, []args.ValidationError) {
	tiers, aspect, errs := args.ParseSelection(g.tierSpecs, g.aspect)
	return args.Arguments{
		SourceFile:       g.source,
		OutputDirectory:  g.output,
		BaseName:         g.baseName,
		Tiers:            tiers,
		Aspect:           aspect,
		TranscoderPath:   g.transcoder,
		SegmenterPath:    g.segmenter,
		FailurePolicy:    g.failurePolicy,
		KeepIntermediate: g.keepIntermediate,
	}, errs
}

// tierListValue collects every -t occurrence unparsed.
type tierListValue struct {
	specs *[]string
}

func (v *tierListValue) String() string {
	if v.specs == nil {
		return ""
	}
	return strings.Join(*v.specs, ",")
}

func (v *tierListValue) Set(value string) error {
	if value = strings.TrimSpace(value); value != "" {
		*v.specs = append(*v.specs, value)
	}
	return nil
}

func (v *tierListValue) Type() string { return "tiers" }

type aspectValue struct {
	value *preset.Aspect
}

func (v *aspectValue) String() string {
	if v.value == nil {
		return ""
	}
	return v.value.String()
}

func (v *aspectValue) Set(value string) error {
	aspect, err := preset.ParseAspect(value)
	if err != nil {
		return err
	}
	*v.value = aspect
	return nil
}

func (v *aspectValue) Type() string { return "aspect" }
