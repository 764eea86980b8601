package preset

import (
	"fmt"
	"math"
	"strings"
)

// Aspect selects the frame shape used to derive preset widths.
type Aspect string

const (
	AspectWidescreen Aspect = "widescreen"
	AspectStandard   Aspect = "standard"
)

// ParseAspect resolves an aspect name. "16:9" and "4:3" are accepted as aliases.
func ParseAspect(value string) (Aspect, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "widescreen", "wide", "16:9":
		return AspectWidescreen, nil
	case "standard", "4:3":
		return AspectStandard, nil
	default:
		return "", fmt.Errorf("unknown aspect %q (valid: widescreen, standard)", value)
	}
}

// String implements fmt.Stringer.
func (a Aspect) String() string { return string(a) }

// Valid reports whether a is a supported aspect.
func (a Aspect) Valid() bool {
	return a == AspectWidescreen || a == AspectStandard
}

// ratio returns the width:height ratio terms for the aspect.
func (a Aspect) ratio() (int, int) {
	if a == AspectStandard {
		return 4, 3
	}
	return 16, 9
}

// WidthFor returns the even frame width matching height for the aspect.
func (a Aspect) WidthFor(height int) int {
	num, den := a.ratio()
	half := math.Round(float64(height*num) / float64(den) / 2)
	return int(half) * 2
}
