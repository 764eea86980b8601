package preset

import (
	"fmt"
	"strconv"
)

// Preset is the immutable set of encoding parameters for one tier.
type Preset struct {
	Tier      Tier
	Aspect    Aspect
	Width     int
	Height    int
	HasAudio  bool
	Stereo    bool
	AudioKbps int
	VideoKbps int
}

// Kbps returns the combined audio and video bitrate.
func (p Preset) Kbps() int {
	return p.AudioKbps + p.VideoKbps
}

// Bandwidth returns the combined bitrate in bits per second, as written to
// variant playlists.
func (p Preset) Bandwidth() int {
	return p.Kbps() * 1000
}

// Resolution formats the frame size as WIDTHxHEIGHT.
func (p Preset) Resolution() string {
	return strconv.Itoa(p.Width) + "x" + strconv.Itoa(p.Height)
}

// Mixdown returns the audio channel layout name: none, mono or stereo.
func (p Preset) Mixdown() string {
	switch {
	case !p.HasAudio:
		return "none"
	case p.Stereo:
		return "stereo"
	default:
		return "mono"
	}
}

// Name returns the file stem used for this preset's artifacts.
func (p Preset) Name(baseName string) string {
	return fmt.Sprintf("%s_%d", baseName, p.Kbps())
}

type row struct {
	tier      Tier
	height    int
	audio     bool
	stereo    bool
	audioKbps int
	videoKbps int
}

func (r row) kbps() int { return r.audioKbps + r.videoKbps }

// table is ordered from slowest to fastest. Total bitrates are unique.
var table = []row{
	{tier: TierCellularMini, height: 224, videoKbps: 64},
	{tier: TierCellularSlow, height: 224, audio: true, audioKbps: 40, videoKbps: 110},
	{tier: TierCellularFast, height: 270, audio: true, audioKbps: 40, videoKbps: 200},
	{tier: TierWifiSlow, height: 360, audio: true, stereo: true, audioKbps: 64, videoKbps: 376},
	{tier: TierWifiMedium, height: 432, audio: true, stereo: true, audioKbps: 64, videoKbps: 576},
	{tier: TierWifiFast, height: 540, audio: true, stereo: true, audioKbps: 64, videoKbps: 1136},
	{tier: TierWifiVeryFast, height: 720, audio: true, stereo: true, audioKbps: 64, videoKbps: 1736},
}

func rowFor(tier Tier) (row, bool) {
	for _, r := range table {
		if r.tier == tier {
			return r, true
		}
	}
	return row{}, false
}

// Lookup returns the preset for tier at the given aspect. An empty aspect
// means widescreen.
func Lookup(tier Tier, aspect Aspect) (Preset, error) {
	r, ok := rowFor(tier)
	if !ok {
		return Preset{}, fmt.Errorf("unknown tier %q", tier)
	}
	if aspect == "" {
		aspect = AspectWidescreen
	}
	if !aspect.Valid() {
		return Preset{}, fmt.Errorf("unknown aspect %q (valid: widescreen, standard)", aspect)
	}
	return Preset{
		Tier:      r.tier,
		Aspect:    aspect,
		Width:     aspect.WidthFor(r.height),
		Height:    r.height,
		HasAudio:  r.audio,
		Stereo:    r.stereo,
		AudioKbps: r.audioKbps,
		VideoKbps: r.videoKbps,
	}, nil
}

// All returns every preset at the given aspect, slowest first.
func All(aspect Aspect) []Preset {
	presets := make([]Preset, 0, len(table))
	for _, r := range table {
		p, err := Lookup(r.tier, aspect)
		if err != nil {
			return nil
		}
		presets = append(presets, p)
	}
	return presets
}

// Select returns the presets for tiers in table order, slowest first.
// Duplicate tiers are collapsed.
func Select(tiers []Tier, aspect Aspect) ([]Preset, error) {
	wanted := make(map[Tier]bool, len(tiers))
	for _, tier := range tiers {
		if _, ok := rowFor(tier); !ok {
			return nil, fmt.Errorf("unknown tier %q", tier)
		}
		wanted[tier] = true
	}
	presets := make([]Preset, 0, len(wanted))
	for _, r := range table {
		if !wanted[r.tier] {
			continue
		}
		p, err := Lookup(r.tier, aspect)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// TierForKbps returns the tier whose total bitrate equals kbps exactly.
func TierForKbps(kbps int) (Tier, bool) {
	for _, r := range table {
		if r.kbps() == kbps {
			return r.tier, true
		}
	}
	return "", false
}

// NearestTier returns the fastest tier whose total bitrate does not exceed
// kbps. It reports false when kbps is below every tier.
func NearestTier(kbps int) (Tier, bool) {
	var (
		best  Tier
		found bool
	)
	for _, r := range table {
		if r.kbps() <= kbps {
			best = r.tier
			found = true
		}
	}
	return best, found
}
