package playlist

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"hlsmaker/internal/fileutil"
)

const (
	headerTag  = "#EXTM3U"
	versionTag = "#EXT-X-VERSION:3"
	streamTag  = "#EXT-X-STREAM-INF:"
)

// Variant is one rendition referenced from the variant playlist.
type Variant struct {
	// URI is relative to the variant playlist.
	URI string
	// Bandwidth is the peak bit rate in bits per second.
	Bandwidth int
	Width     int
	Height    int
	HasAudio  bool
}

// RenderVariant returns the variant playlist text. Entries are ordered by
// ascending bandwidth so clients start from the lowest tier.
func RenderVariant(variants []Variant) (string, error) {
	if len(variants) == 0 {
		return "", errors.New("variant playlist requires at least one variant")
	}
	sorted := append([]Variant(nil), variants...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Bandwidth < sorted[j].Bandwidth
	})

	var b strings.Builder
	b.WriteString(headerTag + "\n")
	b.WriteString(versionTag + "\n")
	for _, v := range sorted {
		if strings.TrimSpace(v.URI) == "" {
			return "", errors.New("variant URI required")
		}
		if v.Bandwidth <= 0 {
			return "", fmt.Errorf("variant %s: bandwidth must be positive", v.URI)
		}
		attrs := fmt.Sprintf("BANDWIDTH=%d", v.Bandwidth)
		if v.Width > 0 && v.Height > 0 {
			attrs += fmt.Sprintf(",RESOLUTION=%dx%d", v.Width, v.Height)
		}
		b.WriteString(streamTag + attrs + "\n")
		b.WriteString(v.URI + "\n")
	}
	return b.String(), nil
}

// WriteVariant renders variants and atomically replaces path with the result.
func WriteVariant(path string, variants []Variant) error {
	content, err := RenderVariant(variants)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write variant playlist: %w", err)
	}
	return nil
}
