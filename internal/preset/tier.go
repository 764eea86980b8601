package preset

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tier is a named connection-speed class.
type Tier string

const (
	TierCellularMini Tier = "cellular-mini"
	TierCellularSlow Tier = "cellular-slow"
	TierCellularFast Tier = "cellular-fast"
	TierWifiSlow     Tier = "wifi-slow"
	TierWifiMedium   Tier = "wifi-medium"
	TierWifiFast     Tier = "wifi-fast"
	TierWifiVeryFast Tier = "wifi-very-fast"
)

// Tiers returns every supported tier from slowest to fastest.
func Tiers() []Tier {
	tiers := make([]Tier, 0, len(table))
	for _, row := range table {
		tiers = append(tiers, row.tier)
	}
	return tiers
}

// String implements fmt.Stringer.
func (t Tier) String() string { return string(t) }

// Label returns a human readable title such as "Wifi Very Fast".
func (t Tier) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(t), "-", " "))
}

// Valid reports whether t names a tier in the preset table.
func (t Tier) Valid() bool {
	_, ok := rowFor(t)
	return ok
}

// ParseTier resolves a tier name. Matching ignores case and treats spaces and
// underscores as dashes.
func ParseTier(name string) (Tier, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer("_", "-", " ", "-").Replace(normalized)
	if normalized == "" {
		return "", fmt.Errorf("empty tier name")
	}
	tier := Tier(normalized)
	if !tier.Valid() {
		return "", fmt.Errorf("unknown tier %q (valid: %s)", name, tierNames())
	}
	return tier, nil
}

// ParseTiers parses a comma separated list of tier names or exact total
// bitrates in kbps. The result is deduplicated and ordered like the preset
// table. Every unparseable token produces its own error.
func ParseTiers(list string) ([]Tier, []error) {
	selected := make(map[Tier]struct{})
	var errs []error
	for _, token := range strings.Split(list, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if kbps, err := strconv.Atoi(token); err == nil {
			tier, ok := TierForKbps(kbps)
			if !ok {
				errs = append(errs, kbpsMismatch(kbps))
				continue
			}
			selected[tier] = struct{}{}
			continue
		}
		tier, err := ParseTier(token)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		selected[tier] = struct{}{}
	}
	tiers := make([]Tier, 0, len(selected))
	for _, tier := range Tiers() {
		if _, ok := selected[tier]; ok {
			tiers = append(tiers, tier)
		}
	}
	return tiers, errs
}

func kbpsMismatch(kbps int) error {
	if nearest, ok := NearestTier(kbps); ok {
		row, _ := rowFor(nearest)
		return fmt.Errorf("no tier with a total bitrate of %d kbps (nearest: %s at %d kbps)", kbps, nearest, row.kbps())
	}
	return fmt.Errorf("no tier with a total bitrate of %d kbps", kbps)
}

func tierNames() string {
	names := make([]string, 0, len(table))
	for _, row := range table {
		names = append(names, string(row.tier))
	}
	return strings.Join(names, ", ")
}
