// Package preset holds the fixed table of HLS rendition presets.
//
// Each connection-speed tier maps to one immutable set of encoding
// parameters: frame height, audio layout and bitrate, and video bitrate. The
// frame width follows from the height and the requested aspect. Lookups by
// tier are unique and stable; lookups by total bitrate either match a tier
// exactly or report no match.
package preset
