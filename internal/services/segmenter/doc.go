// Package segmenter wraps Apple's mediafilesegmenter, which splits one MP4
// into MPEG-TS segments plus a media playlist.
package segmenter
