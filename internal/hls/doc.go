// Package hls turns one source video into an HTTP Live Streaming rendition
// set.
//
// Maker.Run walks the selected presets in tier order. For each preset it runs
// the transcoder, then the segmenter, then checks the media playlist the
// segmenter wrote; the first failing step abandons that preset. Depending on
// the failure policy the run either continues with the next preset or stops.
// Once every preset has been attempted, a variant playlist referencing the
// successful renditions is written next to them.
//
// Everything is sequential: one external process at a time. The output
// directory is guarded by an advisory lock for the duration of the run, and
// every run is recorded in history, metrics and notifications when those are
// configured.
package hls
