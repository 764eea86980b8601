// Package playlist writes HLS variant playlists and inspects the media
// playlists produced by the segmenter.
package playlist
