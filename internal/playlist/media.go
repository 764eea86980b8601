package playlist

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidMedia marks a media playlist that cannot be served.
var ErrInvalidMedia = errors.New("invalid media playlist")

// MediaInfo summarizes a media playlist.
type MediaInfo struct {
	Segments       int
	TargetDuration int
	// Duration is the sum of #EXTINF durations in seconds.
	Duration float64
	Ended    bool
}

// CheckMedia reads the media playlist at path and confirms it starts with the
// #EXTM3U header and references at least one segment.
func CheckMedia(path string) (MediaInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return MediaInfo{}, fmt.Errorf("open media playlist: %w", err)
	}
	defer file.Close()

	var info MediaInfo
	scanner := bufio.NewScanner(file)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			if line != headerTag {
				return MediaInfo{}, fmt.Errorf("%w: %s does not start with %s", ErrInvalidMedia, path, headerTag)
			}
			first = false
			continue
		}
		switch {
		case line == "":
		case strings.HasPrefix(line, "#EXT-X-TARGETDURATION:"):
			value := strings.TrimPrefix(line, "#EXT-X-TARGETDURATION:")
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				info.TargetDuration = n
			}
		case strings.HasPrefix(line, "#EXTINF:"):
			value := strings.TrimPrefix(line, "#EXTINF:")
			if idx := strings.IndexByte(value, ','); idx >= 0 {
				value = value[:idx]
			}
			if d, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				info.Duration += d
			}
		case line == "#EXT-X-ENDLIST":
			info.Ended = true
		case strings.HasPrefix(line, "#"):
		default:
			info.Segments++
		}
	}
	if err := scanner.Err(); err != nil {
		return MediaInfo{}, fmt.Errorf("read media playlist: %w", err)
	}
	if first {
		return MediaInfo{}, fmt.Errorf("%w: %s is empty", ErrInvalidMedia, path)
	}
	if info.Segments == 0 {
		return MediaInfo{}, fmt.Errorf("%w: %s lists no segments", ErrInvalidMedia, path)
	}
	return info, nil
}
