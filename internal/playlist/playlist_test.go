package playlist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRenderVariantSortsByBandwidth(t *testing.T) {
	got, err := RenderVariant([]Variant{
		{URI: "movie_640/movie_640.m3u8", Bandwidth: 640000, Width: 768, Height: 432, HasAudio: true},
		{URI: "movie_64/movie_64.m3u8", Bandwidth: 64000, Width: 398, Height: 224},
		{URI: "movie_240/movie_240.m3u8", Bandwidth: 240000, Width: 480, Height: 270, HasAudio: true},
	})
	if err != nil {
		t.Fatalf("RenderVariant: %v", err)
	}
	want := "#EXTM3U\n" +
		"#EXT-X-VERSION:3\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=64000,RESOLUTION=398x224\n" +
		"movie_64/movie_64.m3u8\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=240000,RESOLUTION=480x270\n" +
		"movie_240/movie_240.m3u8\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=640000,RESOLUTION=768x432\n" +
		"movie_640/movie_640.m3u8\n"
	if got != want {
		t.Fatalf("playlist mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderVariantRejectsBadInput(t *testing.T) {
	if _, err := RenderVariant(nil); err == nil {
		t.Fatal("expected error for empty variant list")
	}
	if _, err := RenderVariant([]Variant{{URI: "", Bandwidth: 1}}); err == nil {
		t.Fatal("expected error for empty URI")
	}
	if _, err := RenderVariant([]Variant{{URI: "a.m3u8"}}); err == nil {
		t.Fatal("expected error for zero bandwidth")
	}
	got, err := RenderVariant([]Variant{{URI: "a.m3u8", Bandwidth: 1000}})
	if err != nil {
		t.Fatalf("RenderVariant: %v", err)
	}
	if got != "#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-STREAM-INF:BANDWIDTH=1000\na.m3u8\n" {
		t.Fatalf("expected resolution omitted, got %q", got)
	}
}

func TestWriteVariant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.m3u8")
	if err := WriteVariant(path, []Variant{{URI: "movie_64/movie_64.m3u8", Bandwidth: 64000, Width: 398, Height: 224}}); err != nil {
		t.Fatalf("WriteVariant: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) == 0 || string(data[:7]) != "#EXTM3U" {
		t.Fatalf("unexpected playlist: %q", data)
	}
	if err := WriteVariant(path, nil); err == nil {
		t.Fatal("expected error for empty variants")
	}
}

func writeMedia(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.m3u8")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckMedia(t *testing.T) {
	path := writeMedia(t, "#EXTM3U\n#EXT-X-TARGETDURATION:10\n#EXT-X-VERSION:3\n"+
		"#EXTINF:10.0,\nfileSequence0.ts\n#EXTINF:4.5,\nfileSequence1.ts\n#EXT-X-ENDLIST\n")
	info, err := CheckMedia(path)
	if err != nil {
		t.Fatalf("CheckMedia: %v", err)
	}
	if info.Segments != 2 || info.TargetDuration != 10 || info.Duration != 14.5 || !info.Ended {
		t.Fatalf("unexpected info: %#v", info)
	}
}

func TestCheckMediaRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"no header":   "#EXTINF:10,\nseg.ts\n",
		"no segments": "#EXTM3U\n#EXT-X-TARGETDURATION:10\n#EXT-X-ENDLIST\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := CheckMedia(writeMedia(t, body))
			if !errors.Is(err, ErrInvalidMedia) {
				t.Fatalf("expected ErrInvalidMedia, got %v", err)
			}
		})
	}
	if _, err := CheckMedia(filepath.Join(t.TempDir(), "missing.m3u8")); err == nil {
		t.Fatal("expected error for missing playlist")
	}
}
