package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"movie", "movie"},
		{"  spaced  ", "spaced"},
		{"a/b\\c:d*e", "a-b-c-d-e"},
		{"what?<>|\"", "what"},
		{"50%#1", "501"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Movie", "My_Movie"},
		{"My   Movie\tCut", "My_Movie_Cut"},
		{"..hidden", "hidden"},
		{"...", ""},
		{"??", ""},
		{"show:s01", "show-s01"},
	}
	for _, tt := range tests {
		if got := SanitizeBaseName(tt.in); got != tt.want {
			t.Errorf("SanitizeBaseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPluralize(t *testing.T) {
	if got := Pluralize(1, "preset", "presets"); got != "preset" {
		t.Fatalf("got %q", got)
	}
	if got := Pluralize(0, "preset", "presets"); got != "presets" {
		t.Fatalf("got %q", got)
	}
	if got := Ternary(true, 1, 2); got != 1 {
		t.Fatalf("Ternary = %d", got)
	}
}
