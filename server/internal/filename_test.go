package internal

import (
	"path/filepath"
	"testing"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"My Song", "My Song"},
		{"AC/DC - Back in Black", "AC_DC - Back in Black"},
		{"what?: \"live\"", "what__ _live_"},
		{"  ..  ", "untitled"},
		{"tab\there", "tabhere"},
		{"../../etc/passwd", "_.._etc_passwd"},
	}

	for _, tt := range tests {
		if got := SanitizeTitle(tt.in); got != tt.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("/out", "a/b", ".mp3")
	if want := filepath.Join("/out", "a_b.mp3"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
