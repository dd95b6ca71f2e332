package utils

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID("c", 12)
	if !strings.HasPrefix(id, "c") {
		t.Fatalf("id %q missing prefix", id)
	}
	if len(id) != 13 {
		t.Fatalf("id %q length = %d, want 13", id, len(id))
	}
	if id == GenerateID("c", 12) {
		t.Error("two generated ids collided")
	}
}

func TestParseDate(t *testing.T) {
	if d := ParseDate("2026-03-15"); d == nil || d.Year() != 2026 || d.Month() != 3 || d.Day() != 15 {
		t.Errorf("ParseDate(2026-03-15) = %v", d)
	}
	if ParseDate("15/03/2026") != nil {
		t.Error("slash format should be rejected")
	}
	if ParseDate("") != nil {
		t.Error("empty string should be rejected")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":          "photo.jpg",
		"../../etc/passwd":   "passwd",
		"my crop photo!.png": "my_crop_photo_.png",
		"":                   "file",
		"..":                 "file",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
