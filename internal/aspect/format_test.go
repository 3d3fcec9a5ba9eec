package aspect_test

import (
	"errors"
	"strings"
	"testing"

	"easel/internal/aspect"
	"easel/internal/render"
)

func TestDefaultRegistryKnowsBuiltins(t *testing.T) {
	reg := aspect.DefaultRegistry()
	cases := []struct {
		tag           string
		width, height int
	}{
		{"1x1", 1080, 1080},
		{"9x16", 1080, 1920},
		{"16x9", 1920, 1080},
		{"4x5", 1080, 1350},
	}
	for _, tc := range cases {
		f, err := reg.Lookup(tc.tag)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tc.tag, err)
		}
		if f.Width != tc.width || f.Height != tc.height {
			t.Fatalf("Lookup(%q) = %dx%d, want %dx%d", tc.tag, f.Width, f.Height, tc.width, tc.height)
		}
	}
}

func TestLookupNormalizesTag(t *testing.T) {
	reg := aspect.DefaultRegistry()
	f, err := reg.Lookup("  9X16 ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if f.Tag != "9x16" {
		t.Fatalf("tag = %q", f.Tag)
	}
}

func TestLookupUnknownTag(t *testing.T) {
	reg := aspect.DefaultRegistry()
	_, err := reg.Lookup("21x9")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, render.ErrUnknownFormat) {
		t.Fatalf("expected unknown format marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "9x16") {
		t.Fatalf("expected known tags in message, got %v", err)
	}
}

func TestNewRegistryMergesOverrides(t *testing.T) {
	reg, err := aspect.NewRegistry(map[string]string{
		"2x3":   "1080x1620",
		"1x1":   "2048x2048",
		" 3x4 ": "768X1024",
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	f, err := reg.Lookup("2x3")
	if err != nil {
		t.Fatalf("Lookup(2x3): %v", err)
	}
	if f.Width != 1080 || f.Height != 1620 {
		t.Fatalf("2x3 = %dx%d", f.Width, f.Height)
	}
	f, err = reg.Lookup("1x1")
	if err != nil {
		t.Fatalf("Lookup(1x1): %v", err)
	}
	if f.Width != 2048 {
		t.Fatalf("override did not replace builtin: %+v", f)
	}
	if _, err := reg.Lookup("3x4"); err != nil {
		t.Fatalf("expected trimmed override tag to resolve: %v", err)
	}
	if _, err := reg.Lookup("9x16"); err != nil {
		t.Fatalf("builtin lost after merge: %v", err)
	}
}

func TestNewRegistryRejectsBadResolution(t *testing.T) {
	for _, bad := range []string{"1080", "0x1080", "1080x-5", "ax b", ""} {
		if _, err := aspect.NewRegistry(map[string]string{"2x3": bad}); err == nil {
			t.Fatalf("expected error for resolution %q", bad)
		}
	}
}

func TestParseResolution(t *testing.T) {
	w, h, err := aspect.ParseResolution(" 1920x1080 ")
	if err != nil {
		t.Fatalf("ParseResolution: %v", err)
	}
	if w != 1920 || h != 1080 {
		t.Fatalf("got %dx%d", w, h)
	}
}

func TestTagsSorted(t *testing.T) {
	reg := aspect.DefaultRegistry()
	tags := reg.Tags()
	for i := 1; i < len(tags); i++ {
		if tags[i-1] >= tags[i] {
			t.Fatalf("tags not sorted: %v", tags)
		}
	}
	if len(reg.Formats()) != len(tags) {
		t.Fatalf("Formats/Tags length mismatch")
	}
}
