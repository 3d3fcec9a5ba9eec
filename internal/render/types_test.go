package render_test

import (
	"testing"

	"easel/internal/render"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in      string
		want    render.OverlayKind
		wantErr bool
	}{
		{"static", render.KindStatic, false},
		{"video", render.KindVideo, false},
		{"  Video ", render.KindVideo, false},
		{"STATIC", render.KindStatic, false},
		{"gif", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := render.ParseKind(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseKind(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseKind(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKindOutputExt(t *testing.T) {
	if got := render.KindStatic.OutputExt(); got != ".png" {
		t.Fatalf("static ext = %q", got)
	}
	if got := render.KindVideo.OutputExt(); got != ".mp4" {
		t.Fatalf("video ext = %q", got)
	}
}

func TestKindValid(t *testing.T) {
	if !render.KindStatic.Valid() || !render.KindVideo.Valid() {
		t.Fatal("expected builtin kinds to be valid")
	}
	if render.OverlayKind("gif").Valid() {
		t.Fatal("expected unknown kind to be invalid")
	}
}

func TestDefaultPlacement(t *testing.T) {
	p := render.DefaultPlacement()
	if p.X != 0 || p.Y != 0 || p.Scale != 1.0 {
		t.Fatalf("unexpected default placement %+v", p)
	}
}
