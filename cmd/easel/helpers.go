package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"easel/internal/positions"
	"easel/internal/render"
)

// positionKeyFlags holds the flag values every position-addressing command
// shares. Wildcard switches replace the hero/overlay component with "*".
type positionKeyFlags struct {
	hero        string
	overlay     string
	format      string
	kind        string
	allHeroes   bool
	allOverlays bool
}

func (f *positionKeyFlags) key() (positions.Key, error) {
	hero := strings.TrimSpace(f.hero)
	if f.allHeroes {
		if hero != "" {
			return positions.Key{}, errors.New("--hero and --all-heroes are mutually exclusive")
		}
		hero = positions.Wildcard
	}
	overlay := strings.TrimSpace(f.overlay)
	if f.allOverlays {
		if overlay != "" {
			return positions.Key{}, errors.New("--overlay and --all-overlays are mutually exclusive")
		}
		overlay = positions.Wildcard
	}
	if hero == "" {
		return positions.Key{}, errors.New("--hero (or --all-heroes) is required")
	}
	if overlay == "" {
		return positions.Key{}, errors.New("--overlay (or --all-overlays) is required")
	}
	if strings.TrimSpace(f.format) == "" {
		return positions.Key{}, errors.New("--format is required")
	}
	kind, err := render.ParseKind(f.kind)
	if err != nil {
		return positions.Key{}, err
	}
	return positions.Key{Hero: hero, Overlay: overlay, Format: strings.TrimSpace(f.format), Kind: kind}.Normalize(), nil
}

// formatSecondsValue renders a duration in seconds with millisecond
// precision, the way planned durations appear in reports.
func formatSecondsValue(seconds float64) string {
	return fmt.Sprintf("%.3fs", seconds)
}

// formatElapsed compacts a wall-clock duration for table cells.
func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func formatPlacement(p render.Placement) string {
	return fmt.Sprintf("x=%.1f y=%.1f scale=%.3f", p.X, p.Y, p.Scale)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
