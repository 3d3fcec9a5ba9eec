package testsupport

import (
	"context"
	"testing"

	"easel/internal/config"
	"easel/internal/positions"
	"easel/internal/render"
)

// MustOpenStore opens a positions store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *positions.SQLite {
	t.Helper()

	store, err := positions.Open(cfg)
	if err != nil {
		t.Fatalf("positions.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SetPosition stores a placement record for tests using the provided store.
func SetPosition(t testing.TB, store positions.Store, hero, overlay, format string, kind render.OverlayKind, placement render.Placement) *positions.Record {
	t.Helper()

	rec, err := store.Set(context.Background(), &positions.Record{
		Hero:      hero,
		Overlay:   overlay,
		Format:    format,
		Kind:      kind,
		Placement: placement,
		Loops:     1,
	})
	if err != nil {
		t.Fatalf("store.Set: %v", err)
	}
	return rec
}
