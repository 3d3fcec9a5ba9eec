package positions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"easel/internal/config"
	"easel/internal/render"
)

// Store is the placement surface the renderers and the API depend on.
type Store interface {
	// Get returns the record stored for an exact key, or nil when absent.
	Get(ctx context.Context, key Key) (*Record, error)
	// Set inserts or replaces the record for its key and returns the stored row.
	Set(ctx context.Context, rec *Record) (*Record, error)
	// Delete removes the record for an exact key.
	Delete(ctx context.Context, key Key) error
	// List returns every stored record ordered by format, kind, hero, overlay.
	List(ctx context.Context) ([]*Record, error)
	// Lookup resolves a concrete key through the wildcard fallback chain.
	// A miss returns a nil record with no error.
	Lookup(ctx context.Context, key Key) (*Record, error)
	Close() error
}

// SQLite implements Store on a local database file.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLite)(nil)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *SQLite) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the positions database under the
// configured data directory.
func Open(cfg *config.Config) (*SQLite, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.PositionsDatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLite{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLite) Path() string {
	return s.path
}

const recordColumns = "id, hero, overlay, format, kind, x, y, scale, loops, preview_frame, created_at, updated_at"

func (s *SQLite) Get(ctx context.Context, key Key) (*Record, error) {
	key = key.Normalize()
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+recordColumns+` FROM positions WHERE hero = ? AND overlay = ? AND format = ? AND kind = ?`,
		key.Hero, key.Overlay, key.Format, string(key.Kind),
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}
	return rec, nil
}

func (s *SQLite) Set(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, errors.New("record is nil")
	}
	clean := *rec
	clean.normalize()
	if err := clean.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO positions (
            hero, overlay, format, kind, x, y, scale, loops, preview_frame, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (hero, overlay, format, kind) DO UPDATE SET
            x = excluded.x,
            y = excluded.y,
            scale = excluded.scale,
            loops = excluded.loops,
            preview_frame = excluded.preview_frame,
            updated_at = excluded.updated_at`,
		clean.Hero,
		clean.Overlay,
		clean.Format,
		string(clean.Kind),
		clean.Placement.X,
		clean.Placement.Y,
		clean.Placement.Scale,
		clean.Loops,
		clean.PreviewFrame,
		now,
		now,
	); err != nil {
		return nil, fmt.Errorf("set position: %w", err)
	}

	return s.Get(ctx, clean.Key())
}

func (s *SQLite) Delete(ctx context.Context, key Key) error {
	key = key.Normalize()
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM positions WHERE hero = ? AND overlay = ? AND format = ? AND kind = ?`,
		key.Hero, key.Overlay, key.Format, string(key.Kind),
	)
	if err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return render.Wrap(render.ErrNotFound, "positions", "delete", key.String(), nil)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+recordColumns+` FROM positions ORDER BY format, kind, hero, overlay`,
	)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate positions: %w", err)
	}
	return records, nil
}

// Lookup resolves the placement for a concrete hero/overlay pair, falling
// back through wildcard records from most to least specific. A miss returns
// nil with no error.
func (s *SQLite) Lookup(ctx context.Context, key Key) (*Record, error) {
	key = key.Normalize()
	candidates := []Key{
		key,
		{Hero: key.Hero, Overlay: Wildcard, Format: key.Format, Kind: key.Kind},
		{Hero: Wildcard, Overlay: key.Overlay, Format: key.Format, Kind: key.Kind},
		{Hero: Wildcard, Overlay: Wildcard, Format: key.Format, Kind: key.Kind},
	}
	seen := make(map[Key]struct{}, len(candidates))
	for _, candidate := range candidates {
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		rec, err := s.Get(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}
	return nil, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		rec        Record
		kind       string
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.Hero,
		&rec.Overlay,
		&rec.Format,
		&kind,
		&rec.Placement.X,
		&rec.Placement.Y,
		&rec.Placement.Scale,
		&rec.Loops,
		&rec.PreviewFrame,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	rec.Kind = render.OverlayKind(kind)
	if created, err := parseTimeString(createdRaw); err == nil {
		rec.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		rec.UpdatedAt = updated
	}
	return &rec, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
