package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"harmonic-scanner/internal/tracker"
)

// SQLiteRecorder persists scan results to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS patterns (
		identity         TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		direction        TEXT NOT NULL,
		status           TEXT NOT NULL,
		created_bar      INTEGER NOT NULL,
		zone_entry_bar   INTEGER,
		zone_entry_price REAL,
		completion_bar   INTEGER,
		completion_price REAL,
		dismissal_reason TEXT,
		c_update_bar     INTEGER,
		skeleton         TEXT NOT NULL,
		ratios           TEXT NOT NULL,
		zones            TEXT NOT NULL,
		updated_at       DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS touches (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		identity    TEXT NOT NULL,
		level_name  TEXT NOT NULL,
		level_price REAL NOT NULL,
		bar_index   INTEGER NOT NULL,
		touch_kind  TEXT NOT NULL,
		touch_count INTEGER NOT NULL,
		UNIQUE(identity, level_name),
		FOREIGN KEY (identity) REFERENCES patterns(identity)
	);

	CREATE TABLE IF NOT EXISTS events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		identity   TEXT NOT NULL,
		old_status TEXT NOT NULL,
		new_status TEXT NOT NULL,
		bar_index  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_identity ON events(identity);
	`
	_, err := r.db.Exec(schema)
	return err
}

// RecordPatterns upserts the given tracked records and their touches.
func (r *SQLiteRecorder) RecordPatterns(patterns []*tracker.TrackedPattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	patStmt, err := tx.Prepare(`
		INSERT INTO patterns (identity, name, direction, status, created_bar,
			zone_entry_bar, zone_entry_price, completion_bar, completion_price,
			dismissal_reason, c_update_bar, skeleton, ratios, zones)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			status = excluded.status,
			zone_entry_bar = excluded.zone_entry_bar,
			zone_entry_price = excluded.zone_entry_price,
			completion_bar = excluded.completion_bar,
			completion_price = excluded.completion_price,
			dismissal_reason = excluded.dismissal_reason,
			c_update_bar = excluded.c_update_bar,
			zones = excluded.zones,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("prepare patterns: %w", err)
	}
	defer patStmt.Close()

	touchStmt, err := tx.Prepare(`
		INSERT INTO touches (identity, level_name, level_price, bar_index, touch_kind, touch_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity, level_name) DO UPDATE SET
			touch_count = excluded.touch_count`)
	if err != nil {
		return fmt.Errorf("prepare touches: %w", err)
	}
	defer touchStmt.Close()

	for _, p := range patterns {
		skeleton, err := json.Marshal(p.Skeleton)
		if err != nil {
			return fmt.Errorf("marshal skeleton: %w", err)
		}
		ratios, err := json.Marshal(p.Ratios)
		if err != nil {
			return fmt.Errorf("marshal ratios: %w", err)
		}
		zones, err := json.Marshal(p.Zones)
		if err != nil {
			return fmt.Errorf("marshal zones: %w", err)
		}
		if _, err := patStmt.Exec(
			p.Identity, p.Name, string(p.Direction), string(p.Status), p.CreatedBar,
			p.ZoneEntryBar, p.ZoneEntryPrice, p.CompletionBar, p.CompletionPrice,
			p.DismissalReason, p.CUpdateBar, string(skeleton), string(ratios), string(zones),
		); err != nil {
			return fmt.Errorf("insert pattern %s: %w", p.Identity, err)
		}
		for _, touch := range p.Touches {
			if _, err := touchStmt.Exec(
				p.Identity, touch.LevelName, touch.LevelPrice,
				touch.BarIndex, string(touch.Kind), touch.Count,
			); err != nil {
				return fmt.Errorf("insert touch %s/%s: %w", p.Identity, touch.LevelName, err)
			}
		}
	}

	return tx.Commit()
}

// RecordEvents appends lifecycle events.
func (r *SQLiteRecorder) RecordEvents(events []tracker.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO events (identity, old_status, new_status, bar_index) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare events: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(e.Identity, string(e.OldStatus), string(e.NewStatus), e.BarIndex); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
