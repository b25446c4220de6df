// Package storage provides SQLite-based persistence for fired shots.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/khet/internal/core"
)

// ShotSaver records fired shots. The TUI and the websocket hub depend on
// this instead of the concrete Store.
type ShotSaver interface {
	SaveShot(shot core.Shot) (int64, error)
}

// Store manages the SQLite database connection for shot history.
type Store struct {
	db *sql.DB
}

// Ensure Store implements ShotSaver
var _ ShotSaver = (*Store)(nil)

// ShotEntry is a single recorded shot.
type ShotEntry struct {
	ID        int64
	BoardID   string
	Gun       int
	Color     string
	Status    string
	Length    int
	Hit       bool
	HitX      int
	HitY      int
	HitKind   string
	Path      [][2]int
	CreatedAt time.Time
}

// ShotStats aggregates the shots fired on one board.
type ShotStats struct {
	BoardID   string
	Shots     int
	Hits      int
	Exits     int
	Cycles    int
	AvgLength float64
	MaxLength int
	LastShot  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS shots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			board_id TEXT NOT NULL,
			gun INTEGER NOT NULL,
			color TEXT NOT NULL,
			status TEXT NOT NULL,
			length INTEGER NOT NULL,
			hit INTEGER NOT NULL DEFAULT 0,
			hit_x INTEGER NOT NULL DEFAULT -1,
			hit_y INTEGER NOT NULL DEFAULT -1,
			hit_kind TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_shots_board_id ON shots(board_id);
		CREATE INDEX IF NOT EXISTS idx_shots_recent ON shots(board_id, id DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveShot records a fired shot and returns the ID of the inserted record.
func (s *Store) SaveShot(shot core.Shot) (int64, error) {
	path := shot.Path
	if path == nil {
		path = [][2]int{}
	}
	encoded, err := json.Marshal(path)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot encode path: %w", err)
	}

	hitX, hitY := -1, -1
	if shot.Hit {
		hitX, hitY = shot.HitX, shot.HitY
	}

	result, err := s.db.Exec(
		`INSERT INTO shots (board_id, gun, color, status, length, hit, hit_x, hit_y, hit_kind, path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shot.BoardID, shot.Gun, shot.Color, shot.Status, len(shot.Path),
		shot.Hit, hitX, hitY, shot.HitKind, string(encoded),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save shot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentShots returns the latest shots, newest first. An empty boardID
// returns shots from every board.
func (s *Store) RecentShots(boardID string, limit int) ([]ShotEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	where, args := boardFilter(boardID)
	query := `SELECT id, board_id, gun, color, status, length, hit, hit_x, hit_y, hit_kind, path, created_at
		 FROM shots` + where + " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query shots: %w", err)
	}
	defer rows.Close()

	var entries []ShotEntry
	for rows.Next() {
		var e ShotEntry
		var path string
		var createdAt any
		if err := rows.Scan(
			&e.ID, &e.BoardID, &e.Gun, &e.Color, &e.Status, &e.Length,
			&e.Hit, &e.HitX, &e.HitY, &e.HitKind, &path, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(path), &e.Path); err != nil {
			return nil, fmt.Errorf("storage: corrupt path for shot %d: %w", e.ID, err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// Stats aggregates the shots fired on a board. An empty boardID
// aggregates every board.
func (s *Store) Stats(boardID string) (*ShotStats, error) {
	stats := &ShotStats{BoardID: boardID}

	where, args := boardFilter(boardID)
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(hit), 0),
		        COALESCE(SUM(CASE WHEN status = 'exited_board' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = 'cycle_detected' THEN 1 ELSE 0 END), 0),
		        COALESCE(AVG(length), 0),
		        COALESCE(MAX(length), 0)
		 FROM shots`+where,
		args...,
	).Scan(&stats.Shots, &stats.Hits, &stats.Exits, &stats.Cycles, &stats.AvgLength, &stats.MaxLength)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get shot stats: %w", err)
	}

	var lastShot any
	err = s.db.QueryRow(
		`SELECT created_at FROM shots`+where+` ORDER BY id DESC LIMIT 1`,
		args...,
	).Scan(&lastShot)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get last shot: %w", err)
	}
	if err == nil {
		stats.LastShot = parseTime(lastShot)
	}

	return stats, nil
}

// Boards lists every board id that has recorded shots.
func (s *Store) Boards() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT board_id FROM shots ORDER BY board_id`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list boards: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return ids, nil
}

// ClearShots deletes the shots of a board, or every shot when boardID is
// empty.
func (s *Store) ClearShots(boardID string) error {
	where, args := boardFilter(boardID)
	_, err := s.db.Exec("DELETE FROM shots"+where, args...)
	if err != nil {
		return fmt.Errorf("storage: cannot clear shots: %w", err)
	}
	return nil
}

// boardFilter returns the WHERE clause selecting one board, or nothing for
// an empty id.
func boardFilter(boardID string) (string, []any) {
	if boardID == "" {
		return "", nil
	}
	return " WHERE board_id = ?", []any{boardID}
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
