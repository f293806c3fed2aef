package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Entry is one recorded patch.
type Entry struct {
	ID           int64     `json:"id"`
	Path         string    `json:"path"`
	Section      string    `json:"section"`
	Policy       string    `json:"policy"`
	Origin       string    `json:"origin"` // cli, http, mcp, scheduler
	Bootstrapped bool      `json:"bootstrapped"`
	Created      bool      `json:"created"`
	Changed      bool      `json:"changed"`
	Rendered     int       `json:"rendered"`
	Skipped      int       `json:"skipped"`
	Checksum     string    `json:"checksum"`
	PatchedAt    time.Time `json:"patched_at"`
}

// Record stores e and, when the patch changed the file, the document's new
// checksum. It returns the entry ID.
func (db *DB) Record(e Entry) (int64, error) {
	if e.PatchedAt.IsZero() {
		e.PatchedAt = time.Now()
	}
	e.PatchedAt = e.PatchedAt.UTC()

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("ledger: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`
		INSERT INTO patches (path, section, policy, origin, bootstrapped, created, changed, rendered, skipped, checksum, patched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Path, e.Section, e.Policy, e.Origin, e.Bootstrapped, e.Created, e.Changed, e.Rendered, e.Skipped, e.Checksum, e.PatchedAt)
	if err != nil {
		return 0, fmt.Errorf("ledger: insert patch: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ledger: patch id: %w", err)
	}

	if e.Checksum != "" {
		_, err = tx.Exec(`
			INSERT INTO documents (path, checksum, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				checksum   = excluded.checksum,
				updated_at = excluded.updated_at
		`, e.Path, e.Checksum, e.PatchedAt)
		if err != nil {
			return 0, fmt.Errorf("ledger: upsert document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("ledger: commit: %w", err)
	}
	return id, nil
}

// Recent returns the newest patches, newest first. An empty path returns
// patches for every document.
func (db *DB) Recent(path string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, path, section, policy, origin, bootstrapped, created, changed, rendered, skipped, checksum, patched_at
		FROM patches`
	args := []any{}
	if path != "" {
		query += ` WHERE path = ?`
		args = append(args, path)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Path, &e.Section, &e.Policy, &e.Origin,
			&e.Bootstrapped, &e.Created, &e.Changed, &e.Rendered, &e.Skipped,
			&e.Checksum, &e.PatchedAt); err != nil {
			return nil, fmt.Errorf("ledger: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LastChecksum returns the checksum of the last document version the engine
// wrote for path, or "" when none is known.
func (db *DB) LastChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ledger: last checksum: %w", err)
	}
	return cs, nil
}
