/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"whiteboard/internal/board"
	applog "whiteboard/internal/log"
	"whiteboard/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the local SQLite schema. Bump it together with a new
// step in runMigrations.
const schemaVersion = 2

// baseSchema is the version ensureBoardSchema creates.
const baseSchema = 1

// language=SQL
// dialect=SQLite
const upsertBoardSQL = `INSERT INTO boards(id, data, shapes, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET data = excluded.data, shapes = excluded.shapes, updated_at = excluded.updated_at`

// language=SQL
// dialect=SQLite
const insertRevisionSQL = `INSERT INTO board_revisions(board_id, ts, data) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const pruneRevisionsSQL = `DELETE FROM board_revisions WHERE board_id = ? AND id NOT IN (
	SELECT id FROM board_revisions WHERE board_id = ? ORDER BY id DESC LIMIT ?
)`

// language=SQL
// dialect=SQLite
const listRevisionsSQL = `SELECT ts, data FROM board_revisions WHERE board_id = ? ORDER BY id DESC LIMIT ?`

// SQLiteStore keeps every board in one SQLite database, plus a bounded trail
// of previous snapshots per board.
type SQLiteStore struct {
	db   *sql.DB
	path string
	// KeepRevisions bounds the revision trail per board. Zero keeps all.
	KeepRevisions int
}

// Revision is one entry of a board's revision trail.
type Revision struct {
	TS     time.Time
	Shapes []board.Shape
}

// OpenSQLite opens or creates the database at path, enables WAL mode and
// brings the schema up to date.
func OpenSQLite(path string, keepRevisions int) (*SQLiteStore, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "sqlite_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; the autosaver and the CLI never need more.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureBoardSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure board schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("board database ready")
	return &SQLiteStore{db: db, path: path, KeepRevisions: keepRevisions}, nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, baseSchema, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep the stored schema so migrations can run.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureBoardSchema creates the version 1 tables. Later additions live in
// runMigrations so old databases and fresh ones converge.
func ensureBoardSchema(ctx context.Context, db *sql.DB) error {
	q := `CREATE TABLE IF NOT EXISTS boards (
		id         TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`
	if _, err := db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create boards: %w", err)
	}
	return nil
}

// migrationSteps holds the statements that lift the schema from n-1 to n.
var migrationSteps = map[int][]string{
	2: {
		`ALTER TABLE boards ADD COLUMN shapes INTEGER NOT NULL DEFAULT 0;`,
		`CREATE TABLE IF NOT EXISTS board_revisions (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
			ts       TEXT NOT NULL,
			data     TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_board_revisions_board ON board_revisions(board_id, id);`,
	},
}

// runMigrations applies incremental schema migrations up to schemaVersion.
// A fresh database is created at version 1 and walks every step.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Never downgrade.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range migrationSteps[next] {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// Load returns the current snapshot of board id.
func (s *SQLiteStore) Load(ctx context.Context, id string) ([]board.Shape, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM boards WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("board %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	return Decode([]byte(data))
}

// Save replaces the snapshot of board id and appends it to the revision
// trail, pruning the trail to KeepRevisions.
func (s *SQLiteStore) Save(ctx context.Context, id string, shapes []board.Shape) error {
	if err := checkID(id); err != nil {
		return err
	}
	data, err := Encode(shapes)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsertBoardSQL, id, string(data), len(shapes), now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save board: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertRevisionSQL, id, now, string(data)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save revision: %w", err)
	}
	if s.KeepRevisions > 0 {
		if _, err := tx.ExecContext(ctx, pruneRevisionsSQL, id, id, s.KeepRevisions); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("prune revisions: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// List returns every stored board sorted by id.
func (s *SQLiteStore) List(ctx context.Context) ([]BoardInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, shapes, updated_at FROM boards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []BoardInfo
	for rows.Next() {
		var info BoardInfo
		var ts string
		if err := rows.Scan(&info.ID, &info.Shapes, &ts); err != nil {
			return nil, err
		}
		info.Updated, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes board id and its revision trail.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("board %q: %w", id, ErrNotFound)
	}
	return nil
}

// Revisions returns up to limit most recent snapshots of board id, newest
// first. Revisions that no longer decode are skipped.
func (s *SQLiteStore) Revisions(ctx context.Context, id string, limit int) ([]Revision, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, listRevisionsSQL, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Revision
	for rows.Next() {
		var ts, data string
		if err := rows.Scan(&ts, &data); err != nil {
			return nil, err
		}
		shapes, err := Decode([]byte(data))
		if err != nil {
			continue
		}
		t, _ := time.Parse(time.RFC3339Nano, ts)
		out = append(out, Revision{TS: t, Shapes: shapes})
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
