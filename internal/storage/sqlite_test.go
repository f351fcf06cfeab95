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
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func TestSQLiteRevisionTrail(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "b.sqlite"), 3)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	shapes := sampleShapes()
	for i := 1; i <= 5; i++ {
		if err := db.Save(ctx, "main", shapes[:i]); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	revs, err := db.Revisions(ctx, "main", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) != 3 {
		t.Fatalf("want 3 revisions kept, got %d", len(revs))
	}
	if len(revs[0].Shapes) != 5 || len(revs[2].Shapes) != 3 {
		t.Fatalf("revisions out of order: %d..%d", len(revs[0].Shapes), len(revs[2].Shapes))
	}
	if revs[0].TS.IsZero() {
		t.Fatalf("revision timestamp missing")
	}

	if err := db.Delete(ctx, "main"); err != nil {
		t.Fatal(err)
	}
	revs, err = db.Revisions(ctx, "main", 10)
	if err != nil || len(revs) != 0 {
		t.Fatalf("revisions should be deleted with the board: %d, %v", len(revs), err)
	}
}

// An older database with only the boards table is migrated in place and keeps
// its data.
func TestSQLiteMigratesV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.sqlite")
	raw, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)", filepath.ToSlash(path)))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE boards (id TEXT PRIMARY KEY, data TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO boards VALUES('legacy', '[{"id":"a","type":"path","x":0,"y":0,"fillColor":"#000000","points":[{"x":0,"y":0},{"x":5,"y":5}]}]', '2020-01-01T00:00:00Z');`,
	}
	for _, q := range stmts {
		if _, err := raw.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed: %v (%s)", err, q)
		}
	}
	_ = raw.Close()

	db, err := OpenSQLite(path, 0)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()
	var schema int
	if err := db.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatal(err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d, want %d", schema, schemaVersion)
	}
	shapes, err := db.Load(ctx, "legacy")
	if err != nil || len(shapes) != 1 {
		t.Fatalf("legacy board: %v %v", shapes, err)
	}
	if err := db.Save(ctx, "legacy", shapes); err != nil {
		t.Fatalf("save after migration: %v", err)
	}
	revs, err := db.Revisions(ctx, "legacy", 0)
	if err != nil || len(revs) != 1 {
		t.Fatalf("revisions after migration: %d %v", len(revs), err)
	}
}

func TestSQLiteReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.sqlite")
	for i := 0; i < 2; i++ {
		db, err := OpenSQLite(path, 0)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := db.Save(context.Background(), "b", sampleShapes()); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		_ = db.Close()
	}
}
