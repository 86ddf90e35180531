/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"labelmaker/internal/config"

	_ "modernc.org/sqlite"
)

func TestSQLiteStoreRoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if b, err := s.Get(ctx); err != nil || b != nil {
		t.Fatalf("fresh db Get() = %q, %v", b, err)
	}
	if err := s.Put(ctx, []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, []byte(`[{"id":2}]`)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	_ = s.Close()

	s2, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	b, err := s2.Get(ctx)
	if err != nil || string(b) != `[{"id":2}]` {
		t.Fatalf("Get after reopen = %q, %v", b, err)
	}
	if v, err := s2.SchemaVersion(ctx); err != nil || v != schemaVersion {
		t.Fatalf("schema = %d, %v", v, err)
	}
}

// TestMigrationsUpgradeV1 seeds a v1 database (no updated_at) and expects it to be migrated.
func TestMigrationsUpgradeV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE IF NOT EXISTS blobs (key TEXT PRIMARY KEY, data BLOB NOT NULL);`,
		`INSERT INTO blobs(key, data) VALUES('catalog', '[]');`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	_ = db.Close()

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	if v, _ := s.SchemaVersion(ctx); v != 2 {
		t.Fatalf("expected schema 2 after migration, got %d", v)
	}
	var ts sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM blobs WHERE key='catalog'`).Scan(&ts); err != nil {
		t.Fatalf("read updated_at: %v", err)
	}
	if !ts.Valid || ts.String == "" {
		t.Fatalf("migration should stamp existing rows")
	}
	if b, _ := s.Get(ctx); string(b) != "[]" {
		t.Fatalf("data lost in migration: %q", b)
	}
}

func TestEnsureUpdatedAtOnlyAltersWhenInspectionSucceeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs.db")
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE blobs (key TEXT PRIMARY KEY, data BLOB NOT NULL)`); err != nil {
		t.Fatalf("create blobs: %v", err)
	}
	hasColumn := func() bool {
		var n int
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pragma_table_info('blobs') WHERE name='updated_at'`).Scan(&n); err != nil {
			t.Fatalf("count columns: %v", err)
		}
		return n == 1
	}

	dead, cancel := context.WithCancel(ctx)
	cancel()
	if err := ensureUpdatedAt(dead, db); err == nil {
		t.Fatalf("failed inspection must be reported")
	}
	if hasColumn() {
		t.Fatalf("column added although the inspection failed")
	}
	for i := 0; i < 2; i++ {
		if err := ensureUpdatedAt(ctx, db); err != nil {
			t.Fatalf("ensureUpdatedAt run %d: %v", i+1, err)
		}
	}
	if !hasColumn() {
		t.Fatalf("updated_at missing")
	}
}

func TestOpenPicksBackend(t *testing.T) {
	cfg := config.Defaults()
	cfg.General.DataDir = t.TempDir()
	for _, tc := range []struct {
		store string
		want  string
	}{
		{config.StoreFile, "*storage.FileStore"},
		{config.StoreSQLite, "*storage.SQLiteStore"},
		{config.StoreMemory, "*storage.MemoryStore"},
	} {
		cfg.General.Store = tc.store
		s, err := Open(cfg)
		if err != nil {
			t.Fatalf("Open(%s): %v", tc.store, err)
		}
		if got := fmt.Sprintf("%T", s); got != tc.want {
			t.Fatalf("Open(%s) = %s, want %s", tc.store, got, tc.want)
		}
		_ = s.Close()
	}
	cfg.General.Store = "floppy"
	if _, err := Open(cfg); err == nil {
		t.Fatalf("unknown backend should fail")
	}
}
