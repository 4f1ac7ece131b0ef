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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fencestudio/internal/domain"
	applog "fencestudio/internal/log"
	"fencestudio/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores per-project ephemeral data under the project root.
	IndexDirName  = ".fstudio"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	schemaVersion = 1
)

// IndexPath returns the full path to the project's embedded index database.
func IndexPath(projectRoot string) string {
	return filepath.Join(projectRoot, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures the per-project SQLite index exists at
// .fstudio/index.sqlite, opens it in WAL mode, and ensures the schema. The
// returned *sql.DB is ready for use; callers close it when done.
func InitOrOpenIndex(projectRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", projectRoot),
	)
	if strings.TrimSpace(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	if err := os.MkdirAll(filepath.Join(projectRoot, IndexDirName), 0o755); err != nil {
		l.Error("create .fstudio dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .fstudio dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(IndexPath(projectRoot)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("index ready", slog.String("path", IndexPath(projectRoot)))
	return db, nil
}

func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id     INTEGER PRIMARY KEY CHECK(id=1),
			schema INTEGER NOT NULL,
			app    TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS estimates (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at      TEXT NOT NULL,
			segment_count   INTEGER NOT NULL,
			gate_count      INTEGER NOT NULL,
			total_length_ft REAL NOT NULL,
			total_cost      REAL NOT NULL,
			fallback        INTEGER NOT NULL,
			payload         TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("index ddl: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO version (id, schema, app) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET schema=excluded.schema, app=excluded.app`,
		schemaVersion, version.String()); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

// EstimateRecord is one row of the per-project estimate history.
type EstimateRecord struct {
	ID        int64
	CreatedAt time.Time
	Result    domain.CalcResult
}

// RecordEstimate appends a calculation result to the project's estimate
// history.
func RecordEstimate(ctx context.Context, db *sql.DB, res domain.CalcResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal estimate: %w", err)
	}
	fb := 0
	if res.Fallback {
		fb = 1
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO estimates (created_at, segment_count, gate_count, total_length_ft, total_cost, fallback, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), res.SegmentCount, res.GateCount,
		res.TotalLengthFt, res.Cost.TotalCost, fb, string(payload))
	if err != nil {
		return fmt.Errorf("insert estimate: %w", err)
	}
	return nil
}

// RecentEstimates returns the newest estimate rows, most recent first.
func RecentEstimates(ctx context.Context, db *sql.DB, limit int) ([]EstimateRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, created_at, payload FROM estimates ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}
	defer rows.Close()
	var out []EstimateRecord
	for rows.Next() {
		var rec EstimateRecord
		var created, payload string
		if err := rows.Scan(&rec.ID, &created, &payload); err != nil {
			return nil, err
		}
		if t, perr := time.Parse(time.RFC3339, created); perr == nil {
			rec.CreatedAt = t
		}
		if err := json.Unmarshal([]byte(payload), &rec.Result); err != nil {
			return nil, fmt.Errorf("parse estimate payload: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
