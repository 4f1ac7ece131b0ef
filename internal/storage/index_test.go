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
	"os"
	"testing"

	"fencestudio/internal/domain"
)

func TestInitOrOpenIndexCreatesDatabase(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("init index: %v", err)
	}
	defer db.Close()
	if _, err := os.Stat(IndexPath(root)); err != nil {
		t.Fatalf("missing index file: %v", err)
	}
	var schema int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id = 1`).Scan(&schema); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d, want %d", schema, schemaVersion)
	}
}

func TestRecordAndListEstimates(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("init index: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	first := domain.CalcResult{
		Measurements: domain.Measurements{TotalLengthFt: 10, SegmentCount: 1},
		Cost:         domain.CostBreakdown{TotalCost: 230},
		Fallback:     true,
	}
	second := domain.CalcResult{
		Measurements: domain.Measurements{TotalLengthFt: 24, SegmentCount: 2, GateCount: 1},
		Cost:         domain.CostBreakdown{TotalCost: 1100},
	}
	if err := RecordEstimate(ctx, db, first); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if err := RecordEstimate(ctx, db, second); err != nil {
		t.Fatalf("record second: %v", err)
	}

	recs, err := RecentEstimates(ctx, db, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("rows = %d, want 2", len(recs))
	}
	// Most recent first.
	if recs[0].Result.TotalLengthFt != 24 || recs[0].Result.Fallback {
		t.Fatalf("unexpected newest row: %+v", recs[0].Result)
	}
	if recs[1].Result.TotalLengthFt != 10 || !recs[1].Result.Fallback {
		t.Fatalf("unexpected oldest row: %+v", recs[1].Result)
	}
	if recs[0].CreatedAt.IsZero() {
		t.Fatal("timestamp not recorded")
	}
}

func TestRecentEstimatesLimit(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("init index: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := RecordEstimate(ctx, db, domain.CalcResult{}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	recs, err := RecentEstimates(ctx, db, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("rows = %d, want 3", len(recs))
	}
}
