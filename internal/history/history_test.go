/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import (
	"fmt"
	"testing"

	"fencestudio/internal/domain"
)

func state(ids ...string) []domain.Segment {
	segs := make([]domain.Segment, len(ids))
	for i, id := range ids {
		segs[i] = domain.Segment{ID: id, Path: []domain.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}}
	}
	return segs
}

func TestUndoRedoRoundtrip(t *testing.T) {
	m := NewManager(0)
	m.Snapshot(state())
	m.Snapshot(state("a"))
	m.Snapshot(state("a", "b"))

	segs, ok := m.Undo()
	if !ok || len(segs) != 1 || segs[0].ID != "a" {
		t.Fatalf("undo expected [a], got ok=%v %v", ok, segs)
	}
	segs, ok = m.Redo()
	if !ok || len(segs) != 2 || segs[1].ID != "b" {
		t.Fatalf("redo expected [a b], got ok=%v %v", ok, segs)
	}
}

func TestUndoAtBottomIsNoop(t *testing.T) {
	m := NewManager(0)
	m.Snapshot(state())
	if _, ok := m.Undo(); ok {
		t.Fatalf("undo with single entry must be a no-op")
	}
	if _, ok := m.Redo(); ok {
		t.Fatalf("redo at top must be a no-op")
	}
}

func TestNewSnapshotDiscardsRedoBranch(t *testing.T) {
	m := NewManager(0)
	m.Snapshot(state())
	m.Snapshot(state("a"))
	m.Snapshot(state("a", "b"))
	if _, ok := m.Undo(); !ok {
		t.Fatal("undo failed")
	}
	m.Snapshot(state("a", "c"))
	if m.CanRedo() {
		t.Fatalf("redo branch should be discarded by new snapshot")
	}
	segs, ok := m.Undo()
	if !ok || len(segs) != 1 || segs[0].ID != "a" {
		t.Fatalf("undo after branch expected [a], got %v", segs)
	}
}

func TestEvictionKeepsLastFifty(t *testing.T) {
	m := NewManager(DefaultMaxEntries)
	for i := 0; i < 51; i++ {
		m.Snapshot(state(fmt.Sprintf("s%d", i)))
	}
	if m.Len() != DefaultMaxEntries {
		t.Fatalf("expected %d entries, got %d", DefaultMaxEntries, m.Len())
	}
	// Walk all the way back: the earliest reachable state must be s1, since s0
	// was evicted.
	var last []domain.Segment
	for {
		segs, ok := m.Undo()
		if !ok {
			break
		}
		last = segs
	}
	if len(last) != 1 || last[0].ID != "s1" {
		t.Fatalf("expected earliest reachable state s1, got %v", last)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m := NewManager(0)
	segs := state("a")
	m.Snapshot(segs)
	m.Snapshot(state("a", "b"))
	segs[0].Path[0].X = 999

	restored, ok := m.Undo()
	if !ok {
		t.Fatal("undo failed")
	}
	if restored[0].Path[0].X != 0 {
		t.Fatalf("history entry was mutated through caller slice")
	}
	// Mutating the restored copy must not poison the stored entry either.
	restored[0].Path[0].X = 555
	again, ok := m.Redo()
	if !ok {
		t.Fatal("redo failed")
	}
	_ = again
	back, ok := m.Undo()
	if !ok || back[0].Path[0].X != 0 {
		t.Fatalf("stored entry corrupted via restored copy")
	}
}

func TestReset(t *testing.T) {
	m := NewManager(0)
	m.Snapshot(state("a"))
	m.Snapshot(state("a", "b"))
	m.Reset(state("z"))
	if m.Len() != 1 || m.CanUndo() || m.CanRedo() {
		t.Fatalf("reset should leave a single baseline entry")
	}
}
