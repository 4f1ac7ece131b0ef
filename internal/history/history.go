/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history provides a bounded snapshot-based undo/redo stack over the
// scene's segment list. Entries are immutable deep copies; a cursor walks the
// entry list, and any new snapshot after an undo discards the redo branch.
package history

import "fencestudio/internal/domain"

// DefaultMaxEntries caps the history depth; the oldest entry is evicted on
// overflow.
const DefaultMaxEntries = 50

// Manager keeps the snapshot entries and the cursor. Invariant when
// non-empty: 0 <= cursor < len(entries).
type Manager struct {
	entries [][]domain.Segment
	cursor  int
	max     int
}

// NewManager returns a manager with the given depth cap; values <= 0 use
// DefaultMaxEntries.
func NewManager(maxEntries int) *Manager {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Manager{cursor: -1, max: maxEntries}
}

// Snapshot deep-copies segs and appends it after the cursor, discarding any
// redo branch and evicting the oldest entry past the cap.
func (m *Manager) Snapshot(segs []domain.Segment) {
	copySegs := domain.CloneSegments(segs)
	if copySegs == nil {
		copySegs = []domain.Segment{}
	}
	m.entries = append(m.entries[:m.cursor+1], copySegs)
	m.cursor++
	if len(m.entries) > m.max {
		drop := len(m.entries) - m.max
		m.entries = append([][]domain.Segment{}, m.entries[drop:]...)
		m.cursor -= drop
	}
}

// CanUndo reports whether an older entry exists.
func (m *Manager) CanUndo() bool { return m.cursor > 0 }

// CanRedo reports whether a newer entry exists.
func (m *Manager) CanRedo() bool { return m.cursor < len(m.entries)-1 }

// Undo steps the cursor back and returns a deep copy of that entry.
// Out-of-bounds undo is a no-op with ok=false, not an error.
func (m *Manager) Undo() ([]domain.Segment, bool) {
	if !m.CanUndo() {
		return nil, false
	}
	m.cursor--
	return domain.CloneSegments(m.entries[m.cursor]), true
}

// Redo steps the cursor forward and returns a deep copy of that entry.
func (m *Manager) Redo() ([]domain.Segment, bool) {
	if !m.CanRedo() {
		return nil, false
	}
	m.cursor++
	return domain.CloneSegments(m.entries[m.cursor]), true
}

// Reset drops all entries, then records segs as the new baseline.
func (m *Manager) Reset(segs []domain.Segment) {
	m.entries = nil
	m.cursor = -1
	m.Snapshot(segs)
}

// Len returns the number of stored entries.
func (m *Manager) Len() int { return len(m.entries) }
