/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import "fencestudio/internal/domain"

// Scene is the authoritative list of drawn segments plus the current
// selection. All mutations go through the engine so every change is
// snapshot-able and undoable. Selection is always a subset of segment ids.
type Scene struct {
	segments  []domain.Segment
	selection map[string]struct{}
}

func newScene() *Scene {
	return &Scene{selection: make(map[string]struct{})}
}

// Segments returns a deep copy of the segment list.
func (s *Scene) Segments() []domain.Segment {
	return domain.CloneSegments(s.segments)
}

// SegmentCount returns the number of segments without copying.
func (s *Scene) SegmentCount() int { return len(s.segments) }

// Selection returns the selected ids.
func (s *Scene) Selection() []string {
	out := make([]string, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	return out
}

// IsSelected reports whether the id is selected.
func (s *Scene) IsSelected(id string) bool {
	_, ok := s.selection[id]
	return ok
}

func (s *Scene) add(seg domain.Segment) {
	s.segments = append(s.segments, seg)
}

// removeSelected deletes all selected segments and returns the removed ids.
func (s *Scene) removeSelected() []string {
	if len(s.selection) == 0 {
		return nil
	}
	removed := make([]string, 0, len(s.selection))
	kept := s.segments[:0]
	for _, seg := range s.segments {
		if _, ok := s.selection[seg.ID]; ok {
			removed = append(removed, seg.ID)
			continue
		}
		kept = append(kept, seg)
	}
	s.segments = kept
	s.selection = make(map[string]struct{})
	return removed
}

// replace swaps the entire segment list and clears selection, since selected
// ids may no longer exist.
func (s *Scene) replace(segs []domain.Segment) {
	s.segments = domain.CloneSegments(segs)
	s.selection = make(map[string]struct{})
}

func (s *Scene) selectOnly(id string) {
	s.selection = map[string]struct{}{id: {}}
}

func (s *Scene) toggle(id string) {
	if _, ok := s.selection[id]; ok {
		delete(s.selection, id)
	} else {
		s.selection[id] = struct{}{}
	}
}

func (s *Scene) clearSelection() {
	s.selection = make(map[string]struct{})
}

// selectedSegments returns deep copies of the selected segments in draw order.
func (s *Scene) selectedSegments() []domain.Segment {
	var out []domain.Segment
	for _, seg := range s.segments {
		if _, ok := s.selection[seg.ID]; ok {
			out = append(out, seg.Clone())
		}
	}
	return out
}

// restyleSelected reassigns style/color on selected segments; empty values
// leave the respective field untouched. Returns the number touched.
func (s *Scene) restyleSelected(styleID, colorID string) int {
	n := 0
	for i := range s.segments {
		if _, ok := s.selection[s.segments[i].ID]; !ok {
			continue
		}
		if styleID != "" {
			s.segments[i].StyleID = styleID
		}
		if colorID != "" {
			s.segments[i].ColorID = colorID
		}
		n++
	}
	return n
}
