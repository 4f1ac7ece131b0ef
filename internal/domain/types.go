/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for the fence drawing engine and the
// wire types exchanged with the calculation service. Geometry lives in
// canvas-pixel space; lengths are expressed in feet via the grid scale.

// DefaultGridSize is the number of canvas pixels per foot.
const DefaultGridSize = 20.0

// Point is a 2D point in canvas-pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is the atomic drawn entity: one continuous polyline run of fence
// (or a gate). Path order is geometrically significant. Length is derived
// from Path and the grid scale; it is never hand-edited.
type Segment struct {
	ID      string  `json:"id"`
	Path    []Point `json:"path"`
	StyleID string  `json:"styleId"`
	ColorID string  `json:"colorId"`
	IsGate  bool    `json:"isGate"`
	Length  float64 `json:"length"` // feet
}

// Clone returns a deep copy of the segment.
func (s Segment) Clone() Segment {
	c := s
	c.Path = append([]Point(nil), s.Path...)
	return c
}

// CloneSegments deep-copies a segment list. Used for history snapshots and
// clipboard contents so later mutations never alias stored state.
func CloneSegments(segs []Segment) []Segment {
	if segs == nil {
		return nil
	}
	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i] = s.Clone()
	}
	return out
}

// CornerCount is the number of interior vertices of the path: a 2-point run
// has none, each additional point adds one.
func (s Segment) CornerCount() int {
	if n := len(s.Path) - 2; n > 0 {
		return n
	}
	return 0
}

// Measurements are the derived display values recomputed on every scene
// mutation, independent of which branch produced materials and cost.
type Measurements struct {
	TotalLengthFt float64 `json:"totalLengthFt"`
	SegmentCount  int     `json:"segmentCount"`
	GateCount     int     `json:"gateCount"`
	CornerCount   int     `json:"cornerCount"`
}

// Materials is the bill of materials for the drawn layout.
type Materials struct {
	Panels   int `json:"panels"`
	Posts    int `json:"posts"`
	Hardware int `json:"hardware"`
	Gates    int `json:"gates"`
}

// CostBreakdown itemizes the estimate.
type CostBreakdown struct {
	MaterialCost float64 `json:"materialCost"`
	LaborCost    float64 `json:"laborCost"`
	GateCost     float64 `json:"gateCost"`
	TotalCost    float64 `json:"totalCost"`
	CostPerFoot  float64 `json:"costPerFoot"`
}

// CalcResult is the full derived output of the calculation pipeline.
// Fallback reports whether the values came from the local estimate rather
// than the calculation service.
type CalcResult struct {
	Measurements
	Materials Materials     `json:"materials"`
	Cost      CostBreakdown `json:"costBreakdown"`
	Fallback  bool          `json:"fallback"`
}

// WireSegment is one segment as serialized toward the calculation service.
type WireSegment struct {
	Path   []Point `json:"path"`
	Style  string  `json:"style"`
	Color  string  `json:"color"`
	Length float64 `json:"length"`
	IsGate bool    `json:"isGate"`
	Scale  float64 `json:"scale"` // pixels per foot
}

// CalcRequest is the calculation service request payload.
type CalcRequest struct {
	Segments []WireSegment `json:"segments"`
}

// WireMaterials matches the service's materials object. Quantities may carry
// service-side extras (concrete bags etc.) which the engine ignores.
type WireMaterials struct {
	Panels   int `json:"panels"`
	Posts    int `json:"posts"`
	Hardware int `json:"hardware"`
	Gates    int `json:"gates"`
}

// WireCost matches the service's cost_breakdown object.
type WireCost struct {
	MaterialCost float64 `json:"material_cost"`
	LaborCost    float64 `json:"labor_cost"`
	GateCost     float64 `json:"gate_cost"`
	TotalCost    float64 `json:"total_cost"`
	CostPerFoot  float64 `json:"cost_per_foot"`
}

// CalcResponse is the calculation service response envelope.
type CalcResponse struct {
	Success       bool          `json:"success"`
	Error         string        `json:"error,omitempty"`
	TotalLength   float64       `json:"total_length"`
	SegmentCount  int           `json:"segment_count"`
	Materials     WireMaterials `json:"materials"`
	CostBreakdown WireCost      `json:"cost_breakdown"`
}
