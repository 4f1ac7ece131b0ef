/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package estimator implements the fence calculation service consumed by the
// drawing client. It parses drawn segments into straight spans, groups spans
// into connected runs, derives a bill of materials per run (panels, posts by
// topology, hardware, concrete) and prices the result per style.
package estimator

import (
	"fmt"
	"math"

	"fencestudio/internal/catalog"
	"fencestudio/internal/domain"
	"fencestudio/internal/geometry"
)

// connectTolerance is the distance in feet under which two span endpoints
// count as the same physical post location.
const connectTolerance = 0.5

// Specs describes the material characteristics of a fence style.
type Specs struct {
	PanelWidthFt       float64 `json:"panel_width"`
	PostSpacingFt      float64 `json:"post_spacing"`
	PostDepthFt        float64 `json:"post_depth"`
	PanelHeightFt      float64 `json:"panel_height"`
	HardwarePerPanel   int     `json:"hardware_per_panel"`
	ConcretePerPost    float64 `json:"concrete_bags_per_post"`
	PanelWasteFactor   float64 `json:"panel_waste_factor"`
	PostWasteFactor    float64 `json:"post_waste_factor"`
	HardwareWasteFactor float64 `json:"hardware_waste_factor"`
}

func defaultSpecs() Specs {
	return Specs{
		PanelWidthFt:       8,
		PostSpacingFt:      8,
		PostDepthFt:        2,
		PanelHeightFt:      6,
		HardwarePerPanel:   4,
		ConcretePerPost:    1.5,
		PanelWasteFactor:   0.05,
		PostWasteFactor:    0.02,
		HardwareWasteFactor: 0.10,
	}
}

// Pricing holds the per-style rate card.
type Pricing struct {
	Base         float64 `json:"base"`
	PerFoot      float64 `json:"per_foot"`
	LaborPerFoot float64 `json:"labor_per_foot"`
}

// Fixed unit prices shared by every style.
const (
	gateUnitPrice     = 150.0
	concreteUnitPrice = 8.0
	hardwareUnitPrice = 2.0
	markupRate        = 0.20
	taxRate           = 0.08
)

// Materials is the per-run bill of materials, waste factors already applied.
type Materials struct {
	Panels       int     `json:"panels"`
	Posts        int     `json:"posts"`
	Hardware     int     `json:"hardware"`
	Gates        int     `json:"gates"`
	ConcreteBags int     `json:"concrete_bags"`
	TotalLength  float64 `json:"total_length"`
}

func (m *Materials) add(o Materials) {
	m.Panels += o.Panels
	m.Posts += o.Posts
	m.Hardware += o.Hardware
	m.Gates += o.Gates
	m.ConcreteBags += o.ConcreteBags
	m.TotalLength += o.TotalLength
}

// Cost is the itemized pricing breakdown returned to the client. The drawing
// client consumes the first five fields; the rest feed the quote document.
type Cost struct {
	MaterialCost float64 `json:"material_cost"`
	LaborCost    float64 `json:"labor_cost"`
	GateCost     float64 `json:"gate_cost"`
	ConcreteCost float64 `json:"concrete_cost"`
	HardwareCost float64 `json:"hardware_cost"`
	Subtotal     float64 `json:"subtotal"`
	Markup       float64 `json:"markup"`
	Tax          float64 `json:"tax"`
	TotalCost    float64 `json:"total_cost"`
	CostPerFoot  float64 `json:"cost_per_foot"`
}

// span is one straight run between two posts, in feet.
type span struct {
	id       string
	start    domain.Point
	end      domain.Point
	styleID  string
	isGate   bool
	gateWide float64
}

func (s span) length() float64 { return geometry.Distance(s.start, s.end) }

// Result is the full calculation output.
type Result struct {
	Success         bool       `json:"success"`
	Error           string     `json:"error,omitempty"`
	TotalLength     float64    `json:"total_length"`
	SegmentCount    int        `json:"segment_count"`
	ConnectedGroups int        `json:"connected_groups"`
	Materials       Materials  `json:"materials"`
	CostBreakdown   Cost       `json:"cost_breakdown"`
	Spans           []SpanInfo `json:"segments"`
}

// SpanInfo echoes each parsed span back to the caller.
type SpanInfo struct {
	ID       string       `json:"id"`
	Start    domain.Point `json:"start"`
	End      domain.Point `json:"end"`
	Length   float64      `json:"length"`
	AngleDeg float64      `json:"angle"`
	Style    string       `json:"style"`
	IsGate   bool         `json:"is_gate"`
}

// Engine carries the style specs and the rate card. The zero value is not
// usable; construct with NewEngine.
type Engine struct {
	specs   map[string]Specs
	pricing map[string]Pricing
}

// NewEngine builds an engine with built-in specs and pricing. Overrides
// loaded from the pricing store replace individual rate-card rows.
func NewEngine() *Engine {
	return &Engine{specs: builtinSpecs(), pricing: builtinPricing()}
}

func builtinSpecs() map[string]Specs {
	specs := map[string]Specs{
		"vinyl-privacy": {PanelWidthFt: 8, PostSpacingFt: 8, PostDepthFt: 2, PanelHeightFt: 6,
			HardwarePerPanel: 4, ConcretePerPost: 1.5, PanelWasteFactor: 0.05, PostWasteFactor: 0.02, HardwareWasteFactor: 0.10},
		"vinyl-picket": {PanelWidthFt: 8, PostSpacingFt: 8, PostDepthFt: 2, PanelHeightFt: 4,
			HardwarePerPanel: 3, ConcretePerPost: 1, PanelWasteFactor: 0.05, PostWasteFactor: 0.02, HardwareWasteFactor: 0.10},
		"aluminum-privacy": {PanelWidthFt: 6, PostSpacingFt: 6, PostDepthFt: 2, PanelHeightFt: 6,
			HardwarePerPanel: 6, ConcretePerPost: 2, PanelWasteFactor: 0.05, PostWasteFactor: 0.02, HardwareWasteFactor: 0.10},
		"wood-privacy": {PanelWidthFt: 8, PostSpacingFt: 8, PostDepthFt: 2, PanelHeightFt: 6,
			HardwarePerPanel: 8, ConcretePerPost: 1.5, PanelWasteFactor: 0.05, PostWasteFactor: 0.02, HardwareWasteFactor: 0.10},
		// Chain link is sold by the linear foot; a "panel" is a 10 ft roll section.
		"chain-link": {PanelWidthFt: 10, PostSpacingFt: 10, PostDepthFt: 2, PanelHeightFt: 4,
			HardwarePerPanel: 2, ConcretePerPost: 1.5, PanelWasteFactor: 0.05, PostWasteFactor: 0.02, HardwareWasteFactor: 0.10},
	}
	for _, st := range catalog.Styles() {
		if _, ok := specs[st.ID]; !ok {
			specs[st.ID] = defaultSpecs()
		}
	}
	return specs
}

func builtinPricing() map[string]Pricing {
	return map[string]Pricing{
		"vinyl-privacy":      {Base: 25, PerFoot: 18, LaborPerFoot: 8},
		"vinyl-semi-privacy": {Base: 22, PerFoot: 16, LaborPerFoot: 7},
		"vinyl-picket":       {Base: 20, PerFoot: 14, LaborPerFoot: 6},
		"aluminum-privacy":   {Base: 35, PerFoot: 25, LaborPerFoot: 10},
		"aluminum-picket":    {Base: 30, PerFoot: 22, LaborPerFoot: 9},
		"wood-privacy":       {Base: 18, PerFoot: 12, LaborPerFoot: 6},
		"wood-picket":        {Base: 15, PerFoot: 10, LaborPerFoot: 5},
		"chain-link":         {Base: 12, PerFoot: 8, LaborPerFoot: 4},
	}
}

// SetPricing overrides the rate card row for one style.
func (e *Engine) SetPricing(styleID string, p Pricing) { e.pricing[styleID] = p }

// SpecsFor returns the material specs for a style.
func (e *Engine) SpecsFor(styleID string) (Specs, bool) {
	s, ok := e.specs[styleID]
	return s, ok
}

// Calculate runs the full pipeline for one request: parse, group, measure,
// price. Styles come per segment; segments without a style use fallback.
func (e *Engine) Calculate(req domain.CalcRequest, fallbackStyle string) Result {
	spans, err := e.parseSpans(req.Segments, fallbackStyle)
	if err != nil {
		return Result{Error: err.Error()}
	}

	groups := connectedGroups(spans)

	var total Materials
	for _, g := range groups {
		total.add(e.materialsForGroup(g))
	}

	var totalLen float64
	infos := make([]SpanInfo, len(spans))
	for i, s := range spans {
		totalLen += s.length()
		infos[i] = SpanInfo{
			ID:       s.id,
			Start:    s.start,
			End:      s.end,
			Length:   round2(s.length()),
			AngleDeg: round2(angleDeg(s.start, s.end)),
			Style:    s.styleID,
			IsGate:   s.isGate,
		}
	}

	style := fallbackStyle
	if len(spans) > 0 {
		style = spans[0].styleID
	}

	return Result{
		Success:         true,
		TotalLength:     round2(totalLen),
		SegmentCount:    len(spans),
		ConnectedGroups: len(groups),
		Materials:       total,
		CostBreakdown:   e.price(total, style),
		Spans:           infos,
	}
}

// parseSpans splits multi-point paths into straight spans and converts from
// canvas pixels to feet via each segment's scale. The drawn gate flag is
// authoritative; spans split from a gate segment all price as gate openings.
func (e *Engine) parseSpans(segs []domain.WireSegment, fallbackStyle string) ([]span, error) {
	var spans []span
	for i, seg := range segs {
		if len(seg.Path) < 2 {
			continue
		}
		scale := seg.Scale
		if scale <= 0 {
			scale = 1
		}
		style := seg.Style
		if style == "" {
			style = fallbackStyle
		}
		if _, ok := e.specs[style]; !ok {
			return nil, fmt.Errorf("unknown fence style %q", style)
		}
		for j := 0; j+1 < len(seg.Path); j++ {
			s := span{
				id:      fmt.Sprintf("SEG-%d-%d", i, j),
				start:   domain.Point{X: seg.Path[j].X / scale, Y: seg.Path[j].Y / scale},
				end:     domain.Point{X: seg.Path[j+1].X / scale, Y: seg.Path[j+1].Y / scale},
				styleID: style,
				isGate:  seg.IsGate,
			}
			if s.isGate {
				s.gateWide = s.length()
			}
			spans = append(spans, s)
		}
	}
	return spans, nil
}

// connectedGroups partitions spans into runs whose endpoints touch within
// tolerance. Depth-first over the adjacency built from endpoint proximity.
func connectedGroups(spans []span) [][]span {
	if len(spans) == 0 {
		return nil
	}
	adj := make([][]int, len(spans))
	for i := range spans {
		for j := range spans {
			if i != j && spansTouch(spans[i], spans[j]) {
				adj[i] = append(adj[i], j)
			}
		}
	}
	visited := make([]bool, len(spans))
	var groups [][]span
	for i := range spans {
		if visited[i] {
			continue
		}
		var group []span
		stack := []int{i}
		visited[i] = true
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			group = append(group, spans[n])
			for _, m := range adj[n] {
				if !visited[m] {
					visited[m] = true
					stack = append(stack, m)
				}
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func spansTouch(a, b span) bool {
	for _, p := range [2]domain.Point{a.start, a.end} {
		for _, q := range [2]domain.Point{b.start, b.end} {
			if geometry.Distance(p, q) <= connectTolerance {
				return true
			}
		}
	}
	return false
}

// materialsForGroup derives the bill of materials for one connected run.
// Gates carry no panels; posts come from the run topology.
func (e *Engine) materialsForGroup(group []span) Materials {
	if len(group) == 0 {
		return Materials{}
	}
	specs := e.specs[group[0].styleID]

	var totalLen, gateLen float64
	gates := 0
	for _, s := range group {
		totalLen += s.length()
		if s.isGate {
			gates++
			gateLen += s.gateWide
		}
	}

	panels := int(math.Ceil((totalLen - gateLen) / specs.PanelWidthFt))
	if panels < 0 {
		panels = 0
	}
	posts := postsForGroup(group, specs)
	hardware := panels * specs.HardwarePerPanel
	concrete := float64(posts) * specs.ConcretePerPost

	return Materials{
		Panels:       int(math.Ceil(float64(panels) * (1 + specs.PanelWasteFactor))),
		Posts:        int(math.Ceil(float64(posts) * (1 + specs.PostWasteFactor))),
		Hardware:     int(math.Ceil(float64(hardware) * (1 + specs.HardwareWasteFactor))),
		Gates:        gates,
		ConcreteBags: int(math.Ceil(concrete)),
		TotalLength:  totalLen,
	}
}

// postsForGroup counts posts from the run topology: end posts at degree-1
// nodes, corner posts at degree>2 nodes, and line posts spaced along the
// straight footage between them.
func postsForGroup(group []span, specs Specs) int {
	var nodes []domain.Point
	degree := map[int]map[int]struct{}{}

	idx := func(p domain.Point) int {
		for i, n := range nodes {
			if geometry.Distance(n, p) <= connectTolerance {
				return i
			}
		}
		nodes = append(nodes, p)
		degree[len(nodes)-1] = map[int]struct{}{}
		return len(nodes) - 1
	}

	for _, s := range group {
		a, b := idx(s.start), idx(s.end)
		degree[a][b] = struct{}{}
		degree[b][a] = struct{}{}
	}

	endPosts, cornerPosts := 0, 0
	for _, neighbors := range degree {
		switch n := len(neighbors); {
		case n == 1:
			endPosts++
		case n > 2:
			cornerPosts++
		}
	}

	var fenceLen float64
	for _, s := range group {
		if !s.isGate {
			fenceLen += s.length()
		}
	}
	theoretical := int(math.Ceil(fenceLen / specs.PostSpacingFt))
	linePosts := theoretical - cornerPosts - endPosts
	if linePosts < 0 {
		linePosts = 0
	}
	return endPosts + cornerPosts + linePosts
}

// price computes the itemized breakdown for a bill of materials.
func (e *Engine) price(m Materials, styleID string) Cost {
	rates := e.pricing[styleID]

	materialCost := rates.Base + m.TotalLength*rates.PerFoot
	laborCost := m.TotalLength * rates.LaborPerFoot
	gateCost := float64(m.Gates) * gateUnitPrice
	concreteCost := float64(m.ConcreteBags) * concreteUnitPrice
	hardwareCost := float64(m.Hardware) * hardwareUnitPrice

	subtotal := materialCost + laborCost + gateCost + concreteCost + hardwareCost
	markup := subtotal * markupRate
	tax := (subtotal + markup) * taxRate
	total := subtotal + markup + tax

	c := Cost{
		MaterialCost: round2(materialCost),
		LaborCost:    round2(laborCost),
		GateCost:     round2(gateCost),
		ConcreteCost: round2(concreteCost),
		HardwareCost: round2(hardwareCost),
		Subtotal:     round2(subtotal),
		Markup:       round2(markup),
		Tax:          round2(tax),
		TotalCost:    round2(total),
	}
	if m.TotalLength > 0 {
		c.CostPerFoot = round2(total / m.TotalLength)
	}
	return c
}

// Suggestion is one layout optimization hint.
type Suggestion struct {
	Type             string  `json:"type"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	PotentialSavings float64 `json:"potential_savings"`
}

// Suggest derives optimization hints from a calculation result.
func Suggest(res Result) []Suggestion {
	if !res.Success {
		return nil
	}
	var out []Suggestion
	if res.TotalLength > 50 {
		out = append(out, Suggestion{
			Type:             "panel_optimization",
			Title:            "Consider Larger Panels",
			Description:      "Using 10ft panels instead of 8ft could reduce material costs",
			PotentialSavings: round2(res.TotalLength * 0.5),
		})
	}
	if res.Materials.Gates > 2 {
		out = append(out, Suggestion{
			Type:             "gate_optimization",
			Title:            "Optimize Gate Placement",
			Description:      "Consider reducing the number of gates to lower costs",
			PotentialSavings: round2(float64(res.Materials.Gates-2) * gateUnitPrice),
		})
	}
	if res.ConnectedGroups > 1 {
		out = append(out, Suggestion{
			Type:             "connectivity",
			Title:            "Connect Fence Sections",
			Description:      "Connecting separate fence sections can reduce post requirements",
			PotentialSavings: round2(float64(res.ConnectedGroups) * 100),
		})
	}
	return out
}

func angleDeg(a, b domain.Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
