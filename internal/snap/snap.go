/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package snap corrects raw pointer positions for drawing. Stages run in
// strict precedence order, each operating on the output of the previous:
// grid snap, magnetic snap to existing geometry, then the precision-mode
// angle and length constraints. The helpers are UI-agnostic and deterministic.
package snap

import (
	"math"

	"fencestudio/internal/domain"
	"fencestudio/internal/geometry"
)

const (
	// DefaultTolerance is the magnetic snap radius in pixels.
	DefaultTolerance = 10.0

	angleWindowDeg  = 15.0
	lengthWindowFt  = 2.0
	canonicalStepPi = math.Pi / 4 // 8 canonical directions
)

// StandardLengths are the precision-mode length stops, in feet.
var StandardLengths = []float64{4, 6, 8, 10, 12, 16, 20}

// Corrector holds the tunable snapping state. Zero value is not useful; use
// NewCorrector.
type Corrector struct {
	GridSize  float64 // pixels per foot
	Tolerance float64 // magnetic radius in pixels
	Grid      bool    // grid snap enabled
	Magnetic  bool    // magnetic snap enabled
}

// NewCorrector returns a corrector with grid and magnetic snapping enabled at
// the default scale.
func NewCorrector() *Corrector {
	return &Corrector{
		GridSize:  domain.DefaultGridSize,
		Tolerance: DefaultTolerance,
		Grid:      true,
		Magnetic:  true,
	}
}

// Context carries per-gesture state: whether precision mode is held and the
// last committed draft point (nil when no draw gesture is active).
type Context struct {
	Precision bool
	LastPoint *domain.Point
}

// Correct applies the snapping stages to a raw pointer position against the
// current scene segments.
func (c *Corrector) Correct(raw domain.Point, segments []domain.Segment, ctx Context) domain.Point {
	p := raw
	if c.Grid {
		p = c.snapToGrid(p)
	}
	if c.Magnetic {
		if m, ok := c.snapToGeometry(p, segments); ok {
			// Magnetic snap wins outright; constraints never move an
			// anchored point.
			return m
		}
	}
	if ctx.Precision && ctx.LastPoint != nil {
		p = snapToAngle(*ctx.LastPoint, p)
		p = c.snapToLength(*ctx.LastPoint, p)
	}
	return p
}

// snapToGrid rounds each coordinate independently to the nearest grid line.
func (c *Corrector) snapToGrid(p domain.Point) domain.Point {
	return domain.Point{
		X: math.Round(p.X/c.GridSize) * c.GridSize,
		Y: math.Round(p.Y/c.GridSize) * c.GridSize,
	}
}

// snapToGeometry searches all segment vertices and pairwise sub-segment
// intersections for the nearest candidate within tolerance.
func (c *Corrector) snapToGeometry(p domain.Point, segments []domain.Segment) (domain.Point, bool) {
	best := domain.Point{}
	bestDist := c.Tolerance
	found := false
	consider := func(cand domain.Point) {
		if d := geometry.Distance(p, cand); d <= bestDist {
			best, bestDist, found = cand, d, true
		}
	}
	for _, s := range segments {
		for _, v := range s.Path {
			consider(v)
		}
	}
	for _, x := range Intersections(segments) {
		consider(x)
	}
	return best, found
}

// Intersections returns every pairwise crossing point between sub-segments of
// distinct segments. Recomputed per call; scenes are small.
func Intersections(segments []domain.Segment) []domain.Point {
	var out []domain.Point
	for i := 0; i < len(segments); i++ {
		a := segments[i].Path
		for j := i + 1; j < len(segments); j++ {
			b := segments[j].Path
			for ai := 1; ai < len(a); ai++ {
				for bi := 1; bi < len(b); bi++ {
					if x, ok := geometry.SegmentIntersection(a[ai-1], a[ai], b[bi-1], b[bi]); ok {
						out = append(out, x)
					}
				}
			}
		}
	}
	return out
}

// snapToAngle pulls the candidate onto the nearest of the 8 canonical rays
// from last when within the angle window, preserving distance.
func snapToAngle(last, cand domain.Point) domain.Point {
	dx, dy := cand.X-last.X, cand.Y-last.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return cand
	}
	angle := math.Atan2(dy, dx)
	canonical := math.Round(angle/canonicalStepPi) * canonicalStepPi
	delta := math.Abs(angle - canonical)
	if delta > math.Pi {
		delta = 2*math.Pi - delta
	}
	if delta*180/math.Pi > angleWindowDeg {
		return cand
	}
	return domain.Point{
		X: last.X + dist*math.Cos(canonical),
		Y: last.Y + dist*math.Sin(canonical),
	}
}

// snapToLength pulls the candidate to the nearest standard length stop along
// the already-determined direction when within the length window.
func (c *Corrector) snapToLength(last, cand domain.Point) domain.Point {
	dx, dy := cand.X-last.X, cand.Y-last.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return cand
	}
	distFt := dist / c.GridSize
	bestStop, bestDelta := 0.0, math.Inf(1)
	for _, stop := range StandardLengths {
		if d := math.Abs(distFt - stop); d < bestDelta {
			bestStop, bestDelta = stop, d
		}
	}
	if bestDelta > lengthWindowFt {
		return cand
	}
	scale := bestStop * c.GridSize / dist
	return domain.Point{X: last.X + dx*scale, Y: last.Y + dy*scale}
}
