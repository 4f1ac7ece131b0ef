/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geometry is the pure, stateless geometry kernel for the drawing
// engine. All functions are deterministic and side-effect free to enable unit
// testing and reuse across frontends.
package geometry

import (
	"math"

	"fencestudio/internal/domain"
)

// parallelEps is the determinant magnitude below which two lines are treated
// as parallel.
const parallelEps = 1e-10

// cornerTurnDeg is the minimum turn angle at an interior vertex for it to
// count as a corner. Display/counting only; snapping never consults it.
const cornerTurnDeg = 30.0

// Distance returns the Euclidean distance between a and b.
func Distance(a, b domain.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// PathLength returns the sum of distances between consecutive points.
func PathLength(points []domain.Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// SegmentIntersection solves the parametric system for the two finite
// segments p1-p2 and p3-p4. It returns the crossing point only when it lies
// within both segments; ok is false for parallel lines or intersections on
// the infinite extensions.
func SegmentIntersection(p1, p2, p3, p4 domain.Point) (domain.Point, bool) {
	d1x, d1y := p2.X-p1.X, p2.Y-p1.Y
	d2x, d2y := p4.X-p3.X, p4.Y-p3.Y
	det := d1x*d2y - d1y*d2x
	if math.Abs(det) < parallelEps {
		return domain.Point{}, false
	}
	t := ((p3.X-p1.X)*d2y - (p3.Y-p1.Y)*d2x) / det
	u := ((p3.X-p1.X)*d1y - (p3.Y-p1.Y)*d1x) / det
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return domain.Point{}, false
	}
	return domain.Point{X: p1.X + t*d1x, Y: p1.Y + t*d1y}, true
}

// IsCornerPoint reports whether the turn angle between the incoming and
// outgoing sub-segments at index exceeds the corner threshold. Endpoints are
// never corners.
func IsCornerPoint(path []domain.Point, index int) bool {
	if index <= 0 || index >= len(path)-1 {
		return false
	}
	in := math.Atan2(path[index].Y-path[index-1].Y, path[index].X-path[index-1].X)
	out := math.Atan2(path[index+1].Y-path[index].Y, path[index+1].X-path[index].X)
	turn := math.Abs(in - out)
	if turn > math.Pi {
		turn = 2*math.Pi - turn
	}
	return turn*180/math.Pi > cornerTurnDeg
}

// MidPoint returns the point at half the cumulative path length, linearly
// interpolated along the polyline. For a 2-point path this is the arithmetic
// midpoint. An empty path yields the origin; a single point yields itself.
func MidPoint(points []domain.Point) domain.Point {
	switch len(points) {
	case 0:
		return domain.Point{}
	case 1:
		return points[0]
	case 2:
		return domain.Point{X: (points[0].X + points[1].X) / 2, Y: (points[0].Y + points[1].Y) / 2}
	}
	half := PathLength(points) / 2
	var walked float64
	for i := 1; i < len(points); i++ {
		d := Distance(points[i-1], points[i])
		if walked+d >= half && d > 0 {
			t := (half - walked) / d
			return domain.Point{
				X: points[i-1].X + t*(points[i].X-points[i-1].X),
				Y: points[i-1].Y + t*(points[i].Y-points[i-1].Y),
			}
		}
		walked += d
	}
	return points[len(points)-1]
}

// PointSegmentDistance returns the distance from p to the finite segment a-b.
func PointSegmentDistance(p, a, b domain.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Distance(p, domain.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// PointPathDistance returns the minimum distance from p to any sub-segment of
// the polyline.
func PointPathDistance(p domain.Point, path []domain.Point) float64 {
	if len(path) == 0 {
		return math.Inf(1)
	}
	if len(path) == 1 {
		return Distance(p, path[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(path); i++ {
		if d := PointSegmentDistance(p, path[i-1], path[i]); d < best {
			best = d
		}
	}
	return best
}

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y, W, H float64
}

// Bounds returns the axis-aligned bounding box of all points across the given
// paths. ok is false when there are no points at all.
func Bounds(paths ...[]domain.Point) (Rect, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	seen := false
	for _, path := range paths {
		for _, p := range path {
			seen = true
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if !seen {
		return Rect{}, false
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}
