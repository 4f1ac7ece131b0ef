/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import (
	"math"
	"testing"

	"fencestudio/internal/domain"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDistance(t *testing.T) {
	if d := Distance(domain.Point{X: 0, Y: 0}, domain.Point{X: 3, Y: 4}); !approx(d, 5) {
		t.Fatalf("expected 5, got %v", d)
	}
}

func TestPathLength(t *testing.T) {
	path := []domain.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 50}}
	if l := PathLength(path); !approx(l, 150) {
		t.Fatalf("expected 150, got %v", l)
	}
	if l := PathLength(path[:1]); l != 0 {
		t.Fatalf("single point path should have zero length, got %v", l)
	}
}

func TestSegmentIntersectionCrossing(t *testing.T) {
	p, ok := SegmentIntersection(
		domain.Point{X: 0, Y: 0}, domain.Point{X: 100, Y: 0},
		domain.Point{X: 50, Y: -50}, domain.Point{X: 50, Y: 50},
	)
	if !ok {
		t.Fatalf("expected intersection")
	}
	if !approx(p.X, 50) || !approx(p.Y, 0) {
		t.Fatalf("expected (50,0), got %+v", p)
	}
}

func TestSegmentIntersectionParallel(t *testing.T) {
	if _, ok := SegmentIntersection(
		domain.Point{X: 0, Y: 0}, domain.Point{X: 100, Y: 0},
		domain.Point{X: 0, Y: 10}, domain.Point{X: 100, Y: 10},
	); ok {
		t.Fatalf("parallel segments must not intersect")
	}
}

func TestSegmentIntersectionOutsideSpan(t *testing.T) {
	// Lines cross at (150,0), beyond the first segment's extent.
	if _, ok := SegmentIntersection(
		domain.Point{X: 0, Y: 0}, domain.Point{X: 100, Y: 0},
		domain.Point{X: 150, Y: -50}, domain.Point{X: 150, Y: 50},
	); ok {
		t.Fatalf("intersection on infinite extension must be rejected")
	}
}

func TestIsCornerPoint(t *testing.T) {
	right := []domain.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}
	if !IsCornerPoint(right, 1) {
		t.Fatalf("90 degree turn should be a corner")
	}
	shallow := []domain.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 200, Y: 20}}
	if IsCornerPoint(shallow, 1) {
		t.Fatalf("~11 degree turn should not be a corner")
	}
	if IsCornerPoint(right, 0) || IsCornerPoint(right, 2) {
		t.Fatalf("endpoints are never corners")
	}
}

func TestMidPointTwoPoints(t *testing.T) {
	m := MidPoint([]domain.Point{{X: 0, Y: 0}, {X: 100, Y: 0}})
	if !approx(m.X, 50) || !approx(m.Y, 0) {
		t.Fatalf("expected (50,0), got %+v", m)
	}
}

func TestMidPointPolylineHalfLength(t *testing.T) {
	// Total length 200; half-way lands at the interior vertex, not the
	// average of the point array.
	m := MidPoint([]domain.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}})
	if !approx(m.X, 100) || !approx(m.Y, 0) {
		t.Fatalf("expected (100,0), got %+v", m)
	}
	// Uneven legs: length 100+50, midpoint 75px along the first leg.
	m = MidPoint([]domain.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 50}})
	if !approx(m.X, 75) || !approx(m.Y, 0) {
		t.Fatalf("expected (75,0), got %+v", m)
	}
}

func TestPointSegmentDistance(t *testing.T) {
	a, b := domain.Point{X: 0, Y: 0}, domain.Point{X: 100, Y: 0}
	if d := PointSegmentDistance(domain.Point{X: 50, Y: 10}, a, b); !approx(d, 10) {
		t.Fatalf("expected 10, got %v", d)
	}
	// Beyond the end: distance to the endpoint.
	if d := PointSegmentDistance(domain.Point{X: 110, Y: 0}, a, b); !approx(d, 10) {
		t.Fatalf("expected 10 past endpoint, got %v", d)
	}
	// Degenerate segment.
	if d := PointSegmentDistance(domain.Point{X: 3, Y: 4}, a, a); !approx(d, 5) {
		t.Fatalf("expected 5 for degenerate segment, got %v", d)
	}
}

func TestBounds(t *testing.T) {
	r, ok := Bounds([]domain.Point{{X: 10, Y: 20}, {X: 110, Y: 20}}, []domain.Point{{X: 50, Y: 120}})
	if !ok {
		t.Fatalf("expected bounds")
	}
	if r.X != 10 || r.Y != 20 || r.W != 100 || r.H != 100 {
		t.Fatalf("unexpected bounds: %+v", r)
	}
	if _, ok := Bounds(); ok {
		t.Fatalf("no points should yield no bounds")
	}
}
