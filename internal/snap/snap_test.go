/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"math"
	"testing"

	"fencestudio/internal/domain"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func seg(id string, pts ...domain.Point) domain.Segment {
	return domain.Segment{ID: id, Path: pts}
}

func TestGridSnapRoundsIndependently(t *testing.T) {
	c := NewCorrector()
	p := c.Correct(domain.Point{X: 27, Y: 53}, nil, Context{})
	if p.X != 20 || p.Y != 60 {
		t.Fatalf("expected (20,60), got %+v", p)
	}
}

func TestGridSnapDisabled(t *testing.T) {
	c := NewCorrector()
	c.Grid = false
	p := c.Correct(domain.Point{X: 27, Y: 53}, nil, Context{})
	if p.X != 27 || p.Y != 53 {
		t.Fatalf("expected raw point back, got %+v", p)
	}
}

func TestMagneticSnapToVertex(t *testing.T) {
	c := NewCorrector()
	segs := []domain.Segment{seg("a", domain.Point{X: 95, Y: 5}, domain.Point{X: 200, Y: 5})}
	// Grid-snapped candidate is (100,0); vertex (95,5) is within tolerance.
	p := c.Correct(domain.Point{X: 98, Y: 3}, segs, Context{})
	if p.X != 95 || p.Y != 5 {
		t.Fatalf("expected magnetic snap to (95,5), got %+v", p)
	}
}

func TestMagneticSnapOutsideToleranceEqualsGrid(t *testing.T) {
	c := NewCorrector()
	segs := []domain.Segment{seg("a", domain.Point{X: 300, Y: 300}, domain.Point{X: 400, Y: 300})}
	p := c.Correct(domain.Point{X: 98, Y: 3}, segs, Context{})
	if p.X != 100 || p.Y != 0 {
		t.Fatalf("expected plain grid snap (100,0), got %+v", p)
	}
}

func TestMagneticSnapToIntersection(t *testing.T) {
	c := NewCorrector()
	c.Grid = false
	segs := []domain.Segment{
		seg("a", domain.Point{X: 0, Y: 0}, domain.Point{X: 100, Y: 0}),
		seg("b", domain.Point{X: 50, Y: -50}, domain.Point{X: 50, Y: 50}),
	}
	p := c.Correct(domain.Point{X: 53, Y: 4}, segs, Context{})
	if !approx(p.X, 50) || !approx(p.Y, 0) {
		t.Fatalf("expected snap to crossing (50,0), got %+v", p)
	}
}

func TestMagneticWinsOverConstraints(t *testing.T) {
	c := NewCorrector()
	last := domain.Point{X: 0, Y: 0}
	// Vertex sits off-grid and off every canonical ray.
	segs := []domain.Segment{seg("a", domain.Point{X: 103, Y: 22}, domain.Point{X: 300, Y: 22})}
	p := c.Correct(domain.Point{X: 101, Y: 19}, segs, Context{Precision: true, LastPoint: &last})
	if p.X != 103 || p.Y != 22 {
		t.Fatalf("magnetic snap must override constraints, got %+v", p)
	}
}

func TestAngleConstraintPullsToCanonicalRay(t *testing.T) {
	c := NewCorrector()
	c.Grid = false
	c.Magnetic = false
	last := domain.Point{X: 0, Y: 0}
	// ~7 degrees above horizontal; within the 15 degree window.
	raw := domain.Point{X: 100, Y: 12}
	p := c.Correct(raw, nil, Context{Precision: true, LastPoint: &last})
	if !approx(p.Y, 0) {
		t.Fatalf("expected horizontal ray, got %+v", p)
	}
}

func TestAngleConstraintOutsideWindow(t *testing.T) {
	c := NewCorrector()
	c.Grid = false
	c.Magnetic = false
	last := domain.Point{X: 0, Y: 0}
	// 22.5+ degrees is equidistant from 0 and 45; 25 degrees is 20 off the
	// nearest canonical, outside the window.
	raw := domain.Point{X: 100, Y: 100 * math.Tan(25*math.Pi/180)}
	p := c.Correct(raw, nil, Context{Precision: true, LastPoint: &last})
	// Length constraint may rescale along the same direction but the angle
	// must be preserved.
	if raw.X == 0 {
		t.Fatal("bad fixture")
	}
	wantSlope := raw.Y / raw.X
	if !approx(p.Y/p.X, wantSlope) {
		t.Fatalf("direction changed: raw %+v got %+v", raw, p)
	}
}

func TestLengthConstraintSnapsToStandardStop(t *testing.T) {
	c := NewCorrector()
	c.Grid = false
	c.Magnetic = false
	last := domain.Point{X: 0, Y: 0}
	// 110 px = 5.5 ft; nearest stop 6 ft within 2 ft window -> 120 px.
	p := c.Correct(domain.Point{X: 110, Y: 0}, nil, Context{Precision: true, LastPoint: &last})
	if !approx(p.X, 120) || !approx(p.Y, 0) {
		t.Fatalf("expected (120,0), got %+v", p)
	}
}

func TestLengthConstraintOutsideWindow(t *testing.T) {
	c := NewCorrector()
	c.Grid = false
	c.Magnetic = false
	last := domain.Point{X: 0, Y: 0}
	// 600 px = 30 ft; 10 ft past the largest stop.
	p := c.Correct(domain.Point{X: 600, Y: 0}, nil, Context{Precision: true, LastPoint: &last})
	if !approx(p.X, 600) {
		t.Fatalf("expected unchanged length, got %+v", p)
	}
}

func TestConstraintsInactiveWithoutPrecision(t *testing.T) {
	c := NewCorrector()
	c.Magnetic = false
	last := domain.Point{X: 0, Y: 0}
	p := c.Correct(domain.Point{X: 110, Y: 0}, nil, Context{Precision: false, LastPoint: &last})
	if p.X != 100 || p.Y != 0 {
		t.Fatalf("expected pure grid snap to (100,0), got %+v", p)
	}
}

func TestConstraintsInactiveWithoutDraft(t *testing.T) {
	c := NewCorrector()
	c.Grid = false
	c.Magnetic = false
	p := c.Correct(domain.Point{X: 110, Y: 7}, nil, Context{Precision: true})
	if p.X != 110 || p.Y != 7 {
		t.Fatalf("expected raw point without active draft, got %+v", p)
	}
}

func TestIntersectionsPairwiseOnly(t *testing.T) {
	segs := []domain.Segment{
		seg("a", domain.Point{X: 0, Y: 0}, domain.Point{X: 100, Y: 0}),
		seg("b", domain.Point{X: 50, Y: -50}, domain.Point{X: 50, Y: 50}),
		seg("c", domain.Point{X: 0, Y: 200}, domain.Point{X: 100, Y: 200}),
	}
	xs := Intersections(segs)
	if len(xs) != 1 {
		t.Fatalf("expected exactly one crossing, got %d", len(xs))
	}
	if !approx(xs[0].X, 50) || !approx(xs[0].Y, 0) {
		t.Fatalf("expected (50,0), got %+v", xs[0])
	}
}
