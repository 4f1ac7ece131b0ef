/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewport holds the zoom/pan rendering transform. It never touches
// stored scene geometry and none of its operations create history entries.
package viewport

import (
	"math"

	"fencestudio/internal/domain"
	"fencestudio/internal/geometry"
)

const (
	MinZoom  = 0.1
	MaxZoom  = 5.0
	zoomStep = 1.2

	// fitMaxZoom caps zoom-to-fit so tiny layouts don't blow up.
	fitMaxZoom = 2.0
	fitPadding = 40.0 // pixels around the content box
)

// Viewport is the screen transform: screen = world*Zoom + Pan.
type Viewport struct {
	Zoom float64
	PanX float64
	PanY float64
}

// New returns an identity viewport.
func New() *Viewport { return &Viewport{Zoom: 1} }

// ToScreen maps a world (canvas) point to screen coordinates.
func (v *Viewport) ToScreen(p domain.Point) domain.Point {
	return domain.Point{X: p.X*v.Zoom + v.PanX, Y: p.Y*v.Zoom + v.PanY}
}

// ToWorld maps a screen point back into canvas space.
func (v *Viewport) ToWorld(p domain.Point) domain.Point {
	return domain.Point{X: (p.X - v.PanX) / v.Zoom, Y: (p.Y - v.PanY) / v.Zoom}
}

// ZoomIn multiplies zoom by the step, clamped.
func (v *Viewport) ZoomIn() { v.Zoom = clamp(v.Zoom*zoomStep, MinZoom, MaxZoom) }

// ZoomOut divides zoom by the step, clamped.
func (v *Viewport) ZoomOut() { v.Zoom = clamp(v.Zoom/zoomStep, MinZoom, MaxZoom) }

// ZoomAt adjusts zoom by delta while keeping the world point under the given
// screen position fixed.
func (v *Viewport) ZoomAt(screen domain.Point, delta float64) {
	anchor := v.ToWorld(screen)
	v.Zoom = clamp(v.Zoom+delta, MinZoom, MaxZoom)
	// Re-solve pan so the anchor stays put on screen.
	v.PanX = screen.X - anchor.X*v.Zoom
	v.PanY = screen.Y - anchor.Y*v.Zoom
}

// ZoomFit frames the bounding box of all segment points inside the given
// screen size, with padding, capped at the fit maximum. Empty scenes reset to
// identity.
func (v *Viewport) ZoomFit(segments []domain.Segment, screenW, screenH float64) {
	paths := make([][]domain.Point, len(segments))
	for i, s := range segments {
		paths[i] = s.Path
	}
	box, ok := geometry.Bounds(paths...)
	if !ok {
		v.Zoom, v.PanX, v.PanY = 1, 0, 0
		return
	}
	w := box.W + 2*fitPadding
	h := box.H + 2*fitPadding
	z := math.Min(screenW/w, screenH/h)
	v.Zoom = clamp(math.Min(z, fitMaxZoom), MinZoom, MaxZoom)
	// Center the content box.
	cx, cy := box.X+box.W/2, box.Y+box.H/2
	v.PanX = screenW/2 - cx*v.Zoom
	v.PanY = screenH/2 - cy*v.Zoom
}

// Pan shifts the view by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
