/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns a drawn layout into a resolution-independent scene
// description and writes it out as SVG or PNG. Fence runs render as stroked
// polylines in their catalog color, gates as dashed runs, posts as square
// markers at endpoints and corners, and each run carries a length label at
// its midpoint.
package render

import (
	"fmt"

	"fencestudio/internal/catalog"
	"fencestudio/internal/domain"
	"fencestudio/internal/geometry"
)

// Default visual parameters, in canvas pixels.
const (
	strokeWidth  = 3.0
	postSize     = 6.0
	scenePadding = 40.0
	fallbackHex  = "#333333"
	postHex      = "#4a4a4a"
	labelHex     = "#1a1a1a"
)

// Options controls scene building.
type Options struct {
	ShowLabels bool
	ShowPosts  bool
}

// DefaultOptions enables every layer.
func DefaultOptions() Options { return Options{ShowLabels: true, ShowPosts: true} }

// Line is one stroked polyline.
type Line struct {
	Points []domain.Point
	Color  string // css hex
	Dashed bool
	Width  float64
}

// Marker is a post indicator.
type Marker struct {
	At   domain.Point
	Size float64
}

// Label is a measurement annotation anchored at a world point.
type Label struct {
	At   domain.Point
	Text string
}

// Scene is the resolution-independent drawing, with bounds padded for
// framing.
type Scene struct {
	Bounds  geometry.Rect
	Lines   []Line
	Markers []Marker
	Labels  []Label
}

// Build assembles the scene description for a segment list.
func Build(segments []domain.Segment, opt Options) Scene {
	var sc Scene

	paths := make([][]domain.Point, 0, len(segments))
	for _, s := range segments {
		paths = append(paths, s.Path)
	}
	if b, ok := geometry.Bounds(paths...); ok {
		sc.Bounds = geometry.Rect{
			X: b.X - scenePadding,
			Y: b.Y - scenePadding,
			W: b.W + 2*scenePadding,
			H: b.H + 2*scenePadding,
		}
	}

	for _, s := range segments {
		if len(s.Path) < 2 {
			continue
		}
		sc.Lines = append(sc.Lines, Line{
			Points: append([]domain.Point(nil), s.Path...),
			Color:  swatchFor(s.ColorID),
			Dashed: s.IsGate,
			Width:  strokeWidth,
		})
		if opt.ShowPosts {
			for i, p := range s.Path {
				if i == 0 || i == len(s.Path)-1 || geometry.IsCornerPoint(s.Path, i) {
					sc.Markers = append(sc.Markers, Marker{At: p, Size: postSize})
				}
			}
		}
		if opt.ShowLabels {
			sc.Labels = append(sc.Labels, Label{
				At:   geometry.MidPoint(s.Path),
				Text: fmt.Sprintf("%.1f ft", s.Length),
			})
		}
	}
	return sc
}

func swatchFor(colorID string) string {
	if c, ok := catalog.ColorByID(colorID); ok {
		return c.Swatch
	}
	return fallbackHex
}
