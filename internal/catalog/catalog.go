/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog enumerates the fence style and color options offered to the
// user. The drawing engine itself treats these as opaque identifiers; only
// renderers and the estimator service interpret them.
package catalog

// Style describes one fence style option.
type Style struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Material   string  `json:"material"`
	Kind       string  `json:"type"`
	HeightFt   float64 `json:"height"`
	PanelWidth float64 `json:"panelWidth"` // feet
}

// Color describes one color swatch option.
type Color struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Swatch string `json:"swatch"` // hex value for rendering
}

var styles = []Style{
	{ID: "vinyl-privacy", Name: "Vinyl Privacy", Material: "Vinyl", Kind: "Privacy", HeightFt: 6, PanelWidth: 8},
	{ID: "vinyl-semi-privacy", Name: "Vinyl Semi-Privacy", Material: "Vinyl", Kind: "Semi-Privacy", HeightFt: 6, PanelWidth: 8},
	{ID: "vinyl-picket", Name: "Vinyl Picket", Material: "Vinyl", Kind: "Picket", HeightFt: 4, PanelWidth: 8},
	{ID: "aluminum-privacy", Name: "Aluminum Privacy", Material: "Aluminum", Kind: "Privacy", HeightFt: 6, PanelWidth: 6},
	{ID: "aluminum-picket", Name: "Aluminum Picket", Material: "Aluminum", Kind: "Picket", HeightFt: 4, PanelWidth: 6},
	{ID: "wood-privacy", Name: "Wood Privacy", Material: "Wood", Kind: "Privacy", HeightFt: 6, PanelWidth: 8},
	{ID: "wood-picket", Name: "Wood Picket", Material: "Wood", Kind: "Picket", HeightFt: 4, PanelWidth: 8},
	{ID: "chain-link", Name: "Chain Link", Material: "Chain Link", Kind: "Open", HeightFt: 4, PanelWidth: 10},
}

var colors = []Color{
	{ID: "white", Name: "White", Swatch: "#ffffff"},
	{ID: "almond", Name: "Almond", Swatch: "#f5f5dc"},
	{ID: "sandstone", Name: "Sandstone", Swatch: "#d2b48c"},
	{ID: "khaki", Name: "Khaki", Swatch: "#f0e68c"},
	{ID: "clay", Name: "Clay", Swatch: "#cd853f"},
	{ID: "brown", Name: "Chestnut Brown", Swatch: "#8b4513"},
	{ID: "cedar", Name: "Weathered Cedar", Swatch: "#a0522d"},
	{ID: "driftwood", Name: "Driftwood Gray", Swatch: "#696969"},
	{ID: "charcoal", Name: "Charcoal", Swatch: "#36454f"},
	{ID: "black", Name: "Black", Swatch: "#000000"},
	{ID: "green", Name: "Forest Green", Swatch: "#228b22"},
	{ID: "bronze", Name: "Bronze", Swatch: "#cd7f32"},
}

// Styles returns all fence style options in display order.
func Styles() []Style { return append([]Style(nil), styles...) }

// Colors returns all color options in display order.
func Colors() []Color { return append([]Color(nil), colors...) }

// StyleByID looks up a style; ok is false for unknown ids.
func StyleByID(id string) (Style, bool) {
	for _, s := range styles {
		if s.ID == id {
			return s, true
		}
	}
	return Style{}, false
}

// ColorByID looks up a color; ok is false for unknown ids.
func ColorByID(id string) (Color, bool) {
	for _, c := range colors {
		if c.ID == id {
			return c, true
		}
	}
	return Color{}, false
}

// DefaultStyleID and DefaultColorID are the tool defaults for new segments.
const (
	DefaultStyleID = "vinyl-privacy"
	DefaultColorID = "white"
)
