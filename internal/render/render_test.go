/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"fencestudio/internal/domain"
)

func sampleSegments() []domain.Segment {
	return []domain.Segment{
		{
			ID:      "run",
			Path:    []domain.Point{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 100}},
			ColorID: "cedar",
			Length:  15,
		},
		{
			ID:      "gate",
			Path:    []domain.Point{{X: 200, Y: 100}, {X: 280, Y: 100}},
			ColorID: "white",
			IsGate:  true,
			Length:  4,
		},
	}
}

func TestBuildScene(t *testing.T) {
	sc := Build(sampleSegments(), DefaultOptions())

	if len(sc.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(sc.Lines))
	}
	if sc.Lines[0].Color != "#a0522d" {
		t.Fatalf("run color = %s, want cedar swatch", sc.Lines[0].Color)
	}
	if !sc.Lines[1].Dashed {
		t.Fatal("gate must render dashed")
	}

	// Posts: 2 endpoints + 1 corner on the run, 2 endpoints on the gate.
	if len(sc.Markers) != 5 {
		t.Fatalf("markers = %d, want 5", len(sc.Markers))
	}

	if len(sc.Labels) != 2 || sc.Labels[0].Text != "15.0 ft" || sc.Labels[1].Text != "4.0 ft" {
		t.Fatalf("unexpected labels: %+v", sc.Labels)
	}

	// Bounds pad the bbox (0,0)-(280,100) by 40 on each side.
	if sc.Bounds.X != -40 || sc.Bounds.Y != -40 || sc.Bounds.W != 360 || sc.Bounds.H != 180 {
		t.Fatalf("unexpected bounds: %+v", sc.Bounds)
	}
}

func TestBuildSceneLayerToggles(t *testing.T) {
	sc := Build(sampleSegments(), Options{})
	if len(sc.Markers) != 0 || len(sc.Labels) != 0 {
		t.Fatalf("disabled layers still present: %d markers, %d labels", len(sc.Markers), len(sc.Labels))
	}
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, Build(sampleSegments(), DefaultOptions())); err != nil {
		t.Fatalf("write svg: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<svg xmlns=\"http://www.w3.org/2000/svg\"",
		"viewBox=\"-40 -40 360 180\"",
		"stroke=\"#a0522d\"",
		"stroke-dasharray=\"8 6\"",
		">15.0 ft</text>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("svg missing %q\n%s", want, out)
		}
	}
}

func TestWriteSVGEmptyScene(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, Build(nil, DefaultOptions())); err != nil {
		t.Fatalf("write svg: %v", err)
	}
	if !strings.Contains(buf.String(), "</svg>") {
		t.Fatal("empty scene must still be a complete document")
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, Build(sampleSegments(), DefaultOptions())); err != nil {
		t.Fatalf("write png: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 360 || b.Dy() != 180 {
		t.Fatalf("image size = %dx%d, want 360x180", b.Dx(), b.Dy())
	}
	// A point on the first run must not be background white.
	r, g, bl, _ := img.At(140, 40).RGBA()
	if r == 0xffff && g == 0xffff && bl == 0xffff {
		t.Fatal("expected stroke pixel at (140,40)")
	}
}
