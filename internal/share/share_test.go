/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package share

import (
	"encoding/base64"
	"testing"

	"fencestudio/internal/domain"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	segs := []domain.Segment{
		{
			ID:      "seg-1",
			Path:    []domain.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 60}},
			StyleID: "wood-privacy",
			ColorID: "cedar",
			Length:  8,
		},
		{
			ID:      "seg-2",
			Path:    []domain.Point{{X: 100, Y: 60}, {X: 180, Y: 60}},
			StyleID: "wood-privacy",
			ColorID: "cedar",
			IsGate:  true,
			Length:  4,
		},
	}
	tok, err := Encode(segs, "wood-privacy", "cedar")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	p, err := Decode(tok)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Version != Version || p.StyleID != "wood-privacy" || p.ColorID != "cedar" {
		t.Fatalf("unexpected payload header: %+v", p)
	}
	if len(p.Segments) != 2 || p.Segments[0].ID != "seg-1" || !p.Segments[1].IsGate {
		t.Fatalf("unexpected segments: %+v", p.Segments)
	}
	if len(p.Segments[0].Path) != 3 || p.Segments[0].Path[2] != (domain.Point{X: 100, Y: 60}) {
		t.Fatalf("unexpected path: %+v", p.Segments[0].Path)
	}
}

func TestEncodeEmptyScene(t *testing.T) {
	tok, err := Encode(nil, "vinyl-privacy", "white")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	p, err := Decode(tok)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Segments) != 0 {
		t.Fatalf("expected empty segments, got %+v", p.Segments)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode("not-*-base64!"); err == nil {
		t.Fatal("expected base64 error")
	}
	// Valid base64 of invalid JSON.
	tok := base64.RawURLEncoding.EncodeToString([]byte("{broken"))
	if _, err := Decode(tok); err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestDecodeRejectsNonConformingPayload(t *testing.T) {
	// Well-formed JSON missing required fields.
	tok := base64.RawURLEncoding.EncodeToString([]byte(`{"v":1,"segments":[]}`))
	if _, err := Decode(tok); err == nil {
		t.Fatal("expected validation failure for missing styleId/colorId")
	}
	// Single-point path violates the schema.
	tok = base64.RawURLEncoding.EncodeToString([]byte(
		`{"v":1,"styleId":"a","colorId":"b","segments":[{"id":"s","path":[{"x":0,"y":0}],"length":0}]}`))
	if _, err := Decode(tok); err == nil {
		t.Fatal("expected validation failure for short path")
	}
}

func TestDecodeRejectsFutureVersion(t *testing.T) {
	tok := base64.RawURLEncoding.EncodeToString([]byte(
		`{"v":99,"styleId":"a","colorId":"b","segments":[]}`))
	if _, err := Decode(tok); err == nil {
		t.Fatal("expected version error")
	}
}
