/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package estimate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"fencestudio/internal/domain"
)

func tenFootRun() []domain.Segment {
	return []domain.Segment{
		{
			ID:     "s1",
			Path:   []domain.Point{{X: 0, Y: 0}, {X: 200, Y: 0}},
			Length: 10,
		},
	}
}

func TestFallbackTenFeet(t *testing.T) {
	m := Measure(tenFootRun())
	if m.TotalLengthFt != 10 || m.SegmentCount != 1 || m.GateCount != 0 || m.CornerCount != 0 {
		t.Fatalf("unexpected measurements: %+v", m)
	}
	mat, cost := Fallback(m)
	if mat.Panels != 2 || mat.Posts != 3 || mat.Hardware != 8 || mat.Gates != 0 {
		t.Fatalf("unexpected materials: %+v", mat)
	}
	if cost.MaterialCost != 150 || cost.LaborCost != 80 || cost.GateCost != 0 {
		t.Fatalf("unexpected cost items: %+v", cost)
	}
	if cost.TotalCost != 230 || cost.CostPerFoot != 23 {
		t.Fatalf("unexpected totals: total=%v perFoot=%v", cost.TotalCost, cost.CostPerFoot)
	}
}

func TestFallbackEmptyScene(t *testing.T) {
	mat, cost := Fallback(domain.Measurements{})
	if mat != (domain.Materials{}) {
		t.Fatalf("expected zero materials, got %+v", mat)
	}
	if cost != (domain.CostBreakdown{}) {
		t.Fatalf("expected zero cost, got %+v", cost)
	}
}

func TestMeasureCountsGatesAndCorners(t *testing.T) {
	segs := []domain.Segment{
		{Path: []domain.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}, Length: 10},
		{Path: []domain.Point{{X: 200, Y: 0}, {X: 280, Y: 0}}, Length: 4, IsGate: true},
	}
	m := Measure(segs)
	if m.TotalLengthFt != 14 {
		t.Fatalf("total length = %v, want 14", m.TotalLengthFt)
	}
	if m.SegmentCount != 2 || m.GateCount != 1 || m.CornerCount != 1 {
		t.Fatalf("unexpected counts: %+v", m)
	}
}

func TestPipelineFallbackWithoutClient(t *testing.T) {
	p := NewPipeline(WithDebounce(time.Millisecond))
	defer p.Close()
	p.Schedule(tenFootRun())
	p.Flush()
	res := p.Result()
	if !res.Fallback {
		t.Fatalf("expected fallback result, got %+v", res)
	}
	if res.TotalLengthFt != 10 || res.Materials.Panels != 2 || res.Cost.TotalCost != 230 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestPipelineAdoptsRemoteResult(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq domain.CalcRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(domain.CalcResponse{
			Success:      true,
			TotalLength:  10,
			SegmentCount: 1,
			Materials:    domain.WireMaterials{Panels: 3, Posts: 4, Hardware: 12},
			CostBreakdown: domain.WireCost{
				MaterialCost: 412.5,
				LaborCost:    120,
				TotalCost:    532.5,
				CostPerFoot:  53.25,
			},
		})
	}))
	defer srv.Close()

	p := NewPipeline(
		WithClient(NewClient(srv.URL, "tok-123", time.Second)),
		WithDebounce(time.Millisecond),
	)
	defer p.Close()
	p.Schedule(tenFootRun())
	p.Flush()

	if gotPath != CalculatePath {
		t.Fatalf("request path = %q, want %q", gotPath, CalculatePath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if len(gotReq.Segments) != 1 || gotReq.Segments[0].Scale != domain.DefaultGridSize {
		t.Fatalf("unexpected wire request: %+v", gotReq)
	}
	res := p.Result()
	if res.Fallback {
		t.Fatalf("remote result flagged as fallback: %+v", res)
	}
	if res.Materials.Panels != 3 || res.Cost.TotalCost != 532.5 {
		t.Fatalf("remote values not adopted: %+v", res)
	}
	if res.TotalLengthFt != 10 {
		t.Fatalf("measurements must stay local: %+v", res)
	}
}

func TestPipelineFallsBackOnServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewPipeline(
		WithClient(NewClient(srv.URL, "", time.Second)),
		WithDebounce(time.Millisecond),
	)
	defer p.Close()
	p.Schedule(tenFootRun())
	p.Flush()
	res := p.Result()
	if !res.Fallback {
		t.Fatalf("expected fallback after service error, got %+v", res)
	}
	if res.Cost.TotalCost != 230 {
		t.Fatalf("fallback cost = %v, want 230", res.Cost.TotalCost)
	}
}

func TestClientRejectsUnsuccessfulPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.CalcResponse{Success: false, Error: "unknown style"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	if _, err := c.Calculate(context.Background(), domain.CalcRequest{}); err == nil {
		t.Fatal("expected error for success=false payload")
	}
}

func TestScheduleCoalescesBursts(t *testing.T) {
	var mu sync.Mutex
	var calls int
	p := NewPipeline(
		WithDebounce(100*time.Millisecond),
		WithOnResult(func(domain.CalcResult) {
			mu.Lock()
			calls++
			mu.Unlock()
		}),
	)
	defer p.Close()

	one := tenFootRun()
	two := append(tenFootRun(), domain.Segment{
		ID:     "s2",
		Path:   []domain.Point{{X: 0, Y: 100}, {X: 100, Y: 100}},
		Length: 5,
	})
	p.Schedule(one)
	p.Schedule(two)
	p.Flush()

	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 1 {
		t.Fatalf("burst produced %d recomputes, want 1", got)
	}
	res := p.Result()
	if res.SegmentCount != 2 || res.TotalLengthFt != 15 {
		t.Fatalf("coalesced recompute must use the latest scene: %+v", res)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	p := NewPipeline()
	defer p.Close()

	fresh := domain.CalcResult{Measurements: domain.Measurements{SegmentCount: 2}}
	stale := domain.CalcResult{Measurements: domain.Measurements{SegmentCount: 1}}

	p.mu.Lock()
	p.lastToken = 2
	p.mu.Unlock()

	p.publish(2, fresh)
	p.publish(1, stale)

	if got := p.Result(); got.SegmentCount != 2 {
		t.Fatalf("stale response overwrote fresh result: %+v", got)
	}
}
