/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package estimate runs the debounced calculation pipeline: every scene
// mutation schedules a recompute after a quiet window, cancelling any
// previously scheduled (but not yet dispatched) one. Materials and cost come
// from the remote estimator when reachable and from the deterministic local
// fallback otherwise; the displayed measurements are always recomputed
// locally.
package estimate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fencestudio/internal/domain"
	applog "fencestudio/internal/log"
)

// DefaultDebounce is the quiet window between the last mutation and the
// dispatched recompute.
const DefaultDebounce = 500 * time.Millisecond

// Pipeline debounces recomputes and publishes results. Dispatched requests
// carry a monotonically increasing token; responses older than the latest
// dispatched token are discarded so a slow stale response can never overwrite
// a newer result.
type Pipeline struct {
	client   Estimator // nil means fallback-only
	debounce time.Duration
	gridSize float64
	onResult func(domain.CalcResult)
	log      *slog.Logger

	mu        sync.Mutex
	timer     *time.Timer
	lastToken uint64
	applied   uint64
	result    domain.CalcResult
	wg        sync.WaitGroup
}

// PipelineOption configures a pipeline.
type PipelineOption func(*Pipeline)

// WithClient attaches the remote estimator client.
func WithClient(c Estimator) PipelineOption { return func(p *Pipeline) { p.client = c } }

// WithDebounce overrides the debounce window (tests use tiny values).
func WithDebounce(d time.Duration) PipelineOption { return func(p *Pipeline) { p.debounce = d } }

// WithGridSize overrides the pixels-per-foot scale reported to the service.
func WithGridSize(px float64) PipelineOption { return func(p *Pipeline) { p.gridSize = px } }

// WithOnResult registers the display callback invoked for every adopted
// result. Called from the pipeline goroutine.
func WithOnResult(fn func(domain.CalcResult)) PipelineOption {
	return func(p *Pipeline) { p.onResult = fn }
}

// NewPipeline builds a pipeline with the default debounce window.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		debounce: DefaultDebounce,
		gridSize: domain.DefaultGridSize,
		log:      applog.WithComponent("estimate"),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Schedule queues a recompute for the given segments after the debounce
// window, cancelling any previously scheduled one. An already-dispatched
// in-flight request is not cancelled; its response is token-checked instead.
func (p *Pipeline) Schedule(segments []domain.Segment) {
	segs := domain.CloneSegments(segments)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, func() {
		p.mu.Lock()
		p.timer = nil
		p.lastToken++
		token := p.lastToken
		p.wg.Add(1)
		p.mu.Unlock()
		go func() {
			defer p.wg.Done()
			p.recompute(token, segs)
		}()
	})
}

// Flush fires any pending debounce timer immediately and blocks until all
// dispatched recomputes have settled. Test helper; callers must not race it
// with further Schedule calls.
func (p *Pipeline) Flush() {
	p.mu.Lock()
	if t := p.timer; t != nil && t.Stop() {
		t.Reset(0)
	}
	p.mu.Unlock()
	for {
		p.mu.Lock()
		pending := p.timer != nil
		p.mu.Unlock()
		if !pending {
			break
		}
		time.Sleep(time.Millisecond)
	}
	p.wg.Wait()
}

// Result returns the latest adopted calculation result.
func (p *Pipeline) Result() domain.CalcResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Close cancels any scheduled recompute and waits for in-flight ones.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pipeline) recompute(token uint64, segs []domain.Segment) {
	m := Measure(segs)
	res := domain.CalcResult{Measurements: m}

	if p.client != nil {
		req := buildRequest(segs, p.gridSize)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		resp, err := p.client.Calculate(ctx, req)
		cancel()
		if err == nil {
			res.Materials = domain.Materials{
				Panels:   resp.Materials.Panels,
				Posts:    resp.Materials.Posts,
				Hardware: resp.Materials.Hardware,
				Gates:    resp.Materials.Gates,
			}
			res.Cost = domain.CostBreakdown{
				MaterialCost: resp.CostBreakdown.MaterialCost,
				LaborCost:    resp.CostBreakdown.LaborCost,
				GateCost:     resp.CostBreakdown.GateCost,
				TotalCost:    resp.CostBreakdown.TotalCost,
				CostPerFoot:  resp.CostBreakdown.CostPerFoot,
			}
			p.publish(token, res)
			return
		}
		p.log.Warn("calculation service unavailable, using local fallback", slog.Any("err", err))
	}

	res.Materials, res.Cost = Fallback(m)
	res.Fallback = true
	p.publish(token, res)
}

// publish adopts the result unless a newer request has been dispatched since.
func (p *Pipeline) publish(token uint64, res domain.CalcResult) {
	p.mu.Lock()
	if token < p.lastToken {
		p.mu.Unlock()
		p.log.Debug("stale calculation response discarded", slog.Uint64("token", token))
		return
	}
	p.result = res
	p.applied = token
	cb := p.onResult
	p.mu.Unlock()
	if cb != nil {
		cb(res)
	}
}

// buildRequest serializes segments into the service wire format.
func buildRequest(segs []domain.Segment, gridSize float64) domain.CalcRequest {
	req := domain.CalcRequest{Segments: make([]domain.WireSegment, len(segs))}
	for i, s := range segs {
		req.Segments[i] = domain.WireSegment{
			Path:   append([]domain.Point(nil), s.Path...),
			Style:  s.StyleID,
			Color:  s.ColorID,
			Length: s.Length,
			IsGate: s.IsGate,
			Scale:  gridSize,
		}
	}
	return req
}
