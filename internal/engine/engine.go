/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package engine hosts the interactive drawing engine: the scene model, the
// draw/edit state machine, selection and clipboard editing, and the wiring to
// history and the calculation pipeline. The engine is single-threaded and
// owns its scene exclusively; hosts create one instance and pass it into
// their event bindings (no global singleton).
package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"fencestudio/internal/catalog"
	"fencestudio/internal/domain"
	"fencestudio/internal/geometry"
	"fencestudio/internal/history"
	applog "fencestudio/internal/log"
	"fencestudio/internal/snap"
	"fencestudio/internal/viewport"
)

// pasteOffset is the fixed positional shift applied to pasted segments.
const pasteOffset = 40.0

// hitTolerance is the pointer distance in pixels within which a click selects
// a segment.
const hitTolerance = 8.0

// Recalculator receives the segment list after every committed mutation.
// Implementations debounce and fetch/derive materials and cost.
type Recalculator interface {
	Schedule(segments []domain.Segment)
}

// Engine ties the scene, history, snapping, viewport and calculation pipeline
// together behind a single event-dispatch entry point.
//
// Draw gestures: a pointer-down in an empty state starts a draft; moves only
// update the live preview; a pointer-up away from the last committed draft
// point finishes the run (simple drag), while pointer-down/-up in place adds
// a vertex and keeps drawing so multi-point polylines come from click-click
// sequences ended by double-click or Enter. Pointer-leave and Escape cancel
// the draft outright.
type Engine struct {
	scene   *Scene
	hist    *history.Manager
	snapper *snap.Corrector
	view    *viewport.Viewport
	calc    Recalculator

	tool    Tool
	styleID string
	colorID string

	state   State
	draft   []domain.Point
	preview *domain.Point

	clipboard []domain.Segment
	listeners []func()
	log       *slog.Logger
}

// Option configures a new engine.
type Option func(*Engine)

// WithRecalculator attaches the calculation pipeline.
func WithRecalculator(c Recalculator) Option { return func(e *Engine) { e.calc = c } }

// WithCorrector replaces the default snapping corrector.
func WithCorrector(c *snap.Corrector) Option { return func(e *Engine) { e.snapper = c } }

// New creates an engine with an empty scene, a baseline history entry and
// default tool state.
func New(opts ...Option) *Engine {
	e := &Engine{
		scene:   newScene(),
		hist:    history.NewManager(history.DefaultMaxEntries),
		snapper: snap.NewCorrector(),
		view:    viewport.New(),
		tool:    ToolDraw,
		styleID: catalog.DefaultStyleID,
		colorID: catalog.DefaultColorID,
		log:     applog.WithComponent("engine"),
	}
	for _, o := range opts {
		o(e)
	}
	e.hist.Snapshot(e.scene.segments)
	return e
}

// Scene exposes read access to the scene.
func (e *Engine) Scene() *Scene { return e.scene }

// Viewport exposes the rendering transform.
func (e *Engine) Viewport() *viewport.Viewport { return e.view }

// Corrector exposes the snapping configuration (grid/magnetic toggles).
func (e *Engine) Corrector() *snap.Corrector { return e.snapper }

// State returns the current draw gesture state.
func (e *Engine) State() State { return e.state }

// Preview returns the live preview endpoint during a draw gesture, or nil.
func (e *Engine) Preview() *domain.Point { return e.preview }

// Draft returns a copy of the in-progress draft path.
func (e *Engine) Draft() []domain.Point { return append([]domain.Point(nil), e.draft...) }

// SetTool switches the active tool; switching away from a draw tool cancels
// any active draft.
func (e *Engine) SetTool(t Tool) {
	if t == e.tool {
		return
	}
	if e.state == Drawing {
		e.cancelDraft()
	}
	e.tool = t
}

// Tool returns the active tool.
func (e *Engine) Tool() Tool { return e.tool }

// SetStyle sets the tool style for new segments and restyles any selected
// segments (a history snapshot is pushed when something changed).
func (e *Engine) SetStyle(styleID string) {
	e.styleID = styleID
	if e.scene.restyleSelected(styleID, "") > 0 {
		e.commitMutation("restyle")
	}
}

// SetColor mirrors SetStyle for the color choice.
func (e *Engine) SetColor(colorID string) {
	e.colorID = colorID
	if e.scene.restyleSelected("", colorID) > 0 {
		e.commitMutation("recolor")
	}
}

// Subscribe registers a change listener invoked after every scene change
// (mutations, undo/redo, loads). Renderers use this to redraw.
func (e *Engine) Subscribe(fn func()) {
	e.listeners = append(e.listeners, fn)
}

// Dispatch is the single entry point for pointer and keyboard events.
func (e *Engine) Dispatch(ev Event) {
	switch ev.Kind {
	case PointerDown:
		e.onPointerDown(ev)
	case PointerMove:
		e.onPointerMove(ev)
	case PointerUp:
		e.onPointerUp(ev)
	case PointerDouble:
		if e.state == Drawing {
			e.finishDraft(ev)
		}
	case PointerLeave:
		if e.state == Drawing {
			e.cancelDraft()
		}
	case KeyDown:
		e.onKey(ev)
	}
}

func (e *Engine) onPointerDown(ev Event) {
	switch e.tool {
	case ToolSelect:
		e.selectAt(ev)
	default: // draw or gate
		p := e.correct(ev)
		if e.state == Idle {
			e.draft = []domain.Point{p}
			e.state = Drawing
			e.preview = nil
			return
		}
		e.appendVertex(p)
	}
}

func (e *Engine) onPointerMove(ev Event) {
	if e.state != Drawing {
		return
	}
	p := e.correct(ev)
	e.preview = &p
}

func (e *Engine) onPointerUp(ev Event) {
	if e.state != Drawing {
		return
	}
	p := e.correct(ev)
	last := e.draft[len(e.draft)-1]
	if p == last {
		// Click in place: vertex already committed, keep drawing.
		return
	}
	e.finishDraft(ev)
}

func (e *Engine) onKey(ev Event) {
	switch ev.Key {
	case KeyEscape:
		if e.state == Drawing {
			e.cancelDraft()
			return
		}
		if len(e.scene.selection) > 0 {
			e.scene.clearSelection()
			e.notify()
		}
	case KeyEnter:
		if e.state == Drawing {
			e.finishDraft(ev)
		}
	case KeyDelete, KeyBackspace:
		e.DeleteSelected()
	}
}

// correct runs the snapping stages for the event position.
func (e *Engine) correct(ev Event) domain.Point {
	ctx := snap.Context{Precision: ev.Precision}
	if e.state == Drawing && len(e.draft) > 0 {
		last := e.draft[len(e.draft)-1]
		ctx.LastPoint = &last
	}
	return e.snapper.Correct(ev.At, e.scene.segments, ctx)
}

func (e *Engine) appendVertex(p domain.Point) {
	if p == e.draft[len(e.draft)-1] {
		return
	}
	e.draft = append(e.draft, p)
}

// finishDraft appends the final corrected point and commits the draft as a
// segment when it has at least two points; a degenerate click is discarded
// silently.
func (e *Engine) finishDraft(ev Event) {
	p := e.correct(ev)
	e.appendVertex(p)
	path := e.draft
	e.draft = nil
	e.preview = nil
	e.state = Idle
	if len(path) < 2 {
		return
	}
	seg := domain.Segment{
		ID:      uuid.NewString(),
		Path:    path,
		StyleID: e.styleID,
		ColorID: e.colorID,
		IsGate:  e.tool == ToolGate,
		Length:  geometry.PathLength(path) / e.snapper.GridSize,
	}
	e.scene.add(seg)
	e.log.Debug("segment committed", slog.String("id", seg.ID), slog.Int("points", len(seg.Path)), slog.Bool("gate", seg.IsGate))
	e.commitMutation("draw")
}

func (e *Engine) cancelDraft() {
	e.draft = nil
	e.preview = nil
	e.state = Idle
	e.notify()
}

func (e *Engine) selectAt(ev Event) {
	id, ok := e.hitTest(ev.At)
	if !ok {
		if !ev.Additive {
			e.scene.clearSelection()
			e.notify()
		}
		return
	}
	if ev.Additive {
		e.scene.toggle(id)
	} else {
		e.scene.selectOnly(id)
	}
	e.notify()
}

// hitTest returns the topmost (most recently drawn) segment within the hit
// tolerance of p.
func (e *Engine) hitTest(p domain.Point) (string, bool) {
	for i := len(e.scene.segments) - 1; i >= 0; i-- {
		if geometry.PointPathDistance(p, e.scene.segments[i].Path) <= hitTolerance {
			return e.scene.segments[i].ID, true
		}
	}
	return "", false
}

// DeleteSelected removes all selected segments and pushes a history snapshot.
// A no-op when nothing is selected.
func (e *Engine) DeleteSelected() {
	removed := e.scene.removeSelected()
	if len(removed) == 0 {
		return
	}
	e.log.Debug("segments deleted", slog.Int("count", len(removed)))
	e.commitMutation("delete")
}

// Copy captures deep copies of the selected segments for later pasting.
func (e *Engine) Copy() {
	e.clipboard = e.scene.selectedSegments()
}

// Paste re-inserts clipboard segments with new ids and a fixed offset, then
// selects the pasted copies.
func (e *Engine) Paste() {
	if len(e.clipboard) == 0 {
		return
	}
	e.scene.clearSelection()
	for _, src := range e.clipboard {
		seg := src.Clone()
		seg.ID = uuid.NewString()
		for i := range seg.Path {
			seg.Path[i].X += pasteOffset
			seg.Path[i].Y += pasteOffset
		}
		e.scene.add(seg)
		e.scene.selection[seg.ID] = struct{}{}
	}
	e.commitMutation("paste")
}

// Undo restores the previous history entry. No-op at the bottom.
func (e *Engine) Undo() bool {
	segs, ok := e.hist.Undo()
	if !ok {
		return false
	}
	e.scene.replace(segs)
	e.afterRestore("undo")
	return true
}

// Redo restores the next history entry. No-op at the top.
func (e *Engine) Redo() bool {
	segs, ok := e.hist.Redo()
	if !ok {
		return false
	}
	e.scene.replace(segs)
	e.afterRestore("redo")
	return true
}

// Clear removes all segments.
func (e *Engine) Clear() {
	if len(e.scene.segments) == 0 {
		return
	}
	e.scene.replace(nil)
	e.commitMutation("clear")
}

// Load replaces the scene wholesale (shared-state or project open), resets
// history to a fresh baseline, and re-fits the viewport to the content.
func (e *Engine) Load(segments []domain.Segment, styleID, colorID string, screenW, screenH float64) {
	e.scene.replace(segments)
	if styleID != "" {
		e.styleID = styleID
	}
	if colorID != "" {
		e.colorID = colorID
	}
	e.hist.Reset(e.scene.segments)
	e.view.ZoomFit(e.scene.segments, screenW, screenH)
	e.schedule()
	e.notify()
}

// commitMutation pushes a history snapshot, schedules a recompute and
// notifies listeners. Every scene mutation funnels through here.
func (e *Engine) commitMutation(op string) {
	e.hist.Snapshot(e.scene.segments)
	e.log.Debug("mutation", slog.String("op", op), slog.Int("segments", len(e.scene.segments)))
	e.schedule()
	e.notify()
}

func (e *Engine) afterRestore(op string) {
	e.log.Debug("history restore", slog.String("op", op), slog.Int("segments", len(e.scene.segments)))
	e.schedule()
	e.notify()
}

func (e *Engine) schedule() {
	if e.calc != nil {
		e.calc.Schedule(e.scene.Segments())
	}
}

func (e *Engine) notify() {
	for _, fn := range e.listeners {
		fn()
	}
}

// StyleID returns the active tool style.
func (e *Engine) StyleID() string { return e.styleID }

// ColorID returns the active tool color.
func (e *Engine) ColorID() string { return e.colorID }
