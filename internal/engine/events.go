/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import "fencestudio/internal/domain"

// Tool selects how pointer events are interpreted.
type Tool int

const (
	ToolDraw Tool = iota
	ToolGate
	ToolSelect
)

// EventKind enumerates the pointer/keyboard inputs the engine understands.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	PointerDouble
	PointerLeave
	KeyDown
)

// Key enumerates the keyboard inputs with engine semantics.
type Key int

const (
	KeyNone Key = iota
	KeyEscape
	KeyEnter
	KeyDelete
	KeyBackspace
)

// Event is the single input unit fed to Engine.Dispatch. At is in canvas
// (world) coordinates; callers translate screen positions through the
// viewport first. Additive marks the multi-select modifier; Precision marks
// the angle/length constraint modifier.
type Event struct {
	Kind      EventKind
	At        domain.Point
	Key       Key
	Additive  bool
	Precision bool
}

// State is the draw gesture state.
type State int

const (
	Idle State = iota
	Drawing
)
