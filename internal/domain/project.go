/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "time"

// Project is the saved form of a drawing session: the scene plus the active
// tool settings. It is the manifest written to disk by the storage layer.
type Project struct {
	Name      string    `json:"name"`
	StyleID   string    `json:"styleId"`
	ColorID   string    `json:"colorId"`
	Segments  []Segment `json:"segments"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone deep-copies the project.
func (p Project) Clone() Project {
	c := p
	c.Segments = CloneSegments(p.Segments)
	return c
}
