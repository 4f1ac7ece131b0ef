/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package estimate

import (
	"math"

	"fencestudio/internal/domain"
)

// Local fallback constants. The remote estimator prices per style; the
// fallback is a deliberately flat, deterministic approximation so the panel
// always populates when the service is unreachable.
const (
	fallbackPanelWidthFt  = 8.0
	fallbackHardwarePanel = 4
	fallbackMaterialFt    = 15.0
	fallbackLaborFt       = 8.0
	fallbackGateCost      = 150.0
)

// Measure derives the display measurements from the segment list. These are
// always computed locally, regardless of which branch supplies materials and
// cost.
func Measure(segs []domain.Segment) domain.Measurements {
	var m domain.Measurements
	m.SegmentCount = len(segs)
	for _, s := range segs {
		m.TotalLengthFt += s.Length
		if s.IsGate {
			m.GateCount++
		}
		m.CornerCount += s.CornerCount()
	}
	return m
}

// Fallback computes the deterministic local estimate for the given
// measurements. An empty layout yields all zeros.
func Fallback(m domain.Measurements) (domain.Materials, domain.CostBreakdown) {
	if m.TotalLengthFt <= 0 {
		return domain.Materials{}, domain.CostBreakdown{}
	}
	panels := int(math.Ceil(m.TotalLengthFt / fallbackPanelWidthFt))
	mat := domain.Materials{
		Panels:   panels,
		Posts:    panels + 1,
		Hardware: panels * fallbackHardwarePanel,
		Gates:    m.GateCount,
	}
	cost := domain.CostBreakdown{
		MaterialCost: m.TotalLengthFt * fallbackMaterialFt,
		LaborCost:    m.TotalLengthFt * fallbackLaborFt,
		GateCost:     float64(m.GateCount) * fallbackGateCost,
	}
	cost.TotalCost = cost.MaterialCost + cost.LaborCost + cost.GateCost
	cost.CostPerFoot = cost.TotalCost / m.TotalLengthFt
	return mat, cost
}
