/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"io"
	"strings"
)

// WriteSVG writes the scene as a standalone SVG document. Coordinates stay
// in canvas pixels; the viewBox frames the padded scene bounds.
func WriteSVG(w io.Writer, sc Scene) error {
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(w, format, args...)
	}

	width, height := sc.Bounds.W, sc.Bounds.H
	if width <= 0 || height <= 0 {
		width, height = 100, 100
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"%g %g %g %g\">\n",
		width, height, sc.Bounds.X, sc.Bounds.Y, width, height)
	wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n",
		sc.Bounds.X, sc.Bounds.Y, width, height)

	for _, l := range sc.Lines {
		pts := make([]string, len(l.Points))
		for i, p := range l.Points {
			pts[i] = fmt.Sprintf("%g,%g", p.X, p.Y)
		}
		dash := ""
		if l.Dashed {
			dash = " stroke-dasharray=\"8 6\""
		}
		wf("  <polyline points=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\" stroke-linecap=\"round\" stroke-linejoin=\"round\"%s/>\n",
			strings.Join(pts, " "), l.Color, l.Width, dash)
	}

	for _, m := range sc.Markers {
		half := m.Size / 2
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n",
			m.At.X-half, m.At.Y-half, m.Size, m.Size, postHex)
	}

	for _, l := range sc.Labels {
		wf("  <text x=\"%g\" y=\"%g\" font-family=\"sans-serif\" font-size=\"12\" fill=\"%s\" text-anchor=\"middle\">%s</text>\n",
			l.At.X, l.At.Y-8, labelHex, l.Text)
	}

	wf("</svg>\n")
	return werr
}
