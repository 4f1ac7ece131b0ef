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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// WritePNG rasterizes the scene at 1 pixel per canvas unit and encodes it as
// PNG. An empty scene produces a small blank canvas.
func WritePNG(w io.Writer, sc Scene) error {
	width := int(math.Ceil(sc.Bounds.W))
	height := int(math.Ceil(sc.Bounds.H))
	if width <= 0 || height <= 0 {
		width, height = 100, 100
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	// World to image offset.
	ox, oy := sc.Bounds.X, sc.Bounds.Y

	for _, l := range sc.Lines {
		col := parseHex(l.Color)
		for i := 0; i+1 < len(l.Points); i++ {
			drawLine(img,
				int(math.Round(l.Points[i].X-ox)), int(math.Round(l.Points[i].Y-oy)),
				int(math.Round(l.Points[i+1].X-ox)), int(math.Round(l.Points[i+1].Y-oy)),
				col, l.Dashed)
		}
	}

	postCol := parseHex(postHex)
	for _, m := range sc.Markers {
		half := int(m.Size / 2)
		cx := int(math.Round(m.At.X - ox))
		cy := int(math.Round(m.At.Y - oy))
		fillRect(img, cx-half, cy-half, cx+half, cy+half, postCol)
	}

	labelCol := parseHex(labelHex)
	for _, l := range sc.Labels {
		d := font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{C: labelCol},
			Face: basicfont.Face7x13,
		}
		tw := d.MeasureString(l.Text)
		d.Dot = fixed.Point26_6{
			X: fixed.I(int(math.Round(l.At.X-ox))) - tw/2,
			Y: fixed.I(int(math.Round(l.At.Y-oy)) - 8),
		}
		d.DrawString(l.Text)
	}

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// drawLine rasterizes a 1px line with Bresenham stepping. Dashed lines skip
// alternating runs of pixels.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA, dashed bool) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	step := 0
	for {
		if !dashed || step%14 < 8 {
			img.SetRGBA(x0, y0, col)
		}
		step++
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

func parseHex(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{51, 51, 51, 255}
	}
	return color.RGBA{r, g, b, 255}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
