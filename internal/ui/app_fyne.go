//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"database/sql"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"fencestudio/internal/catalog"
	"fencestudio/internal/config"
	"fencestudio/internal/crash"
	"fencestudio/internal/domain"
	"fencestudio/internal/engine"
	"fencestudio/internal/estimate"
	"fencestudio/internal/export"
	applog "fencestudio/internal/log"
	"fencestudio/internal/render"
	"fencestudio/internal/share"
	"fencestudio/internal/snap"
	"fencestudio/internal/storage"
	"fencestudio/internal/telemetry"
)

// Run starts the Fyne-based desktop drawing surface.
func Run(projectDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	var ph *storage.ProjectHandle
	var indexDB *sql.DB
	defer func() { crash.Recover(ph) }()
	defer func() {
		if indexDB != nil {
			_ = indexDB.Close()
		}
	}()

	cfg, token, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	fyneApp := app.NewWithID("fencestudio")
	w := fyneApp.NewWindow("Fence Studio")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	corrector := snap.NewCorrector()
	if cfg.Drawing.GridSize > 0 {
		corrector.GridSize = cfg.Drawing.GridSize
	}

	status := widget.NewLabel("Ready")
	measureLabel := widget.NewLabel("0.0 ft")
	costLabel := widget.NewLabel("$0.00")

	client := estimate.NewClient(cfg.Estimator.BaseURL, token, time.Duration(cfg.Estimator.TimeoutMs)*time.Millisecond)
	pipe := estimate.NewPipeline(
		estimate.WithClient(client),
		estimate.WithGridSize(corrector.GridSize),
		estimate.WithOnResult(func(res domain.CalcResult) {
			fyne.Do(func() {
				measureLabel.SetText(fmt.Sprintf("%.1f ft | %d segments | %d gates", res.TotalLengthFt, res.SegmentCount, res.GateCount))
				suffix := ""
				if res.Fallback {
					suffix = " (offline estimate)"
				}
				costLabel.SetText(fmt.Sprintf("$%.2f%s", res.Cost.TotalCost, suffix))
			})
			telemetry.EventEstimate(res.SegmentCount, res.TotalLengthFt, res.Fallback)
			if indexDB != nil && res.SegmentCount > 0 {
				if err := storage.RecordEstimate(context.Background(), indexDB, res); err != nil {
					l.Warn("record estimate failed", slog.Any("err", err))
				}
			}
		}),
	)
	defer pipe.Close()

	eng := engine.New(engine.WithCorrector(corrector), engine.WithRecalculator(pipe))
	eng.SetStyle(cfg.Drawing.DefaultStyle)
	eng.SetColor(cfg.Drawing.DefaultColor)

	fc := NewFenceCanvas(eng)
	eng.Subscribe(fc.Refresh)

	markDirty := func() {
		if ph != nil {
			ph.Project.Segments = eng.Scene().Segments()
			ph.Project.StyleID = eng.StyleID()
			ph.Project.ColorID = eng.ColorID()
		}
	}
	eng.Subscribe(markDirty)

	// Tool selection
	var toolButtons map[engine.Tool]*widget.Button
	setTool := func(t engine.Tool) {
		eng.SetTool(t)
		for tool, btn := range toolButtons {
			if tool == t {
				btn.Importance = widget.HighImportance
			} else {
				btn.Importance = widget.MediumImportance
			}
			btn.Refresh()
		}
		switch t {
		case engine.ToolDraw:
			status.SetText("Draw: click to place posts, double-click or Enter to finish")
		case engine.ToolGate:
			status.SetText("Gate: click two points to place a gate span")
		case engine.ToolSelect:
			status.SetText("Select: click a segment, Shift-click to multi-select")
		}
	}
	drawBtn := widget.NewButton("Fence", func() { setTool(engine.ToolDraw) })
	gateBtn := widget.NewButton("Gate", func() { setTool(engine.ToolGate) })
	selectBtn := widget.NewButton("Select", func() { setTool(engine.ToolSelect) })
	toolButtons = map[engine.Tool]*widget.Button{
		engine.ToolDraw:   drawBtn,
		engine.ToolGate:   gateBtn,
		engine.ToolSelect: selectBtn,
	}

	// Style / color pickers
	styleNames := []string{}
	styleIDs := []string{}
	for _, s := range catalog.Styles() {
		styleNames = append(styleNames, s.Name)
		styleIDs = append(styleIDs, s.ID)
	}
	styleSelect := widget.NewSelect(styleNames, func(name string) {
		for i, n := range styleNames {
			if n == name {
				eng.SetStyle(styleIDs[i])
				return
			}
		}
	})
	if s, ok := catalog.StyleByID(eng.StyleID()); ok {
		styleSelect.SetSelected(s.Name)
	}

	colorNames := []string{}
	colorIDs := []string{}
	for _, c := range catalog.Colors() {
		colorNames = append(colorNames, c.Name)
		colorIDs = append(colorIDs, c.ID)
	}
	colorSelect := widget.NewSelect(colorNames, func(name string) {
		for i, n := range colorNames {
			if n == name {
				eng.SetColor(colorIDs[i])
				return
			}
		}
	})
	if c, ok := catalog.ColorByID(eng.ColorID()); ok {
		colorSelect.SetSelected(c.Name)
	}

	undoBtn := widget.NewButton("Undo", func() {
		if !eng.Undo() {
			status.SetText("Nothing to undo")
		}
	})
	redoBtn := widget.NewButton("Redo", func() {
		if !eng.Redo() {
			status.SetText("Nothing to redo")
		}
	})
	clearBtn := widget.NewButton("Clear", func() {
		dialog.ShowConfirm("Clear layout", "Remove all fence segments?", func(ok bool) {
			if ok {
				eng.Clear()
			}
		}, w)
	})
	fitBtn := widget.NewButton("Fit", func() {
		size := fc.Size()
		eng.Viewport().ZoomFit(eng.Scene().Segments(), float64(size.Width), float64(size.Height))
		fc.Refresh()
	})

	toolbar := container.NewHBox(
		drawBtn, gateBtn, selectBtn,
		widget.NewSeparator(),
		widget.NewLabel("Style:"), styleSelect,
		widget.NewLabel("Color:"), colorSelect,
		widget.NewSeparator(),
		undoBtn, redoBtn, clearBtn, fitBtn,
	)
	bottom := container.NewHBox(status, widget.NewSeparator(), measureLabel, widget.NewSeparator(), costLabel)

	saveProject := func() {
		if ph == nil {
			status.SetText("No project open")
			return
		}
		markDirty()
		if err := storage.Save(ph); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Saved " + ph.ManifestPath)
	}

	openProject := func(root string) {
		h, err := storage.Open(root)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		ph = h
		if indexDB != nil {
			_ = indexDB.Close()
		}
		if db, err := storage.InitOrOpenIndex(h.Root); err != nil {
			l.Warn("open project index failed", slog.Any("err", err))
			indexDB = nil
		} else {
			indexDB = db
		}
		size := fc.Size()
		eng.Load(h.Project.Segments, h.Project.StyleID, h.Project.ColorID, float64(size.Width), float64(size.Height))
		if s, ok := catalog.StyleByID(eng.StyleID()); ok {
			styleSelect.SetSelected(s.Name)
		}
		if c, ok := catalog.ColorByID(eng.ColorID()); ok {
			colorSelect.SetSelected(c.Name)
		}
		w.SetTitle("Fence Studio - " + h.Project.Name)
		status.SetText("Opened " + root)
	}

	exportFile := func(ext string, write func(path string) error) {
		if ph == nil {
			status.SetText("Open a project before exporting")
			return
		}
		dir := filepath.Join(ph.Root, storage.ExportsDirName)
		_ = os.MkdirAll(dir, 0o755)
		path := filepath.Join(dir, fmt.Sprintf("layout-%s.%s", time.Now().Format("20060102-150405"), ext))
		if err := write(path); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Exported " + path)
	}

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Project…", func() {
			dialog.ShowFolderOpen(func(list fyne.ListableURI, err error) {
				if err != nil || list == nil {
					return
				}
				openProject(list.Path())
			}, w)
		}),
		fyne.NewMenuItem("Save", saveProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export SVG", func() {
			exportFile("svg", func(path string) error {
				sc := render.Build(eng.Scene().Segments(), render.DefaultOptions())
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				return render.WriteSVG(f, sc)
			})
		}),
		fyne.NewMenuItem("Export PNG", func() {
			exportFile("png", func(path string) error {
				sc := render.Build(eng.Scene().Segments(), render.DefaultOptions())
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				return render.WritePNG(f, sc)
			})
		}),
		fyne.NewMenuItem("Export Quote PDF", func() {
			exportFile("pdf", func(path string) error {
				res := pipe.Result()
				q := export.Quote{
					StyleID:  eng.StyleID(),
					ColorID:  eng.ColorID(),
					Segments: eng.Scene().Segments(),
					Result:   res,
				}
				return export.SaveQuotePDF(path, q)
			})
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy Share Link", func() {
			tok, err := share.Encode(eng.Scene().Segments(), eng.StyleID(), eng.ColorID())
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			w.Clipboard().SetContent(tok)
			status.SetText("Share token copied to clipboard")
		}),
		fyne.NewMenuItem("Load Share Link…", func() {
			entry := widget.NewMultiLineEntry()
			entry.SetPlaceHolder("Paste share token")
			dialog.ShowForm("Load shared layout", "Load", "Cancel",
				[]*widget.FormItem{widget.NewFormItem("Token", entry)},
				func(ok bool) {
					if !ok {
						return
					}
					p, err := share.Decode(entry.Text)
					if err != nil {
						dialog.ShowError(err, w)
						return
					}
					size := fc.Size()
					eng.Load(p.Segments, p.StyleID, p.ColorID, float64(size.Width), float64(size.Height))
					status.SetText("Shared layout loaded")
				}, w)
		}),
	)
	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { eng.Undo() }),
		fyne.NewMenuItem("Redo", func() { eng.Redo() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy", eng.Copy),
		fyne.NewMenuItem("Paste", eng.Paste),
		fyne.NewMenuItem("Delete", eng.DeleteSelected),
	)
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu))

	// Keyboard: engine keys plus the usual shortcuts.
	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		switch e.Name {
		case fyne.KeyEscape:
			eng.Dispatch(engine.Event{Kind: engine.KeyDown, Key: engine.KeyEscape})
		case fyne.KeyReturn, fyne.KeyEnter:
			eng.Dispatch(engine.Event{Kind: engine.KeyDown, Key: engine.KeyEnter})
		case fyne.KeyDelete:
			eng.Dispatch(engine.Event{Kind: engine.KeyDown, Key: engine.KeyDelete})
		case fyne.KeyBackspace:
			eng.Dispatch(engine.Event{Kind: engine.KeyDown, Key: engine.KeyBackspace})
		}
	})
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { eng.Undo() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { eng.Redo() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyC, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { eng.Copy() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyV, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { eng.Paste() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { saveProject() })

	w.SetOnClosed(func() {
		size := w.Canvas().Size()
		prefs.SetInt("window.width", int(size.Width))
		prefs.SetInt("window.height", int(size.Height))
		if ph != nil {
			saveProject()
		}
	})

	setTool(engine.ToolDraw)
	w.SetContent(container.NewBorder(toolbar, bottom, nil, nil, fc))
	w.Canvas().Focus(nil)

	if projectDir != "" {
		openProject(projectDir)
	}

	w.ShowAndRun()
	return nil
}

// FenceCanvas is the interactive drawing surface. Pointer positions are
// translated through the engine viewport before dispatch, so all engine
// events carry world coordinates.
type FenceCanvas struct {
	widget.BaseWidget
	eng *engine.Engine

	panning bool
}

func NewFenceCanvas(eng *engine.Engine) *FenceCanvas {
	fc := &FenceCanvas{eng: eng}
	fc.ExtendBaseWidget(fc)
	return fc
}

func (fc *FenceCanvas) toWorld(pos fyne.Position) domain.Point {
	return fc.eng.Viewport().ToWorld(domain.Point{X: float64(pos.X), Y: float64(pos.Y)})
}

// Tapped places a vertex (draw/gate) or selects a segment.
func (fc *FenceCanvas) Tapped(e *fyne.PointEvent) {
	p := fc.toWorld(e.Position)
	fc.eng.Dispatch(engine.Event{Kind: engine.PointerDown, At: p})
	fc.eng.Dispatch(engine.Event{Kind: engine.PointerUp, At: p})
	fc.Refresh()
}

// DoubleTapped finishes the active draft.
func (fc *FenceCanvas) DoubleTapped(e *fyne.PointEvent) {
	fc.eng.Dispatch(engine.Event{Kind: engine.PointerDouble, At: fc.toWorld(e.Position)})
	fc.Refresh()
}

// TappedSecondary finishes the draft as well, matching common CAD tools.
func (fc *FenceCanvas) TappedSecondary(e *fyne.PointEvent) {
	fc.eng.Dispatch(engine.Event{Kind: engine.PointerDouble, At: fc.toWorld(e.Position)})
	fc.Refresh()
}

// MouseIn implements desktop.Hoverable.
func (fc *FenceCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved feeds the rubber-band preview while drawing.
func (fc *FenceCanvas) MouseMoved(e *desktop.MouseEvent) {
	fc.eng.Dispatch(engine.Event{Kind: engine.PointerMove, At: fc.toWorld(e.Position)})
	if fc.eng.State() == engine.Drawing {
		fc.Refresh()
	}
}

// MouseOut cancels the draft when the pointer leaves the surface.
func (fc *FenceCanvas) MouseOut() {
	fc.eng.Dispatch(engine.Event{Kind: engine.PointerLeave})
	fc.Refresh()
}

// Dragged pans the viewport.
func (fc *FenceCanvas) Dragged(e *fyne.DragEvent) {
	fc.panning = true
	fc.eng.Viewport().Pan(float64(e.Dragged.DX), float64(e.Dragged.DY))
	fc.Refresh()
}

func (fc *FenceCanvas) DragEnd() { fc.panning = false }

// Scrolled zooms about the cursor.
func (fc *FenceCanvas) Scrolled(e *fyne.ScrollEvent) {
	delta := float64(e.Scrolled.DY) * 0.001
	fc.eng.Viewport().ZoomAt(domain.Point{X: float64(e.Position.X), Y: float64(e.Position.Y)}, delta)
	fc.Refresh()
}

func (fc *FenceCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 250, G: 250, B: 250, A: 255})
	return &fenceCanvasRenderer{fc: fc, bg: bg}
}

// MinSize sets a decent default size for the widget.
func (fc *FenceCanvas) MinSize() fyne.Size { return fyne.NewSize(800, 500) }

type fenceCanvasRenderer struct {
	fc      *FenceCanvas
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *fenceCanvasRenderer) Destroy()                     {}
func (r *fenceCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *fenceCanvasRenderer) MinSize() fyne.Size           { return r.fc.MinSize() }

func (r *fenceCanvasRenderer) Refresh() {
	r.rebuild()
	r.Layout(r.fc.Size())
	canvas.Refresh(r.fc)
}

func (r *fenceCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
}

// rebuild recreates the line scene from the engine state: committed segments,
// the in-progress draft, and the snap preview.
func (r *fenceCanvasRenderer) rebuild() {
	eng := r.fc.eng
	vp := eng.Viewport()
	objs := []fyne.CanvasObject{r.bg}

	lineTo := func(a, b domain.Point, col color.Color, width float32, dashed bool) {
		sa := vp.ToScreen(a)
		sb := vp.ToScreen(b)
		ln := canvas.NewLine(col)
		ln.StrokeWidth = width
		ln.Position1 = fyne.NewPos(float32(sa.X), float32(sa.Y))
		ln.Position2 = fyne.NewPos(float32(sb.X), float32(sb.Y))
		if dashed {
			ln.StrokeWidth = width * 0.75
		}
		objs = append(objs, ln)
	}

	for _, seg := range eng.Scene().Segments() {
		col := swatchColor(seg.ColorID)
		width := float32(3)
		if eng.Scene().IsSelected(seg.ID) {
			col = color.RGBA{R: 0, G: 120, B: 255, A: 255}
			width = 4
		}
		for i := 0; i+1 < len(seg.Path); i++ {
			lineTo(seg.Path[i], seg.Path[i+1], col, width, seg.IsGate)
		}
		for _, pt := range seg.Path {
			sp := vp.ToScreen(pt)
			post := canvas.NewRectangle(color.RGBA{R: 74, G: 74, B: 74, A: 255})
			post.Resize(fyne.NewSize(6, 6))
			post.Move(fyne.NewPos(float32(sp.X)-3, float32(sp.Y)-3))
			objs = append(objs, post)
		}
	}

	draft := eng.Draft()
	draftCol := color.RGBA{R: 120, G: 120, B: 120, A: 255}
	for i := 0; i+1 < len(draft); i++ {
		lineTo(draft[i], draft[i+1], draftCol, 2, false)
	}
	if prev := eng.Preview(); prev != nil && len(draft) > 0 {
		lineTo(draft[len(draft)-1], *prev, color.RGBA{R: 160, G: 160, B: 160, A: 255}, 1, true)
		sp := vp.ToScreen(*prev)
		dot := canvas.NewCircle(color.RGBA{R: 0, G: 170, B: 255, A: 255})
		dot.Resize(fyne.NewSize(8, 8))
		dot.Move(fyne.NewPos(float32(sp.X)-4, float32(sp.Y)-4))
		objs = append(objs, dot)
	}

	r.objects = objs
}

func swatchColor(colorID string) color.Color {
	c, ok := catalog.ColorByID(colorID)
	if !ok {
		return color.RGBA{R: 51, G: 51, B: 51, A: 255}
	}
	var red, green, blue uint8
	if _, err := fmt.Sscanf(c.Swatch, "#%02x%02x%02x", &red, &green, &blue); err != nil {
		return color.RGBA{R: 51, G: 51, B: 51, A: 255}
	}
	return color.RGBA{R: red, G: green, B: blue, A: 255}
}
