/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fencestudio/internal/catalog"
	"fencestudio/internal/crash"
	"fencestudio/internal/domain"
	"fencestudio/internal/estimate"
	"fencestudio/internal/export"
	applog "fencestudio/internal/log"
	"fencestudio/internal/render"
	"fencestudio/internal/share"
	"fencestudio/internal/storage"
	"fencestudio/internal/ui"
	"fencestudio/internal/version"
)

func usage() {
	fmt.Println("Fence Studio — interactive fence layout and estimation")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  fencestudio version|-v|--version           Show version")
	fmt.Println("  fencestudio init <dir> <name>              Create a new project at <dir> with name <name>")
	fmt.Println("  fencestudio open <dir>                     Open project at <dir> and print summary")
	fmt.Println("  fencestudio save <dir>                     Save project at <dir> (creates backup)")
	fmt.Println("  fencestudio svg <dir> [out.svg]            Export the layout as SVG")
	fmt.Println("  fencestudio png <dir> [out.png]            Export the layout as PNG")
	fmt.Println("  fencestudio quote <dir> [customer]         Export a quote PDF into exports/")
	fmt.Println("  fencestudio share <dir>                    Print a share token for the layout")
	fmt.Println("  fencestudio load <dir> <token>             Replace the layout with a shared one")
	fmt.Println("  fencestudio estimates <dir> [n]            Show the last n recorded estimates")
	fmt.Println("  fencestudio ui [<dir>]                     Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) <= 1 {
		usage()
		return
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Fence Studio — interactive fence layout and estimation")
		fmt.Println(version.String())
	case "init":
		if len(args) < 4 {
			fmt.Println("init requires <dir> and <name>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		name := args[3]
		l.Info("init project", slog.String("root", abs), slog.String("name", name))
		p := domain.Project{Name: name, StyleID: catalog.DefaultStyleID, ColorID: catalog.DefaultColorID}
		h, err := storage.InitProject(abs, p)
		if err != nil {
			fail(l, "init failed", err)
		}
		ph = h
		fmt.Println("Created project at", abs)
	case "open":
		h := mustOpen(l, args, &ph)
		m := estimate.Measure(h.Project.Segments)
		fmt.Printf("Opened project: %s\n", h.Project.Name)
		fmt.Printf("Segments: %d  Gates: %d  Corners: %d\n", m.SegmentCount, m.GateCount, m.CornerCount)
		fmt.Printf("Total length: %.1f ft\n", m.TotalLengthFt)
		fmt.Println("Root:", h.Root)
	case "save":
		h := mustOpen(l, args, &ph)
		if err := storage.Save(h); err != nil {
			fail(l, "save failed", err)
		}
		fmt.Println("Saved project and created a backup of previous manifest (if any).")
	case "svg":
		h := mustOpen(l, args, &ph)
		out := exportPath(h, args, "svg")
		if err := writeRender(out, h.Project.Segments, render.WriteSVG); err != nil {
			fail(l, "svg export failed", err)
		}
		fmt.Println("Wrote", out)
	case "png":
		h := mustOpen(l, args, &ph)
		out := exportPath(h, args, "png")
		if err := writeRender(out, h.Project.Segments, render.WritePNG); err != nil {
			fail(l, "png export failed", err)
		}
		fmt.Println("Wrote", out)
	case "quote":
		h := mustOpen(l, args, &ph)
		m := estimate.Measure(h.Project.Segments)
		mats, cost := estimate.Fallback(m)
		q := export.Quote{
			Date:     time.Now(),
			StyleID:  h.Project.StyleID,
			ColorID:  h.Project.ColorID,
			Segments: h.Project.Segments,
			Result:   domain.CalcResult{Measurements: m, Materials: mats, Cost: cost, Fallback: true},
		}
		if len(args) >= 4 {
			q.Customer = export.Customer{Name: args[3]}
		}
		dir := filepath.Join(h.Root, storage.ExportsDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fail(l, "quote export failed", err)
		}
		out := filepath.Join(dir, export.QuoteFileName(q))
		if err := export.SaveQuotePDF(out, q); err != nil {
			fail(l, "quote export failed", err)
		}
		fmt.Println("Wrote", out)
	case "share":
		h := mustOpen(l, args, &ph)
		tok, err := share.Encode(h.Project.Segments, h.Project.StyleID, h.Project.ColorID)
		if err != nil {
			fail(l, "share encode failed", err)
		}
		fmt.Println(tok)
	case "load":
		if len(args) < 4 {
			fmt.Println("load requires <dir> and <token>")
			usage()
			os.Exit(2)
		}
		h := mustOpen(l, args, &ph)
		p, err := share.Decode(args[3])
		if err != nil {
			fail(l, "share decode failed", err)
		}
		h.Project.Segments = p.Segments
		h.Project.StyleID = p.StyleID
		h.Project.ColorID = p.ColorID
		if err := storage.Save(h); err != nil {
			fail(l, "save after load failed", err)
		}
		fmt.Printf("Loaded shared layout: %d segments\n", len(p.Segments))
	case "estimates":
		h := mustOpen(l, args, &ph)
		limit := 10
		if len(args) >= 4 {
			fmt.Sscanf(args[3], "%d", &limit)
		}
		db, err := storage.InitOrOpenIndex(h.Root)
		if err != nil {
			fail(l, "open index failed", err)
		}
		defer db.Close()
		recs, err := storage.RecentEstimates(context.Background(), db, limit)
		if err != nil {
			fail(l, "list estimates failed", err)
		}
		for _, r := range recs {
			src := "service"
			if r.Result.Fallback {
				src = "fallback"
			}
			fmt.Printf("%s  %6.1f ft  $%9.2f  %d segments  (%s)\n", r.CreatedAt.Format(time.RFC3339), r.Result.TotalLengthFt, r.Result.Cost.TotalCost, r.Result.SegmentCount, src)
		}
	case "ui":
		var dir string
		if len(args) >= 3 {
			dir = args[2]
		}
		if err := ui.Run(dir); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	default:
		usage()
	}
}

func mustOpen(l *slog.Logger, args []string, ph **storage.ProjectHandle) *storage.ProjectHandle {
	if len(args) < 3 {
		fmt.Printf("%s requires <dir>\n", args[1])
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[2])
	l.Info("open project", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		fail(l, "open failed", err)
	}
	*ph = h
	return h
}

func exportPath(h *storage.ProjectHandle, args []string, ext string) string {
	if len(args) >= 4 {
		return args[3]
	}
	dir := filepath.Join(h.Root, storage.ExportsDirName)
	_ = os.MkdirAll(dir, 0o755)
	return filepath.Join(dir, fmt.Sprintf("layout-%s.%s", time.Now().Format("20060102-150405"), ext))
}

func writeRender(path string, segs []domain.Segment, write func(w io.Writer, sc render.Scene) error) error {
	sc := render.Build(segs, render.DefaultOptions())
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f, sc)
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}
