/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"path/filepath"
	"testing"

	"whiteboard/internal/board"
	"whiteboard/internal/canvas"
	"whiteboard/internal/config"
	"whiteboard/internal/storage"
	"whiteboard/internal/vector"
)

func TestSessionLoadsEditsAndSaves(t *testing.T) {
	ctx := context.Background()
	cfg := config.Defaults()
	cfg.General.DataDir = t.TempDir()
	cfg.Board.DuplicateOffset = 30
	be, err := storage.NewFileStore(filepath.Join(cfg.General.DataDir, storage.BoardsDirName), 0)
	if err != nil {
		t.Fatal(err)
	}
	seed := []board.Shape{{ID: "keep", X: 0, Y: 0, Fill: "#000000", Body: board.Rectangle{W: 50, H: 50}}}
	if err := be.Save(ctx, "main", seed); err != nil {
		t.Fatal(err)
	}

	s := NewSession(ctx, cfg, "main", be, nil)
	if v := s.Store.View(); len(v.Shapes) != 1 || v.CanUndo {
		t.Fatalf("loaded view = %+v", v)
	}

	s.Store.SetTool(board.ToolEllipse)
	s.Canvas.Handle(canvas.Event{Type: canvas.Down, Pos: vector.Pt{X: 100, Y: 100}})
	s.Canvas.Handle(canvas.Event{Type: canvas.Move, Pos: vector.Pt{X: 160, Y: 140}})
	s.Canvas.Handle(canvas.Event{Type: canvas.Up, Pos: vector.Pt{X: 160, Y: 140}})
	s.Canvas.KeyDown(canvas.KeyEvent{Key: "d", Mods: canvas.Mods{Ctrl: true}})
	v := s.Store.View()
	if len(v.Shapes) != 3 || v.Shapes[2].X != 130 {
		t.Fatalf("expected drawn ellipse plus copy at +30: %+v", v.Shapes)
	}

	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, err := be.Load(ctx, "main")
	if err != nil || len(got) != 3 {
		t.Fatalf("saved board: %d shapes, %v", len(got), err)
	}
}

func TestSessionFrameAndToolbar(t *testing.T) {
	s := NewSession(context.Background(), config.Defaults(), "mem", nil, nil)
	s.Resize(200, 100)
	id := s.Store.AddShape(board.Shape{X: 10, Y: 10, Fill: "#ff0000", Body: board.Rectangle{W: 20, H: 20}})
	s.Store.SelectShape(id, false)

	img := s.Frame(400, 200, 2)
	if c := img.RGBAAt(40, 40); c.R != 0xff || c.G != 0 || c.B != 0 {
		t.Fatalf("pixel inside the doubled shape = %+v", c)
	}
	if c := img.RGBAAt(100, 100); c.R != 0xff || c.G != 0xff || c.B != 0xff {
		t.Fatalf("background pixel = %+v", c)
	}

	s.Toolbar.Do("zoom-in")
	if sc := s.Store.View().Viewport.Scale; sc <= 1 {
		t.Fatalf("toolbar zoom had no effect: %v", sc)
	}
	if sink := s.CrashSink(); sink.BoardID != "mem" || sink.Save != nil {
		t.Fatalf("in-memory session sink = %+v", sink)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestStrokeOptionsFromConfig(t *testing.T) {
	o := StrokeOptions(config.RenderConfig{StrokeSize: 12, Thinning: 0.2, Smoothing: 0.3, Streamline: 0.4})
	if o.Size != 12 || o.Thinning != 0.2 || o.Smoothing != 0.3 || o.Streamline != 0.4 || !o.SimulatePressure {
		t.Fatalf("stroke options = %+v", o)
	}
	if StrokeOptions(config.RenderConfig{}).Size != vector.DefaultStrokeOptions().Size {
		t.Fatalf("zero size should keep the default")
	}
	if ro := RasterOptions(config.RenderConfig{FontFile: "/does/not/exist.ttf"}); ro.Fonts != nil {
		t.Fatalf("missing font should fall back to the default provider")
	}
}
