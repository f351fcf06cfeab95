/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui hosts a board in a desktop window. The toolkit-independent
// Session wires configuration, storage, the store, the canvas state machine
// and the toolbar; the Fyne window is only built with -tags fyne.
package ui

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"whiteboard/internal/board"
	"whiteboard/internal/canvas"
	"whiteboard/internal/config"
	"whiteboard/internal/crash"
	applog "whiteboard/internal/log"
	"whiteboard/internal/render"
	"whiteboard/internal/storage"
	"whiteboard/internal/toolbar"
	"whiteboard/internal/vector"
)

// Default size of a text or note placed with a single click.
const (
	TextBoxW = 160
	TextBoxH = 40
)

// StoreOptions maps configuration onto board.Options.
func StoreOptions(cfg config.AppConfig, boardID string, diag board.Diagnostics) board.Options {
	return board.Options{
		BoardID:         boardID,
		MinScale:        cfg.Board.MinScale,
		MaxScale:        cfg.Board.MaxScale,
		DuplicateOffset: cfg.Board.DuplicateOffset,
		MaxHistory:      cfg.History.MaxEntries,
		Color:           cfg.Board.DefaultColor,
		Diagnostics:     diag,
	}
}

// StrokeOptions maps the render section onto freehand outline options.
func StrokeOptions(r config.RenderConfig) vector.StrokeOptions {
	o := vector.DefaultStrokeOptions()
	if r.StrokeSize > 0 {
		o.Size = r.StrokeSize
	}
	o.Thinning = r.Thinning
	o.Smoothing = r.Smoothing
	o.Streamline = r.Streamline
	return o
}

// RasterOptions builds raster settings from configuration, loading the
// configured font. A font that cannot be loaded falls back to the default.
func RasterOptions(r config.RenderConfig) render.RasterOptions {
	o := render.RasterOptions{Options: render.Options{Stroke: StrokeOptions(r)}}
	if r.FontFile != "" {
		fonts, err := render.LoadFonts(r.FontFile)
		if err != nil {
			applog.WithComponent("ui").Warn("font not loaded, using default", slog.Any("err", err))
		} else {
			o.Fonts = fonts
		}
	}
	return o
}

// Session is one open board.
type Session struct {
	Store   *board.Store
	Canvas  *canvas.Canvas
	Toolbar *toolbar.Toolbar
	Raster  render.RasterOptions

	dataDir string
	saver   *storage.Autosaver
	detach  func()
}

// NewSession loads boardID from backend and starts autosaving it. A nil
// backend keeps the board in memory only.
func NewSession(ctx context.Context, cfg config.AppConfig, boardID string, backend storage.Backend, diag board.Diagnostics) *Session {
	st := board.NewStore(StoreOptions(cfg, boardID, diag))
	s := &Session{
		Store:   st,
		Raster:  RasterOptions(cfg.Render),
		dataDir: cfg.General.DataDir,
		detach:  func() {},
	}
	s.Canvas = canvas.New(st, canvas.Options{
		MinShapeSize: cfg.Board.MinShapeSize,
		ZoomStep:     cfg.Board.ZoomStep,
		TextBoxW:     TextBoxW,
		TextBoxH:     TextBoxH,
		Snap:         vector.SnapOptions{Threshold: 6, Edges: true, Centers: true},
	})
	s.Toolbar = toolbar.New(st)
	s.Toolbar.ZoomStep = cfg.Board.ZoomStep
	if backend != nil {
		st.Replace(storage.LoadOrEmpty(ctx, backend, boardID))
		s.saver = storage.NewAutosaver(backend, boardID, time.Duration(cfg.Storage.AutosaveDebounceMs)*time.Millisecond)
		s.detach = s.saver.Attach(st)
	}
	return s
}

// Resize tells the toolbar the drawing surface size, in the same units as
// pointer events.
func (s *Session) Resize(w, h float64) {
	s.Toolbar.Width, s.Toolbar.Height = w, h
}

// Frame renders the live board into a w x h pixel image. k is the number of
// pixels per event unit, so HiDPI surfaces stay aligned with the pointer.
func (s *Session) Frame(w, h int, k float64) *image.RGBA {
	if k <= 0 {
		k = 1
	}
	v := s.Store.View()
	v.Viewport = vector.Viewport{OffsetX: v.Viewport.OffsetX * k, OffsetY: v.Viewport.OffsetY * k, Scale: v.Viewport.Scale * k}
	o := s.Raster
	o.Options = s.Canvas.RenderOptions(o.Options)
	if o.HandleSize <= 0 {
		o.HandleSize = 8
	}
	o.HandleSize *= k
	o.ShowSelection = true
	return render.Rasterize(v, w, h, o)
}

// CrashSink describes this session to crash.Recover.
func (s *Session) CrashSink() *crash.Sink {
	sink := &crash.Sink{DataDir: s.dataDir, BoardID: s.Store.BoardID()}
	if s.saver != nil {
		sink.Save = s.saver.Flush
	}
	return sink
}

// Close stops autosaving and writes any pending change.
func (s *Session) Close(ctx context.Context) error {
	s.detach()
	if s.saver == nil {
		return nil
	}
	if err := s.saver.Flush(ctx); err != nil {
		return fmt.Errorf("save board %s: %w", s.Store.BoardID(), err)
	}
	return nil
}
