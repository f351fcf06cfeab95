//go:build fyne && cgo

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
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fcanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"whiteboard/internal/board"
	"whiteboard/internal/canvas"
	"whiteboard/internal/crash"
	applog "whiteboard/internal/log"
	"whiteboard/internal/toolbar"
	"whiteboard/internal/vector"
)

// Run opens a window on s and blocks until it is closed.
func Run(s *Session) error {
	l := applog.WithBoard(applog.WithComponent("ui"), s.Store.BoardID())
	l.Info("starting UI")
	defer crash.Recover(s.CrashSink())

	fyneApp := app.NewWithID("whiteboard")
	w := fyneApp.NewWindow("Whiteboard: " + s.Store.BoardID())
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1200), 800)
	winH := max(prefs.IntWithFallback("window.height", 800), 600)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	bw := newBoardWidget(s)
	status := widget.NewLabel("")
	bar := newToolbarView(s.Toolbar, status)

	refresh := func(v board.View) {
		bw.Refresh()
		bar.update()
		status.SetText(fmt.Sprintf("%d shapes   %d%%", len(v.Shapes), int(v.Viewport.Scale*100+0.5)))
	}
	cancel := s.Store.Subscribe(func(v board.View) { fyne.Do(func() { refresh(v) }) })
	defer cancel()
	refresh(s.Store.View())

	registerShortcuts(w.Canvas(), bw)
	w.SetContent(container.NewBorder(bar.box, status, nil, nil, bw))
	w.Canvas().Focus(bw)
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		ctx, done := context.WithTimeout(context.Background(), 3*time.Second)
		defer done()
		if err := s.Close(ctx); err != nil {
			l.Error("final save failed", slog.Any("err", err))
		}
	})
	w.ShowAndRun()
	return nil
}

// registerShortcuts routes the primary-modifier chords of the default keymap
// to the board widget. Fyne delivers those as shortcuts, not key events.
func registerShortcuts(c fyne.Canvas, bw *boardWidget) {
	for chord := range canvas.DefaultKeymap() {
		if !chord.Ctrl {
			continue
		}
		mod := fyne.KeyModifierShortcutDefault
		if chord.Shift {
			mod |= fyne.KeyModifierShift
		}
		key := chord.Key
		shift := chord.Shift
		c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyName(strings.ToUpper(key)), Modifier: mod}, func(fyne.Shortcut) {
			bw.key(canvas.KeyEvent{Key: key, Mods: canvas.Mods{Ctrl: true, Shift: shift}})
		})
	}
}

// boardWidget feeds Fyne input into the canvas state machine and paints the
// board as a raster.
type boardWidget struct {
	widget.BaseWidget
	s     *Session
	shift bool
}

var (
	_ desktop.Mouseable   = (*boardWidget)(nil)
	_ desktop.Hoverable   = (*boardWidget)(nil)
	_ desktop.Keyable     = (*boardWidget)(nil)
	_ fyne.Scrollable     = (*boardWidget)(nil)
	_ fyne.DoubleTappable = (*boardWidget)(nil)
)

func newBoardWidget(s *Session) *boardWidget {
	b := &boardWidget{s: s}
	b.ExtendBaseWidget(b)
	return b
}

func (b *boardWidget) CreateRenderer() fyne.WidgetRenderer {
	raster := fcanvas.NewRaster(func(w, h int) image.Image {
		k := 1.0
		if sz := b.Size(); sz.Width > 0 {
			k = float64(w) / float64(sz.Width)
		}
		return b.s.Frame(w, h, k)
	})
	frame := fcanvas.NewRectangle(color.Transparent)
	frame.StrokeColor = vector.MustHex("#1a73e8").RGBA()
	frame.StrokeWidth = 1
	text := widget.NewLabel("")
	text.Wrapping = fyne.TextWrapWord
	r := &boardRenderer{b: b, raster: raster, frame: frame, text: text}
	r.Refresh()
	return r
}

func (b *boardWidget) MinSize() fyne.Size { return fyne.NewSize(400, 300) }

func pt(p fyne.Position) vector.Pt { return vector.Pt{X: float64(p.X), Y: float64(p.Y)} }

func mods(m fyne.KeyModifier) canvas.Mods {
	return canvas.Mods{
		Shift: m&fyne.KeyModifierShift != 0,
		Ctrl:  m&fyne.KeyModifierShortcutDefault != 0,
	}
}

func (b *boardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	if c := fyne.CurrentApp().Driver().CanvasForObject(b); c != nil {
		c.Focus(b)
	}
	b.s.Canvas.Handle(canvas.Event{Type: canvas.Down, Pos: pt(e.Position), Mods: mods(e.Modifier)})
	b.Refresh()
}

func (b *boardWidget) MouseUp(e *desktop.MouseEvent) {
	b.s.Canvas.Handle(canvas.Event{Type: canvas.Up, Pos: pt(e.Position), Mods: mods(e.Modifier)})
	b.Refresh()
}

func (b *boardWidget) MouseIn(*desktop.MouseEvent) {}

func (b *boardWidget) MouseMoved(e *desktop.MouseEvent) {
	if b.s.Canvas.State() == canvas.Idle {
		return
	}
	b.s.Canvas.Handle(canvas.Event{Type: canvas.Move, Pos: pt(e.Position), Mods: mods(e.Modifier)})
	b.Refresh()
}

func (b *boardWidget) MouseOut() {
	b.s.Canvas.Handle(canvas.Event{Type: canvas.Leave})
	b.Refresh()
}

// Scrolled zooms. Fyne reports wheel-up as positive DY, the canvas expects
// negative deltas to zoom in.
func (b *boardWidget) Scrolled(e *fyne.ScrollEvent) {
	b.s.Canvas.Handle(canvas.Event{Type: canvas.Wheel, Pos: pt(e.Position), DeltaY: -float64(e.Scrolled.DY)})
}

func (b *boardWidget) DoubleTapped(e *fyne.PointEvent) {
	b.s.Canvas.Handle(canvas.Event{Type: canvas.DoubleClick, Pos: pt(e.Position)})
	b.Refresh()
}

func (b *boardWidget) FocusGained() {}
func (b *boardWidget) FocusLost()   {}

func (b *boardWidget) key(k canvas.KeyEvent) {
	b.s.Canvas.KeyDown(k)
	b.Refresh()
}

func (b *boardWidget) TypedRune(r rune) {
	if r == ' ' {
		return // delivered through KeyDown
	}
	b.key(canvas.KeyEvent{Key: string(r), Text: string(r), Mods: canvas.Mods{Shift: b.shift}})
}

var namedKeys = map[fyne.KeyName]string{
	fyne.KeyDelete:    canvas.KeyDelete,
	fyne.KeyBackspace: canvas.KeyBackspace,
	fyne.KeyEscape:    canvas.KeyEscape,
	fyne.KeyReturn:    canvas.KeyEnter,
	fyne.KeyEnter:     canvas.KeyEnter,
}

func (b *boardWidget) TypedKey(e *fyne.KeyEvent) {
	if k, ok := namedKeys[e.Name]; ok {
		b.key(canvas.KeyEvent{Key: k, Mods: canvas.Mods{Shift: b.shift}})
	}
}

func (b *boardWidget) KeyDown(e *fyne.KeyEvent) {
	switch e.Name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		b.shift = true
	case fyne.KeySpace:
		b.key(canvas.KeyEvent{Key: canvas.KeySpace, Text: " "})
	}
}

func (b *boardWidget) KeyUp(e *fyne.KeyEvent) {
	switch e.Name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		b.shift = false
	case fyne.KeySpace:
		b.s.Canvas.KeyUp(canvas.KeyEvent{Key: canvas.KeySpace})
	}
}

type boardRenderer struct {
	b      *boardWidget
	raster *fcanvas.Raster
	frame  *fcanvas.Rectangle
	text   *widget.Label
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
	r.raster.Move(fyne.NewPos(0, 0))
	r.b.s.Resize(float64(size.Width), float64(size.Height))
	r.layoutEditor()
}

// layoutEditor places the text overlay over the shape being edited.
func (r *boardRenderer) layoutEditor() {
	ed := r.b.s.Canvas.Editor()
	if ed == nil {
		r.frame.Hide()
		r.text.Hide()
		return
	}
	bounds, ok := ed.Bounds(r.b.s.Store.View().Viewport)
	if !ok {
		r.frame.Hide()
		r.text.Hide()
		return
	}
	pos := fyne.NewPos(float32(bounds.X), float32(bounds.Y))
	size := fyne.NewSize(float32(bounds.W), float32(bounds.H))
	r.frame.Move(pos)
	r.frame.Resize(size)
	r.text.Move(pos)
	r.text.Resize(size)
	r.text.SetText(ed.Text() + "|")
	r.frame.Show()
	r.text.Show()
}

func (r *boardRenderer) MinSize() fyne.Size { return r.b.MinSize() }

func (r *boardRenderer) Refresh() {
	r.layoutEditor()
	r.raster.Refresh()
}

func (r *boardRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.raster, r.frame, r.text}
}

func (r *boardRenderer) Destroy() {}

// toolbarView renders the headless toolbar model with Fyne widgets.
type toolbarView struct {
	tb       *toolbar.Toolbar
	box      *fyne.Container
	tools    map[board.Tool]*widget.Button
	actions  map[toolbar.Action]*widget.Button
	swatches []*fcanvas.Rectangle
	hex      *widget.Entry
	color    string
}

func actionIcon(a toolbar.Action) fyne.Resource {
	switch a {
	case toolbar.Undo:
		return theme.ContentUndoIcon()
	case toolbar.Redo:
		return theme.ContentRedoIcon()
	case toolbar.Duplicate:
		return theme.ContentCopyIcon()
	case toolbar.Delete:
		return theme.DeleteIcon()
	case toolbar.ZoomOut:
		return theme.ZoomOutIcon()
	case toolbar.ZoomReset:
		return theme.ZoomFitIcon()
	case toolbar.ZoomIn:
		return theme.ZoomInIcon()
	}
	return theme.QuestionIcon()
}

func newToolbarView(tb *toolbar.Toolbar, status *widget.Label) *toolbarView {
	v := &toolbarView{tb: tb, tools: map[board.Tool]*widget.Button{}, actions: map[toolbar.Action]*widget.Button{}}
	var objs []fyne.CanvasObject
	for _, b := range tb.Buttons() {
		tool := b.Tool
		btn := widget.NewButton(fmt.Sprintf("%s (%c)", b.Label, b.Shortcut), func() { tb.SelectTool(tool) })
		v.tools[tool] = btn
		objs = append(objs, btn)
	}
	objs = append(objs, widget.NewSeparator())
	for _, sw := range tb.Swatches() {
		hex := sw.Hex
		rect := fcanvas.NewRectangle(vector.MustHex(hex).RGBA())
		rect.SetMinSize(fyne.NewSize(22, 22))
		rect.StrokeColor = color.Black
		btn := widget.NewButton("", func() { _ = tb.SetHex(hex) })
		v.swatches = append(v.swatches, rect)
		objs = append(objs, container.NewStack(btn, container.NewPadded(rect)))
	}
	v.hex = widget.NewEntry()
	v.hex.SetPlaceHolder("#rrggbb")
	v.hex.OnSubmitted = func(s string) {
		if err := tb.SetHex(s); err != nil {
			status.SetText(err.Error())
		}
	}
	objs = append(objs, container.NewGridWrap(fyne.NewSize(100, v.hex.MinSize().Height), v.hex), widget.NewSeparator())
	for _, a := range toolbar.Actions {
		act := a
		btn := widget.NewButtonWithIcon("", actionIcon(a), func() { tb.Do(act) })
		v.actions[a] = btn
		objs = append(objs, btn)
	}
	v.box = container.NewHBox(objs...)
	return v
}

func (v *toolbarView) update() {
	for _, b := range v.tb.Buttons() {
		btn := v.tools[b.Tool]
		imp := widget.MediumImportance
		if b.Active {
			imp = widget.HighImportance
		}
		if btn.Importance != imp {
			btn.Importance = imp
			btn.Refresh()
		}
	}
	for i, sw := range v.tb.Swatches() {
		width := float32(1)
		if sw.Active {
			width = 3
		}
		if v.swatches[i].StrokeWidth != width {
			v.swatches[i].StrokeWidth = width
			v.swatches[i].Refresh()
		}
	}
	if c := v.tb.Color(); c != v.color {
		v.color = c
		v.hex.SetText(c)
	}
	for a, btn := range v.actions {
		if v.tb.Enabled(a) {
			btn.Enable()
		} else {
			btn.Disable()
		}
	}
}
