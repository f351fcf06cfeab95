/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas is the pointer and keyboard state machine of the board. It
// consumes normalized input events in screen coordinates, converts them to
// world coordinates through the store's viewport and drives the store.
// It has no dependency on any windowing toolkit.
package canvas

import (
	"log/slog"
	"slices"

	"whiteboard/internal/board"
	applog "whiteboard/internal/log"
	"whiteboard/internal/render"
	"whiteboard/internal/vector"
)

type EventType uint8

const (
	Down EventType = iota
	Move
	Up
	Leave
	Wheel
	DoubleClick
)

func (t EventType) String() string {
	switch t {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case Leave:
		return "leave"
	case Wheel:
		return "wheel"
	case DoubleClick:
		return "doubleclick"
	}
	return "unknown"
}

// Event is a pointer event. Pos is in screen pixels; DeltaY is the wheel delta.
type Event struct {
	Type   EventType
	Pos    vector.Pt
	Mods   Mods
	DeltaY float64
}

// KeyEvent is a key press. Text carries the typed characters, if any.
type KeyEvent struct {
	Key  string
	Text string
	Mods Mods
}

type State uint8

const (
	Idle State = iota
	Drawing
	Dragging
	Panning
)

func (s State) String() string {
	return [...]string{"idle", "drawing", "dragging", "panning"}[s]
}

// Options tune the state machine. Zero values select defaults.
type Options struct {
	// MinShapeSize is the extent below which a drawn shape is discarded.
	MinShapeSize float64
	ZoomStep     float64
	// TextBoxW and TextBoxH size a text or note placed by a click without drag.
	// Zero keeps the plain discard rule for such clicks.
	TextBoxW, TextBoxH float64
	// Snap aligns dragged shapes with the others.
	Snap   vector.SnapOptions
	Keymap Keymap
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MinShapeSize <= 0 {
		o.MinShapeSize = 5
	}
	if o.ZoomStep <= 1 {
		o.ZoomStep = vector.DefaultZoomStep
	}
	if o.Keymap == nil {
		o.Keymap = DefaultKeymap()
	}
	if o.Logger == nil {
		o.Logger = applog.WithComponent("canvas")
	}
	return o
}

// Canvas holds the transient gesture state. Fields here never enter history.
type Canvas struct {
	store *board.Store
	opts  Options

	state     State
	spaceHeld bool

	// drawing
	active string
	kind   board.Kind
	start  vector.Pt // world
	points []vector.Pt

	// dragging
	dragIDs  []string
	dragFrom vector.Rect // union of dragged bounds at gesture start
	applied  vector.Pt   // world offset already applied
	anchors  []vector.Rect
	guides   []vector.Guide

	// panning
	last vector.Pt // screen

	editor *render.TextEditor
}

// New binds a canvas to store.
func New(store *board.Store, opts Options) *Canvas {
	return &Canvas{store: store, opts: opts.withDefaults()}
}

func (c *Canvas) State() State { return c.state }

// Guides returns the alignment guides of the drag in progress.
func (c *Canvas) Guides() []vector.Guide { return slices.Clone(c.guides) }

// Editor returns the open text editor, or nil.
func (c *Canvas) Editor() *render.TextEditor { return c.editor }

// RenderOptions returns the transient render inputs owned by the canvas.
func (c *Canvas) RenderOptions(base render.Options) render.Options {
	base.Guides = c.Guides()
	if c.editor != nil {
		base.Editing = c.editor.ShapeID()
	}
	return base
}

// Handle feeds one pointer event through the state machine.
func (c *Canvas) Handle(e Event) {
	switch e.Type {
	case Down:
		c.down(e)
	case Move:
		c.move(e)
	case Up, Leave:
		c.finish()
	case Wheel:
		c.wheel(e)
	case DoubleClick:
		c.doubleClick(e)
	}
}

func (c *Canvas) world(screen vector.Pt) vector.Pt {
	return c.store.View().Viewport.ScreenToWorld(screen)
}

func (c *Canvas) down(e Event) {
	if c.editor != nil {
		v := c.store.View()
		if r, ok := c.editor.Bounds(v.Viewport); ok && r.Contains(e.Pos) {
			return
		}
		c.closeEditor()
	}
	if c.state != Idle {
		return
	}
	v := c.store.View()
	if c.spaceHeld || v.Tool == board.ToolPan {
		c.state = Panning
		c.last = e.Pos
		return
	}
	w := v.Viewport.ScreenToWorld(e.Pos)
	if kind, ok := v.Tool.Draws(); ok {
		c.beginDraw(kind, w)
		return
	}
	id, hit := c.store.HitTest(w)
	if !hit {
		c.store.ClearSelection()
		return
	}
	switch {
	case e.Mods.Shift:
		c.store.SelectShape(id, true)
	case !v.IsSelected(id):
		c.store.SelectShape(id, false)
	}
	sel := c.store.View().Selected
	if !slices.Contains(sel, id) {
		return
	}
	c.beginDrag(sel, w)
}

func (c *Canvas) beginDraw(kind board.Kind, w vector.Pt) {
	var body board.Body
	switch kind {
	case board.KindRectangle:
		body = board.Rectangle{}
	case board.KindEllipse:
		body = board.Ellipse{}
	case board.KindFreehand:
		c.points = []vector.Pt{{}}
		body = board.Freehand{Points: c.points}
	case board.KindText:
		body = board.Text{}
	case board.KindNote:
		body = board.Note{}
	}
	c.store.SetDrawing(true)
	c.active = c.store.AddShape(board.Shape{X: w.X, Y: w.Y, Body: body})
	if c.active == "" {
		c.store.SetDrawing(false)
		return
	}
	c.kind = kind
	c.start = w
	c.state = Drawing
}

func (c *Canvas) beginDrag(ids []string, w vector.Pt) {
	c.dragIDs = ids
	c.start = w
	c.applied = vector.Pt{}
	c.anchors = nil
	v := c.store.View()
	first := true
	for _, s := range v.Shapes {
		if slices.Contains(ids, s.ID) {
			if first {
				c.dragFrom, first = s.Bounds(), false
			} else {
				c.dragFrom = c.dragFrom.Union(s.Bounds())
			}
			continue
		}
		c.anchors = append(c.anchors, s.Bounds())
	}
	c.state = Dragging
}

func (c *Canvas) move(e Event) {
	switch c.state {
	case Panning:
		v := c.store.View().Viewport
		c.store.SetViewport(v.Pan(e.Pos.X-c.last.X, e.Pos.Y-c.last.Y))
		c.last = e.Pos
	case Drawing:
		c.drawTo(c.world(e.Pos))
	case Dragging:
		c.dragTo(c.world(e.Pos))
	}
}

func (c *Canvas) drawTo(w vector.Pt) {
	switch c.kind {
	case board.KindRectangle, board.KindEllipse, board.KindNote:
		r := vector.Span(c.start, w)
		c.store.UpdateShape(c.active, board.Patch{X: board.Float(r.X), Y: board.Float(r.Y), W: board.Float(r.W), H: board.Float(r.H)})
	case board.KindFreehand:
		c.points = append(c.points, w.Sub(c.start))
		c.store.UpdateShape(c.active, board.Patch{Points: c.points})
	case board.KindText:
		c.store.UpdateShape(c.active, board.Patch{W: board.Float(max(0, w.X-c.start.X)), H: board.Float(max(0, w.Y-c.start.Y))})
	}
}

func (c *Canvas) dragTo(w vector.Pt) {
	off := w.Sub(c.start)
	c.guides = nil
	if c.opts.Snap.Threshold > 0 {
		dx, dy, guides := vector.Snap(c.dragFrom.Translate(off.X, off.Y), c.anchors, c.opts.Snap)
		off = off.Add(vector.Pt{X: dx, Y: dy})
		c.guides = guides
	}
	d := off.Sub(c.applied)
	c.store.MoveShapes(c.dragIDs, d.X, d.Y)
	c.applied = off
}

// finish ends the current gesture. Up and Leave both land here so a pointer
// leaving the surface never leaks a half-drawn shape.
func (c *Canvas) finish() {
	switch c.state {
	case Drawing:
		c.finishDraw()
	case Dragging:
		if c.applied != (vector.Pt{}) {
			c.store.Commit("")
		}
		c.dragIDs, c.anchors, c.guides = nil, nil, nil
	}
	c.state = Idle
}

func (c *Canvas) finishDraw() {
	id := c.active
	c.active, c.points = "", nil
	// the draft is resolved before readers see a settled board
	defer c.store.SetDrawing(false)
	sh, ok := c.store.Shape(id)
	if !ok {
		return
	}
	textual := c.kind == board.KindText || c.kind == board.KindNote
	if sh.Degenerate(c.opts.MinShapeSize) {
		if !textual || c.opts.TextBoxW <= 0 || c.opts.TextBoxH <= 0 {
			c.opts.Logger.Debug("discarding degenerate draft", slog.String("kind", string(c.kind)))
			c.store.DiscardShape(id)
			return
		}
		c.store.UpdateShape(id, board.Patch{X: board.Float(c.start.X), Y: board.Float(c.start.Y), W: board.Float(c.opts.TextBoxW), H: board.Float(c.opts.TextBoxH)})
	}
	c.store.Commit(id)
	c.store.SelectShape(id, false)
	if textual {
		c.openEditor(id)
	}
}

func (c *Canvas) wheel(e Event) {
	v := c.store.View().Viewport
	lo, hi := c.store.ScaleRange()
	c.store.SetViewport(v.WheelZoom(e.Pos, e.DeltaY, c.opts.ZoomStep, lo, hi))
}

func (c *Canvas) doubleClick(e Event) {
	v := c.store.View()
	if c.state != Idle || v.Tool != board.ToolSelect {
		return
	}
	id, ok := c.store.HitTest(v.Viewport.ScreenToWorld(e.Pos))
	if !ok {
		return
	}
	c.openEditor(id)
}

func (c *Canvas) openEditor(id string) {
	c.closeEditor()
	if ed, ok := render.OpenEditor(c.store, id); ok {
		c.editor = ed
	}
}

func (c *Canvas) closeEditor() {
	if c.editor == nil {
		return
	}
	c.editor.Blur()
	c.editor = nil
}

// KeyDown handles a key press and reports whether it was consumed. While the
// text editor is open every key goes to it.
func (c *Canvas) KeyDown(k KeyEvent) bool {
	if c.editor != nil {
		c.editorKey(k)
		return true
	}
	if k.Key == KeySpace {
		c.spaceHeld = true
		return true
	}
	cmd, ok := c.opts.Keymap.Lookup(k.Key, k.Mods)
	if !ok {
		return false
	}
	if c.state != Idle {
		// Commands would race the gesture's history entry.
		return true
	}
	c.Execute(cmd)
	return true
}

// KeyUp ends a space-held pan.
func (c *Canvas) KeyUp(k KeyEvent) {
	if k.Key != KeySpace {
		return
	}
	c.spaceHeld = false
	if c.state == Panning && c.store.View().Tool != board.ToolPan {
		c.state = Idle
	}
}

// Execute runs a command against the store.
func (c *Canvas) Execute(cmd Command) {
	switch cmd {
	case CmdDelete:
		c.store.DeleteSelected()
	case CmdUndo:
		c.store.Undo()
	case CmdRedo:
		c.store.Redo()
	case CmdDuplicate:
		c.store.DuplicateSelected()
	case CmdEscape:
		c.store.ClearSelection()
		c.store.SetTool(board.ToolSelect)
	default:
		if t, ok := cmd.tool(); ok {
			c.store.SetTool(t)
			return
		}
		c.opts.Logger.Debug("unknown command", slog.String("cmd", string(cmd)))
	}
}

func (c *Canvas) editorKey(k KeyEvent) {
	ed := c.editor
	switch k.Key {
	case KeyEscape:
		ed.Escape()
	case KeyEnter:
		ed.Enter(k.Mods.Shift)
	case KeyBackspace:
		ed.Backspace()
	default:
		if !k.Mods.Ctrl {
			ed.Insert(k.Text)
		}
	}
	if ed.Closed() {
		c.editor = nil
	}
}
