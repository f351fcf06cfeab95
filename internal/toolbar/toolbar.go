/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package toolbar is the headless model behind the board's toolbar: tool
// buttons, the colour palette with free-form hex input, zoom and edit actions.
// Hosts render it however they like; every action is a direct store call.
package toolbar

import (
	"errors"
	"fmt"
	"strings"

	"whiteboard/internal/board"
	"whiteboard/internal/vector"
)

// ErrInvalidColor is returned for hex input that is not #rgb or #rrggbb.
var ErrInvalidColor = errors.New("invalid color")

// Palette is the default swatch row.
var Palette = []string{
	"#1e1e1e", "#e03131", "#2f9e44", "#1971c2",
	"#f08c00", "#9c36b5", "#ffec99", "#ffffff",
}

var labels = map[board.Tool]string{
	board.ToolSelect:    "Select",
	board.ToolRectangle: "Rectangle",
	board.ToolEllipse:   "Ellipse",
	board.ToolFreehand:  "Pen",
	board.ToolText:      "Text",
	board.ToolNote:      "Note",
	board.ToolPan:       "Hand",
}

// Store is the part of board.Store the toolbar drives.
type Store interface {
	View() board.View
	SetTool(board.Tool)
	SetColor(string)
	SetViewport(vector.Viewport)
	ScaleRange() (lo, hi float64)
	DuplicateSelected()
	DeleteSelected()
	Undo()
	Redo()
}

// Button is one tool button.
type Button struct {
	Tool     board.Tool
	Label    string
	Shortcut rune
	Active   bool
}

// Swatch is one palette entry.
type Swatch struct {
	Hex    string
	Active bool
}

// Action identifies a non-tool toolbar button.
type Action string

const (
	ZoomIn    Action = "zoom-in"
	ZoomOut   Action = "zoom-out"
	ZoomReset Action = "zoom-reset"
	Duplicate Action = "duplicate"
	Delete    Action = "delete"
	Undo      Action = "undo"
	Redo      Action = "redo"
)

// Actions lists the action buttons in display order.
var Actions = []Action{Undo, Redo, Duplicate, Delete, ZoomOut, ZoomReset, ZoomIn}

// Toolbar binds the model to a store. Width and Height are the size of the
// drawing surface, used to anchor zoom buttons on its centre.
type Toolbar struct {
	store    Store
	ZoomStep float64
	Width    float64
	Height   float64
}

func New(store Store) *Toolbar {
	return &Toolbar{store: store, ZoomStep: vector.DefaultZoomStep}
}

// Buttons returns the tool buttons with the active one flagged.
func (t *Toolbar) Buttons() []Button {
	active := t.store.View().Tool
	out := make([]Button, len(board.Tools))
	for i, tool := range board.Tools {
		out[i] = Button{Tool: tool, Label: labels[tool], Shortcut: rune('1' + i), Active: tool == active}
	}
	return out
}

// SelectTool activates tool.
func (t *Toolbar) SelectTool(tool board.Tool) { t.store.SetTool(tool) }

// Swatches returns the palette with the active colour flagged.
func (t *Toolbar) Swatches() []Swatch {
	cur := strings.ToLower(t.store.View().Color)
	out := make([]Swatch, len(Palette))
	for i, hex := range Palette {
		out[i] = Swatch{Hex: hex, Active: hex == cur}
	}
	return out
}

// Color returns the active colour.
func (t *Toolbar) Color() string { return t.store.View().Color }

// SetHex sets the active colour from user input. Invalid input leaves the
// colour unchanged.
func (t *Toolbar) SetHex(input string) error {
	c, err := vector.ParseHex(strings.TrimSpace(input))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidColor, err)
	}
	t.store.SetColor(c.Hex())
	return nil
}

// Enabled reports whether action a currently has an effect.
func (t *Toolbar) Enabled(a Action) bool {
	v := t.store.View()
	switch a {
	case Undo:
		return v.CanUndo
	case Redo:
		return v.CanRedo
	case Duplicate, Delete:
		return len(v.Selected) > 0
	case ZoomIn:
		_, hi := t.store.ScaleRange()
		return v.Viewport.Scale < hi
	case ZoomOut:
		lo, _ := t.store.ScaleRange()
		return v.Viewport.Scale > lo
	case ZoomReset:
		return v.Viewport != vector.IdentityViewport
	}
	return false
}

// Do runs action a.
func (t *Toolbar) Do(a Action) {
	switch a {
	case ZoomIn:
		t.zoom(t.step())
	case ZoomOut:
		t.zoom(1 / t.step())
	case ZoomReset:
		t.store.SetViewport(vector.IdentityViewport)
	case Duplicate:
		t.store.DuplicateSelected()
	case Delete:
		t.store.DeleteSelected()
	case Undo:
		t.store.Undo()
	case Redo:
		t.store.Redo()
	}
}

func (t *Toolbar) step() float64 {
	if t.ZoomStep <= 1 {
		return vector.DefaultZoomStep
	}
	return t.ZoomStep
}

func (t *Toolbar) zoom(factor float64) {
	lo, hi := t.store.ScaleRange()
	v := t.store.View().Viewport
	t.store.SetViewport(v.ZoomAtCenter(t.Width, t.Height, factor, lo, hi))
}
