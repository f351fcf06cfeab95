/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns a board view into a screen-space draw list, rasterizes
// it to an image and hosts the inline text editor.
package render

import (
	"whiteboard/internal/board"
	"whiteboard/internal/vector"
)

type ItemKind uint8

const (
	ItemShape ItemKind = iota
	ItemHandle
	ItemGuide
)

// Item is one drawable in screen space, painted in list order.
type Item struct {
	Kind      ItemKind
	ShapeID   string
	ShapeKind board.Kind
	Selected  bool
	// Bounds is the screen-space bounding box.
	Bounds vector.Rect
	// Path is filled with Fill. Plain text has no path.
	Path vector.Path
	Fill vector.Color
	// Text is drawn inside Bounds, inset by Padding, wrapped to its width.
	Text      string
	TextColor vector.Color
	FontSize  float64
	Padding   float64
}

// Options tune Build. Zero values select defaults.
type Options struct {
	Stroke vector.StrokeOptions
	// HandleSize is the side of a corner handle in pixels.
	HandleSize float64
	// FontSize is the world-space text size.
	FontSize float64
	// Editing hides the text of the shape open in the editor.
	Editing string
	Guides  []vector.Guide
}

var (
	HandleColor = vector.Color{R: 0x1a, G: 0x73, B: 0xe8, A: 0xff}
	GuideColor  = vector.Color{R: 0xe8, G: 0x1a, B: 0x8c, A: 0xff}
)

func (o Options) withDefaults() Options {
	if o.Stroke.Size <= 0 {
		o.Stroke = vector.DefaultStrokeOptions()
	}
	if o.HandleSize <= 0 {
		o.HandleSize = 8
	}
	if o.FontSize <= 0 {
		o.FontSize = 16
	}
	return o
}

// Build returns the draw list for v: every shape in stacking order, then
// corner handles for the selection, then alignment guides.
func Build(v board.View, o Options) []Item {
	o = o.withDefaults()
	vp := v.Viewport
	items := make([]Item, 0, len(v.Shapes)+4*len(v.Selected)+len(o.Guides))
	var handles []Item
	for _, s := range v.Shapes {
		it := shapeItem(s, vp, o)
		it.Selected = v.IsSelected(s.ID)
		items = append(items, it)
		if it.Selected {
			handles = append(handles, cornerHandles(s.ID, it.Bounds, o.HandleSize)...)
		}
	}
	items = append(items, handles...)
	for _, g := range o.Guides {
		items = append(items, guideItem(g, vp))
	}
	return items
}

func shapeItem(s board.Shape, vp vector.Viewport, o Options) Item {
	fill := vector.MustHex(s.Fill)
	it := Item{Kind: ItemShape, ShapeID: s.ID, ShapeKind: s.Kind(), Fill: fill}
	screen := vp.RectToScreen(s.Bounds())
	it.Bounds = screen
	switch b := s.Body.(type) {
	case board.Rectangle:
		it.Path = vector.RectPath(screen)
	case board.Ellipse:
		it.Path = vector.EllipsePath(screen)
	case board.Freehand:
		// Outlined in world space so stroke width follows the zoom.
		outline := vector.OutlinePath(s.Points(), o.Stroke)
		it.Path = outline.Transform(vp.Transform())
		if !it.Path.Empty() {
			it.Bounds = it.Path.Bounds()
		}
	case board.Text:
		it.Text = b.Content
		it.TextColor = fill
		it.FontSize = o.FontSize * vp.Scale
	case board.Note:
		it.Path = vector.RectPath(screen)
		it.Text = b.Content
		it.TextColor = fill.Contrast()
		it.FontSize = o.FontSize * vp.Scale
		it.Padding = 8 * vp.Scale
	}
	if s.ID == o.Editing {
		it.Text = ""
	}
	return it
}

func cornerHandles(id string, r vector.Rect, size float64) []Item {
	out := make([]Item, 0, 4)
	for _, c := range r.Corners() {
		h := vector.R(c.X-size/2, c.Y-size/2, size, size)
		out = append(out, Item{Kind: ItemHandle, ShapeID: id, Bounds: h, Path: vector.RectPath(h), Fill: HandleColor})
	}
	return out
}

func guideItem(g vector.Guide, vp vector.Viewport) Item {
	a, b := vp.WorldToScreen(g.From), vp.WorldToScreen(g.To)
	r := vector.Span(a, b)
	if g.Vertical {
		r = r.Inset(-0.5, 0)
	} else {
		r = r.Inset(0, -0.5)
	}
	return Item{Kind: ItemGuide, Bounds: r, Path: vector.RectPath(r), Fill: GuideColor}
}
