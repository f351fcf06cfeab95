/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package board holds the canonical whiteboard state: the shape collection,
// selection, active tool and colour, viewport and undo history. The Store is
// the only component that mutates shapes.
package board

import (
	"slices"

	"whiteboard/internal/vector"
)

// Kind identifies a shape variant. The string values are the wire names.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindEllipse   Kind = "ellipse"
	KindFreehand  Kind = "freehand"
	KindText      Kind = "text"
	KindNote      Kind = "note"
)

// Body is the per-variant payload of a Shape. The set of implementations is
// closed: Rectangle, Ellipse, Freehand, Text and Note.
type Body interface {
	Kind() Kind
	clone() Body
}

type Rectangle struct{ W, H float64 }

type Ellipse struct{ W, H float64 }

// Freehand is a captured pointer path. Points are offsets from the shape anchor.
type Freehand struct{ Points []vector.Pt }

type Text struct {
	W, H    float64
	Content string
}

// Note is a sticky note: a filled box carrying text.
type Note struct {
	W, H    float64
	Content string
}

func (Rectangle) Kind() Kind { return KindRectangle }
func (Ellipse) Kind() Kind   { return KindEllipse }
func (Freehand) Kind() Kind  { return KindFreehand }
func (Text) Kind() Kind      { return KindText }
func (Note) Kind() Kind      { return KindNote }

func (b Rectangle) clone() Body { return b }
func (b Ellipse) clone() Body   { return b }
func (b Freehand) clone() Body  { return Freehand{Points: slices.Clone(b.Points)} }
func (b Text) clone() Body      { return b }
func (b Note) clone() Body      { return b }

// Shape is one element on the board. X,Y is the world-space anchor: the
// top-left corner for sized variants and the origin of freehand offsets.
type Shape struct {
	ID   string
	X, Y float64
	Fill string
	Body Body
}

// Kind returns the variant, or "" for a shape without a body.
func (s Shape) Kind() Kind {
	if s.Body == nil {
		return ""
	}
	return s.Body.Kind()
}

// Clone returns a deep copy.
func (s Shape) Clone() Shape {
	if s.Body != nil {
		s.Body = s.Body.clone()
	}
	return s
}

// Size returns width and height for sized variants.
func (s Shape) Size() (w, h float64, ok bool) {
	switch b := s.Body.(type) {
	case Rectangle:
		return b.W, b.H, true
	case Ellipse:
		return b.W, b.H, true
	case Text:
		return b.W, b.H, true
	case Note:
		return b.W, b.H, true
	}
	return 0, 0, false
}

// Content returns the text of text and note shapes.
func (s Shape) Content() (string, bool) {
	switch b := s.Body.(type) {
	case Text:
		return b.Content, true
	case Note:
		return b.Content, true
	}
	return "", false
}

// Points returns the freehand points in world coordinates.
func (s Shape) Points() []vector.Pt {
	b, ok := s.Body.(Freehand)
	if !ok {
		return nil
	}
	out := make([]vector.Pt, len(b.Points))
	for i, p := range b.Points {
		out[i] = vector.Pt{X: s.X + p.X, Y: s.Y + p.Y}
	}
	return out
}

// Bounds returns the world-space bounding box.
func (s Shape) Bounds() vector.Rect {
	switch b := s.Body.(type) {
	case Rectangle:
		return vector.R(s.X, s.Y, b.W, b.H)
	case Ellipse:
		return vector.R(s.X, s.Y, b.W, b.H)
	case Text:
		return vector.R(s.X, s.Y, b.W, b.H)
	case Note:
		return vector.R(s.X, s.Y, b.W, b.H)
	case Freehand:
		return vector.Bounds(s.Points())
	}
	return vector.Rect{X: s.X, Y: s.Y}
}

// Contains hit-tests a world point. tol widens freehand strokes.
func (s Shape) Contains(p vector.Pt, tol float64) bool {
	switch b := s.Body.(type) {
	case Rectangle, Text, Note:
		return vector.HitRect(s.Bounds(), p)
	case Ellipse:
		return vector.HitEllipse(vector.R(s.X, s.Y, b.W, b.H), p)
	case Freehand:
		return vector.HitPolyline(s.Points(), p, tol)
	}
	return false
}

// Degenerate reports whether a drawn shape is too small to keep: sized shapes
// below minSize on both axes, freehand paths with fewer than two points.
func (s Shape) Degenerate(minSize float64) bool {
	switch b := s.Body.(type) {
	case Rectangle:
		return b.W < minSize && b.H < minSize
	case Ellipse:
		return b.W < minSize && b.H < minSize
	case Text:
		return b.W < minSize && b.H < minSize
	case Note:
		return b.W < minSize && b.H < minSize
	case Freehand:
		return len(b.Points) < 2
	}
	return true
}

// Translate returns the shape moved by dx,dy.
func (s Shape) Translate(dx, dy float64) Shape {
	s.X += dx
	s.Y += dy
	return s
}

func cloneShapes(in []Shape) []Shape {
	if in == nil {
		return []Shape{}
	}
	out := make([]Shape, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
