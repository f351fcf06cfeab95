/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import (
	"encoding/json"
	"errors"
	"fmt"

	"whiteboard/internal/vector"
)

// ErrUnknownKind is returned when a wire record names no known shape variant.
var ErrUnknownKind = errors.New("unknown shape type")

// Record is the flat wire form of a Shape used in persisted snapshots.
type Record struct {
	ID        string      `json:"id"`
	Type      Kind        `json:"type"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Width     *float64    `json:"width,omitempty"`
	Height    *float64    `json:"height,omitempty"`
	FillColor string      `json:"fillColor"`
	Points    []vector.Pt `json:"points,omitempty"`
	Text      *string     `json:"text,omitempty"`
}

// legacy type names accepted on read
var kindAliases = map[string]Kind{
	"path":          KindFreehand,
	"freehand-path": KindFreehand,
	"sticky":        KindNote,
}

// ToRecord flattens s into its wire form.
func ToRecord(s Shape) Record {
	r := Record{ID: s.ID, Type: s.Kind(), X: s.X, Y: s.Y, FillColor: s.Fill}
	if w, h, ok := s.Size(); ok {
		r.Width, r.Height = Float(w), Float(h)
	}
	if c, ok := s.Content(); ok {
		r.Text = String(c)
	}
	if b, ok := s.Body.(Freehand); ok {
		r.Points = b.Points
		if r.Points == nil {
			r.Points = []vector.Pt{}
		}
	}
	return r
}

// FromRecord rebuilds a Shape, ignoring fields that do not apply to its type.
func FromRecord(r Record) (Shape, error) {
	kind := r.Type
	if alias, ok := kindAliases[string(kind)]; ok {
		kind = alias
	}
	s := Shape{ID: r.ID, X: r.X, Y: r.Y, Fill: r.FillColor}
	w, h := deref(r.Width), deref(r.Height)
	text := ""
	if r.Text != nil {
		text = *r.Text
	}
	switch kind {
	case KindRectangle:
		s.Body = Rectangle{W: w, H: h}
	case KindEllipse:
		s.Body = Ellipse{W: w, H: h}
	case KindText:
		s.Body = Text{W: w, H: h, Content: text}
	case KindNote:
		s.Body = Note{W: w, H: h, Content: text}
	case KindFreehand:
		s.Body = Freehand{Points: append([]vector.Pt(nil), r.Points...)}
	default:
		return Shape{}, fmt.Errorf("record %q: %w %q", r.ID, ErrUnknownKind, r.Type)
	}
	return s, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return max(0, *v)
}

func (s Shape) MarshalJSON() ([]byte, error) { return json.Marshal(ToRecord(s)) }

func (s *Shape) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	out, err := FromRecord(r)
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// MarshalShapes encodes shapes as a JSON array of records.
func MarshalShapes(shapes []Shape) ([]byte, error) {
	if shapes == nil {
		shapes = []Shape{}
	}
	return json.Marshal(shapes)
}

// UnmarshalShapes decodes a JSON array of records.
func UnmarshalShapes(data []byte) ([]Shape, error) {
	var out []Shape
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode shapes: %w", err)
	}
	if out == nil {
		out = []Shape{}
	}
	return out, nil
}
