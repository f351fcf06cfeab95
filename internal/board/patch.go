/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import (
	"slices"

	"whiteboard/internal/vector"
)

// Patch is a partial shape update. Nil fields are left unchanged; fields that
// do not apply to the shape's variant are ignored.
type Patch struct {
	X, Y   *float64
	W, H   *float64
	Fill   *string
	Points []vector.Pt
	Text   *string
	// Checkpoint records a history entry even for geometry-only changes.
	Checkpoint bool
}

// Float and String build patch field values.
func Float(v float64) *float64 { return &v }
func String(v string) *string  { return &v }

// apply returns s with the patch merged in.
func (p Patch) apply(s Shape) Shape {
	s = s.Clone()
	if p.X != nil {
		s.X = *p.X
	}
	if p.Y != nil {
		s.Y = *p.Y
	}
	if p.Fill != nil {
		s.Fill = *p.Fill
	}
	w := func(v float64) float64 { return pick(p.W, v) }
	h := func(v float64) float64 { return pick(p.H, v) }
	switch b := s.Body.(type) {
	case Rectangle:
		s.Body = Rectangle{W: w(b.W), H: h(b.H)}
	case Ellipse:
		s.Body = Ellipse{W: w(b.W), H: h(b.H)}
	case Text:
		s.Body = Text{W: w(b.W), H: h(b.H), Content: pickString(p.Text, b.Content)}
	case Note:
		s.Body = Note{W: w(b.W), H: h(b.H), Content: pickString(p.Text, b.Content)}
	case Freehand:
		if p.Points != nil {
			s.Body = Freehand{Points: slices.Clone(p.Points)}
		}
	}
	return s
}

// significant reports whether moving from old to next warrants its own undo step.
func (p Patch) significant(old, next Shape) bool {
	if p.Checkpoint || old.Fill != next.Fill {
		return true
	}
	a, _ := old.Content()
	b, _ := next.Content()
	return a != b
}

func pick(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	// Sizes never go negative.
	return max(0, *v)
}

func pickString(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
