/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// Default scale limits and wheel step.
const (
	DefaultMinScale = 0.1
	DefaultMaxScale = 8.0
	DefaultZoomStep = 1.1
)

// Viewport maps world coordinates to screen coordinates with a uniform scale
// followed by an offset: screen = world*Scale + Offset.
type Viewport struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Scale   float64 `json:"scale"`
}

// IdentityViewport has no pan and unit scale.
var IdentityViewport = Viewport{Scale: 1}

// Transform returns the world-to-screen matrix.
func (v Viewport) Transform() Affine2D {
	return Translate(v.OffsetX, v.OffsetY).Mul(Scale(v.Scale, v.Scale))
}

func (v Viewport) WorldToScreen(p Pt) Pt {
	return Pt{X: p.X*v.Scale + v.OffsetX, Y: p.Y*v.Scale + v.OffsetY}
}

// ScreenToWorld inverts WorldToScreen. A zero scale is treated as 1 so the
// mapping never divides by zero.
func (v Viewport) ScreenToWorld(p Pt) Pt {
	s := v.Scale
	if s == 0 {
		s = 1
	}
	return Pt{X: (p.X - v.OffsetX) / s, Y: (p.Y - v.OffsetY) / s}
}

// RectToScreen maps a world rect into screen space.
func (v Viewport) RectToScreen(r Rect) Rect {
	p := v.WorldToScreen(r.Min())
	return Rect{X: p.X, Y: p.Y, W: r.W * v.Scale, H: r.H * v.Scale}
}

// Clamp returns v with Scale limited to [lo, hi]. NaN, zero and negative
// scales become lo.
func (v Viewport) Clamp(lo, hi float64) Viewport {
	if lo <= 0 {
		lo = DefaultMinScale
	}
	if hi < lo {
		hi = lo
	}
	switch {
	case math.IsNaN(v.Scale) || v.Scale <= 0:
		v.Scale = lo
	case v.Scale < lo:
		v.Scale = lo
	case v.Scale > hi:
		v.Scale = hi
	}
	return v
}

// Pan shifts the offset by a screen-space delta.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.OffsetX += dx
	v.OffsetY += dy
	return v
}

// ZoomAt multiplies the scale by factor while keeping the world point under
// the screen pointer fixed. The resulting scale is clamped to [lo, hi] and the
// offset is derived from the clamped scale.
func (v Viewport) ZoomAt(pointer Pt, factor, lo, hi float64) Viewport {
	if factor <= 0 || math.IsNaN(factor) {
		return v.Clamp(lo, hi)
	}
	anchor := v.ScreenToWorld(pointer)
	next := Viewport{Scale: v.Scale * factor}.Clamp(lo, hi)
	next.OffsetX = pointer.X - anchor.X*next.Scale
	next.OffsetY = pointer.Y - anchor.Y*next.Scale
	return next
}

// WheelZoom zooms in by step for a negative wheel delta and out by 1/step for a
// positive one. A zero delta leaves v unchanged apart from clamping.
func (v Viewport) WheelZoom(pointer Pt, deltaY, step, lo, hi float64) Viewport {
	if step <= 1 {
		step = DefaultZoomStep
	}
	switch {
	case deltaY < 0:
		return v.ZoomAt(pointer, step, lo, hi)
	case deltaY > 0:
		return v.ZoomAt(pointer, 1/step, lo, hi)
	}
	return v.Clamp(lo, hi)
}

// ZoomAtCenter zooms around the centre of a surface of the given size.
func (v Viewport) ZoomAtCenter(width, height, factor, lo, hi float64) Viewport {
	return v.ZoomAt(Pt{X: width / 2, Y: height / 2}, factor, lo, hi)
}
