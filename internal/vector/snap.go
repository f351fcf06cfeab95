/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Alignment snapping for dragged shapes. Candidates are edges and centres of
// the other shapes on the board; X and Y snap independently.

import "math"

// SnapOptions controls which alignments are considered.
type SnapOptions struct {
	// Threshold is the largest world distance that still snaps. Zero disables snapping.
	Threshold float64
	Edges     bool
	Centers   bool
}

// Guide is an alignment line to draw while a snap is active.
type Guide struct {
	Vertical bool
	Center   bool
	Pos      float64
	From, To Pt
}

type snapCandidate struct {
	delta  float64
	guide  Guide
	active bool
}

func (c *snapCandidate) consider(delta, threshold float64, g Guide) {
	d := math.Abs(delta)
	if d > threshold {
		return
	}
	if !c.active || d < math.Abs(c.delta) {
		*c = snapCandidate{delta: delta, guide: g, active: true}
	}
}

// Snap returns the translation that aligns moving with the closest anchor
// feature on each axis, plus the guides to show for it.
func Snap(moving Rect, anchors []Rect, o SnapOptions) (dx, dy float64, guides []Guide) {
	if o.Threshold <= 0 || (!o.Edges && !o.Centers) {
		return 0, 0, nil
	}
	var bx, by snapCandidate
	mx := [3]float64{moving.X, moving.X + moving.W, moving.X + moving.W/2}
	my := [3]float64{moving.Y, moving.Y + moving.H, moving.Y + moving.H/2}
	for _, a := range anchors {
		ax := [3]float64{a.X, a.X + a.W, a.X + a.W/2}
		ay := [3]float64{a.Y, a.Y + a.H, a.Y + a.H/2}
		if o.Edges {
			for _, m := range mx[:2] {
				for _, t := range ax[:2] {
					bx.consider(t-m, o.Threshold, vertical(t, moving, a, false))
				}
			}
			for _, m := range my[:2] {
				for _, t := range ay[:2] {
					by.consider(t-m, o.Threshold, horizontal(t, moving, a, false))
				}
			}
		}
		if o.Centers {
			bx.consider(ax[2]-mx[2], o.Threshold, vertical(ax[2], moving, a, true))
			by.consider(ay[2]-my[2], o.Threshold, horizontal(ay[2], moving, a, true))
		}
	}
	if bx.active {
		dx = FloatRound(bx.delta, 3)
		guides = append(guides, bx.guide)
	}
	if by.active {
		dy = FloatRound(by.delta, 3)
		guides = append(guides, by.guide)
	}
	return dx, dy, guides
}

func vertical(x float64, a, b Rect, center bool) Guide {
	x = FloatRound(x, 3)
	return Guide{
		Vertical: true,
		Center:   center,
		Pos:      x,
		From:     Pt{x, math.Min(a.Y, b.Y)},
		To:       Pt{x, math.Max(a.Y+a.H, b.Y+b.H)},
	}
}

func horizontal(y float64, a, b Rect, center bool) Guide {
	y = FloatRound(y, 3)
	return Guide{
		Center: center,
		Pos:    y,
		From:   Pt{math.Min(a.X, b.X), y},
		To:     Pt{math.Max(a.X+a.W, b.X+b.W), y},
	}
}
