/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// HitRect reports whether p lies inside r, edges included.
func HitRect(r Rect, p Pt) bool { return r.Contains(p) }

// HitEllipse reports whether p lies inside the ellipse inscribed in r.
func HitEllipse(r Rect, p Pt) bool {
	rx, ry := r.W/2, r.H/2
	if rx <= 0 || ry <= 0 {
		return false
	}
	c := r.Center()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

// DistanceToSegment returns the distance from p to the segment a-b.
func DistanceToSegment(p, a, b Pt) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Lerp(b, t))
}

// HitPolyline reports whether p is within tolerance of the polyline through
// pts. A single point is hit within tolerance of itself.
func HitPolyline(pts []Pt, p Pt, tolerance float64) bool {
	switch len(pts) {
	case 0:
		return false
	case 1:
		return p.Dist(pts[0]) <= tolerance
	}
	if !Bounds(pts).Inset(-tolerance, -tolerance).Contains(p) {
		return false
	}
	for i := 0; i < len(pts)-1; i++ {
		if DistanceToSegment(p, pts[i], pts[i+1]) <= tolerance {
			return true
		}
	}
	return false
}
