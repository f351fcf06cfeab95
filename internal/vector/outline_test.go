/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func straightLine(n int, step float64) []Pt {
	pts := make([]Pt, n)
	for i := range pts {
		pts[i] = Pt{float64(i) * step, 0}
	}
	return pts
}

func TestOutlineStrokeEmptyAndDot(t *testing.T) {
	if got := OutlineStroke(nil, DefaultStrokeOptions()); got != nil {
		t.Fatalf("expected nil outline for no input, got %d points", len(got))
	}
	dot := OutlineStroke([]Pt{{10, 10}}, DefaultStrokeOptions())
	if len(dot) == 0 {
		t.Fatalf("single point should render as a dot")
	}
	for _, p := range dot {
		if d := p.Dist(Pt{10, 10}); math.Abs(d-4) > 1e-9 {
			t.Fatalf("dot radius = %v, want 4", d)
		}
	}
}

func TestOutlineStrokeEnclosesInput(t *testing.T) {
	input := straightLine(20, 5)
	o := DefaultStrokeOptions()
	poly := OutlineStroke(input, o)
	if len(poly) < 4 {
		t.Fatalf("outline too small: %d points", len(poly))
	}
	b := Bounds(poly)
	if b.X > 0 || b.X+b.W < 95 {
		t.Fatalf("outline does not span the stroke: %+v", b)
	}
	// Pressure keeps the radius within [Size/4, 3*Size/4] at thinning 0.5.
	if b.H < o.Size/2 || b.H > 1.5*o.Size+1e-9 {
		t.Fatalf("outline height %v outside [%v, %v]", b.H, o.Size/2, 1.5*o.Size)
	}
	// Round caps extend past the end points.
	if b.X >= 0 || b.X+b.W <= 95 {
		t.Fatalf("expected round caps beyond the ends: %+v", b)
	}
}

func TestOutlineStrokeTaperedEndsAreNarrow(t *testing.T) {
	input := straightLine(40, 4)
	o := DefaultStrokeOptions()
	o.SimulatePressure = false
	o.Thinning = 0
	o.TaperStart, o.TaperEnd = 40, 40
	poly := OutlineStroke(input, o)
	b := Bounds(poly)
	if b.X < -1e-6 || b.X+b.W > 156+1e-6 {
		t.Fatalf("tapered stroke should not extend past its ends: %+v", b)
	}
	if b.H < o.Size*0.9 {
		t.Fatalf("tapered stroke should reach full width in the middle: %+v", b)
	}
}

func TestOutlineStrokeIsDeterministic(t *testing.T) {
	input := []Pt{{0, 0}, {3, 8}, {10, 12}, {25, 9}, {30, 30}, {12, 40}}
	a := OutlineStroke(input, DefaultStrokeOptions())
	b := OutlineStroke(input, DefaultStrokeOptions())
	if len(a) != len(b) {
		t.Fatalf("non-deterministic outline length")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic outline at %d", i)
		}
	}
}

func TestStrokePointsStreamline(t *testing.T) {
	input := []Pt{{0, 0}, {10, 0}, {20, 0}}
	o := StrokeOptions{Streamline: 0.5}
	pts := StrokePoints(input, o)
	if len(pts) != 3 {
		t.Fatalf("got %d stroke points, want 3", len(pts))
	}
	if pts[1].Point.X >= 10 {
		t.Fatalf("streamlined point should lag behind input, got %v", pts[1].Point)
	}
	if pts[2].RunningLength <= pts[1].RunningLength {
		t.Fatalf("running length must grow")
	}
	o.Last = true
	if last := StrokePoints(input, o); last[len(last)-1].Point != (Pt{20, 0}) {
		t.Fatalf("finished stroke must end on the last input point")
	}
	if two := StrokePoints([]Pt{{0, 0}, {8, 0}}, o); len(two) != 5 {
		t.Fatalf("two-point input should be interpolated, got %d", len(two))
	}
}
