/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Freehand stroke outlining. A captured point sequence is turned into the
// closed silhouette of a variable-width brush stroke: input is streamlined,
// pressure is simulated from pointer velocity, ends are tapered or capped with
// round caps.

import "math"

// StrokeOptions shapes the outline produced by OutlineStroke.
type StrokeOptions struct {
	// Size is the base stroke diameter.
	Size float64
	// Thinning in [-1, 1] controls how much pressure affects the width.
	// Positive values make fast strokes thinner.
	Thinning float64
	// Smoothing in [0, 1] drops outline points closer than Size*Smoothing.
	Smoothing float64
	// Streamline in [0, 1] pulls each point towards the previous one.
	Streamline float64
	// SimulatePressure derives pressure from the distance between points.
	SimulatePressure bool
	// TaperStart and TaperEnd are taper lengths; zero draws a round cap.
	TaperStart float64
	TaperEnd   float64
	// Last marks the stroke as finished so the final input point is kept as is.
	Last bool
}

// DefaultStrokeOptions returns the brush used for board freehand paths.
func DefaultStrokeOptions() StrokeOptions {
	return StrokeOptions{Size: 8, Thinning: 0.5, Smoothing: 0.5, Streamline: 0.5, SimulatePressure: true, Last: true}
}

// StrokePoint is a streamlined input point with its running metrics.
type StrokePoint struct {
	Point         Pt
	Pressure      float64
	Distance      float64
	RunningLength float64
	// Vector is the unit direction from this point back to the previous one.
	Vector Pt
}

const (
	pressureRate   = 0.275
	startPressure  = 0.5
	capSegments    = 13
	minRadius      = 0.01
	pressureWindow = 10
)

// StrokePoints streamlines the raw input and annotates each kept point.
func StrokePoints(input []Pt, o StrokeOptions) []StrokePoint {
	if len(input) == 0 {
		return nil
	}
	pts := input
	if len(pts) == 2 {
		a, b := pts[0], pts[1]
		pts = []Pt{a}
		for i := 1; i < 5; i++ {
			pts = append(pts, a.Lerp(b, float64(i)/4))
		}
	}
	if len(pts) == 1 {
		pts = []Pt{pts[0], pts[0].Add(Pt{1, 1})}
	}
	t := 0.15 + (1-clamp01(o.Streamline))*0.85
	out := []StrokePoint{{Point: pts[0], Pressure: startPressure}}
	running := 0.0
	last := len(pts) - 1
	for i := 1; i < len(pts); i++ {
		prev := out[len(out)-1].Point
		p := prev.Lerp(pts[i], t)
		if o.Last && i == last {
			p = pts[i]
		}
		if p == prev {
			continue
		}
		d := p.Dist(prev)
		running += d
		out = append(out, StrokePoint{
			Point:         p,
			Pressure:      startPressure,
			Distance:      d,
			RunningLength: running,
			Vector:        prev.Sub(p).Unit(),
		})
	}
	if len(out) > 1 {
		out[0].Vector = out[1].Vector
	}
	return out
}

// OutlineStroke returns the closed polygon outlining a stroke through input.
// It returns nil for no input; a single point becomes a round dot.
func OutlineStroke(input []Pt, o StrokeOptions) []Pt {
	if o.Size <= 0 {
		o.Size = DefaultStrokeOptions().Size
	}
	switch len(input) {
	case 0:
		return nil
	case 1:
		return dot(input[0], o.Size/2)
	}
	return outline(StrokePoints(input, o), o)
}

// OutlinePath is OutlineStroke as a fillable closed path.
func OutlinePath(input []Pt, o StrokeOptions) Path {
	return PolygonPath(OutlineStroke(input, o))
}

func outline(points []StrokePoint, o StrokeOptions) []Pt {
	if len(points) == 0 {
		return nil
	}
	size := o.Size
	total := points[len(points)-1].RunningLength
	if total == 0 {
		return dot(points[0].Point, size/2)
	}
	minDist := math.Pow(size*clamp01(o.Smoothing), 2)

	prevPressure := startPressure
	for i, p := range points {
		if i >= pressureWindow {
			break
		}
		pr := p.Pressure
		if o.SimulatePressure {
			pr = simulatedPressure(prevPressure, p.Distance, size)
		}
		prevPressure = (prevPressure + pr) / 2
	}

	var left, right []Pt
	radius := size / 2
	prevVector := points[0].Vector
	var prevLeft, prevRight Pt
	for i, p := range points {
		pressure := p.Pressure
		if o.SimulatePressure {
			pressure = simulatedPressure(prevPressure, p.Distance, size)
		}
		prevPressure = pressure
		radius = strokeRadius(size, o.Thinning, pressure)
		radius = math.Max(minRadius, radius*taper(p.RunningLength, total, o))

		nextVector := p.Vector
		if i < len(points)-1 {
			nextVector = points[i+1].Vector
		}
		nextDot := dotp(p.Vector, nextVector)
		prevDot := dotp(p.Vector, prevVector)

		// Reversals get a half-disc on each side so the outline does not fold.
		if i > 0 && i < len(points)-1 && (prevDot < 0 || nextDot < 0) {
			off := p.Vector.Perp().Mul(radius)
			for s := 0; s <= capSegments; s++ {
				a := math.Pi * float64(s) / capSegments
				left = append(left, rotateAround(p.Point.Sub(off), p.Point, a))
				right = append(right, rotateAround(p.Point.Add(off), p.Point, -a))
			}
			prevLeft, prevRight = left[len(left)-1], right[len(right)-1]
			prevVector = p.Vector
			continue
		}

		dir := nextVector.Lerp(p.Vector, nextDot).Unit()
		if dir == (Pt{}) {
			dir = p.Vector
		}
		off := dir.Perp().Mul(radius)
		l, r := p.Point.Sub(off), p.Point.Add(off)
		if i <= 1 || sqDist(prevLeft, l) > minDist {
			left = append(left, l)
			prevLeft = l
		}
		if i <= 1 || sqDist(prevRight, r) > minDist {
			right = append(right, r)
			prevRight = r
		}
		prevVector = p.Vector
	}

	first, last := points[0], points[len(points)-1]
	poly := make([]Pt, 0, len(left)+len(right)+2*capSegments)
	if o.TaperStart <= 0 {
		back := first.Vector
		poly = append(poly, arc(first.Point, right[0], left[0], back)...)
	}
	poly = append(poly, left...)
	if o.TaperEnd <= 0 {
		fwd := last.Vector.Mul(-1)
		poly = append(poly, arc(last.Point, left[len(left)-1], right[len(right)-1], fwd)...)
	}
	for i := len(right) - 1; i >= 0; i-- {
		poly = append(poly, right[i])
	}
	return poly
}

// simulatedPressure lowers pressure as the pointer speeds up.
func simulatedPressure(prev, distance, size float64) float64 {
	sp := math.Min(1, distance/size)
	rp := math.Min(1, 1-sp)
	return math.Min(1, prev+(rp-prev)*(sp*pressureRate))
}

func strokeRadius(size, thinning, pressure float64) float64 {
	return size * (0.5 - thinning*(0.5-pressure))
}

// taper scales the radius near tapered ends.
func taper(running, total float64, o StrokeOptions) float64 {
	ts, te := 1.0, 1.0
	if o.TaperStart > 0 && running < o.TaperStart {
		t := running / o.TaperStart
		ts = t * (2 - t)
	}
	if o.TaperEnd > 0 && total-running < o.TaperEnd {
		t := (total-running)/o.TaperEnd - 1
		te = t*t*t + 1
	}
	return math.Min(ts, te)
}

// arc sweeps half a circle around c from a to b, bulging towards dir.
func arc(c, a, b, dir Pt) []Pt {
	sign := 1.0
	if dotp(rotateAround(a, c, math.Pi/2).Sub(c), dir) < 0 {
		sign = -1
	}
	out := make([]Pt, 0, capSegments+1)
	for s := 0; s <= capSegments; s++ {
		out = append(out, rotateAround(a, c, sign*math.Pi*float64(s)/capSegments))
	}
	out[len(out)-1] = b
	return out
}

func dot(c Pt, r float64) []Pt {
	out := make([]Pt, 0, 2*capSegments)
	for s := 0; s < 2*capSegments; s++ {
		a := math.Pi * float64(s) / capSegments
		out = append(out, Pt{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)})
	}
	return out
}

func rotateAround(p, c Pt, a float64) Pt {
	s, co := math.Sin(a), math.Cos(a)
	d := p.Sub(c)
	return Pt{c.X + d.X*co - d.Y*s, c.Y + d.X*s + d.Y*co}
}

func dotp(a, b Pt) float64 { return a.X*b.X + a.Y*b.Y }

func sqDist(a, b Pt) float64 {
	d := a.Sub(b)
	return d.X*d.X + d.Y*d.Y
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }
