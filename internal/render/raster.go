/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	xvector "golang.org/x/image/vector"

	"whiteboard/internal/board"
	"whiteboard/internal/vector"
)

// RasterOptions extends Options for bitmap output.
type RasterOptions struct {
	Options
	Background vector.Color
	Fonts      FaceProvider
	// ShowSelection draws selection handles and guides into the image.
	ShowSelection bool
}

// Rasterize paints v into a w x h image.
func Rasterize(v board.View, w, h int, o RasterOptions) *image.RGBA {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	if o.Background == (vector.Color{}) {
		o.Background = vector.White
	}
	if o.Fonts == nil {
		o.Fonts = DefaultFonts()
	}
	if !o.ShowSelection {
		v.Selected = nil
		o.Guides = nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(o.Background.RGBA()), image.Point{}, draw.Src)

	z := xvector.NewRasterizer(w, h)
	for _, it := range Build(v, o.Options) {
		if !it.Path.Empty() {
			fillPath(z, img, it.Path, it.Fill)
		}
		if it.Text != "" {
			drawText(img, it, o.Fonts)
		}
	}
	return img
}

func fillPath(z *xvector.Rasterizer, dst *image.RGBA, p vector.Path, c vector.Color) {
	b := dst.Bounds()
	z.Reset(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	open := false
	for _, cmd := range p.Cmds {
		d := cmd.Data
		switch cmd.Op {
		case vector.MoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(float32(d[0]), float32(d[1]))
			open = true
		case vector.LineTo:
			z.LineTo(float32(d[0]), float32(d[1]))
		case vector.QuadTo:
			z.QuadTo(float32(d[0]), float32(d[1]), float32(d[2]), float32(d[3]))
		case vector.CubicTo:
			z.CubeTo(float32(d[0]), float32(d[1]), float32(d[2]), float32(d[3]), float32(d[4]), float32(d[5]))
		case vector.Close:
			z.ClosePath()
			open = false
		}
	}
	if open {
		z.ClosePath()
	}
	z.Draw(dst, b, image.NewUniform(c.RGBA()), image.Point{})
}

func drawText(img *image.RGBA, it Item, fonts FaceProvider) {
	box := it.Bounds.Inset(it.Padding, it.Padding)
	clip := image.Rect(
		int(math.Floor(box.X)), int(math.Floor(box.Y)),
		int(math.Ceil(box.X+box.W)), int(math.Ceil(box.Y+box.H)),
	).Intersect(img.Bounds())
	if clip.Empty() {
		return
	}
	face := fonts.Face(it.FontSize)
	dst, ok := img.SubImage(clip).(*image.RGBA)
	if !ok {
		return
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(it.TextColor.RGBA()), Face: face}
	ascent := float64(face.Metrics().Ascent) / 64
	lh := lineHeight(face)
	y := box.Y + ascent
	for _, line := range wrap(face, it.Text, box.W) {
		if y-ascent > box.Y+box.H {
			break
		}
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(box.X * 64), Y: fixed.Int26_6(y * 64)}
		d.DrawString(line)
		y += lh
	}
}

// WritePNG rasterizes v and encodes it as PNG to w.
func WritePNG(out io.Writer, v board.View, w, h int, o RasterOptions) error {
	img := Rasterize(v, w, h, o)
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// FitViewport returns a viewport that shows every shape of v inside a w x h
// image with a margin, never zooming in past 1.
func FitViewport(v board.View, w, h int, margin float64) vector.Viewport {
	if len(v.Shapes) == 0 || w <= 0 || h <= 0 {
		return vector.IdentityViewport
	}
	b := v.Shapes[0].Bounds()
	for _, s := range v.Shapes[1:] {
		b = b.Union(s.Bounds())
	}
	b = b.Inset(-margin, -margin)
	scale := 1.0
	if b.W > 0 && b.H > 0 {
		scale = math.Min(1, math.Min(float64(w)/b.W, float64(h)/b.H))
	}
	return vector.Viewport{OffsetX: -b.X * scale, OffsetY: -b.Y * scale, Scale: scale}
}
