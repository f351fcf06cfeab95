/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

// Font faces for text and note shapes. Faces are cached per pixel size since
// the viewport scale changes the size on every zoom step.

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FaceProvider returns a face for a pixel size.
type FaceProvider interface {
	Face(sizePx float64) font.Face
}

// BasicFaces always returns the fixed 7x13 bitmap face. Useful in tests since
// its metrics never change.
type BasicFaces struct{}

func (BasicFaces) Face(float64) font.Face { return basicfont.Face7x13 }

// Fonts serves faces from one OpenType font.
type Fonts struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[int]font.Face
}

// LoadFonts parses the TTF/OTF at path, or the bundled Go Regular when path is empty.
func LoadFonts(path string) (*Fonts, error) {
	data := goregular.TTF
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return &Fonts{font: f, faces: make(map[int]font.Face)}, nil
}

var (
	defaultFontsOnce sync.Once
	defaultFonts     FaceProvider
)

// DefaultFonts returns the bundled Go Regular provider, falling back to the
// bitmap face if it cannot be parsed.
func DefaultFonts() FaceProvider {
	defaultFontsOnce.Do(func() {
		f, err := LoadFonts("")
		if err != nil {
			defaultFonts = BasicFaces{}
			return
		}
		defaultFonts = f
	})
	return defaultFonts
}

func (f *Fonts) Face(sizePx float64) font.Face {
	size := max(1, int(math.Round(sizePx)))
	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[size]; ok {
		return face
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	f.faces[size] = face
	return face
}

// wrap breaks text into lines no wider than maxWidth pixels. Explicit
// newlines always break; a word wider than maxWidth gets a line of its own.
func wrap(face font.Face, text string, maxWidth float64) []string {
	d := &font.Drawer{Face: face}
	adv := func(s string) float64 { return float64(d.MeasureString(s)) / 64 }
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			if maxWidth > 0 && adv(cur+" "+w) > maxWidth {
				lines = append(lines, cur)
				cur = w
				continue
			}
			cur += " " + w
		}
		lines = append(lines, cur)
	}
	return lines
}

// lineHeight returns the face's line advance in pixels.
func lineHeight(face font.Face) float64 {
	m := face.Metrics()
	return float64(m.Height) / 64
}
