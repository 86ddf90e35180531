/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures text elements so they get a hit region and handles
// without a rendering surface.
package textlayout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"labelmaker/internal/domain"
	"labelmaker/internal/vector"
)

// LineHeight is the line advance as a multiple of the font size.
const LineHeight = 1.0

// Measurer sizes a block of text. Content may span several lines.
type Measurer interface {
	Measure(content string, fontSize float64, weight domain.FontWeight) vector.Size
}

// OTMeasurer measures with OpenType faces from a FontLibrary and falls back to
// another Measurer when the library has nothing to offer.
type OTMeasurer struct {
	Lib      *FontLibrary
	Fallback Measurer
}

// NewMeasurer returns an OTMeasurer backed by the Go fonts, or a BasicMeasurer if
// they cannot be parsed.
func NewMeasurer() Measurer {
	lib, err := NewGoFontLibrary()
	if err != nil {
		return BasicMeasurer{}
	}
	return OTMeasurer{Lib: lib, Fallback: BasicMeasurer{}}
}

func (m OTMeasurer) Measure(content string, fontSize float64, weight domain.FontWeight) vector.Size {
	if fontSize <= 0 {
		fontSize = 12
	}
	face, ok := m.Lib.face(weight, fontSize)
	if !ok {
		fb := m.Fallback
		if fb == nil {
			fb = BasicMeasurer{}
		}
		return fb.Measure(content, fontSize, weight)
	}
	return measureLines(face, content, fontSize, 1)
}

// BasicMeasurer scales x/image/basicfont Face7x13 to the requested size. It is
// deterministic and used in tests.
type BasicMeasurer struct{}

func (BasicMeasurer) Measure(content string, fontSize float64, weight domain.FontWeight) vector.Size {
	if fontSize <= 0 {
		fontSize = 12
	}
	scale := fontSize / float64(basicfont.Face7x13.Height)
	if weight == domain.WeightBold {
		// basicfont has no bold; emulate the wider advance of a bold cut
		scale *= 1.1
	}
	return measureLines(basicfont.Face7x13, content, fontSize, scale)
}

func measureLines(face font.Face, content string, fontSize, scale float64) vector.Size {
	d := &font.Drawer{Face: face}
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	var w float64
	for _, ln := range lines {
		if a := fixedToFloat(d.MeasureString(ln)) * scale; a > w {
			w = a
		}
	}
	return vector.Size{W: w, H: float64(len(lines)) * fontSize * LineHeight}
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// TextBox returns the hit box of a text element.
func TextBox(t *domain.Text, m Measurer) vector.Box {
	sz := m.Measure(t.Content, t.FontSize, t.FontWeight)
	return vector.Box{X: t.X, Y: t.Y, W: sz.W, H: sz.H, Rotation: t.Rotation}
}

// ElementBox returns the local box of any element.
func ElementBox(e domain.Element, m Measurer) vector.Box {
	b := e.Common()
	switch v := e.(type) {
	case *domain.Text:
		return TextBox(v, m)
	case *domain.Rect:
		return vector.Box{X: b.X, Y: b.Y, W: v.Width, H: v.Height, Rotation: b.Rotation}
	case *domain.QRCode:
		return vector.Box{X: b.X, Y: b.Y, W: v.Size, H: v.Size, Rotation: b.Rotation}
	case *domain.ImagePlaceholder:
		return vector.Box{X: b.X, Y: b.Y, W: v.Width, H: v.Height, Rotation: b.Rotation}
	}
	return vector.Box{X: b.X, Y: b.Y}
}
