/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fields

import (
	"labelmaker/internal/domain"
	"labelmaker/internal/units"
)

// CardLine is one visible field on a preview card.
type CardLine struct {
	Label string
	Value string
}

// Card previews one data row.
type Card struct {
	Row   int
	Lines []CardLine
	// QR is set when a marker field is bound and placed.
	QR *CardQR
}

// CardQR is the QR code drawn on a card.
type CardQR struct {
	Payload  string
	Position domain.QRPosition
	OffsetX  float64
	OffsetY  float64
}

// Preview is what the preview surface draws. NoData means there is nothing to
// show and the surface renders its empty state instead of cards.
type Preview struct {
	NoData bool
	// card box in pixels, after PreviewScale
	Width, Height float64
	FontSize      float64
	LetterSpacing float64
	Padding       float64
	LineHeight    float64
	Cards         []Card
}

// Cards builds the preview for the current mapping. Missing cells render empty.
func (m *Mapper) Cards(s domain.LayoutSettings, conv units.Converter) Preview {
	scale := s.PreviewScale
	if scale <= 0 {
		scale = 1
	}
	p := Preview{
		Width:         conv.ToPixels(s.CanvasWidth, s.WidthUnit) * scale,
		Height:        conv.ToPixels(s.CanvasHeight, s.HeightUnit) * scale,
		FontSize:      s.FontSize * scale,
		LetterSpacing: s.LetterSpacing * scale,
		Padding:       s.Padding * scale,
		LineHeight:    s.LineHeight,
	}
	if len(m.fields) == 0 || len(m.rows) == 0 {
		p.NoData = true
		return p
	}
	vis := m.Visible()
	qrCol := -1
	if s.QRField != "" && s.QRPosition != domain.QRNone {
		qrCol = m.Index(s.QRField)
	}
	for r := range m.rows {
		c := Card{Row: r}
		for _, v := range vis {
			c.Lines = append(c.Lines, CardLine{Label: v.Label, Value: m.Cell(r, v.Index)})
		}
		if qrCol >= 0 {
			c.QR = &CardQR{Payload: m.Cell(r, qrCol), Position: s.QRPosition, OffsetX: s.QROffsetX * scale, OffsetY: s.QROffsetY * scale}
		}
		p.Cards = append(p.Cards, c)
	}
	return p
}
