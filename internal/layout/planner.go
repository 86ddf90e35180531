/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout arranges label elements into a fixed two-column layout:
// text and rectangles stack down the left margin, QR codes and images stack in a
// column near the right edge.
package layout

import (
	"labelmaker/internal/domain"
	"labelmaker/internal/elements"
)

// Planner holds the layout constants. The zero value is not useful; use Default.
type Planner struct {
	LeftX           float64
	RightInset      float64
	Gap             float64
	PrimaryStartY   float64
	SecondaryStartY float64
	// fallbacks when an element has no usable size
	RectRowHeight      float64
	SecondaryRowHeight float64
	TextPadding        float64
}

// Default returns the standard two-column layout.
func Default() Planner {
	return Planner{
		LeftX:              24,
		RightInset:         100,
		Gap:                8,
		PrimaryStartY:      30,
		SecondaryStartY:    60,
		RectRowHeight:      40,
		SecondaryRowHeight: 60,
		TextPadding:        8,
	}
}

// Placement is the planned position of one element.
type Placement struct {
	ID   string
	X, Y float64
}

// Plan computes positions for all visible elements in list order. Hidden elements
// are left out; locked elements are placed like any other.
func (p Planner) Plan(els []domain.Element, canvasWidth float64) []Placement {
	var out []Placement
	leftY, rightY := p.PrimaryStartY, p.SecondaryStartY
	rightX := canvasWidth - p.RightInset
	for _, e := range els {
		b := e.Common()
		if b.Hidden {
			continue
		}
		switch v := e.(type) {
		case *domain.Text:
			out = append(out, Placement{ID: b.ID, X: p.LeftX, Y: leftY})
			fs := v.FontSize
			if fs <= 0 {
				fs = 24
			}
			leftY += fs + p.TextPadding + p.Gap
		case *domain.Rect:
			out = append(out, Placement{ID: b.ID, X: p.LeftX, Y: leftY})
			leftY += orDefault(v.Height, p.RectRowHeight) + p.Gap
		case *domain.QRCode:
			out = append(out, Placement{ID: b.ID, X: rightX, Y: rightY})
			rightY += orDefault(v.Size, p.SecondaryRowHeight) + p.Gap
		case *domain.ImagePlaceholder:
			out = append(out, Placement{ID: b.ID, X: rightX, Y: rightY})
			rightY += orDefault(v.Height, p.SecondaryRowHeight) + p.Gap
		}
	}
	return out
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

// Apply plans against the store's current order and writes the positions back.
// It returns the placements applied.
func (p Planner) Apply(s *elements.Store, canvasWidth float64) ([]Placement, error) {
	plan := p.Plan(s.List(), canvasWidth)
	for _, pl := range plan {
		if err := s.Update(pl.ID, elements.Patch{X: elements.F(pl.X), Y: elements.F(pl.Y)}); err != nil {
			return nil, err
		}
	}
	return plan, nil
}
