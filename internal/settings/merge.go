/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package settings restores the saved per-file layout when a catalog entry is
// reopened and builds the bundle that gets saved back.
package settings

import (
	"labelmaker/internal/domain"
	"labelmaker/internal/fields"
)

// Result is the working state produced by Merge.
type Result struct {
	Fields []domain.FieldDescriptor
	Rows   []domain.DataRow
	Layout domain.LayoutSettings
	// FieldsRestored is false when saved descriptors were absent or did not fit the
	// current header count.
	FieldsRestored bool
}

// Merge parses the entry content afresh and applies its saved layout on top of defaults.
//
// Saved descriptors are used only when their count equals the header count. Rows are
// then rearranged so column i holds the header whose text equals saved label i;
// a label with no matching header keeps column i from the file. Matching is by exact
// label text, so a renamed field cannot be traced back to its header.
//
// The remaining saved settings apply regardless of the descriptor outcome.
func Merge(e domain.CatalogEntry, defaults domain.LayoutSettings) Result {
	t := fields.Parse(e.Content)
	res := Result{Layout: defaults, Fields: t.Descriptors(), Rows: t.Rows}
	l := e.Layout
	if l == nil {
		return res
	}
	if l.Fields != nil && len(l.Fields) == len(t.Headers) {
		res.Fields = append([]domain.FieldDescriptor(nil), l.Fields...)
		res.Rows = remap(t, l.Fields)
		res.FieldsRestored = true
	}
	applyLayout(&res.Layout, l)
	return res
}

func remap(t fields.Table, saved []domain.FieldDescriptor) []domain.DataRow {
	src := make([]int, len(saved))
	for i, f := range saved {
		src[i] = i
		for j, h := range t.Headers {
			if h == f.Label {
				src[i] = j
				break
			}
		}
	}
	out := make([]domain.DataRow, len(t.Rows))
	for r, row := range t.Rows {
		nr := make(domain.DataRow, len(saved))
		for i, j := range src {
			if j < len(row) {
				nr[i] = row[j]
			}
		}
		// cells beyond the header stay at the end
		if len(row) > len(saved) {
			nr = append(nr, row[len(saved):]...)
		}
		out[r] = nr
	}
	return out
}

func applyLayout(dst *domain.LayoutSettings, l *domain.SavedLayout) {
	setF := func(d *float64, s *float64) {
		if s != nil {
			*d = *s
		}
	}
	setF(&dst.CanvasWidth, l.CanvasWidth)
	setF(&dst.CanvasHeight, l.CanvasHeight)
	setF(&dst.FontSize, l.FontSize)
	setF(&dst.LetterSpacing, l.LetterSpacing)
	setF(&dst.Padding, l.Padding)
	setF(&dst.LineHeight, l.LineHeight)
	setF(&dst.PreviewScale, l.PreviewScale)
	setF(&dst.QROffsetX, l.QROffsetX)
	setF(&dst.QROffsetY, l.QROffsetY)
	if l.WidthUnit != nil {
		if u, ok := l.WidthUnit.Normalized(); ok {
			dst.WidthUnit = u
		}
	}
	if l.HeightUnit != nil {
		if u, ok := l.HeightUnit.Normalized(); ok {
			dst.HeightUnit = u
		}
	}
	if l.QRField != nil {
		dst.QRField = *l.QRField
	}
	if l.QRPosition != nil && l.QRPosition.Valid() {
		dst.QRPosition = *l.QRPosition
	}
}

// Snapshot builds the bundle persisted for the current working state.
func Snapshot(fs []domain.FieldDescriptor, s domain.LayoutSettings) domain.SavedLayout {
	f := func(v float64) *float64 { return &v }
	wu, hu := s.WidthUnit, s.HeightUnit
	qf, qp := s.QRField, s.QRPosition
	return domain.SavedLayout{
		Fields:        append([]domain.FieldDescriptor{}, fs...),
		CanvasWidth:   f(s.CanvasWidth),
		CanvasHeight:  f(s.CanvasHeight),
		FontSize:      f(s.FontSize),
		LetterSpacing: f(s.LetterSpacing),
		Padding:       f(s.Padding),
		LineHeight:    f(s.LineHeight),
		PreviewScale:  f(s.PreviewScale),
		WidthUnit:     &wu,
		HeightUnit:    &hu,
		QRField:       &qf,
		QRPosition:    &qp,
		QROffsetX:     f(s.QROffsetX),
		QROffsetY:     f(s.QROffsetY),
	}
}
