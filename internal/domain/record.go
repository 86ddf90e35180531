/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"time"

	"labelmaker/internal/units"
)

// Record is the persisted JSON form of a CatalogEntry. The saved layout is
// flattened into optional top-level members; kerning carries letter spacing.
type Record struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Content      string            `json:"content"`
	Timestamp    string            `json:"timestamp"`
	FieldsMeta   []FieldDescriptor `json:"fieldsMeta,omitempty"`
	Width        *float64          `json:"width,omitempty"`
	Height       *float64          `json:"height,omitempty"`
	FontSize     *float64          `json:"fontSize,omitempty"`
	Kerning      *float64          `json:"kerning,omitempty"`
	Padding      *float64          `json:"padding,omitempty"`
	LineHeight   *float64          `json:"lineHeight,omitempty"`
	PreviewScale *float64          `json:"previewScale,omitempty"`
	WidthUnit    *units.Unit       `json:"widthUnit,omitempty"`
	HeightUnit   *units.Unit       `json:"heightUnit,omitempty"`
	QRField      *string           `json:"qrField,omitempty"`
	QRPosition   *QRPosition       `json:"qrPosition,omitempty"`
	QROffsetX    *float64          `json:"qrOffsetX,omitempty"`
	QROffsetY    *float64          `json:"qrOffsetY,omitempty"`
}

// RecordFromEntry flattens e for persistence.
func RecordFromEntry(e CatalogEntry) Record {
	r := Record{
		ID:        e.ID,
		Name:      e.Name,
		Content:   e.Content,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if l := e.Layout; l != nil {
		r.FieldsMeta = append([]FieldDescriptor(nil), l.Fields...)
		r.Width, r.Height = l.CanvasWidth, l.CanvasHeight
		r.FontSize, r.Kerning, r.Padding = l.FontSize, l.LetterSpacing, l.Padding
		r.LineHeight, r.PreviewScale = l.LineHeight, l.PreviewScale
		r.WidthUnit, r.HeightUnit = l.WidthUnit, l.HeightUnit
		r.QRField, r.QRPosition = l.QRField, l.QRPosition
		r.QROffsetX, r.QROffsetY = l.QROffsetX, l.QROffsetY
	}
	return r
}

// Entry rebuilds the CatalogEntry. An unparseable timestamp yields the zero time.
func (r Record) Entry() CatalogEntry {
	ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		ts = time.Time{}
	}
	e := CatalogEntry{ID: r.ID, Name: r.Name, Content: r.Content, Timestamp: ts}
	l := SavedLayout{
		Fields:        append([]FieldDescriptor(nil), r.FieldsMeta...),
		CanvasWidth:   r.Width,
		CanvasHeight:  r.Height,
		FontSize:      r.FontSize,
		LetterSpacing: r.Kerning,
		Padding:       r.Padding,
		LineHeight:    r.LineHeight,
		PreviewScale:  r.PreviewScale,
		WidthUnit:     r.WidthUnit,
		HeightUnit:    r.HeightUnit,
		QRField:       r.QRField,
		QRPosition:    r.QRPosition,
		QROffsetX:     r.QROffsetX,
		QROffsetY:     r.QROffsetY,
	}
	if r.FieldsMeta == nil {
		l.Fields = nil
	}
	if !l.IsZero() {
		e.Layout = &l
	}
	return e
}

// IsZero reports whether nothing was saved.
func (l SavedLayout) IsZero() bool {
	return l.Fields == nil && l.CanvasWidth == nil && l.CanvasHeight == nil && l.FontSize == nil &&
		l.LetterSpacing == nil && l.Padding == nil && l.LineHeight == nil && l.PreviewScale == nil &&
		l.WidthUnit == nil && l.HeightUnit == nil && l.QRField == nil && l.QRPosition == nil &&
		l.QROffsetX == nil && l.QROffsetY == nil
}
