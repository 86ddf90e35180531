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

// FieldDescriptor is the editable metadata of one data column.
type FieldDescriptor struct {
	Label  string `json:"value"`
	Hidden bool   `json:"hidden"`
}

// DataRow is one record of cells, aligned with the field descriptors.
type DataRow []string

// QRPosition places the QR code on a preview card.
type QRPosition string

const (
	QRNone   QRPosition = "none"
	QRLeft   QRPosition = "left"
	QRRight  QRPosition = "right"
	QRTop    QRPosition = "top"
	QRBottom QRPosition = "bottom"
)

// Valid reports whether p is a known position.
func (p QRPosition) Valid() bool {
	switch p {
	case QRNone, QRLeft, QRRight, QRTop, QRBottom:
		return true
	}
	return false
}

// LayoutSettings is the working copy of per-file preview settings.
type LayoutSettings struct {
	CanvasWidth   float64
	CanvasHeight  float64
	FontSize      float64
	LetterSpacing float64
	Padding       float64
	LineHeight    float64
	PreviewScale  float64
	WidthUnit     units.Unit
	HeightUnit    units.Unit
	// QRField is the label of the field whose value feeds the QR code. Empty = no QR.
	QRField    string
	QRPosition QRPosition
	QROffsetX  float64
	QROffsetY  float64
}

// DefaultLayout returns the settings used when nothing was saved.
func DefaultLayout() LayoutSettings {
	return LayoutSettings{
		CanvasWidth:  400,
		CanvasHeight: 200,
		FontSize:     14,
		Padding:      8,
		LineHeight:   1.2,
		PreviewScale: 1,
		WidthUnit:    units.Pixel,
		HeightUnit:   units.Pixel,
		QRPosition:   QRRight,
	}
}

// SavedLayout is the optional settings bundle stored with a catalog entry.
// Every member is optional; nil means "not saved".
type SavedLayout struct {
	Fields        []FieldDescriptor
	CanvasWidth   *float64
	CanvasHeight  *float64
	FontSize      *float64
	LetterSpacing *float64
	Padding       *float64
	LineHeight    *float64
	PreviewScale  *float64
	WidthUnit     *units.Unit
	HeightUnit    *units.Unit
	QRField       *string
	QRPosition    *QRPosition
	QROffsetX     *float64
	QROffsetY     *float64
}

// CatalogEntry is an imported tabular file. Content is never mutated.
type CatalogEntry struct {
	ID        int64
	Name      string
	Content   string
	Timestamp time.Time
	Layout    *SavedLayout
}

// Clone deep-copies the entry so callers never alias catalog state.
func (e CatalogEntry) Clone() CatalogEntry {
	if e.Layout != nil {
		l := *e.Layout
		l.Fields = append([]FieldDescriptor(nil), e.Layout.Fields...)
		e.Layout = &l
	}
	return e
}
