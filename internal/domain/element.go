/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the label elements placed on the canvas. Elements are a closed
// set of kinds sharing a common Base; concrete kinds carry their own geometry.

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind discriminates element variants.
type Kind string

const (
	KindText  Kind = "text"
	KindRect  Kind = "rect"
	KindQR    Kind = "qr"
	KindImage Kind = "image"
)

// Kinds lists all element kinds in palette order.
var Kinds = []Kind{KindText, KindRect, KindQR, KindImage}

// FontWeight is the text weight.
type FontWeight string

const (
	WeightNormal FontWeight = "normal"
	WeightBold   FontWeight = "bold"
)

// Minimum dimensions enforced after any transform.
const (
	MinFontSize  = 8.0
	MinDimension = 10.0
	// MinTextWidth bounds a text element's box during a resize gesture.
	MinTextWidth = 30.0
)

var (
	ErrUnknownKind    = errors.New("unknown element kind")
	ErrInvalidElement = errors.New("invalid element")
)

// Base holds what every element has in common. Rotation is in degrees.
type Base struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation,omitempty"`
	Hidden   bool    `json:"hidden,omitempty"`
	Locked   bool    `json:"locked,omitempty"`
}

// Common gives access to the shared fields of any element.
func (b *Base) Common() *Base { return b }

// Element is one of *Text, *Rect, *QRCode or *ImagePlaceholder.
type Element interface {
	Kind() Kind
	Common() *Base
	Clone() Element
	Validate() error
	element()
}

type Text struct {
	Base
	Content    string
	FontSize   float64
	FontWeight FontWeight
	Color      string
}

type Rect struct {
	Base
	Width       float64
	Height      float64
	FillColor   string
	StrokeColor string
	StrokeWidth float64
}

type QRCode struct {
	Base
	Size    float64
	Payload string
}

// ImagePlaceholder reserves space for an image. SourceRef is empty until resolved.
type ImagePlaceholder struct {
	Base
	Width     float64
	Height    float64
	SourceRef string
}

func (*Text) Kind() Kind             { return KindText }
func (*Rect) Kind() Kind             { return KindRect }
func (*QRCode) Kind() Kind           { return KindQR }
func (*ImagePlaceholder) Kind() Kind { return KindImage }

func (*Text) element()             {}
func (*Rect) element()             {}
func (*QRCode) element()           {}
func (*ImagePlaceholder) element() {}

func (e *Text) Clone() Element             { c := *e; return &c }
func (e *Rect) Clone() Element             { c := *e; return &c }
func (e *QRCode) Clone() Element           { c := *e; return &c }
func (e *ImagePlaceholder) Clone() Element { c := *e; return &c }

func (b *Base) validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidElement)
	}
	return nil
}

func positive(id, name string, v float64) error {
	if !(v > 0) {
		return fmt.Errorf("%w: %s %s must be > 0, got %v", ErrInvalidElement, id, name, v)
	}
	return nil
}

func (e *Text) Validate() error {
	if err := e.validate(); err != nil {
		return err
	}
	if e.FontWeight != WeightNormal && e.FontWeight != WeightBold {
		return fmt.Errorf("%w: %s font weight %q", ErrInvalidElement, e.ID, e.FontWeight)
	}
	return positive(e.ID, "fontSize", e.FontSize)
}

func (e *Rect) Validate() error {
	if err := e.validate(); err != nil {
		return err
	}
	if e.StrokeWidth < 0 {
		return fmt.Errorf("%w: %s strokeWidth must be >= 0", ErrInvalidElement, e.ID)
	}
	if err := positive(e.ID, "width", e.Width); err != nil {
		return err
	}
	return positive(e.ID, "height", e.Height)
}

func (e *QRCode) Validate() error {
	if err := e.validate(); err != nil {
		return err
	}
	return positive(e.ID, "size", e.Size)
}

func (e *ImagePlaceholder) Validate() error {
	if err := e.validate(); err != nil {
		return err
	}
	if err := positive(e.ID, "width", e.Width); err != nil {
		return err
	}
	return positive(e.ID, "height", e.Height)
}

// CanRotate reports whether the element kind accepts a rotation gesture.
func CanRotate(k Kind) bool { return k == KindRect || k == KindImage || k == KindQR }

// elementWire is the flat JSON shape of an element, discriminated by Type.
type elementWire struct {
	Type        Kind       `json:"type"`
	ID          string     `json:"id"`
	X           float64    `json:"x"`
	Y           float64    `json:"y"`
	Rotation    float64    `json:"rotation,omitempty"`
	Hidden      bool       `json:"hidden,omitempty"`
	Locked      bool       `json:"locked,omitempty"`
	Text        string     `json:"text,omitempty"`
	FontSize    float64    `json:"fontSize,omitempty"`
	FontStyle   FontWeight `json:"fontStyle,omitempty"`
	Fill        string     `json:"fill,omitempty"`
	Width       float64    `json:"width,omitempty"`
	Height      float64    `json:"height,omitempty"`
	Stroke      string     `json:"stroke,omitempty"`
	StrokeWidth float64    `json:"strokeWidth,omitempty"`
	Size        float64    `json:"size,omitempty"`
	Data        string     `json:"data,omitempty"`
	Src         string     `json:"src,omitempty"`
}

func toWire(e Element) elementWire {
	b := e.Common()
	w := elementWire{Type: e.Kind(), ID: b.ID, X: b.X, Y: b.Y, Rotation: b.Rotation, Hidden: b.Hidden, Locked: b.Locked}
	switch v := e.(type) {
	case *Text:
		w.Text, w.FontSize, w.FontStyle, w.Fill = v.Content, v.FontSize, v.FontWeight, v.Color
	case *Rect:
		w.Width, w.Height, w.Fill, w.Stroke, w.StrokeWidth = v.Width, v.Height, v.FillColor, v.StrokeColor, v.StrokeWidth
	case *QRCode:
		w.Size, w.Data = v.Size, v.Payload
	case *ImagePlaceholder:
		w.Width, w.Height, w.Src = v.Width, v.Height, v.SourceRef
	}
	return w
}

func fromWire(w elementWire) (Element, error) {
	b := Base{ID: w.ID, X: w.X, Y: w.Y, Rotation: w.Rotation, Hidden: w.Hidden, Locked: w.Locked}
	var e Element
	switch w.Type {
	case KindText:
		weight := w.FontStyle
		if weight == "" {
			weight = WeightNormal
		}
		e = &Text{Base: b, Content: w.Text, FontSize: w.FontSize, FontWeight: weight, Color: w.Fill}
	case KindRect:
		e = &Rect{Base: b, Width: w.Width, Height: w.Height, FillColor: w.Fill, StrokeColor: w.Stroke, StrokeWidth: w.StrokeWidth}
	case KindQR:
		e = &QRCode{Base: b, Size: w.Size, Payload: w.Data}
	case KindImage:
		e = &ImagePlaceholder{Base: b, Width: w.Width, Height: w.Height, SourceRef: w.Src}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, w.Type)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// MarshalElement encodes e in its flat JSON form.
func MarshalElement(e Element) ([]byte, error) { return json.Marshal(toWire(e)) }

// UnmarshalElement decodes and validates a single element.
func UnmarshalElement(data []byte) (Element, error) {
	var w elementWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(w)
}

// ElementList is an ordered element sequence; index 0 is the bottom of the z-order.
type ElementList []Element

func (l ElementList) MarshalJSON() ([]byte, error) {
	ws := make([]elementWire, len(l))
	for i, e := range l {
		ws[i] = toWire(e)
	}
	return json.Marshal(ws)
}

func (l *ElementList) UnmarshalJSON(data []byte) error {
	var ws []elementWire
	if err := json.Unmarshal(data, &ws); err != nil {
		return err
	}
	out := make(ElementList, 0, len(ws))
	for _, w := range ws {
		e, err := fromWire(w)
		if err != nil {
			return err
		}
		out = append(out, e)
	}
	*l = out
	return nil
}

// Clone deep-copies the list.
func (l ElementList) Clone() ElementList {
	out := make(ElementList, len(l))
	for i, e := range l {
		out[i] = e.Clone()
	}
	return out
}
