/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"labelmaker/internal/units"
)

// Orientation of the label canvas.
type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
)

var ErrInvalidCanvas = errors.New("invalid canvas")

// LabelCanvas is the printable label area. Width and Height are expressed in Unit.
type LabelCanvas struct {
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	Unit        units.Unit  `json:"unit"`
	Orientation Orientation `json:"orientation"`
}

// DefaultCanvas is a 400x200 px landscape label.
func DefaultCanvas() LabelCanvas {
	return LabelCanvas{Width: 400, Height: 200, Unit: units.Pixel, Orientation: Landscape}
}

// SetOrientation swaps width and height when o differs from the current orientation.
// Setting the same orientation is a no-op.
func (c *LabelCanvas) SetOrientation(o Orientation) error {
	if o != Landscape && o != Portrait {
		return fmt.Errorf("%w: orientation %q", ErrInvalidCanvas, o)
	}
	if o == c.Orientation {
		return nil
	}
	c.Width, c.Height = c.Height, c.Width
	c.Orientation = o
	return nil
}

// SetSize sets the canvas dimensions in the current unit.
func (c *LabelCanvas) SetSize(w, h float64) error {
	if !(w > 0) || !(h > 0) {
		return fmt.Errorf("%w: size %vx%v", ErrInvalidCanvas, w, h)
	}
	c.Width, c.Height = w, h
	return nil
}

// SetUnit relabels the dimensions; values are not converted.
func (c *LabelCanvas) SetUnit(u units.Unit) error {
	n, ok := u.Normalized()
	if !ok {
		return fmt.Errorf("%w: unit %q", ErrInvalidCanvas, u)
	}
	c.Unit = n
	return nil
}

// UnmarshalJSON accepts any spelling of a known unit and stores the canonical one.
// Unknown units are kept so Validate can report them.
func (c *LabelCanvas) UnmarshalJSON(data []byte) error {
	type plain LabelCanvas
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if n, ok := p.Unit.Normalized(); ok {
		p.Unit = n
	}
	*c = LabelCanvas(p)
	return nil
}

// PixelSize converts the canvas dimensions to pixels.
func (c LabelCanvas) PixelSize(conv units.Converter) (w, h float64) {
	return conv.ToPixels(c.Width, c.Unit), conv.ToPixels(c.Height, c.Unit)
}

// Validate checks the canvas invariants.
func (c LabelCanvas) Validate() error {
	if !(c.Width > 0) || !(c.Height > 0) {
		return fmt.Errorf("%w: size %vx%v", ErrInvalidCanvas, c.Width, c.Height)
	}
	if !c.Unit.Valid() {
		return fmt.Errorf("%w: unit %q", ErrInvalidCanvas, c.Unit)
	}
	if c.Orientation != Landscape && c.Orientation != Portrait {
		return fmt.Errorf("%w: orientation %q", ErrInvalidCanvas, c.Orientation)
	}
	return nil
}

// LabelDocument is a composed label: canvas plus ordered elements.
type LabelDocument struct {
	Canvas   LabelCanvas `json:"canvas"`
	Elements ElementList `json:"elements"`
}
