/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package units converts label measurements between physical units and canvas pixels.
package units

import (
	"fmt"
	"strings"
)

// Unit is a measurement unit for canvas and preview dimensions.
type Unit string

const (
	Pixel      Unit = "px"
	Inch       Unit = "in"
	Centimeter Unit = "cm"
	Millimeter Unit = "mm"
	// Ratio expresses a value as a fraction of a reference length.
	Ratio Unit = "ratio"
)

const (
	DefaultDPI       = 96.0
	DefaultReference = 100.0
)

// All lists the supported units in display order.
var All = []Unit{Pixel, Inch, Centimeter, Millimeter, Ratio}

// ParseUnit normalizes s into a Unit. Unknown input is an error and callers fall back to Pixel.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	switch u {
	case Pixel, Inch, Centimeter, Millimeter, Ratio:
		return u, nil
	case "":
		return Pixel, nil
	}
	return Pixel, fmt.Errorf("unknown unit %q", s)
}

// Valid reports whether u is exactly one of the supported units. Use Normalized for
// values read from files or user input.
func (u Unit) Valid() bool {
	switch u {
	case Pixel, Inch, Centimeter, Millimeter, Ratio:
		return true
	}
	return false
}

// Normalized returns the canonical spelling of u ("IN" becomes "in"). ok is false for
// empty or unknown units.
func (u Unit) Normalized() (Unit, bool) {
	if u == "" {
		return "", false
	}
	n, err := ParseUnit(string(u))
	return n, err == nil
}

// Converter maps values to pixels. DPI drives the physical units; Reference is the
// pixel length that a ratio of 1 corresponds to.
type Converter struct {
	DPI       float64
	Reference float64
}

// Default returns a converter at 96 DPI with a 100 px ratio reference.
func Default() Converter { return Converter{DPI: DefaultDPI, Reference: DefaultReference} }

func (c Converter) factor(u Unit) float64 {
	dpi := c.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	switch u {
	case Inch:
		return dpi
	case Centimeter:
		return dpi / 2.54
	case Millimeter:
		return dpi / 25.4
	case Ratio:
		if c.Reference <= 0 {
			return DefaultReference
		}
		return c.Reference
	default:
		return 1
	}
}

// ToPixels converts v expressed in u into pixels.
func (c Converter) ToPixels(v float64, u Unit) float64 { return v * c.factor(u) }

// FromPixels converts px into u.
func (c Converter) FromPixels(px float64, u Unit) float64 { return px / c.factor(u) }

// Convert re-expresses v from one unit in another.
func (c Converter) Convert(v float64, from, to Unit) float64 {
	if from == to {
		return v
	}
	return c.FromPixels(c.ToPixels(v, from), to)
}
