/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transform

import (
	"labelmaker/internal/domain"
	"labelmaker/internal/vector"
)

// Handle identifies a transform handle on the selected element.
type Handle string

const (
	TopLeft      Handle = "top-left"
	TopCenter    Handle = "top-center"
	TopRight     Handle = "top-right"
	MiddleLeft   Handle = "middle-left"
	MiddleRight  Handle = "middle-right"
	BottomLeft   Handle = "bottom-left"
	BottomCenter Handle = "bottom-center"
	BottomRight  Handle = "bottom-right"
	Rotater      Handle = "rotater"
)

// rotaterOffset is the distance of the rotation handle above the box.
const rotaterOffset = 20.0

var boxHandles = []Handle{TopLeft, TopCenter, TopRight, MiddleLeft, MiddleRight, BottomLeft, BottomCenter, BottomRight}

// HandlesFor lists the handles an element exposes. Text resizes horizontally only;
// locked elements expose none.
func HandlesFor(e domain.Element) []Handle {
	if e.Common().Locked {
		return nil
	}
	if e.Kind() == domain.KindText {
		return []Handle{MiddleLeft, MiddleRight}
	}
	hs := append([]Handle(nil), boxHandles...)
	if domain.CanRotate(e.Kind()) {
		hs = append(hs, Rotater)
	}
	return hs
}

func allows(e domain.Element, h Handle) bool {
	for _, x := range HandlesFor(e) {
		if x == h {
			return true
		}
	}
	return false
}

// edges reports which sides of the box a handle moves: -1 min side, +1 max side, 0 none.
func edges(h Handle) (ex, ey int) {
	switch h {
	case TopLeft:
		return -1, -1
	case TopCenter:
		return 0, -1
	case TopRight:
		return 1, -1
	case MiddleLeft:
		return -1, 0
	case MiddleRight:
		return 1, 0
	case BottomLeft:
		return -1, 1
	case BottomCenter:
		return 0, 1
	case BottomRight:
		return 1, 1
	}
	return 0, 0
}

// localPoint returns the handle's position in box-local coordinates.
func localPoint(b vector.Box, h Handle) vector.Pt {
	if h == Rotater {
		return vector.Pt{X: b.W / 2, Y: -rotaterOffset}
	}
	ex, ey := edges(h)
	return vector.Pt{X: b.W / 2 * float64(ex+1), Y: b.H / 2 * float64(ey+1)}
}

// HandleSpot is a handle and its canvas position.
type HandleSpot struct {
	Handle Handle
	At     vector.Pt
}

func spots(e domain.Element, b vector.Box) []HandleSpot {
	m := b.Transform()
	var out []HandleSpot
	for _, h := range HandlesFor(e) {
		out = append(out, HandleSpot{Handle: h, At: m.Apply(localPoint(b, h))})
	}
	return out
}
