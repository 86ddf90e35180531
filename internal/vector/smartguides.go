/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Smart guides and snapping for dragging label elements against the canvas
// edges and the other visible elements.

import "math"

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the maximum distance in canvas pixels at which snapping occurs.
	Threshold float64
	// Snap to edges (left, right, top, bottom)
	SnapToEdges bool
	// Snap to centers (cx, cy)
	SnapToCenters bool
}

// Anchor is a static reference rect: the canvas bounds or another element's bounds.
// Higher Weight is preferred when distances tie.
type Anchor struct {
	Rect   Rect
	Weight float64
}

// GuideLine describes a visual guide generated during a snap alignment.
// Orientation is "vertical" or "horizontal".
// Kind indicates which features aligned: "edge" or "center".
// From and To denote the guide extents for rendering.
// Position is the x (vertical) or y (horizontal) coordinate of the guide.
// For deterministic behavior, values are rounded to 3 decimal places.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

// ComputeSmartGuides snaps a moving rectangle to the nearest anchor feature within the threshold.
// X and Y are resolved independently; each axis that snapped contributes one guide line.
func ComputeSmartGuides(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	x := axisSnap{threshold: opts.Threshold}
	y := axisSnap{threshold: opts.Threshold}
	mx, my := spans(moving.X, moving.W), spans(moving.Y, moving.H)

	for _, a := range anchors {
		ax, ay := spans(a.Rect.X, a.Rect.W), spans(a.Rect.Y, a.Rect.H)
		for _, p := range pairings(opts) {
			g := p.kind
			x.offer(mx[p.moving]-ax[p.anchor], a.Weight, func() GuideLine { return vertical(ax[p.anchor], moving, a.Rect, g) })
			y.offer(my[p.moving]-ay[p.anchor], a.Weight, func() GuideLine { return horizontal(ay[p.anchor], moving, a.Rect, g) })
		}
	}

	snapped := moving
	var guides []GuideLine
	if x.ok {
		snapped.X = FloatRound(moving.X-x.delta, 3)
		guides = append(guides, x.guide)
	}
	if y.ok {
		snapped.Y = FloatRound(moving.Y-y.delta, 3)
		guides = append(guides, y.guide)
	}
	return snapped, guides
}

// Span feature indexes: low edge, center, high edge.
const (
	lo = iota
	mid
	hi
)

func spans(start, size float64) [3]float64 {
	return [3]float64{start, start + size/2, start + size}
}

type pairing struct {
	moving, anchor int
	kind           string
}

// pairings lists the feature pairs that may align. Edges align flush and abutting.
func pairings(opts SnapOptions) []pairing {
	var ps []pairing
	if opts.SnapToEdges {
		ps = append(ps,
			pairing{lo, lo, "edge"},
			pairing{hi, hi, "edge"},
			pairing{lo, hi, "edge"},
			pairing{hi, lo, "edge"},
		)
	}
	if opts.SnapToCenters {
		ps = append(ps, pairing{mid, mid, "center"})
	}
	return ps
}

// axisSnap keeps the best candidate seen on one axis.
type axisSnap struct {
	threshold float64
	ok        bool
	score     float64
	delta     float64
	guide     GuideLine
}

func (a *axisSnap) offer(delta, weight float64, guide func() GuideLine) {
	dist := math.Abs(delta)
	if dist > a.threshold {
		return
	}
	score := dist / math.Max(1, weight)
	if a.ok && score >= a.score {
		return
	}
	a.ok, a.score, a.delta, a.guide = true, score, delta, guide()
}

func vertical(x float64, a, b Rect, kind string) GuideLine {
	x = FloatRound(x, 3)
	return GuideLine{
		Orientation: "vertical",
		Kind:        kind,
		Position:    x,
		From:        Pt{x, math.Min(a.Y, b.Y)},
		To:          Pt{x, math.Max(a.Y+a.H, b.Y+b.H)},
	}
}

func horizontal(y float64, a, b Rect, kind string) GuideLine {
	y = FloatRound(y, 3)
	return GuideLine{
		Orientation: "horizontal",
		Kind:        kind,
		Position:    y,
		From:        Pt{math.Min(a.X, b.X), y},
		To:          Pt{math.Max(a.X+a.W, b.X+b.W), y},
	}
}
