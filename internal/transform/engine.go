/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package transform turns pointer gestures into element geometry changes:
// hit testing, dragging, handle resizes and rotation, with per-kind floors.
// A resize is carried as a live scale pair and baked into absolute geometry on
// release, so no residual scale survives a gesture.
package transform

import (
	"errors"
	"fmt"
	"math"

	"labelmaker/internal/domain"
	"labelmaker/internal/elements"
	"labelmaker/internal/textlayout"
	"labelmaker/internal/vector"
)

var (
	ErrLocked         = errors.New("element is locked")
	ErrNoGesture      = errors.New("no gesture in progress")
	ErrGestureActive  = errors.New("another gesture is in progress")
	ErrHandleNotFound = errors.New("handle not available for element")
)

type gestureKind int

const (
	dragGesture gestureKind = iota + 1
	resizeGesture
	rotateGesture
)

type gesture struct {
	kind   gestureKind
	handle Handle
	start  vector.Pt
	orig   domain.Element
	box    vector.Box
	live   Live
	// rotation pivot and pointer angle at start, rotate gestures only
	pivot vector.Pt
	angle float64
}

// Live is the in-progress state of a gesture for the renderer to draw.
type Live struct {
	ID       string
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	Guides   []vector.GuideLine
}

// Final is the geometry reported when a transform gesture ends.
type Final struct {
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

// Options tune the engine. Snap enables smart guides while dragging.
type Options struct {
	Snap    bool
	SnapOpt vector.SnapOptions
}

// Engine is single-threaded and owned by an editing session.
type Engine struct {
	store   *elements.Store
	measure textlayout.Measurer
	opts    Options
	canvas  vector.Rect
	g       *gesture
}

// New builds an engine over store. A nil measurer uses the basic font metrics.
func New(store *elements.Store, m textlayout.Measurer, opts Options) *Engine {
	if m == nil {
		m = textlayout.BasicMeasurer{}
	}
	if opts.SnapOpt == (vector.SnapOptions{}) {
		opts.SnapOpt = vector.SnapOptions{Threshold: 6, SnapToEdges: true, SnapToCenters: true}
	}
	return &Engine{store: store, measure: m, opts: opts}
}

// SetCanvas sets the canvas bounds in pixels, used as a snapping anchor.
func (en *Engine) SetCanvas(w, h float64) { en.canvas = vector.R(0, 0, w, h) }

// Active reports whether a gesture is in progress.
func (en *Engine) Active() bool { return en.g != nil }

// Box returns the current box of id.
func (en *Engine) Box(id string) (vector.Box, error) {
	e, err := en.store.Get(id)
	if err != nil {
		return vector.Box{}, err
	}
	return textlayout.ElementBox(e, en.measure), nil
}

// HitTest returns the top-most visible element under p.
func (en *Engine) HitTest(p vector.Pt) (string, bool) {
	l := en.store.List()
	for i := len(l) - 1; i >= 0; i-- {
		e := l[i]
		if e.Common().Hidden {
			continue
		}
		if textlayout.ElementBox(e, en.measure).Hit(p) {
			return e.Common().ID, true
		}
	}
	return "", false
}

// Handles returns the handles of id with their canvas positions.
func (en *Engine) Handles(id string) ([]HandleSpot, error) {
	e, err := en.store.Get(id)
	if err != nil {
		return nil, err
	}
	return spots(e, textlayout.ElementBox(e, en.measure)), nil
}

// HitHandle returns the handle of id within tol pixels of p.
func (en *Engine) HitHandle(id string, p vector.Pt, tol float64) (Handle, bool) {
	hs, err := en.Handles(id)
	if err != nil {
		return "", false
	}
	for _, h := range hs {
		if math.Abs(h.At.X-p.X) <= tol && math.Abs(h.At.Y-p.Y) <= tol {
			return h.Handle, true
		}
	}
	return "", false
}

func (en *Engine) begin(id string, kind gestureKind, h Handle, p vector.Pt) (*gesture, error) {
	if en.g != nil {
		return nil, ErrGestureActive
	}
	e, err := en.store.Get(id)
	if err != nil {
		return nil, err
	}
	if e.Common().Locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, id)
	}
	box := textlayout.ElementBox(e, en.measure)
	g := &gesture{kind: kind, handle: h, start: p, orig: e, box: box,
		live: Live{ID: id, X: box.X, Y: box.Y, ScaleX: 1, ScaleY: 1, Rotation: e.Common().Rotation}}
	return g, nil
}

// BeginDrag starts moving id from pointer p.
func (en *Engine) BeginDrag(id string, p vector.Pt) error {
	g, err := en.begin(id, dragGesture, "", p)
	if err != nil {
		return err
	}
	en.g = g
	return nil
}

// DragTo moves the dragged element so it follows the pointer. Position updates
// are applied to the store directly.
func (en *Engine) DragTo(p vector.Pt) (Live, error) {
	g := en.g
	if g == nil || g.kind != dragGesture {
		return Live{}, ErrNoGesture
	}
	x := g.box.X + p.X - g.start.X
	y := g.box.Y + p.Y - g.start.Y
	var guides []vector.GuideLine
	if en.opts.Snap {
		x, y, guides = en.snap(g, x, y)
	}
	id := g.orig.Common().ID
	if err := en.store.Update(id, elements.Patch{X: elements.F(x), Y: elements.F(y)}); err != nil {
		return Live{}, err
	}
	e, _ := en.store.Get(id)
	g.live.X, g.live.Y = e.Common().X, e.Common().Y
	g.live.Guides = guides
	return g.live, nil
}

func (en *Engine) snap(g *gesture, x, y float64) (float64, float64, []vector.GuideLine) {
	moved := g.box
	moved.X, moved.Y = x, y
	bounds := moved.Bounds()
	var anchors []vector.Anchor
	if !en.canvas.Empty() {
		anchors = append(anchors, vector.Anchor{Rect: en.canvas, Weight: 2})
	}
	self := g.orig.Common().ID
	for _, e := range en.store.List() {
		if e.Common().ID == self || e.Common().Hidden {
			continue
		}
		anchors = append(anchors, vector.Anchor{Rect: textlayout.ElementBox(e, en.measure).Bounds(), Weight: 1})
	}
	snapped, guides := vector.ComputeSmartGuides(bounds, anchors, en.opts.SnapOpt)
	return x + snapped.X - bounds.X, y + snapped.Y - bounds.Y, guides
}

// EndDrag finishes the drag and returns the committed element.
func (en *Engine) EndDrag() (domain.Element, error) {
	g := en.g
	if g == nil || g.kind != dragGesture {
		return nil, ErrNoGesture
	}
	en.g = nil
	return en.store.Get(g.orig.Common().ID)
}

// CommitDrag applies a finished drag reported by the renderer.
func (en *Engine) CommitDrag(id string, x, y float64) (domain.Element, error) {
	e, err := en.store.Get(id)
	if err != nil {
		return nil, err
	}
	if e.Common().Locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, id)
	}
	if err := en.store.Update(id, elements.Patch{X: elements.F(x), Y: elements.F(y)}); err != nil {
		return nil, err
	}
	return en.store.Get(id)
}

// Cancel aborts the current gesture and restores the pre-gesture geometry.
func (en *Engine) Cancel() error {
	g := en.g
	if g == nil {
		return ErrNoGesture
	}
	en.g = nil
	b := g.orig.Common()
	return en.store.Update(b.ID, elements.Patch{X: elements.F(b.X), Y: elements.F(b.Y)})
}
