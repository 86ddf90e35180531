/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transform

import (
	"fmt"
	"math"

	"labelmaker/internal/domain"
	"labelmaker/internal/elements"
	"labelmaker/internal/vector"
)

// BeginResize starts dragging handle h of id from pointer p.
func (en *Engine) BeginResize(id string, h Handle, p vector.Pt) error {
	if h == Rotater {
		return en.BeginRotate(id, p)
	}
	g, err := en.begin(id, resizeGesture, h, p)
	if err != nil {
		return err
	}
	if !allows(g.orig, h) {
		return fmt.Errorf("%w: %s on %s", ErrHandleNotFound, h, g.orig.Kind())
	}
	en.g = g
	return nil
}

// ResizeTo updates the live scale for the pointer at p. The store is untouched
// until EndResize. Text narrower than the minimum keeps its last valid box;
// other kinds stop shrinking at the minimum dimension.
func (en *Engine) ResizeTo(p vector.Pt) (Live, error) {
	g := en.g
	if g == nil || g.kind != resizeGesture {
		return Live{}, ErrNoGesture
	}
	d := vector.Rotate(-vector.Deg2Rad(g.box.Rotation)).Apply(vector.Pt{X: p.X - g.start.X, Y: p.Y - g.start.Y})
	ex, ey := edges(g.handle)
	w, h := math.Max(g.box.W, 1), math.Max(g.box.H, 1)
	newW := w + float64(ex)*d.X
	newH := h + float64(ey)*d.Y

	var sx, sy float64
	switch v := g.orig.(type) {
	case *domain.Text:
		// boxes narrower than the bound scale from the bound
		base := math.Max(w, domain.MinTextWidth)
		newW = base + float64(ex)*d.X
		if newW < domain.MinTextWidth {
			return g.live, nil
		}
		s := math.Max(newW/base, domain.MinFontSize/v.FontSize)
		sx, sy = s, s
	case *domain.QRCode:
		s := uniformScale(ex, ey, newW/w, newH/h)
		s = math.Max(s, domain.MinDimension/w)
		sx, sy = s, s
	default:
		sx = math.Max(newW, domain.MinDimension) / w
		sy = math.Max(newH, domain.MinDimension) / h
	}

	// handles on the min side pull the origin along
	var o vector.Pt
	if ex < 0 {
		o.X = w - w*sx
	}
	if ey < 0 {
		o.Y = h - h*sy
	}
	at := g.box.Transform().Apply(o)
	g.live.X, g.live.Y = at.X, at.Y
	g.live.ScaleX, g.live.ScaleY = sx, sy
	return g.live, nil
}

// uniformScale picks one factor for both axes: side handles follow their own
// axis, corners follow the axis that moved more.
func uniformScale(ex, ey int, sx, sy float64) float64 {
	switch {
	case ey == 0:
		return sx
	case ex == 0:
		return sy
	case math.Abs(sx-1) >= math.Abs(sy-1):
		return sx
	default:
		return sy
	}
}

// EndResize bakes the live scale into the element.
func (en *Engine) EndResize() (domain.Element, error) {
	g := en.g
	if g == nil || g.kind != resizeGesture {
		return nil, ErrNoGesture
	}
	en.g = nil
	l := g.live
	return en.CommitTransform(l.ID, Final{X: l.X, Y: l.Y, ScaleX: l.ScaleX, ScaleY: l.ScaleY, Rotation: l.Rotation})
}

// BeginRotate starts rotating id around its center.
func (en *Engine) BeginRotate(id string, p vector.Pt) error {
	g, err := en.begin(id, rotateGesture, Rotater, p)
	if err != nil {
		return err
	}
	if !domain.CanRotate(g.orig.Kind()) {
		return fmt.Errorf("%w: %s on %s", ErrHandleNotFound, Rotater, g.orig.Kind())
	}
	g.pivot = g.box.Transform().Apply(vector.Pt{X: g.box.W / 2, Y: g.box.H / 2})
	g.angle = math.Atan2(p.Y-g.pivot.Y, p.X-g.pivot.X)
	en.g = g
	return nil
}

// RotateTo updates the live rotation for the pointer at p.
func (en *Engine) RotateTo(p vector.Pt) (Live, error) {
	g := en.g
	if g == nil || g.kind != rotateGesture {
		return Live{}, ErrNoGesture
	}
	delta := math.Atan2(p.Y-g.pivot.Y, p.X-g.pivot.X) - g.angle
	rot := normalizeDeg(g.box.Rotation + delta*180/math.Pi)
	half := vector.Rotate(vector.Deg2Rad(rot)).Apply(vector.Pt{X: g.box.W / 2, Y: g.box.H / 2})
	g.live.X, g.live.Y = g.pivot.X-half.X, g.pivot.Y-half.Y
	g.live.Rotation = rot
	return g.live, nil
}

// EndRotate commits the live rotation.
func (en *Engine) EndRotate() (domain.Element, error) {
	g := en.g
	if g == nil || g.kind != rotateGesture {
		return nil, ErrNoGesture
	}
	en.g = nil
	l := g.live
	return en.CommitTransform(l.ID, Final{X: l.X, Y: l.Y, ScaleX: 1, ScaleY: 1, Rotation: l.Rotation})
}

func normalizeDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return vector.FloatRound(d, 6)
}

// CommitTransform applies a finished transform reported by the renderer. The
// scale is folded into absolute geometry with per-kind floors and reset to 1:
// text scales fontSize by ScaleY, rect and image scale width and height, a QR
// code scales its size by ScaleX. Rotation is kept only for kinds that rotate.
func (en *Engine) CommitTransform(id string, f Final) (domain.Element, error) {
	e, err := en.store.Get(id)
	if err != nil {
		return nil, err
	}
	if e.Common().Locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, id)
	}
	sx, sy := math.Abs(f.ScaleX), math.Abs(f.ScaleY)
	p := elements.Patch{X: elements.F(f.X), Y: elements.F(f.Y)}
	switch v := e.(type) {
	case *domain.Text:
		p.FontSize = elements.F(math.Max(domain.MinFontSize, v.FontSize*sy))
	case *domain.Rect:
		p.Width = elements.F(math.Max(domain.MinDimension, v.Width*sx))
		p.Height = elements.F(math.Max(domain.MinDimension, v.Height*sy))
	case *domain.ImagePlaceholder:
		p.Width = elements.F(math.Max(domain.MinDimension, v.Width*sx))
		p.Height = elements.F(math.Max(domain.MinDimension, v.Height*sy))
	case *domain.QRCode:
		p.Size = elements.F(math.Max(domain.MinDimension, v.Size*sx))
	}
	if domain.CanRotate(e.Kind()) {
		p.Rotation = elements.F(normalizeDeg(f.Rotation))
	}
	if err := en.store.Update(id, p); err != nil {
		return nil, err
	}
	return en.store.Get(id)
}
