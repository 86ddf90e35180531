/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"fmt"
	"log/slog"

	"labelmaker/internal/domain"
	"labelmaker/internal/elements"
	"labelmaker/internal/layout"
	"labelmaker/internal/transform"
	"labelmaker/internal/units"
	"labelmaker/internal/vector"
)

// Elements returns the element list in z-order, bottom first.
func (s *Session) Elements() domain.ElementList { return s.els.List() }

// Element returns a copy of id.
func (s *Session) Element(id string) (domain.Element, error) { return s.els.Get(id) }

func (s *Session) Canvas() domain.LabelCanvas { return s.canvas }

// Handles lists the transform handles of id for the renderer.
func (s *Session) Handles(id string) ([]transform.HandleSpot, error) { return s.engine.Handles(id) }

// AddElement appends an element of kind with its defaults. Selection is unchanged.
func (s *Session) AddElement(kind domain.Kind) (string, error) {
	var id string
	err := s.mutate(func() error {
		var err error
		id, err = s.els.Add(kind)
		return err
	})
	if err != nil {
		return "", err
	}
	s.log.Debug("element added", slog.String("session", s.id), slog.String("id", id))
	return id, nil
}

// Selected returns the selected element id, if any.
func (s *Session) Selected() (string, bool) { return s.selected, s.selected != "" }

// Select makes id the single selected element.
func (s *Session) Select(id string) error {
	if _, err := s.els.Get(id); err != nil {
		return fmt.Errorf("%w: %s", ErrNotSelected, id)
	}
	s.selected = id
	return nil
}

func (s *Session) ClearSelection() { s.selected = "" }

// PointerDown selects the top-most visible element under p, or clears the selection
// when p hits empty canvas.
func (s *Session) PointerDown(p vector.Pt) (string, bool) {
	id, ok := s.engine.HitTest(p)
	if !ok {
		s.selected = ""
		return "", false
	}
	s.selected = id
	return id, true
}

// BeginDrag starts an interactive move of id and selects it.
func (s *Session) BeginDrag(id string, p vector.Pt) error {
	before := s.snapshot()
	if err := s.engine.BeginDrag(id, p); err != nil {
		return err
	}
	s.pending, s.selected = before, id
	return nil
}

func (s *Session) DragTo(p vector.Pt) (transform.Live, error) { return s.engine.DragTo(p) }

// EndDrag finishes an interactive move.
func (s *Session) EndDrag() (domain.Element, error) {
	e, err := s.engine.EndDrag()
	if err != nil {
		return nil, err
	}
	s.finishGesture()
	return e, nil
}

// BeginResize starts dragging handle h of id. The rotater handle starts a rotation.
func (s *Session) BeginResize(id string, h transform.Handle, p vector.Pt) error {
	before := s.snapshot()
	if err := s.engine.BeginResize(id, h, p); err != nil {
		return err
	}
	s.pending, s.selected = before, id
	return nil
}

func (s *Session) ResizeTo(p vector.Pt) (transform.Live, error) { return s.engine.ResizeTo(p) }

func (s *Session) EndResize() (domain.Element, error) {
	e, err := s.engine.EndResize()
	s.finishGesture()
	return e, err
}

func (s *Session) BeginRotate(id string, p vector.Pt) error {
	before := s.snapshot()
	if err := s.engine.BeginRotate(id, p); err != nil {
		return err
	}
	s.pending, s.selected = before, id
	return nil
}

func (s *Session) RotateTo(p vector.Pt) (transform.Live, error) { return s.engine.RotateTo(p) }

func (s *Session) EndRotate() (domain.Element, error) {
	e, err := s.engine.EndRotate()
	s.finishGesture()
	return e, err
}

// CancelGesture aborts the gesture in progress and restores the element.
func (s *Session) CancelGesture() error {
	s.pending = nil
	return s.engine.Cancel()
}

func (s *Session) finishGesture() {
	if s.pending != nil {
		s.commitHistory(s.pending)
		s.pending = nil
	}
}

// DragEnd applies a drag finished by the renderer. Locked elements refuse it.
func (s *Session) DragEnd(id string, x, y float64) (domain.Element, error) {
	var e domain.Element
	err := s.mutate(func() error {
		var err error
		e, err = s.engine.CommitDrag(id, x, y)
		return err
	})
	return e, err
}

// TransformEnd applies a resize or rotation finished by the renderer. The scale is baked
// into the element geometry.
func (s *Session) TransformEnd(id string, f transform.Final) (domain.Element, error) {
	var e domain.Element
	err := s.mutate(func() error {
		var err error
		e, err = s.engine.CommitTransform(id, f)
		return err
	})
	return e, err
}

// EditElement applies a property edit. Edits succeed on locked elements.
func (s *Session) EditElement(id string, p elements.Patch) error {
	return s.mutate(func() error { return s.els.Update(id, p) })
}

// DeleteElement removes id and clears the selection when it pointed at id.
func (s *Session) DeleteElement(id string) error {
	return s.mutate(func() error {
		drop, err := s.els.Remove(id, s.selected)
		if err != nil {
			return err
		}
		if drop {
			s.selected = ""
		}
		return nil
	})
}

// MoveLayer moves the element at index from to index to. Out-of-range indices are a no-op.
func (s *Session) MoveLayer(from, to int) bool {
	ok := false
	_ = s.mutate(func() error {
		ok = s.els.Reorder(from, to)
		return nil
	})
	return ok
}

func (s *Session) ToggleHidden(id string) (bool, error) { return s.toggle(id, elements.FlagHidden) }
func (s *Session) ToggleLocked(id string) (bool, error) { return s.toggle(id, elements.FlagLocked) }

func (s *Session) toggle(id string, f elements.Flag) (bool, error) {
	var v bool
	err := s.mutate(func() error {
		var err error
		v, err = s.els.Toggle(id, f)
		return err
	})
	return v, err
}

// AutoAlign stacks visible elements into the two-column layout. Locked elements move too.
func (s *Session) AutoAlign() ([]layout.Placement, error) {
	w, _ := s.canvas.PixelSize(s.conv)
	var out []layout.Placement
	err := s.mutate(func() error {
		var err error
		out, err = s.planner.Apply(s.els, w)
		return err
	})
	return out, err
}

func (s *Session) SetCanvasSize(w, h float64) error {
	if err := s.canvas.SetSize(w, h); err != nil {
		return err
	}
	s.syncCanvas()
	return nil
}

// SetOrientation swaps width and height when the orientation changes.
func (s *Session) SetOrientation(o domain.Orientation) error {
	if err := s.canvas.SetOrientation(o); err != nil {
		return err
	}
	s.syncCanvas()
	return nil
}

func (s *Session) SetUnit(u units.Unit) error {
	if err := s.canvas.SetUnit(u); err != nil {
		return err
	}
	s.syncCanvas()
	return nil
}
