/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package elements holds the ordered element collection of one label.
// Index 0 is the bottom of the z-order. The store keeps no selection state.
package elements

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"labelmaker/internal/domain"
)

var (
	ErrNotFound     = errors.New("element not found")
	ErrDuplicateID  = errors.New("duplicate element id")
	ErrInvalidValue = errors.New("invalid element value")
)

// Flag is a boolean element property toggled from the layer list.
type Flag string

const (
	FlagHidden Flag = "hidden"
	FlagLocked Flag = "locked"
)

var idPrefix = map[domain.Kind]string{
	domain.KindText:  "text",
	domain.KindRect:  "rect",
	domain.KindQR:    "qr",
	domain.KindImage: "img",
}

// Store is not safe for concurrent use; it belongs to a single editing session.
type Store struct {
	items []domain.Element
	// seq is shared by all kinds and only ever grows.
	seq  int
	used map[string]struct{}
}

// New builds a store seeded with clones of initial.
func New(initial ...domain.Element) (*Store, error) {
	s := &Store{used: map[string]struct{}{}}
	for _, e := range initial {
		if err := s.Insert(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Starter returns the sample label shown in a fresh editor.
func Starter() domain.ElementList {
	return domain.ElementList{
		&domain.Text{Base: domain.Base{ID: "text-1", X: 120, Y: 80}, Content: "Drag me!", FontSize: 28, FontWeight: domain.WeightBold, Color: "#232946"},
		&domain.Rect{Base: domain.Base{ID: "rect-1", X: 60, Y: 30}, Width: 80, Height: 40, FillColor: "#ffb800", StrokeColor: "#232946", StrokeWidth: 2},
		&domain.QRCode{Base: domain.Base{ID: "qr-1", X: 300, Y: 120}, Size: 60, Payload: "https://example.com"},
		&domain.ImagePlaceholder{Base: domain.Base{ID: "img-1", X: 250, Y: 40}, Width: 60, Height: 60},
	}
}

func newElement(kind domain.Kind, id string) (domain.Element, error) {
	switch kind {
	case domain.KindText:
		return &domain.Text{Base: domain.Base{ID: id, X: 100, Y: 100}, Content: "New Text", FontSize: 24, FontWeight: domain.WeightNormal, Color: "#232946"}, nil
	case domain.KindRect:
		return &domain.Rect{Base: domain.Base{ID: id, X: 120, Y: 60}, Width: 80, Height: 40, FillColor: "#ffb800", StrokeColor: "#232946", StrokeWidth: 2}, nil
	case domain.KindImage:
		return &domain.ImagePlaceholder{Base: domain.Base{ID: id, X: 180, Y: 80}, Width: 60, Height: 60}, nil
	case domain.KindQR:
		return &domain.QRCode{Base: domain.Base{ID: id, X: 200, Y: 120}, Size: 60, Payload: "https://example.com"}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
}

func (s *Store) nextID(kind domain.Kind) string {
	for {
		s.seq++
		id := idPrefix[kind] + "-" + strconv.Itoa(s.seq)
		if _, taken := s.used[id]; !taken {
			return id
		}
	}
}

// noteID keeps the counter ahead of ids loaded from documents.
func (s *Store) noteID(id string) {
	s.used[id] = struct{}{}
	if i := strings.LastIndexByte(id, '-'); i >= 0 {
		if n, err := strconv.Atoi(id[i+1:]); err == nil && n > s.seq {
			s.seq = n
		}
	}
}

// Add appends a new element of kind with type-specific defaults and returns its id.
func (s *Store) Add(kind domain.Kind) (string, error) {
	if _, ok := idPrefix[kind]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	id := s.nextID(kind)
	e, err := newElement(kind, id)
	if err != nil {
		return "", err
	}
	s.items = append(s.items, e)
	s.used[id] = struct{}{}
	return id, nil
}

// Insert appends a clone of e, keeping its id. Ids are unique for the store's
// lifetime, so the id of a removed element is refused as well.
func (s *Store) Insert(e domain.Element) error {
	if err := e.Validate(); err != nil {
		return err
	}
	id := e.Common().ID
	if _, taken := s.used[id]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	s.items = append(s.items, e.Clone())
	s.noteID(id)
	return nil
}

func (s *Store) index(id string) int {
	for i, e := range s.items {
		if e.Common().ID == id {
			return i
		}
	}
	return -1
}

// Get returns a clone of the element with id.
func (s *Store) Get(id string) (domain.Element, error) {
	i := s.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.items[i].Clone(), nil
}

// Len returns the number of elements.
func (s *Store) Len() int { return len(s.items) }

// List returns clones in z-order, bottom first.
func (s *Store) List() domain.ElementList {
	return domain.ElementList(s.items).Clone()
}

// Replace swaps the whole collection, used to restore an undo snapshot.
// Ids stay reserved so the counter never hands them out again.
func (s *Store) Replace(all domain.ElementList) error {
	seen := map[string]struct{}{}
	for _, e := range all {
		if err := e.Validate(); err != nil {
			return err
		}
		id := e.Common().ID
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}
	s.items = all.Clone()
	for id := range seen {
		s.noteID(id)
	}
	return nil
}

// Remove deletes id. clearSelection is true when the removed element was selected.
func (s *Store) Remove(id, selected string) (clearSelection bool, err error) {
	i := s.index(id)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return id == selected, nil
}

// Reorder moves the element at from to to. Out-of-range indices are a no-op.
func (s *Store) Reorder(from, to int) bool {
	n := len(s.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	e := s.items[from]
	s.items = append(s.items[:from], s.items[from+1:]...)
	s.items = append(s.items[:to], append([]domain.Element{e}, s.items[to:]...)...)
	return true
}

// SetFlag sets hidden or locked on id.
func (s *Store) SetFlag(id string, f Flag, v bool) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	b := s.items[i].Common()
	switch f {
	case FlagHidden:
		b.Hidden = v
	case FlagLocked:
		b.Locked = v
	default:
		return fmt.Errorf("%w: flag %q", ErrInvalidValue, f)
	}
	return nil
}

// Toggle flips a flag and returns the new value.
func (s *Store) Toggle(id string, f Flag) (bool, error) {
	e, err := s.Get(id)
	if err != nil {
		return false, err
	}
	cur := e.Common().Hidden
	if f == FlagLocked {
		cur = e.Common().Locked
	}
	if err := s.SetFlag(id, f, !cur); err != nil {
		return false, err
	}
	return !cur, nil
}
