/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"labelmaker/internal/domain"
	"labelmaker/internal/fields"
	applog "labelmaker/internal/log"
	"labelmaker/internal/settings"
)

// Ticket identifies one open request. Only the latest ticket may be applied.
type Ticket struct {
	Seq     uint64
	EntryID int64
	Token   string
}

// Completion is the result of reading an entry for a ticket.
type Completion struct {
	Ticket Ticket
	Entry  domain.CatalogEntry
	Err    error
}

// RequestOpen starts opening entry id. Any earlier request becomes stale.
func (s *Session) RequestOpen(id int64) Ticket {
	s.seq++
	s.latest = Ticket{Seq: s.seq, EntryID: id, Token: uuid.NewString()}
	return s.latest
}

// Load reads the entry for t. It touches no session state and may run on any goroutine.
func (s *Session) Load(ctx context.Context, t Ticket) Completion {
	if s.cat == nil {
		return Completion{Ticket: t, Err: ErrNoCatalog}
	}
	e, err := s.cat.Get(ctx, t.EntryID)
	return Completion{Ticket: t, Entry: e, Err: err}
}

// OpenAsync requests id and loads it in the background. The channel yields exactly one
// Completion, which the caller hands to Apply.
func (s *Session) OpenAsync(ctx context.Context, id int64) <-chan Completion {
	t := s.RequestOpen(id)
	ch := make(chan Completion, 1)
	go func() {
		defer close(ch)
		ch <- s.Load(ctx, t)
	}()
	return ch
}

// Apply installs a completed read as the working copy. Completions for anything but the
// latest request are discarded with ErrStaleRead; a repeated completion of the applied
// ticket is a no-op.
func (s *Session) Apply(c Completion) error {
	if c.Ticket != s.latest {
		return goerr.Wrap(ErrStaleRead, "completion discarded",
			goerr.V("entry_id", c.Ticket.EntryID), goerr.V("seq", c.Ticket.Seq), goerr.V("latest_seq", s.latest.Seq))
	}
	if c.Ticket == s.applied && s.entry != nil {
		return nil
	}
	if c.Err != nil {
		return goerr.Wrap(c.Err, "failed to open entry", goerr.V("entry_id", c.Ticket.EntryID))
	}
	res := settings.Merge(c.Entry, s.defaults)
	e := c.Entry.Clone()
	s.entry = &e
	s.mapper = fields.FromState(res.Fields, res.Rows)
	s.settings = res.Layout
	s.restored = res.FieldsRestored
	s.applied = c.Ticket
	ctx := applog.ContextWithEntry(s.Context(context.Background()), e.ID)
	s.log.InfoContext(ctx, "entry opened", slog.String("name", e.Name),
		slog.Int("fields", s.mapper.Len()), slog.Int("rows", len(res.Rows)), slog.Bool("layout_restored", res.FieldsRestored))
	return nil
}

// Open requests, loads and applies entry id synchronously.
func (s *Session) Open(ctx context.Context, id int64) error {
	return s.Apply(s.Load(ctx, s.RequestOpen(id)))
}

// CloseEntry drops the working copy. Reads still in flight become stale.
func (s *Session) CloseEntry() {
	s.seq++
	s.latest = Ticket{Seq: s.seq}
	s.applied = Ticket{}
	s.entry, s.mapper = nil, nil
	s.settings = domain.LayoutSettings{}
	s.restored = false
}

// ActiveEntry returns the open entry as it was read.
func (s *Session) ActiveEntry() (domain.CatalogEntry, bool) {
	if s.entry == nil {
		return domain.CatalogEntry{}, false
	}
	return s.entry.Clone(), true
}

// LayoutRestored reports whether saved field descriptors were adopted on open.
func (s *Session) LayoutRestored() bool { return s.restored }

func (s *Session) requireEntry() error {
	if s.entry == nil {
		return ErrNoEntry
	}
	return nil
}

func (s *Session) Fields() []domain.FieldDescriptor {
	if s.mapper == nil {
		return nil
	}
	return s.mapper.Fields()
}

func (s *Session) Rows() []domain.DataRow {
	if s.mapper == nil {
		return nil
	}
	return s.mapper.Rows()
}

// Layout returns the working preview settings.
func (s *Session) Layout() domain.LayoutSettings { return s.settings }

// RenameField relabels field i. A QR binding on the old label follows the rename.
func (s *Session) RenameField(i int, label string) (bool, error) {
	if err := s.requireEntry(); err != nil {
		return false, err
	}
	if i < 0 || i >= s.mapper.Len() {
		return false, nil
	}
	old := s.mapper.Fields()[i].Label
	ok := s.mapper.Rename(i, label)
	if ok && old == s.settings.QRField {
		s.settings.QRField = label
	}
	return ok, nil
}

// ToggleField flips the hidden flag of field i.
func (s *Session) ToggleField(i int) (bool, error) {
	if err := s.requireEntry(); err != nil {
		return false, err
	}
	return s.mapper.ToggleHidden(i), nil
}

// DeleteField removes field i and its column. A QR binding on it is cleared.
func (s *Session) DeleteField(i int) (bool, error) {
	if err := s.requireEntry(); err != nil {
		return false, err
	}
	if i < 0 || i >= s.mapper.Len() {
		return false, nil
	}
	label := s.mapper.Fields()[i].Label
	ok := s.mapper.Delete(i)
	if ok && label == s.settings.QRField && s.mapper.Index(label) < 0 {
		s.settings.QRField = ""
	}
	return ok, nil
}

// ReorderField moves field from to to, mirroring the move on every row.
func (s *Session) ReorderField(from, to int) (bool, error) {
	if err := s.requireEntry(); err != nil {
		return false, err
	}
	return s.mapper.Reorder(from, to), nil
}

// SetLayout replaces the working preview settings. The QR binding is kept as is.
func (s *Session) SetLayout(l domain.LayoutSettings) error {
	if err := s.requireEntry(); err != nil {
		return err
	}
	if !(l.CanvasWidth > 0) || !(l.CanvasHeight > 0) || !(l.FontSize > 0) || !(l.PreviewScale > 0) {
		return goerr.New("layout dimensions must be positive",
			goerr.V("width", l.CanvasWidth), goerr.V("height", l.CanvasHeight), goerr.V("font_size", l.FontSize))
	}
	wu, wok := l.WidthUnit.Normalized()
	hu, hok := l.HeightUnit.Normalized()
	if !wok || !hok {
		return goerr.New("invalid layout unit", goerr.V("width_unit", l.WidthUnit), goerr.V("height_unit", l.HeightUnit))
	}
	l.WidthUnit, l.HeightUnit = wu, hu
	if !l.QRPosition.Valid() {
		return goerr.New("invalid qr position", goerr.V("position", l.QRPosition))
	}
	l.QRField = s.settings.QRField
	s.settings = l
	return nil
}

// SetQRField binds the QR payload to the field labelled label. An empty label unbinds.
func (s *Session) SetQRField(label string, pos domain.QRPosition) error {
	if err := s.requireEntry(); err != nil {
		return err
	}
	if !pos.Valid() {
		return goerr.New("invalid qr position", goerr.V("position", pos))
	}
	if label != "" && s.mapper.Index(label) < 0 {
		return goerr.Wrap(ErrUnknownField, "cannot bind qr code", goerr.V("field", label))
	}
	s.settings.QRField, s.settings.QRPosition = label, pos
	return nil
}

// Cards renders the live preview of the working copy.
func (s *Session) Cards() (fields.Preview, error) {
	if err := s.requireEntry(); err != nil {
		return fields.Preview{NoData: true}, err
	}
	return s.mapper.Cards(s.settings, s.conv), nil
}

// CanCommit reports whether at least one field is visible.
func (s *Session) CanCommit() bool { return s.mapper != nil && s.mapper.CanCommit() }

// Commit hands the visible fields and their row values to the caller.
func (s *Session) Commit() (fields.Mapped, error) {
	if err := s.requireEntry(); err != nil {
		return fields.Mapped{}, err
	}
	return s.mapper.Commit()
}

// SaveLayout writes the working field descriptors and settings back to the catalog entry.
func (s *Session) SaveLayout(ctx context.Context) error {
	if err := s.requireEntry(); err != nil {
		return err
	}
	if s.cat == nil {
		return ErrNoCatalog
	}
	id := s.entry.ID
	snap := settings.Snapshot(s.mapper.Fields(), s.settings)
	if err := s.cat.SaveLayout(ctx, id, snap); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	s.entry.Layout = &snap
	s.log.InfoContext(applog.ContextWithEntry(s.Context(ctx), id), "layout saved", slog.Int("fields", len(snap.Fields)))
	return nil
}
