/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session is one editing session: the label composer (elements, selection, canvas,
// gestures, history) and the data binding of one catalog entry (field working copy, preview
// settings, stale-read guard).
//
// A Session is single-writer. Only Load may run on another goroutine; its result is handed
// back through Apply on the owning goroutine.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"labelmaker/internal/catalog"
	"labelmaker/internal/config"
	"labelmaker/internal/domain"
	"labelmaker/internal/elements"
	"labelmaker/internal/fields"
	"labelmaker/internal/layout"
	applog "labelmaker/internal/log"
	"labelmaker/internal/textlayout"
	"labelmaker/internal/transform"
	"labelmaker/internal/undo"
	"labelmaker/internal/units"
	"labelmaker/internal/vector"
)

var (
	ErrStaleRead    = errors.New("stale read discarded")
	ErrNoEntry      = errors.New("no catalog entry open")
	ErrNoCatalog    = errors.New("session has no catalog")
	ErrUnknownField = errors.New("unknown field")
	ErrNotSelected  = errors.New("element does not exist")
)

// historyScope is the undo scope holding element-list snapshots.
const historyScope = "elements"

// Options configure a Session. Zero values fall back to DefaultOptions.
type Options struct {
	Canvas        domain.LabelCanvas
	Layout        domain.LayoutSettings
	Converter     units.Converter
	Measurer      textlayout.Measurer
	Snap          bool
	SnapThreshold float64
	Undo          undo.Config
	// Elements seeds the composer; nil means the starter label.
	Elements domain.ElementList
	Clock    func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Canvas:        domain.DefaultCanvas(),
		Layout:        domain.DefaultLayout(),
		Converter:     units.Default(),
		SnapThreshold: 6,
		Undo:          undo.Config{MaxBytes: 8 << 20, MaxDepth: 100, MinInterval: -1},
		Clock:         time.Now,
	}
}

// OptionsFromConfig maps the user configuration onto session options. Invalid canvas
// settings fall back to the default canvas.
func OptionsFromConfig(cfg config.AppConfig) Options {
	o := DefaultOptions()
	o.Converter = units.Converter{DPI: cfg.Units.DPI, Reference: cfg.Units.RatioReference}
	u, _ := units.ParseUnit(cfg.Canvas.Unit)
	c := domain.LabelCanvas{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height, Unit: u, Orientation: domain.Orientation(cfg.Canvas.Orientation)}
	if c.Validate() == nil {
		o.Canvas = c
	}
	o.Snap = cfg.Editor.Snap
	if cfg.Editor.SnapThreshold > 0 {
		o.SnapThreshold = cfg.Editor.SnapThreshold
	}
	if cfg.Editor.UndoMaxBytes > 0 {
		o.Undo.MaxBytes = cfg.Editor.UndoMaxBytes
	}
	if cfg.Editor.UndoMaxDepth > 0 {
		o.Undo.MaxDepth = cfg.Editor.UndoMaxDepth
	}
	return o
}

type Session struct {
	id  string
	log *slog.Logger
	now func() time.Time

	// composer
	els      *elements.Store
	engine   *transform.Engine
	planner  layout.Planner
	canvas   domain.LabelCanvas
	conv     units.Converter
	selected string
	history  *undo.Manager
	// element list captured when a gesture began
	pending []byte

	// binding
	cat      *catalog.Catalog
	defaults domain.LayoutSettings
	seq      uint64
	latest   Ticket
	applied  Ticket
	entry    *domain.CatalogEntry
	mapper   *fields.Mapper
	settings domain.LayoutSettings
	restored bool
}

// New starts a session. cat may be nil for a compose-only session.
func New(cat *catalog.Catalog, opts Options) (*Session, error) {
	def := DefaultOptions()
	if opts.Canvas == (domain.LabelCanvas{}) {
		opts.Canvas = def.Canvas
	}
	if err := opts.Canvas.Validate(); err != nil {
		return nil, err
	}
	if opts.Layout == (domain.LayoutSettings{}) {
		opts.Layout = def.Layout
	}
	if opts.Converter == (units.Converter{}) {
		opts.Converter = def.Converter
	}
	if opts.Clock == nil {
		opts.Clock = def.Clock
	}
	if opts.Undo == (undo.Config{}) {
		opts.Undo = def.Undo
	}
	initial := opts.Elements
	if initial == nil {
		initial = elements.Starter()
	}
	st, err := elements.New(initial...)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	snapOpt := vector.SnapOptions{Threshold: opts.SnapThreshold, SnapToEdges: true, SnapToCenters: true}
	if opts.SnapThreshold <= 0 {
		snapOpt.Threshold = def.SnapThreshold
	}
	s := &Session{
		id:       id,
		log:      applog.WithComponent("session"),
		now:      opts.Clock,
		els:      st,
		engine:   transform.New(st, opts.Measurer, transform.Options{Snap: opts.Snap, SnapOpt: snapOpt}),
		planner:  layout.Default(),
		canvas:   opts.Canvas,
		conv:     opts.Converter,
		history:  undo.NewManager(opts.Undo),
		cat:      cat,
		defaults: opts.Layout,
	}
	s.syncCanvas()
	return s, nil
}

// ID is the session's unique id.
func (s *Session) ID() string { return s.id }

// Context tags ctx with the session id for logging.
func (s *Session) Context(ctx context.Context) context.Context {
	return applog.ContextWithSession(ctx, s.id)
}

func (s *Session) syncCanvas() {
	w, h := s.canvas.PixelSize(s.conv)
	s.engine.SetCanvas(w, h)
}

func (s *Session) snapshot() []byte {
	b, err := json.Marshal(s.els.List())
	if err != nil {
		// element kinds are closed; marshal only fails on NaN geometry
		s.log.Error("snapshot marshal failed", slog.Any("err", err))
		return nil
	}
	return b
}

func (s *Session) restore(b []byte) error {
	var l domain.ElementList
	if err := json.Unmarshal(b, &l); err != nil {
		return err
	}
	if err := s.els.Replace(l); err != nil {
		return err
	}
	if s.selected != "" {
		if _, err := s.els.Get(s.selected); err != nil {
			s.selected = ""
		}
	}
	return nil
}

// mutate runs fn and records an undo step when the element list changed.
func (s *Session) mutate(fn func() error) error {
	before := s.snapshot()
	if err := fn(); err != nil {
		return err
	}
	s.commitHistory(before)
	return nil
}

func (s *Session) commitHistory(before []byte) {
	if before == nil || bytes.Equal(before, s.snapshot()) {
		return
	}
	s.history.PushSnapshot(undo.Snapshot{Scope: historyScope, Blob: before, TS: s.now()})
}

// Undo restores the element list from before the last change.
func (s *Session) Undo() bool {
	if s.engine.Active() {
		return false
	}
	snap, ok := s.history.Undo(historyScope, s.snapshot())
	if !ok {
		return false
	}
	if err := s.restore(snap.Blob); err != nil {
		s.log.Error("undo restore failed", slog.String("session", s.id), slog.Any("err", err))
		return false
	}
	return true
}

// Redo re-applies the last undone change.
func (s *Session) Redo() bool {
	if s.engine.Active() {
		return false
	}
	snap, ok := s.history.Redo(historyScope, s.snapshot())
	if !ok {
		return false
	}
	if err := s.restore(snap.Blob); err != nil {
		s.log.Error("redo restore failed", slog.String("session", s.id), slog.Any("err", err))
		return false
	}
	return true
}

func (s *Session) CanUndo() bool { return s.history.CanUndo(historyScope) }
func (s *Session) CanRedo() bool { return s.history.CanRedo(historyScope) }

// Document returns the current label as a detached copy.
func (s *Session) Document() domain.LabelDocument {
	return domain.LabelDocument{Canvas: s.canvas, Elements: s.els.List()}
}

// LoadDocument replaces the composer contents. Selection and history are reset.
func (s *Session) LoadDocument(doc domain.LabelDocument) error {
	if err := doc.Canvas.Validate(); err != nil {
		return err
	}
	st, err := elements.New(doc.Elements...)
	if err != nil {
		return err
	}
	if s.engine.Active() {
		_ = s.engine.Cancel()
	}
	if err := s.els.Replace(st.List()); err != nil {
		return err
	}
	s.canvas = doc.Canvas
	s.selected = ""
	s.pending = nil
	s.history.Clear(historyScope)
	s.syncCanvas()
	return nil
}
