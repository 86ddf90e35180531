/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"errors"
	"testing"

	"labelmaker/internal/domain"
	"labelmaker/internal/elements"
	"labelmaker/internal/transform"
	"labelmaker/internal/units"
	"labelmaker/internal/vector"
)

func newComposer(t *testing.T) *Session {
	t.Helper()
	s, err := New(nil, DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func mustElement(t *testing.T, s *Session, id string) domain.Element {
	t.Helper()
	e, err := s.Element(id)
	if err != nil {
		t.Fatalf("Element(%s): %v", id, err)
	}
	return e
}

func TestStarterLabelAndAdd(t *testing.T) {
	s := newComposer(t)
	if n := len(s.Elements()); n != 4 {
		t.Fatalf("starter has %d elements, want 4", n)
	}
	if s.ID() == "" {
		t.Fatalf("session id empty")
	}
	if err := s.Select("qr-1"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	id, err := s.AddElement(domain.KindText)
	if err != nil {
		t.Fatalf("AddElement: %v", err)
	}
	if id != "text-2" {
		t.Fatalf("new id = %q, want text-2", id)
	}
	if sel, _ := s.Selected(); sel != "qr-1" {
		t.Fatalf("selection changed to %q", sel)
	}
	l := s.Elements()
	if l[len(l)-1].Common().ID != id {
		t.Fatalf("new element not on top")
	}
	if _, err := s.AddElement("star"); err == nil {
		t.Fatalf("unknown kind accepted")
	}
}

func TestSelectUnknown(t *testing.T) {
	s := newComposer(t)
	if err := s.Select("nope"); !errors.Is(err, ErrNotSelected) {
		t.Fatalf("err = %v", err)
	}
}

func TestPointerDownSelectsAndClears(t *testing.T) {
	s := newComposer(t)
	id, ok := s.PointerDown(vector.Pt{X: 125, Y: 85})
	if !ok || id != "text-1" {
		t.Fatalf("PointerDown = %q %v, want text-1", id, ok)
	}
	if sel, ok := s.Selected(); !ok || sel != "text-1" {
		t.Fatalf("selected = %q", sel)
	}
	if _, ok := s.PointerDown(vector.Pt{X: 390, Y: 10}); ok {
		t.Fatalf("empty canvas hit something")
	}
	if _, ok := s.Selected(); ok {
		t.Fatalf("selection not cleared")
	}
}

func TestPointerDownSkipsHidden(t *testing.T) {
	s := newComposer(t)
	if _, err := s.ToggleHidden("rect-1"); err != nil {
		t.Fatal(err)
	}
	if id, ok := s.PointerDown(vector.Pt{X: 70, Y: 40}); ok {
		t.Fatalf("hidden element hit: %s", id)
	}
}

func TestDeleteSelectedClearsSelection(t *testing.T) {
	s := newComposer(t)
	_ = s.Select("rect-1")
	if err := s.DeleteElement("qr-1"); err != nil {
		t.Fatal(err)
	}
	if sel, _ := s.Selected(); sel != "rect-1" {
		t.Fatalf("deleting another element dropped selection")
	}
	if err := s.DeleteElement("rect-1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Selected(); ok {
		t.Fatalf("selection kept after delete")
	}
	if err := s.DeleteElement("rect-1"); !errors.Is(err, elements.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestLockedRefusesDragButAcceptsEdit(t *testing.T) {
	s := newComposer(t)
	if v, err := s.ToggleLocked("rect-1"); err != nil || !v {
		t.Fatalf("ToggleLocked = %v %v", v, err)
	}
	if _, err := s.DragEnd("rect-1", 10, 10); !errors.Is(err, transform.ErrLocked) {
		t.Fatalf("DragEnd err = %v", err)
	}
	if err := s.BeginDrag("rect-1", vector.Pt{X: 70, Y: 40}); !errors.Is(err, transform.ErrLocked) {
		t.Fatalf("BeginDrag err = %v", err)
	}
	if err := s.EditElement("rect-1", elements.Patch{X: elements.F(5)}); err != nil {
		t.Fatalf("EditElement on locked: %v", err)
	}
	if x := mustElement(t, s, "rect-1").Common().X; x != 5 {
		t.Fatalf("x = %v", x)
	}
}

func TestTransformEndAppliesFloors(t *testing.T) {
	s := newComposer(t)
	e, err := s.TransformEnd("rect-1", transform.Final{X: 60, Y: 30, ScaleX: 0.01, ScaleY: 0.01, Rotation: 45})
	if err != nil {
		t.Fatalf("TransformEnd: %v", err)
	}
	r := e.(*domain.Rect)
	if r.Width != domain.MinDimension || r.Height != domain.MinDimension || r.Rotation != 45 {
		t.Fatalf("rect = %+v", r)
	}
	e, err = s.TransformEnd("text-1", transform.Final{X: 120, Y: 80, ScaleX: 1, ScaleY: 0.1, Rotation: 30})
	if err != nil {
		t.Fatal(err)
	}
	txt := e.(*domain.Text)
	if txt.FontSize != domain.MinFontSize || txt.Rotation != 0 {
		t.Fatalf("text = %+v", txt)
	}
}

func TestMoveLayerOutOfRange(t *testing.T) {
	s := newComposer(t)
	if s.MoveLayer(0, 9) || s.MoveLayer(-1, 0) {
		t.Fatalf("out of range move reported success")
	}
	if s.CanUndo() {
		t.Fatalf("no-op move recorded history")
	}
	if !s.MoveLayer(0, 3) {
		t.Fatalf("MoveLayer(0,3) failed")
	}
	if top := s.Elements()[3].Common().ID; top != "text-1" {
		t.Fatalf("top = %s", top)
	}
}

func TestAutoAlignStacksLeftColumn(t *testing.T) {
	s := newComposer(t)
	doc := domain.LabelDocument{
		Canvas: domain.DefaultCanvas(),
		Elements: domain.ElementList{
			&domain.Text{Base: domain.Base{ID: "text-1", X: 300, Y: 150}, Content: "a", FontSize: 24, FontWeight: domain.WeightNormal, Color: "#000000"},
			&domain.Rect{Base: domain.Base{ID: "rect-1", X: 5, Y: 5, Locked: true}, Width: 80, Height: 40, FillColor: "#ffb800", StrokeColor: "#232946", StrokeWidth: 2},
		},
	}
	if err := s.LoadDocument(doc); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if _, err := s.AutoAlign(); err != nil {
		t.Fatalf("AutoAlign: %v", err)
	}
	txt := mustElement(t, s, "text-1").Common()
	rect := mustElement(t, s, "rect-1").Common()
	if txt.X != 24 || txt.Y != 30 || rect.X != 24 || rect.Y != 70 {
		t.Fatalf("text=(%v,%v) rect=(%v,%v)", txt.X, txt.Y, rect.X, rect.Y)
	}
	if !s.Undo() {
		t.Fatalf("align not undoable")
	}
	if r := mustElement(t, s, "rect-1").Common(); r.X != 5 || r.Y != 5 {
		t.Fatalf("undo left rect at (%v,%v)", r.X, r.Y)
	}
}

func TestOrientationRoundTrip(t *testing.T) {
	s := newComposer(t)
	before := s.Canvas()
	if err := s.SetOrientation(domain.Portrait); err != nil {
		t.Fatal(err)
	}
	if c := s.Canvas(); c.Width != before.Height || c.Height != before.Width {
		t.Fatalf("portrait canvas = %+v", c)
	}
	if err := s.SetOrientation(domain.Landscape); err != nil {
		t.Fatal(err)
	}
	if s.Canvas() != before {
		t.Fatalf("canvas = %+v, want %+v", s.Canvas(), before)
	}
	if err := s.SetCanvasSize(0, 10); err == nil {
		t.Fatalf("zero width accepted")
	}
}

func TestDragGestureUndoRedo(t *testing.T) {
	s := newComposer(t)
	if err := s.BeginDrag("rect-1", vector.Pt{X: 70, Y: 40}); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if s.Undo() {
		t.Fatalf("undo allowed mid-gesture")
	}
	if _, err := s.DragTo(vector.Pt{X: 80, Y: 50}); err != nil {
		t.Fatalf("DragTo: %v", err)
	}
	e, err := s.EndDrag()
	if err != nil {
		t.Fatalf("EndDrag: %v", err)
	}
	if b := e.Common(); b.X != 70 || b.Y != 40 {
		t.Fatalf("dragged to (%v,%v)", b.X, b.Y)
	}
	if sel, _ := s.Selected(); sel != "rect-1" {
		t.Fatalf("drag did not select")
	}
	if !s.Undo() {
		t.Fatalf("Undo failed")
	}
	if b := mustElement(t, s, "rect-1").Common(); b.X != 60 || b.Y != 30 {
		t.Fatalf("after undo (%v,%v)", b.X, b.Y)
	}
	if !s.Redo() {
		t.Fatalf("Redo failed")
	}
	if b := mustElement(t, s, "rect-1").Common(); b.X != 70 || b.Y != 40 {
		t.Fatalf("after redo (%v,%v)", b.X, b.Y)
	}
}

func TestCancelGestureRecordsNothing(t *testing.T) {
	s := newComposer(t)
	if err := s.BeginDrag("qr-1", vector.Pt{X: 310, Y: 130}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.DragTo(vector.Pt{X: 330, Y: 150}); err != nil {
		t.Fatal(err)
	}
	if err := s.CancelGesture(); err != nil {
		t.Fatal(err)
	}
	if b := mustElement(t, s, "qr-1").Common(); b.X != 300 || b.Y != 120 {
		t.Fatalf("cancel left qr at (%v,%v)", b.X, b.Y)
	}
	if s.CanUndo() {
		t.Fatalf("cancelled gesture recorded history")
	}
}

func TestUndoDeleteRestoresElementNotSelection(t *testing.T) {
	s := newComposer(t)
	_ = s.Select("img-1")
	if err := s.DeleteElement("img-1"); err != nil {
		t.Fatal(err)
	}
	if !s.Undo() {
		t.Fatalf("Undo failed")
	}
	if _, err := s.Element("img-1"); err != nil {
		t.Fatalf("img-1 not restored: %v", err)
	}
	if _, ok := s.Selected(); ok {
		t.Fatalf("selection resurrected by undo")
	}
	if s.Undo() {
		t.Fatalf("history deeper than one step")
	}
}

func TestLoadDocumentResets(t *testing.T) {
	s := newComposer(t)
	_, _ = s.AddElement(domain.KindRect)
	_ = s.Select("rect-1")
	doc := domain.LabelDocument{
		Canvas:   domain.LabelCanvas{Width: 50, Height: 30, Unit: units.Millimeter, Orientation: domain.Landscape},
		Elements: domain.ElementList{&domain.QRCode{Base: domain.Base{ID: "qr-7"}, Size: 40, Payload: "x"}},
	}
	if err := s.LoadDocument(doc); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if _, ok := s.Selected(); ok || s.CanUndo() || s.CanRedo() {
		t.Fatalf("state not reset")
	}
	if got := s.Document(); got.Canvas != doc.Canvas || len(got.Elements) != 1 {
		t.Fatalf("document = %+v", got)
	}
	id, _ := s.AddElement(domain.KindQR)
	if id != "qr-8" {
		t.Fatalf("id after load = %s, want qr-8", id)
	}
	bad := domain.LabelDocument{Canvas: domain.DefaultCanvas(), Elements: domain.ElementList{
		&domain.QRCode{Base: domain.Base{ID: "a"}, Size: 10}, &domain.QRCode{Base: domain.Base{ID: "a"}, Size: 10},
	}}
	if err := s.LoadDocument(bad); err == nil {
		t.Fatalf("duplicate ids accepted")
	}
}
