/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"testing"

	"labelmaker/internal/domain"
	"labelmaker/internal/elements"
)

func TestPlanTextThenRect(t *testing.T) {
	els := []domain.Element{
		&domain.Text{Base: domain.Base{ID: "text-1", X: 300, Y: 150}, Content: "a", FontSize: 24, FontWeight: domain.WeightNormal},
		&domain.Rect{Base: domain.Base{ID: "rect-1", X: 5, Y: 5}, Width: 80, Height: 40},
	}
	got := Default().Plan(els, 400)
	want := []Placement{{ID: "text-1", X: 24, Y: 30}, {ID: "rect-1", X: 24, Y: 70}}
	if len(got) != len(want) {
		t.Fatalf("plan = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("plan[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPlanSecondaryColumnAndHidden(t *testing.T) {
	els := []domain.Element{
		&domain.QRCode{Base: domain.Base{ID: "qr-1"}, Size: 60},
		&domain.ImagePlaceholder{Base: domain.Base{ID: "img-1", Hidden: true}, Width: 60, Height: 60},
		&domain.ImagePlaceholder{Base: domain.Base{ID: "img-2", Locked: true}, Width: 60, Height: 30},
		&domain.Rect{Base: domain.Base{ID: "rect-1"}, Width: 80, Height: 40},
	}
	got := Default().Plan(els, 400)
	want := []Placement{
		{ID: "qr-1", X: 300, Y: 60},
		{ID: "img-2", X: 300, Y: 128},
		{ID: "rect-1", X: 24, Y: 30},
	}
	if len(got) != len(want) {
		t.Fatalf("plan = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("plan[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	s, err := elements.New(elements.Starter()...)
	if err != nil {
		t.Fatal(err)
	}
	p := Default()
	if _, err := p.Apply(s, 400); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	first := s.List()
	if _, err := p.Apply(s, 400); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	second := s.List()
	for i := range first {
		a, b := first[i].Common(), second[i].Common()
		if a.X != b.X || a.Y != b.Y {
			t.Fatalf("second apply moved %s: %+v -> %+v", a.ID, a, b)
		}
	}
	txt, _ := s.Get("text-1")
	if txt.Common().X != 24 || txt.Common().Y != 30 {
		t.Fatalf("text-1 not placed at left column start: %+v", txt.Common())
	}
	qr, _ := s.Get("qr-1")
	if qr.Common().X != 300 || qr.Common().Y != 60 {
		t.Fatalf("qr-1 not placed at right column start: %+v", qr.Common())
	}
}
