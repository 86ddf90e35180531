/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package elements

import (
	"fmt"
	"math"

	"labelmaker/internal/domain"
)

// Patch is a partial update. Nil members are left untouched. Members that do not
// apply to the element's kind are rejected.
type Patch struct {
	X, Y     *float64
	Rotation *float64

	Width, Height *float64 // rect, image
	Size          *float64 // qr
	FontSize      *float64 // text
	StrokeWidth   *float64 // rect

	Content     *string // text
	FontWeight  *domain.FontWeight
	Color       *string // text color or rect fill
	StrokeColor *string // rect
	Payload     *string // qr
	SourceRef   *string // image
}

// F and S build patch members inline.
func F(v float64) *float64 { return &v }
func S(v string) *string   { return &v }

func notFor(k domain.Kind, member string) error {
	return fmt.Errorf("%w: %s does not apply to %s", ErrInvalidValue, member, k)
}

func nonNeg(v float64) float64 { return math.Max(0, v) }

// Update applies p to id. The update is all-or-nothing.
func (s *Store) Update(id string, p Patch) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e := s.items[i].Clone()
	b := e.Common()
	if p.X != nil {
		b.X = nonNeg(*p.X)
	}
	if p.Y != nil {
		b.Y = nonNeg(*p.Y)
	}
	if p.Rotation != nil {
		if *p.Rotation != 0 && !domain.CanRotate(e.Kind()) {
			return notFor(e.Kind(), "rotation")
		}
		b.Rotation = math.Mod(*p.Rotation, 360)
	}
	if err := applyKind(e, p); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	s.items[i] = e
	return nil
}

func applyKind(e domain.Element, p Patch) error {
	k := e.Kind()
	switch v := e.(type) {
	case *domain.Text:
		if p.Width != nil || p.Height != nil {
			return notFor(k, "width/height")
		}
		if p.Size != nil || p.StrokeWidth != nil || p.StrokeColor != nil || p.Payload != nil || p.SourceRef != nil {
			return notFor(k, "shape member")
		}
		if p.FontSize != nil {
			v.FontSize = *p.FontSize
		}
		if p.Content != nil {
			v.Content = *p.Content
		}
		if p.FontWeight != nil {
			v.FontWeight = *p.FontWeight
		}
		if p.Color != nil {
			v.Color = *p.Color
		}
	case *domain.Rect:
		if p.Size != nil || p.FontSize != nil || p.Content != nil || p.FontWeight != nil || p.Payload != nil || p.SourceRef != nil {
			return notFor(k, "text/qr/image member")
		}
		if p.Width != nil {
			v.Width = *p.Width
		}
		if p.Height != nil {
			v.Height = *p.Height
		}
		if p.StrokeWidth != nil {
			v.StrokeWidth = *p.StrokeWidth
		}
		if p.Color != nil {
			v.FillColor = *p.Color
		}
		if p.StrokeColor != nil {
			v.StrokeColor = *p.StrokeColor
		}
	case *domain.QRCode:
		if p.Width != nil || p.Height != nil || p.FontSize != nil || p.StrokeWidth != nil ||
			p.Content != nil || p.FontWeight != nil || p.Color != nil || p.StrokeColor != nil || p.SourceRef != nil {
			return notFor(k, "non-qr member")
		}
		if p.Size != nil {
			v.Size = *p.Size
		}
		if p.Payload != nil {
			v.Payload = *p.Payload
		}
	case *domain.ImagePlaceholder:
		if p.Size != nil || p.FontSize != nil || p.StrokeWidth != nil ||
			p.Content != nil || p.FontWeight != nil || p.Color != nil || p.StrokeColor != nil || p.Payload != nil {
			return notFor(k, "non-image member")
		}
		if p.Width != nil {
			v.Width = *p.Width
		}
		if p.Height != nil {
			v.Height = *p.Height
		}
		if p.SourceRef != nil {
			v.SourceRef = *p.SourceRef
		}
	}
	return nil
}

// Describe returns the secondary line the layer list shows under an element:
// the text content or the QR payload.
func Describe(e domain.Element) string {
	switch v := e.(type) {
	case *domain.Text:
		return v.Content
	case *domain.QRCode:
		return v.Payload
	case *domain.ImagePlaceholder:
		return v.SourceRef
	}
	return ""
}
