/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"labelmaker/internal/domain"
)

// FontLibrary stores parsed OpenType fonts by weight and caches sized faces.
type FontLibrary struct {
	mu    sync.Mutex
	fonts map[domain.FontWeight]*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	weight domain.FontWeight
	size   float64
}

func NewFontLibrary() *FontLibrary {
	return &FontLibrary{fonts: map[domain.FontWeight]*opentype.Font{}, faces: map[faceKey]font.Face{}}
}

// NewGoFontLibrary loads the bundled Go fonts for both weights.
func NewGoFontLibrary() (*FontLibrary, error) {
	fl := NewFontLibrary()
	for w, data := range map[domain.FontWeight][]byte{domain.WeightNormal: goregular.TTF, domain.WeightBold: gobold.TTF} {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse go font %s: %w", w, err)
		}
		fl.fonts[w] = f
	}
	return fl, nil
}

// LoadTTF loads a font file for weight, replacing any previous one.
func (fl *FontLibrary) LoadTTF(weight domain.FontWeight, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.fonts[weight] = f
	for k := range fl.faces {
		if k.weight == weight {
			delete(fl.faces, k)
		}
	}
	return nil
}

// face returns a face where one point equals one canvas pixel (72 DPI).
// A missing weight falls back to the other one.
func (fl *FontLibrary) face(weight domain.FontWeight, size float64) (font.Face, bool) {
	if fl == nil {
		return nil, false
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	key := faceKey{weight: weight, size: size}
	if f, ok := fl.faces[key]; ok {
		return f, true
	}
	f := fl.fonts[weight]
	if f == nil {
		for _, other := range fl.fonts {
			f = other
			break
		}
	}
	if f == nil {
		return nil, false
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, false
	}
	fl.faces[key] = face
	return face, true
}
