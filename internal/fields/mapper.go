/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fields

import (
	"errors"

	"labelmaker/internal/domain"
)

var ErrNothingToCommit = errors.New("no visible fields to commit")

// Mapper is the editable field list plus the rows it projects. Structural edits
// on descriptors are mirrored on every row so column i always belongs to
// descriptor i. Out-of-range indices are ignored and reported as false.
type Mapper struct {
	fields []domain.FieldDescriptor
	rows   []domain.DataRow
}

// NewMapper builds a mapper with fresh descriptors for t.
func NewMapper(t Table) *Mapper {
	return FromState(t.Descriptors(), t.Rows)
}

// FromState builds a mapper over copies of the given descriptors and rows.
func FromState(fs []domain.FieldDescriptor, rows []domain.DataRow) *Mapper {
	m := &Mapper{fields: append([]domain.FieldDescriptor(nil), fs...)}
	for _, r := range rows {
		m.rows = append(m.rows, append(domain.DataRow(nil), r...))
	}
	return m
}

func (m *Mapper) inRange(i int) bool { return i >= 0 && i < len(m.fields) }

// Len returns the number of descriptors.
func (m *Mapper) Len() int { return len(m.fields) }

// Fields returns a copy of the descriptors.
func (m *Mapper) Fields() []domain.FieldDescriptor {
	return append([]domain.FieldDescriptor(nil), m.fields...)
}

// Rows returns a copy of the data rows.
func (m *Mapper) Rows() []domain.DataRow {
	out := make([]domain.DataRow, len(m.rows))
	for i, r := range m.rows {
		out[i] = append(domain.DataRow(nil), r...)
	}
	return out
}

// Cell returns row r, column c, or "" when the cell is missing.
func (m *Mapper) Cell(r, c int) string {
	if r < 0 || r >= len(m.rows) || c < 0 || c >= len(m.rows[r]) {
		return ""
	}
	return m.rows[r][c]
}

// Index returns the position of the first descriptor labelled label.
func (m *Mapper) Index(label string) int {
	for i, f := range m.fields {
		if f.Label == label {
			return i
		}
	}
	return -1
}

// Rename changes the label at i.
func (m *Mapper) Rename(i int, label string) bool {
	if !m.inRange(i) {
		return false
	}
	m.fields[i].Label = label
	return true
}

// ToggleHidden flips visibility at i. Hidden fields keep their column.
func (m *Mapper) ToggleHidden(i int) bool {
	if !m.inRange(i) {
		return false
	}
	m.fields[i].Hidden = !m.fields[i].Hidden
	return true
}

// SetHidden sets visibility at i.
func (m *Mapper) SetHidden(i int, hidden bool) bool {
	if !m.inRange(i) {
		return false
	}
	m.fields[i].Hidden = hidden
	return true
}

// Delete removes descriptor i and column i of every row that has it.
func (m *Mapper) Delete(i int) bool {
	if !m.inRange(i) {
		return false
	}
	m.fields = append(m.fields[:i], m.fields[i+1:]...)
	for r, row := range m.rows {
		if i < len(row) {
			m.rows[r] = append(row[:i], row[i+1:]...)
		}
	}
	return true
}

// Reorder moves descriptor from to position to and applies the same move to every
// row. Rows too short to hold either index are padded with empty cells first.
func (m *Mapper) Reorder(from, to int) bool {
	if !m.inRange(from) || !m.inRange(to) {
		return false
	}
	if from == to {
		return true
	}
	m.fields = move(m.fields, from, to)
	need := max(from, to) + 1
	for r, row := range m.rows {
		for len(row) < need {
			row = append(row, "")
		}
		m.rows[r] = move(row, from, to)
	}
	return true
}

func move[T any](s []T, from, to int) []T {
	v := s[from]
	s = append(s[:from], s[from+1:]...)
	s = append(s, v)
	copy(s[to+1:], s[to:len(s)-1])
	s[to] = v
	return s
}

// VisibleField is a non-hidden descriptor with its column index.
type VisibleField struct {
	Index int
	Label string
}

// Visible lists the non-hidden fields in order.
func (m *Mapper) Visible() []VisibleField {
	var out []VisibleField
	for i, f := range m.fields {
		if !f.Hidden {
			out = append(out, VisibleField{Index: i, Label: f.Label})
		}
	}
	return out
}

// CanCommit reports whether at least one field is visible.
func (m *Mapper) CanCommit() bool { return len(m.Visible()) > 0 }

// Mapped is the committed mapping: visible labels and each row projected onto them.
type Mapped struct {
	Labels []string
	Rows   [][]string
}

// Commit projects every row onto the visible fields.
func (m *Mapper) Commit() (Mapped, error) {
	vis := m.Visible()
	if len(vis) == 0 {
		return Mapped{}, ErrNothingToCommit
	}
	out := Mapped{Labels: make([]string, len(vis))}
	for i, v := range vis {
		out.Labels[i] = v.Label
	}
	for r := range m.rows {
		row := make([]string, len(vis))
		for i, v := range vis {
			row[i] = m.Cell(r, v.Index)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
