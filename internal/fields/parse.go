/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package fields parses tabular text and maps its columns onto label fields.
//
// The format is plain: lines split on any newline style, cells split
// on a bare comma. Quoted fields and escaped commas are not supported.
package fields

import (
	"regexp"
	"strings"

	"labelmaker/internal/domain"
)

var lineSplit = regexp.MustCompile(`\r\n|\r|\n`)

// Table is parsed tabular text: a cleaned header and raw data rows.
type Table struct {
	Headers []string
	Rows    []domain.DataRow
}

// Parse splits raw into a header and data rows. Empty lines are dropped. Header
// cells lose any '{' or '}' and are trimmed; data cells are kept verbatim and rows
// are not padded or truncated.
func Parse(raw string) Table {
	var lines []string
	for _, ln := range lineSplit.Split(raw, -1) {
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) == 0 {
		return Table{}
	}
	var t Table
	for _, h := range strings.Split(lines[0], ",") {
		t.Headers = append(t.Headers, CleanHeader(h))
	}
	for _, ln := range lines[1:] {
		t.Rows = append(t.Rows, domain.DataRow(strings.Split(ln, ",")))
	}
	return t
}

// CleanHeader strips template braces and surrounding space from a header cell.
func CleanHeader(h string) string {
	return strings.TrimSpace(strings.NewReplacer("{", "", "}", "").Replace(h))
}

// Descriptors derives one visible descriptor per header.
func (t Table) Descriptors() []domain.FieldDescriptor {
	out := make([]domain.FieldDescriptor, len(t.Headers))
	for i, h := range t.Headers {
		out[i] = domain.FieldDescriptor{Label: h}
	}
	return out
}

// Empty reports whether the text had no usable lines.
func (t Table) Empty() bool { return len(t.Headers) == 0 }
