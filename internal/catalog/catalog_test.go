/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"labelmaker/internal/domain"
	"labelmaker/internal/settings"
	"labelmaker/internal/storage"
)

// fixedClock returns a clock that advances by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	t := start.Add(-step)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newCatalog(step time.Duration) (*Catalog, *storage.MemoryStore) {
	st := storage.NewMemoryStore(nil)
	return New(st, WithClock(fixedClock(t0, step))), st
}

func TestImportPrependsAndAssignsUniqueIDs(t *testing.T) {
	c, _ := newCatalog(0) // same millisecond every time
	ctx := context.Background()
	a, err := c.Import(ctx, "a.csv", "Name\nAda")
	if err != nil {
		t.Fatalf("Import a: %v", err)
	}
	b, err := c.Import(ctx, "b.csv", "Name\nGrace")
	if err != nil {
		t.Fatalf("Import b: %v", err)
	}
	if a.ID != t0.UnixMilli() || b.ID != a.ID+1 {
		t.Fatalf("ids = %d, %d", a.ID, b.ID)
	}
	list, err := c.List(ctx, OrderStored)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("newest import should be first: %+v", list)
	}
}

func TestImportRejectsBinaryAndEmptyName(t *testing.T) {
	c, st := newCatalog(time.Second)
	ctx := context.Background()
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d}
	if _, err := c.Import(ctx, "img.png", string(png)); !errors.Is(err, ErrNotText) {
		t.Fatalf("expected ErrNotText, got %v", err)
	}
	if _, err := c.Import(ctx, "  ", "a,b"); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if st.Puts() != 0 {
		t.Fatalf("rejected imports must not write")
	}
}

func TestListOrders(t *testing.T) {
	c, _ := newCatalog(time.Minute)
	ctx := context.Background()
	first, _ := c.Import(ctx, "first", "x")
	second, _ := c.Import(ctx, "second", "y")
	third, _ := c.Import(ctx, "third", "z")
	// renaming the oldest makes it the most recently modified
	if err := c.Rename(ctx, first.ID, "first (renamed)"); err != nil {
		t.Fatal(err)
	}
	asc, _ := c.List(ctx, OrderAscending)
	desc, _ := c.List(ctx, OrderDescending)
	ids := func(es []domain.CatalogEntry) []int64 {
		var out []int64
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}
	if got, want := ids(asc), []int64{second.ID, third.ID, first.ID}; !reflect.DeepEqual(got, want) {
		t.Fatalf("asc = %v, want %v", got, want)
	}
	if got, want := ids(desc), []int64{first.ID, third.ID, second.ID}; !reflect.DeepEqual(got, want) {
		t.Fatalf("desc = %v, want %v", got, want)
	}
}

func TestRenameKeepsContentAndLayout(t *testing.T) {
	c, _ := newCatalog(time.Second)
	ctx := context.Background()
	e, _ := c.Import(ctx, "data.csv", "Name,Email\nAda,ada@x.com")
	snap := settings.Snapshot(nil, domain.DefaultLayout())
	if err := c.SaveLayout(ctx, e.ID, snap); err != nil {
		t.Fatal(err)
	}
	if err := c.Rename(ctx, e.ID, " people "); err != nil {
		t.Fatal(err)
	}
	got, err := c.Get(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "people" || got.Content != e.Content || got.Layout == nil || *got.Layout.FontSize != 14 {
		t.Fatalf("unexpected entry after rename: %+v", got)
	}
	if err := c.Rename(ctx, e.ID, ""); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestMissingEntryErrors(t *testing.T) {
	c, _ := newCatalog(time.Second)
	ctx := context.Background()
	if _, err := c.Get(ctx, 99); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("Get: %v", err)
	}
	if err := c.Rename(ctx, 99, "x"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("Rename: %v", err)
	}
	if err := c.Delete(ctx, 99); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.SaveLayout(ctx, 99, domain.SavedLayout{}); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("SaveLayout: %v", err)
	}
}

func TestDelete(t *testing.T) {
	c, _ := newCatalog(time.Second)
	ctx := context.Background()
	a, _ := c.Import(ctx, "a", "1")
	b, _ := c.Import(ctx, "b", "2")
	if err := c.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	list, _ := c.List(ctx, OrderStored)
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestCorruptBlobIsEmptyCatalog(t *testing.T) {
	st := storage.NewMemoryStore([]byte("{{{ definitely not json"))
	c := New(st)
	ctx := context.Background()
	list, err := c.List(ctx, OrderStored)
	if err != nil || len(list) != 0 {
		t.Fatalf("List() = %v, %v; want empty", list, err)
	}
	if _, err := c.Import(ctx, "fresh", "A\n1"); err != nil {
		t.Fatalf("import after corruption: %v", err)
	}
	list, _ = c.List(ctx, OrderStored)
	if len(list) != 1 {
		t.Fatalf("expected recovered catalog with one entry, got %d", len(list))
	}
}

// Saving a layout and reopening with an unchanged file reproduces it exactly.
func TestSaveLayoutRoundTrip(t *testing.T) {
	c, _ := newCatalog(time.Second)
	ctx := context.Background()
	e, _ := c.Import(ctx, "people", "Name,Email,Phone\nAda,ada@x.com,1")

	l := domain.DefaultLayout()
	l.CanvasWidth, l.FontSize, l.LetterSpacing, l.QRField = 62, 11, 0.5, "Email"
	fs := []domain.FieldDescriptor{{Label: "Phone"}, {Label: "Name", Hidden: true}, {Label: "E-mail"}}
	if err := c.SaveLayout(ctx, e.ID, settings.Snapshot(fs, l)); err != nil {
		t.Fatal(err)
	}
	got, _ := c.Get(ctx, e.ID)
	res := settings.Merge(got, domain.DefaultLayout())
	if !res.FieldsRestored || !reflect.DeepEqual(res.Fields, fs) {
		t.Fatalf("fields = %+v", res.Fields)
	}
	if res.Layout != l {
		t.Fatalf("layout = %+v, want %+v", res.Layout, l)
	}
	if !got.Timestamp.After(e.Timestamp) {
		t.Fatalf("SaveLayout should bump the timestamp")
	}
}

func TestRestoreSkipsExistingIDs(t *testing.T) {
	c, _ := newCatalog(time.Second)
	ctx := context.Background()
	e, _ := c.Import(ctx, "a", "x")
	added, err := c.Restore(ctx, domain.CatalogEntry{ID: e.ID, Name: "dupe", Content: "y", Timestamp: t0})
	if err != nil || added {
		t.Fatalf("Restore(existing) = %v, %v", added, err)
	}
	added, err = c.Restore(ctx, domain.CatalogEntry{ID: 7, Name: "old", Content: "y", Timestamp: t0.Add(-time.Hour)})
	if err != nil || !added {
		t.Fatalf("Restore(new) = %v, %v", added, err)
	}
	got, _ := c.Get(ctx, 7)
	if got.Name != "old" || !got.Timestamp.Equal(t0.Add(-time.Hour)) {
		t.Fatalf("restored entry = %+v", got)
	}
}

func TestParseOrder(t *testing.T) {
	for in, want := range map[string]Order{"": OrderStored, "ASC": OrderAscending, "desc": OrderDescending} {
		if got, ok := ParseOrder(in); !ok || got != want {
			t.Fatalf("ParseOrder(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := ParseOrder("random"); ok {
		t.Fatalf("unknown order accepted")
	}
}
