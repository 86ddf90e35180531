/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog manages the persisted list of imported data files.
//
// The collection lives in a storage.BlobStore as one JSON array. Every mutation reads the
// whole array, applies one change and writes the whole array back. Writers in other processes
// are not serialized: the last write wins.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/m-mizutani/goerr/v2"

	"labelmaker/internal/domain"
	applog "labelmaker/internal/log"
	"labelmaker/internal/storage"
)

var (
	ErrEntryNotFound = errors.New("catalog entry not found")
	ErrEmptyName     = errors.New("name must not be empty")
	ErrNotText       = errors.New("content is not plain text")
)

// Order selects how List sorts entries.
type Order int

const (
	// OrderStored keeps collection order (newest import first).
	OrderStored Order = iota
	OrderAscending
	OrderDescending
)

// ParseOrder maps "asc", "desc" and "stored" to an Order.
func ParseOrder(s string) (Order, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stored":
		return OrderStored, true
	case "asc", "ascending":
		return OrderAscending, true
	case "desc", "descending":
		return OrderDescending, true
	}
	return OrderStored, false
}

type Catalog struct {
	store storage.BlobStore
	now   func() time.Time
	mu    sync.Mutex
}

type Option func(*Catalog)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option { return func(c *Catalog) { c.now = now } }

func New(store storage.BlobStore, opts ...Option) *Catalog {
	c := &Catalog{store: store, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Catalog) load(ctx context.Context) ([]domain.Record, error) {
	b, err := c.store.Get(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read catalog")
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil, nil
	}
	var recs []domain.Record
	if err := json.Unmarshal(b, &recs); err != nil {
		applog.WithOperation(applog.WithComponent("catalog"), "load").
			WarnContext(ctx, "catalog blob unparseable, treating as empty", slog.Any("err", err))
		return nil, nil
	}
	return recs, nil
}

func (c *Catalog) save(ctx context.Context, recs []domain.Record) error {
	if recs == nil {
		recs = []domain.Record{}
	}
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal catalog")
	}
	if err := c.store.Put(ctx, append(b, '\n')); err != nil {
		return goerr.Wrap(err, "failed to write catalog")
	}
	return nil
}

// update runs one read-modify-write cycle.
func (c *Catalog) update(ctx context.Context, fn func([]domain.Record) ([]domain.Record, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, err := c.load(ctx)
	if err != nil {
		return err
	}
	out, err := fn(recs)
	if err != nil {
		return err
	}
	return c.save(ctx, out)
}

func indexOf(recs []domain.Record, id int64) int {
	for i, r := range recs {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// IsText reports whether b sniffs as some kind of text.
func IsText(b []byte) bool {
	for m := mimetype.Detect(b); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// Import stores content under name and returns the new entry. The id is the creation time in
// Unix milliseconds, bumped until unique. New entries go to the head of the collection.
func (c *Catalog) Import(ctx context.Context, name, content string) (domain.CatalogEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.CatalogEntry{}, goerr.Wrap(ErrEmptyName, "cannot import")
	}
	if !IsText([]byte(content)) {
		return domain.CatalogEntry{}, goerr.Wrap(ErrNotText, "cannot import",
			goerr.V("name", name), goerr.V("mime", mimetype.Detect([]byte(content)).String()))
	}
	var entry domain.CatalogEntry
	err := c.update(ctx, func(recs []domain.Record) ([]domain.Record, error) {
		now := c.now()
		id := now.UnixMilli()
		for indexOf(recs, id) >= 0 {
			id++
		}
		entry = domain.CatalogEntry{ID: id, Name: name, Content: content, Timestamp: now}
		return append([]domain.Record{domain.RecordFromEntry(entry)}, recs...), nil
	})
	if err != nil {
		return domain.CatalogEntry{}, err
	}
	applog.WithOperation(applog.WithComponent("catalog"), "import").InfoContext(applog.ContextWithEntry(ctx, entry.ID),
		"file imported", slog.String("name", name), slog.Int("bytes", len(content)))
	return entry, nil
}

// Restore inserts e with its own id and timestamp unless that id already exists.
// It reports whether the entry was added.
func (c *Catalog) Restore(ctx context.Context, e domain.CatalogEntry) (bool, error) {
	if strings.TrimSpace(e.Name) == "" {
		return false, goerr.Wrap(ErrEmptyName, "cannot restore", goerr.V("entry_id", e.ID))
	}
	added := false
	err := c.update(ctx, func(recs []domain.Record) ([]domain.Record, error) {
		if indexOf(recs, e.ID) >= 0 {
			return recs, nil
		}
		added = true
		return append([]domain.Record{domain.RecordFromEntry(e)}, recs...), nil
	})
	return added, err
}

// List returns all entries in the requested order.
func (c *Catalog) List(ctx context.Context, order Order) ([]domain.CatalogEntry, error) {
	c.mu.Lock()
	recs, err := c.load(ctx)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]domain.CatalogEntry, len(recs))
	for i, r := range recs {
		out[i] = r.Entry()
	}
	switch order {
	case OrderAscending:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	case OrderDescending:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	}
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, id int64) (domain.CatalogEntry, error) {
	c.mu.Lock()
	recs, err := c.load(ctx)
	c.mu.Unlock()
	if err != nil {
		return domain.CatalogEntry{}, err
	}
	i := indexOf(recs, id)
	if i < 0 {
		return domain.CatalogEntry{}, goerr.Wrap(ErrEntryNotFound, "entry not found", goerr.V("entry_id", id))
	}
	return recs[i].Entry(), nil
}

// Rename changes the display name. Content and layout are untouched.
func (c *Catalog) Rename(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return goerr.Wrap(ErrEmptyName, "cannot rename", goerr.V("entry_id", id))
	}
	return c.update(ctx, func(recs []domain.Record) ([]domain.Record, error) {
		i := indexOf(recs, id)
		if i < 0 {
			return nil, goerr.Wrap(ErrEntryNotFound, "cannot rename", goerr.V("entry_id", id))
		}
		recs[i].Name = name
		recs[i].Timestamp = c.stamp()
		return recs, nil
	})
}

func (c *Catalog) Delete(ctx context.Context, id int64) error {
	return c.update(ctx, func(recs []domain.Record) ([]domain.Record, error) {
		i := indexOf(recs, id)
		if i < 0 {
			return nil, goerr.Wrap(ErrEntryNotFound, "cannot delete", goerr.V("entry_id", id))
		}
		return append(recs[:i], recs[i+1:]...), nil
	})
}

// SaveLayout replaces the saved layout bundle of an entry.
func (c *Catalog) SaveLayout(ctx context.Context, id int64, l domain.SavedLayout) error {
	err := c.update(ctx, func(recs []domain.Record) ([]domain.Record, error) {
		i := indexOf(recs, id)
		if i < 0 {
			return nil, goerr.Wrap(ErrEntryNotFound, "cannot save layout", goerr.V("entry_id", id))
		}
		e := recs[i].Entry()
		l := l
		e.Layout = &l
		e.Timestamp = c.now()
		recs[i] = domain.RecordFromEntry(e)
		return recs, nil
	})
	if err == nil {
		applog.WithOperation(applog.WithComponent("catalog"), "save_layout").
			DebugContext(applog.ContextWithEntry(ctx, id), "layout saved", slog.Int("fields", len(l.Fields)))
	}
	return err
}

func (c *Catalog) stamp() string { return c.now().UTC().Format(time.RFC3339Nano) }
