/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package bundle moves catalog entries between installations as a single zip archive.
//
// Layout of a bundle:
//
//	manifest.json   bundle id, creator version, entry count
//	catalog.json    the entries in the persisted record format, layouts included
//	csv/<id>.csv    raw content of each entry, for inspection outside the app
//
// Only catalog.json is read back on install.
package bundle

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"labelmaker/internal/catalog"
	"labelmaker/internal/domain"
	applog "labelmaker/internal/log"
	"labelmaker/internal/version"
)

const (
	ManifestName = "manifest.json"
	CatalogName  = "catalog.json"
	csvDir       = "csv"
	// FormatVersion is bumped when the archive layout changes incompatibly.
	FormatVersion = 1
)

var (
	ErrNoCatalog = errors.New("bundle has no catalog.json")
	ErrFormat    = errors.New("unsupported bundle format")
)

// Manifest describes a bundle.
type Manifest struct {
	ID        string `json:"id"`
	Format    int    `json:"format"`
	CreatedBy string `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
	Entries   int    `json:"entries"`
}

// Export writes every catalog entry to a zip at destZipPath. An existing file is replaced.
func Export(ctx context.Context, cat *catalog.Catalog, destZipPath string) (Manifest, error) {
	l := applog.WithOperation(applog.WithComponent("bundle"), "export").With(slog.String("zip", destZipPath))
	if strings.TrimSpace(destZipPath) == "" {
		return Manifest{}, errors.New("destZipPath is required")
	}
	entries, err := cat.List(ctx, catalog.OrderStored)
	if err != nil {
		return Manifest{}, fmt.Errorf("list catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return Manifest{}, fmt.Errorf("ensure zip dir: %w", err)
	}
	_ = os.Remove(destZipPath)

	m := Manifest{
		ID:        uuid.NewString(),
		Format:    FormatVersion,
		CreatedBy: version.String(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:   len(entries),
	}
	if err := writeZip(destZipPath, m, entries); err != nil {
		_ = os.Remove(destZipPath)
		l.Error("zip build failed", slog.Any("err", err))
		return Manifest{}, fmt.Errorf("build zip: %w", err)
	}
	l.Info("catalog bundle exported", slog.Int("entries", len(entries)), slog.String("bundle", m.ID))
	return m, nil
}

func writeZip(path string, m Manifest, entries []domain.CatalogEntry) (err error) {
	zf, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := zf.Close(); err == nil {
			err = cerr
		}
	}()
	zw := zip.NewWriter(zf)
	recs := make([]domain.Record, len(entries))
	for i, e := range entries {
		recs[i] = domain.RecordFromEntry(e)
	}
	if err := addJSON(zw, ManifestName, m); err != nil {
		return err
	}
	if err := addJSON(zw, CatalogName, recs); err != nil {
		return err
	}
	for _, e := range entries {
		w, err := zw.Create(fmt.Sprintf("%s/%d.csv", csvDir, e.ID))
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, e.Content); err != nil {
			return err
		}
	}
	return zw.Close()
}

func addJSON(zw *zip.Writer, name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// Result summarizes an install.
type Result struct {
	Manifest  Manifest
	Installed int
	Skipped   int
}

// Install restores the entries of the bundle at packZipPath into cat. Entries whose id
// already exists are skipped, not overwritten.
func Install(ctx context.Context, cat *catalog.Catalog, packZipPath string) (Result, error) {
	l := applog.WithOperation(applog.WithComponent("bundle"), "install").With(slog.String("zip", packZipPath))
	if strings.TrimSpace(packZipPath) == "" {
		return Result{}, errors.New("packZipPath is required")
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return Result{}, fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = r.Close() }()

	var res Result
	var recs []domain.Record
	found := false
	for _, f := range r.File {
		switch f.Name {
		case ManifestName:
			if err := readJSON(f, &res.Manifest); err != nil {
				return res, goerr.Wrap(err, "read manifest", goerr.V("zip", packZipPath))
			}
		case CatalogName:
			if err := readJSON(f, &recs); err != nil {
				return res, goerr.Wrap(err, "read catalog", goerr.V("zip", packZipPath))
			}
			found = true
		}
	}
	if !found {
		return res, goerr.Wrap(ErrNoCatalog, "cannot install", goerr.V("zip", packZipPath))
	}
	if res.Manifest.Format > FormatVersion {
		return res, goerr.Wrap(ErrFormat, "bundle is newer than this build",
			goerr.V("format", res.Manifest.Format), goerr.V("supported", FormatVersion))
	}
	// restore prepends, so walk backwards to keep the stored order
	for i := len(recs) - 1; i >= 0; i-- {
		rec := recs[i]
		added, err := cat.Restore(ctx, rec.Entry())
		if err != nil {
			return res, err
		}
		if added {
			res.Installed++
		} else {
			l.Warn("skip existing entry", slog.Int64("entry_id", rec.ID))
			res.Skipped++
		}
	}
	l.Info("catalog bundle installed", slog.Int("installed", res.Installed), slog.Int("skipped", res.Skipped))
	return res, nil
}

func readJSON(f *zip.File, v any) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	return json.NewDecoder(rc).Decode(v)
}
