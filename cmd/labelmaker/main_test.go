/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"labelmaker/internal/catalog"
	"labelmaker/internal/domain"
	"labelmaker/internal/storage"
)

func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{out: &out}
	full := append([]string{"--config", filepath.Join(dataDir, "config.yaml"), "--data-dir", dataDir, "--store", "file"}, args...)
	err := a.run(context.Background(), full)
	return out.String(), err
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dataDir, args...)
	if err != nil {
		t.Fatalf("labelmaker %v: %v\n%s", args, err, out)
	}
	return out
}

func onlyEntryID(t *testing.T, dataDir string) int64 {
	t.Helper()
	cat := catalog.New(storage.NewFileStore(filepath.Join(dataDir, "catalog.json")))
	all, err := cat.List(context.Background(), catalog.OrderStored)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("catalog has %d entries", len(all))
	}
	return all[0].ID
}

func TestCatalogCommands(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "people.csv")
	if err := os.WriteFile(csv, []byte("Name,Email\nAda,ada@example.com\nGrace,grace@example.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, dir, "import", csv)
	if !strings.Contains(out, "Imported people.csv") || !strings.Contains(out, "2 fields") {
		t.Fatalf("import output = %q", out)
	}
	id := strconv.FormatInt(onlyEntryID(t, dir), 10)

	out = mustRun(t, dir, "list", "--order", "desc")
	if !strings.Contains(out, "people.csv") || !strings.Contains(out, id) {
		t.Fatalf("list output = %q", out)
	}
	if _, err := runCLI(t, dir, "list", "--order", "sideways"); err == nil {
		t.Fatalf("bad order accepted")
	}

	out = mustRun(t, dir, "map", id, "--hide", "Email", "--qr", "Email", "--qr-pos", "left", "--width", "60", "--unit", "mm", "--save")
	if !strings.Contains(out, "Layout saved.") || strings.Contains(out, "Email: ada@example.com") {
		t.Fatalf("map output = %q", out)
	}
	if !strings.Contains(out, "(QR left) ada@example.com") {
		t.Fatalf("qr binding missing: %q", out)
	}

	out = mustRun(t, dir, "show", id)
	for _, want := range []string{"Saved field layout applied.", "- 1 Email", "Card: 60mm", "Name: Grace"} {
		if !strings.Contains(out, want) {
			t.Fatalf("show output lacks %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, dir, "map", id, "--hide", "Phone"); err == nil {
		t.Fatalf("unknown field accepted")
	}

	mustRun(t, dir, "rename", id, "crew.csv")
	if out := mustRun(t, dir, "list"); !strings.Contains(out, "crew.csv") {
		t.Fatalf("rename not listed: %q", out)
	}
	mustRun(t, dir, "delete", id)
	if out := mustRun(t, dir, "list"); !strings.Contains(out, "No files imported yet.") {
		t.Fatalf("list after delete = %q", out)
	}
	if _, err := runCLI(t, dir, "delete", id); err == nil {
		t.Fatalf("deleting a missing entry succeeded")
	}
}

func TestBundleCommands(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	csv := filepath.Join(src, "stock.csv")
	if err := os.WriteFile(csv, []byte("SKU,Qty\nA-1,4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mustRun(t, src, "import", csv, "--name", "Stock")
	zip := filepath.Join(src, "stock.zip")
	if out := mustRun(t, src, "bundle", "export", zip); !strings.Contains(out, "Exported 1 entries") {
		t.Fatalf("export output = %q", out)
	}
	if out := mustRun(t, dst, "bundle", "install", zip); !strings.Contains(out, "Installed 1 entries, skipped 0") {
		t.Fatalf("install output = %q", out)
	}
	if out := mustRun(t, dst, "bundle", "install", zip); !strings.Contains(out, "Installed 0 entries, skipped 1") {
		t.Fatalf("second install output = %q", out)
	}
	if onlyEntryID(t, dst) != onlyEntryID(t, src) {
		t.Fatalf("installed entry has a different id")
	}
}

func TestComposeCommands(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "label.json")
	mustRun(t, dir, "compose", "new", doc)
	if _, err := runCLI(t, dir, "compose", "new", doc); err == nil {
		t.Fatalf("compose new overwrote an existing document")
	}
	if out := mustRun(t, dir, "compose", "add", doc, "qr"); !strings.Contains(out, "Added qr-2") {
		t.Fatalf("add output = %q", out)
	}
	if _, err := runCLI(t, dir, "compose", "add", doc, "star"); err == nil {
		t.Fatalf("unknown kind accepted")
	}
	mustRun(t, dir, "compose", "orient", doc, "portrait")
	mustRun(t, dir, "compose", "align", doc)

	b, err := os.ReadFile(doc)
	if err != nil {
		t.Fatal(err)
	}
	var got domain.LabelDocument
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode doc: %v", err)
	}
	if len(got.Elements) != 5 {
		t.Fatalf("elements = %d", len(got.Elements))
	}
	if got.Canvas.Orientation != domain.Portrait || got.Canvas.Width != 200 || got.Canvas.Height != 400 {
		t.Fatalf("canvas = %+v", got.Canvas)
	}
	if _, err := os.Stat(filepath.Join(dir, storage.BackupsDirName)); err != nil {
		t.Fatalf("document edits kept no backups: %v", err)
	}
}

func TestVersionSkipsStore(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "version")
	if err != nil || !strings.HasPrefix(out, "labelmaker ") {
		t.Fatalf("version = %q %v", out, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "catalog.json")); !os.IsNotExist(err) {
		t.Fatalf("version touched the catalog")
	}
}
