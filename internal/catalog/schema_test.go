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
	"os"
	"path/filepath"
	"testing"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"labelmaker/internal/domain"
	"labelmaker/internal/settings"
	"labelmaker/internal/storage"
)

func TestCatalogFileConformsToSchema(t *testing.T) {
	fs := storage.NewFileStore(filepath.Join(t.TempDir(), "catalog.json"))
	c := New(fs)
	ctx := context.Background()
	e, err := c.Import(ctx, "people.csv", "{Name},{Email}\nAda,ada@x.com")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, err := c.Import(ctx, "plain.csv", "A\n1"); err != nil {
		t.Fatalf("Import: %v", err)
	}
	l := domain.DefaultLayout()
	l.QRField = "Email"
	if err := c.SaveLayout(ctx, e.ID, settings.Snapshot([]domain.FieldDescriptor{{Label: "Name"}, {Label: "Email", Hidden: true}}, l)); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}

	data, err := os.ReadFile(fs.Path)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	schemaBytes, err := os.ReadFile(filepath.Join("..", "..", "docs", "catalog.schema.json"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaBytes), gojsonschema.NewBytesLoader(data))
	if err != nil {
		t.Fatalf("schema validate error: %v", err)
	}
	if !result.Valid() {
		for _, e := range result.Errors() {
			t.Logf("schema error: %s", e)
		}
		t.Fatalf("catalog does not conform to schema")
	}
}
