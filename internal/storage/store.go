/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"fmt"
	"io"

	"labelmaker/internal/config"
)

// BlobStore holds one serialized collection. Get returns nil when nothing was stored yet.
type BlobStore interface {
	Get(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, data []byte) error
}

// Store is a BlobStore owning resources that must be released.
type Store interface {
	BlobStore
	io.Closer
}

// Open builds the backend selected by cfg.General.Store.
func Open(cfg config.AppConfig) (Store, error) {
	switch cfg.General.Store {
	case "", config.StoreFile:
		return NewFileStore(cfg.General.CatalogFile()), nil
	case config.StoreSQLite:
		return OpenSQLite(context.Background(), cfg.General.CatalogDB())
	case config.StoreMemory:
		return NewMemoryStore(nil), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.General.Store)
	}
}
