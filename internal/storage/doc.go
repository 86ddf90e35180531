/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists the catalog collection as a single blob.
// The file backend writes catalog.json transactionally with timestamped backups and falls back
// to the newest readable backup when the current file is damaged.
// The SQLite backend keeps the blob in one row of an embedded database at <data>/catalog.db.
// Stores are get-all/set-all: callers read the whole collection, change it and write it back.
package storage
