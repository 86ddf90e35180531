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
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	applog "labelmaker/internal/log"
)

// Watch calls fn whenever the catalog file is changed by someone other than this store.
// The directory is watched rather than the file because writers replace it by rename.
// Watch blocks until ctx is done.
func (s *FileStore) Watch(ctx context.Context, fn func()) error {
	l := applog.WithOperation(applog.WithComponent("storage"), "file_watch").With(slog.String("path", s.Path))
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	name := filepath.Base(s.Path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !(event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Remove)) {
				continue
			}
			if s.ownWrite() {
				continue
			}
			l.Debug("catalog changed externally", slog.String("op", event.Op.String()))
			fn()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Error("fsnotify watcher error", slog.Any("err", err))
		}
	}
}

// ownWrite reports whether the file on disk is exactly what the last Put produced.
func (s *FileStore) ownWrite() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastMod.IsZero() {
		return false
	}
	st, err := os.Stat(s.Path)
	if err != nil {
		return false
	}
	return st.ModTime().Equal(s.lastMod) && st.Size() == s.lastSize
}
