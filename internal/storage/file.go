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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	applog "labelmaker/internal/log"
)

const (
	BackupsDirName = "backups"
	// DefaultMaxBackups is how many timestamped backups a FileStore keeps.
	DefaultMaxBackups = 10
	backupStamp       = "20060102-150405"
)

// FileStore keeps the blob in a JSON file. Writes go to a temp file in the same directory
// which is then renamed over the target; the previous file is copied to backups/ first.
type FileStore struct {
	Path       string
	MaxBackups int

	mu sync.Mutex
	// last own write, used by Watch to skip self-notifications
	lastMod  time.Time
	lastSize int64
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path, MaxBackups: DefaultMaxBackups}
}

func (s *FileStore) backupsDir() string { return filepath.Join(filepath.Dir(s.Path), BackupsDirName) }

// Get reads the file. A missing file yields nil. When the file cannot be read or is not
// valid JSON, the newest valid backup is returned instead; if there is none the read error
// is returned, or the damaged bytes so the caller can decide.
func (s *FileStore) Get(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := applog.WithOperation(applog.WithComponent("storage"), "file_get")
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		bb, berr := s.latestBackup()
		if berr != nil {
			return nil, fmt.Errorf("read catalog: %w; backup attempt: %v", err, berr)
		}
		l.Warn("catalog unreadable, using backup", slog.Any("err", err))
		return bb, nil
	}
	if !json.Valid(b) {
		bb, berr := s.latestBackup()
		if berr != nil {
			l.Warn("catalog damaged and no usable backup", slog.String("path", s.Path), slog.Any("err", berr))
			return b, nil
		}
		l.Warn("catalog damaged, using backup", slog.String("path", s.Path))
		return bb, nil
	}
	return b, nil
}

// Put writes data with transactional semantics and a timestamped backup of the previous file.
func (s *FileStore) Put(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(s.Path) == "" {
		return errors.New("file store: path is required")
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	bdir := s.backupsDir()
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	name := filepath.Base(s.Path)
	if _, statErr := os.Stat(s.Path); statErr == nil {
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", name, time.Now().Format(backupStamp)))
		if cerr := copyFile(s.Path, bpath); cerr != nil {
			return fmt.Errorf("backup current catalog: %w", cerr)
		}
		s.pruneBackups()
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", name, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp catalog: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(s.Path); err == nil {
		_ = os.Remove(s.Path)
	}
	if rerr := os.Rename(temp, s.Path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace catalog: %w", rerr)
	}
	if st, err := os.Stat(s.Path); err == nil {
		s.lastMod, s.lastSize = st.ModTime(), st.Size()
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Backups lists backup files oldest first.
func (s *FileStore) Backups() ([]string, error) {
	ents, err := os.ReadDir(s.backupsDir())
	if err != nil {
		return nil, err
	}
	prefix := filepath.Base(s.Path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(s.backupsDir(), name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

func (s *FileStore) pruneBackups() {
	keep := s.MaxBackups
	if keep <= 0 {
		return
	}
	all, err := s.Backups()
	if err != nil || len(all) <= keep {
		return
	}
	for _, p := range all[:len(all)-keep] {
		_ = os.Remove(p)
	}
}

// latestBackup returns the newest backup that holds valid JSON.
func (s *FileStore) latestBackup() ([]byte, error) {
	all, err := s.Backups()
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	if len(all) == 0 {
		return nil, errors.New("no backups found")
	}
	for i := len(all) - 1; i >= 0; i-- {
		b, err := os.ReadFile(all[i])
		if err == nil && json.Valid(b) {
			return b, nil
		}
	}
	return nil, errors.New("no readable backup")
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
