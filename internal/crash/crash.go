/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a report file, an autosaved label and a non-zero exit.
package crash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "labelmaker/internal/log"
	"labelmaker/internal/session"
	"labelmaker/internal/storage"
	"labelmaker/internal/telemetry"
	"labelmaker/internal/version"
)

const AutosaveDirName = "autosave"

// exitFn is swapped in tests.
var exitFn = os.Exit

// Target is what a crash may rescue. Every member is optional.
type Target struct {
	// DataDir receives backups/crash-*.log and autosave/<session>.json. Empty means the temp dir
	// and no autosave.
	DataDir   string
	Session   *session.Session
	Telemetry *telemetry.Client
}

// Recover captures a panic, logs it with its stack, writes a report, autosaves the label being
// composed and exits with code 2.
//
// t may be filled in after the deferral. Usage: defer crash.Recover(&t)
func Recover(target *Target) {
	r := recover()
	if r == nil {
		return
	}
	var t Target
	if target != nil {
		t = *target
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, report, err := writeReport(t, r, stack)
	if err != nil {
		l.Error("crash report write failed", slog.Any("err", err))
	}
	if t.Session != nil && t.DataDir != "" {
		if path, err := Autosave(context.Background(), t.DataDir, t.Session); err != nil {
			l.Error("autosave failed", slog.Any("err", err))
		} else {
			l.Info("label autosaved", slog.String("path", path))
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := t.Telemetry.UploadCrash(ctx, report); err != nil {
		l.Warn("crash upload failed", slog.Any("err", err))
	}
	cancel()

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// Autosave writes the session's label document to <dataDir>/autosave/<session id>.json,
// keeping earlier autosaves of the same session as backups.
func Autosave(ctx context.Context, dataDir string, s *session.Session) (string, error) {
	b, err := json.MarshalIndent(s.Document(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode label: %w", err)
	}
	st := storage.NewFileStore(filepath.Join(dataDir, AutosaveDirName, s.ID()+".json"))
	if err := st.Put(ctx, append(b, '\n')); err != nil {
		return "", err
	}
	return st.Path, nil
}

func writeReport(t Target, panicVal any, stack []byte) (string, []byte, error) {
	dir := os.TempDir()
	if t.DataDir != "" {
		dir = filepath.Join(t.DataDir, storage.BackupsDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "labelmaker crash report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if t.Session != nil {
		_, _ = fmt.Fprintf(&buf, "Session: %s\n", t.Session.ID())
		if e, ok := t.Session.ActiveEntry(); ok {
			// id only; names and cell values stay local
			_, _ = fmt.Fprintf(&buf, "Entry: %d\n", e.ID)
		}
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, buf.Bytes(), err
	}
	return path, buf.Bytes(), nil
}
