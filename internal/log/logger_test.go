/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func lastJSON(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var last []byte
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if line := bytes.TrimSpace(sc.Bytes()); len(line) > 0 {
			last = append(last[:0], line...)
		}
	}
	if last == nil {
		t.Fatalf("no log lines in %q", b)
	}
	var m map[string]any
	if err := json.Unmarshal(last, &m); err != nil {
		t.Fatalf("decode %q: %v", last, err)
	}
	return m
}

func TestJSONConsoleAndRotatingFileAgree(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "labelmaker.log")
	Init(Options{Level: "debug", Format: "json", File: file, Output: &console})

	l := WithOperation(WithComponent("session"), "save-layout")
	ctx := ContextWithEntry(ContextWithSession(context.Background(), "5f0c"), 1735689600000)
	l.InfoContext(ctx, "layout saved", slog.Int("fields", 3))

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for name, m := range map[string]map[string]any{"console": lastJSON(t, console.Bytes()), "file": lastJSON(t, b)} {
		if m["msg"] != "layout saved" || m["app"] != "labelmaker" || m["component"] != "session" || m["op"] != "save-layout" {
			t.Fatalf("%s record = %v", name, m)
		}
		if _, ok := m["ver"].(string); !ok {
			t.Fatalf("%s record lacks ver: %v", name, m)
		}
		if m["session"] != "5f0c" || m["entry_id"] != float64(1735689600000) || m["fields"] != float64(3) {
			t.Fatalf("%s context attrs = %v", name, m)
		}
	}
}

func TestContextWithoutIDsAddsNothing(t *testing.T) {
	var console bytes.Buffer
	Init(Options{Format: "json", Output: &console})
	L().InfoContext(context.Background(), "catalog opened")
	m := lastJSON(t, console.Bytes())
	if _, ok := m["session"]; ok {
		t.Fatalf("unexpected session attr: %v", m)
	}
	if _, ok := m["entry_id"]; ok {
		t.Fatalf("unexpected entry_id attr: %v", m)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"": slog.LevelInfo, "DEBUG": slog.LevelDebug, " warning ": slog.LevelWarn, "error": slog.LevelError, "loud": slog.LevelInfo}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
