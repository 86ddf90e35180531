/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type sink struct {
	mu      sync.Mutex
	events  []map[string]any
	crashes []string
}

func (s *sink) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		_ = json.NewDecoder(r.Body).Decode(&m)
		s.mu.Lock()
		s.events = append(s.events, m)
		s.mu.Unlock()
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.crashes = append(s.crashes, string(b))
		s.mu.Unlock()
	})
	mux.HandleFunc("/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestEventsAndCrashUpload(t *testing.T) {
	var s sink
	srv := s.server(t)
	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	if !c.Enabled() {
		t.Fatalf("client disabled")
	}
	c.Event("command", map[string]any{"cmd": "list"})
	c.Event("", nil)
	if err := c.UploadCrash(context.Background(), []byte("panic: boom")); err != nil {
		t.Fatalf("UploadCrash: %v", err)
	}
	c.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) != 1 || s.events[0]["name"] != "command" || s.events[0]["cmd"] != "list" {
		t.Fatalf("events = %+v", s.events)
	}
	if s.events[0]["version"] == "" {
		t.Fatalf("version missing")
	}
	if len(s.crashes) != 1 || s.crashes[0] != "panic: boom" {
		t.Fatalf("crashes = %q", s.crashes)
	}
}

func TestDisabledSendsNothing(t *testing.T) {
	var s sink
	srv := s.server(t)
	c := New(Config{EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash"})
	if c.Enabled() {
		t.Fatalf("enabled without opt-in")
	}
	c.Event("command", nil)
	if err := c.UploadCrash(context.Background(), []byte("x")); err != nil {
		t.Fatalf("UploadCrash: %v", err)
	}
	c.Close()
	c.Close()
	if len(s.events) != 0 || len(s.crashes) != 0 {
		t.Fatalf("sent while disabled: %d events %d crashes", len(s.events), len(s.crashes))
	}
	var nilClient *Client
	if nilClient.Enabled() || nilClient.UploadCrash(context.Background(), nil) != nil {
		t.Fatalf("nil client not inert")
	}
}

func TestCrashUploadReportsStatus(t *testing.T) {
	var s sink
	srv := s.server(t)
	c := New(Config{OptIn: true, CrashURL: srv.URL + "/fail"})
	defer c.Close()
	if err := c.UploadCrash(context.Background(), []byte("x")); err == nil {
		t.Fatalf("500 answer not reported")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LBL_TELEMETRY_OPT_IN", "Yes")
	t.Setenv("LBL_TELEMETRY_URL", " http://example.invalid/e ")
	t.Setenv("LBL_CRASH_UPLOAD_URL", "")
	t.Setenv("LBL_TELEMETRY_TIMEOUT_MS", "250")
	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "http://example.invalid/e" || cfg.CrashURL != "" || cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("cfg = %+v", cfg)
	}
	t.Setenv("LBL_TELEMETRY_TIMEOUT_MS", "soon")
	if FromEnv().Timeout != 1500*time.Millisecond {
		t.Fatalf("bad timeout not defaulted")
	}
}
