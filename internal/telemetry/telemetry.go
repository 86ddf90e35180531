/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in, anonymous command events and crash reports.
// Nothing is sent unless LBL_TELEMETRY_OPT_IN is set and an endpoint is configured.
//
// Environment:
//
//	LBL_TELEMETRY_OPT_IN      1, true, yes or on
//	LBL_TELEMETRY_URL         endpoint for JSON events
//	LBL_CRASH_UPLOAD_URL      endpoint for plain-text crash reports
//	LBL_TELEMETRY_TIMEOUT_MS  request timeout, default 1500
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	applog "labelmaker/internal/log"
	"labelmaker/internal/version"
)

type Config struct {
	OptIn     bool
	EventsURL string
	CrashURL  string
	Timeout   time.Duration
}

func FromEnv() Config {
	cfg := Config{
		OptIn:     parseBool(os.Getenv("LBL_TELEMETRY_OPT_IN")),
		EventsURL: strings.TrimSpace(os.Getenv("LBL_TELEMETRY_URL")),
		CrashURL:  strings.TrimSpace(os.Getenv("LBL_CRASH_UPLOAD_URL")),
		Timeout:   1500 * time.Millisecond,
	}
	if ms, err := strconv.Atoi(strings.TrimSpace(os.Getenv("LBL_TELEMETRY_TIMEOUT_MS"))); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	return cfg
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Client queues events and posts them from one goroutine. A full queue drops events.
type Client struct {
	cfg  Config
	log  *slog.Logger
	http *http.Client
	q    chan map[string]any
	wg   sync.WaitGroup
	once sync.Once
}

// New starts a client. Call Close to drain and stop it.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 1500 * time.Millisecond
	}
	c := &Client{
		cfg:  cfg,
		log:  applog.WithComponent("telemetry"),
		http: &http.Client{Timeout: cfg.Timeout},
		q:    make(chan map[string]any, 64),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

// Enabled reports whether events are sent.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Event queues a named event. props must not carry file names or cell values.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	payload := map[string]any{
		"name":    name,
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"version": version.String(),
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	}
	for k, v := range props {
		payload[k] = v
	}
	select {
	case c.q <- payload:
	default:
	}
}

// Close stops accepting events and waits until queued ones are sent.
func (c *Client) Close() {
	c.once.Do(func() { close(c.q) })
	c.wg.Wait()
}

func (c *Client) loop() {
	defer c.wg.Done()
	for item := range c.q {
		buf, err := json.Marshal(item)
		if err != nil {
			continue
		}
		if err := c.post(context.Background(), c.cfg.EventsURL, "application/json", buf); err != nil {
			c.log.Debug("telemetry send failed", slog.Any("err", err))
		}
	}
}

// UploadCrash posts report to the crash endpoint and waits for the answer, since the
// process is about to exit. It is a no-op unless opted in.
func (c *Client) UploadCrash(ctx context.Context, report []byte) error {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return nil
	}
	return c.post(ctx, c.cfg.CrashURL, "text/plain; charset=utf-8", report)
}

func (c *Client) post(ctx context.Context, url, ctype string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", ctype)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telemetry endpoint answered %s", resp.Status)
	}
	return nil
}
