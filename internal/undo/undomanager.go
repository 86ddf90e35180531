/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps bounded undo/redo stacks of opaque state blobs, one pair per scope.
package undo

import (
	"sync"
	"time"
)

// Snapshot is a reversible state blob captured before a change.
// Blob content is opaque to the manager; size is estimated as len(Blob).
type Snapshot struct {
	Scope string
	Blob  []byte
	TS    time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxDepth limits the undo entries per scope (0 means unlimited).
	MaxDepth int
	// MinInterval coalesces snapshots pushed within the interval for the same scope: the
	// earlier snapshot is kept so one undo reverts the whole burst. Negative disables it.
	MinInterval time.Duration
}

// Manager provides in-memory undo/redo stacks per scope. It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex
	// per-scope stacks
	undo map[string][]Snapshot
	redo map[string][]Snapshot
	// accounting
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// PushSnapshot records the state before a change. Any push clears the scope's redo stack.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearRedoLocked(s.Scope)
	stack := m.undo[s.Scope]
	if n := len(stack); n > 0 && m.cfg.MinInterval > 0 {
		if s.TS.Sub(stack[n-1].TS) < m.cfg.MinInterval {
			// coalesce: keep the state from before the burst, refresh its time
			stack[n-1].TS = s.TS
			return
		}
	}
	m.undo[s.Scope] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.Scope)
}

// Undo pops the latest snapshot of scope, parks current on the redo stack and returns the
// popped state for the caller to restore.
func (m *Manager) Undo(scope string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[scope]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[scope] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	r := Snapshot{Scope: scope, Blob: current, TS: s.TS}
	m.redo[scope] = append(m.redo[scope], r)
	m.totalBytes += len(r.Blob)
	return s, true
}

// Redo reverses the last Undo of scope, parking current back on the undo stack.
func (m *Manager) Redo(scope string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[scope]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[scope] = r[:len(r)-1]
	m.totalBytes -= len(s.Blob)
	m.undo[scope] = append(m.undo[scope], Snapshot{Scope: scope, Blob: current, TS: s.TS})
	m.totalBytes += len(current)
	m.enforceCapsLocked(scope)
	return s, true
}

// CanUndo and CanRedo report whether the stacks of scope are non-empty.
func (m *Manager) CanUndo(scope string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[scope]) > 0
}

func (m *Manager) CanRedo(scope string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo[scope]) > 0
}

// Clear drops both stacks of scope to free memory.
func (m *Manager) Clear(scope string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[scope] {
		m.totalBytes -= len(s.Blob)
	}
	m.clearRedoLocked(scope)
	delete(m.undo, scope)
	delete(m.redo, scope)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, scopes int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	scopes = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, scopes, totalSnapshots
}

func (m *Manager) clearRedoLocked(scope string) {
	for _, s := range m.redo[scope] {
		m.totalBytes -= len(s.Blob)
	}
	m.redo[scope] = nil
}

func (m *Manager) enforceCapsLocked(scope string) {
	if m.cfg.MaxDepth > 0 {
		stack := m.undo[scope]
		if len(stack) > m.cfg.MaxDepth {
			// drop the oldest extras
			toDrop := len(stack) - m.cfg.MaxDepth
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[scope] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across all scopes
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestScope := ""
		found := false
		var oldestTS time.Time
		for sc, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldestScope, oldestTS, found = sc, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldestScope]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestScope] = stack[1:]
		if len(m.undo[oldestScope]) == 0 {
			delete(m.undo, oldestScope)
		}
	}
}
