/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

const sc = "canvas"

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxDepth: 10, MinInterval: -1})
	t0 := time.Now()
	// state goes a -> b -> c
	m.PushSnapshot(Snapshot{Scope: sc, Blob: []byte("a"), TS: t0})
	m.PushSnapshot(Snapshot{Scope: sc, Blob: []byte("b"), TS: t0})
	if _, scopes, total := m.Stats(); scopes != 1 || total != 2 {
		t.Fatalf("expected 1 scope and 2 snapshots, got scopes=%d total=%d", scopes, total)
	}
	s, ok := m.Undo(sc, []byte("c"))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, s.Blob)
	}
	s, ok = m.Undo(sc, []byte("b"))
	if !ok || string(s.Blob) != "a" {
		t.Fatalf("second undo expected 'a', got ok=%v blob=%q", ok, s.Blob)
	}
	if _, ok := m.Undo(sc, []byte("a")); ok {
		t.Fatalf("undo past the first snapshot should fail")
	}
	s, ok = m.Redo(sc, []byte("a"))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("redo expected 'b', got ok=%v blob=%q", ok, s.Blob)
	}
	s, ok = m.Redo(sc, []byte("b"))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("redo expected 'c', got ok=%v blob=%q", ok, s.Blob)
	}
	if m.CanRedo(sc) || !m.CanUndo(sc) {
		t.Fatalf("stack flags wrong after full redo")
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{MinInterval: -1})
	m.PushSnapshot(Snapshot{Scope: sc, Blob: []byte("a"), TS: time.Now()})
	m.Undo(sc, []byte("b"))
	m.PushSnapshot(Snapshot{Scope: sc, Blob: []byte("a"), TS: time.Now()})
	if m.CanRedo(sc) {
		t.Fatalf("a new change must invalidate redo")
	}
	if tb, _, _ := m.Stats(); tb != 1 {
		t.Fatalf("byte accounting off: %d", tb)
	}
}

func TestCoalesceKeepsStateBeforeBurst(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxDepth: 10, MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	m.PushSnapshot(Snapshot{Scope: sc, Blob: []byte("1"), TS: t0})
	m.PushSnapshot(Snapshot{Scope: sc, Blob: []byte("2"), TS: t0.Add(10 * time.Millisecond)})
	m.PushSnapshot(Snapshot{Scope: sc, Blob: []byte("3"), TS: t0.Add(40 * time.Millisecond)})
	if _, _, total := m.Stats(); total != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", total)
	}
	s, ok := m.Undo(sc, []byte("4"))
	if !ok || string(s.Blob) != "1" {
		t.Fatalf("expected state before burst '1', got ok=%v blob=%q", ok, s.Blob)
	}
}

func TestDepthCap(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxDepth: 2, MinInterval: time.Millisecond})
	for i := 0; i < 10; i++ {
		m.PushSnapshot(Snapshot{Scope: sc, Blob: []byte("xxxxx"), TS: time.Now().Add(time.Duration(i) * time.Second)})
	}
	tb, _, total := m.Stats()
	if total != 2 || tb != 10 {
		t.Fatalf("expected depth cap 2 (10 bytes), got %d snapshots / %d bytes", total, tb)
	}
}

func TestGlobalPruneAcrossScopes(t *testing.T) {
	m := NewManager(Config{MaxBytes: 8, MinInterval: time.Millisecond})
	t0 := time.Now()
	m.PushSnapshot(Snapshot{Scope: "one", Blob: []byte("xxxx"), TS: t0})
	m.PushSnapshot(Snapshot{Scope: "two", Blob: []byte("yyyy"), TS: t0.Add(time.Second)})
	m.PushSnapshot(Snapshot{Scope: "two", Blob: []byte("zzzz"), TS: t0.Add(2 * time.Second)})
	if _, ok := m.Undo("one", nil); ok {
		t.Fatalf("expected scope one to have been pruned")
	}
	if _, ok := m.Undo("two", nil); !ok {
		t.Fatalf("expected scope two to have snapshots")
	}
}

func TestClearAndStats(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxDepth: 10, MinInterval: time.Millisecond})
	m.PushSnapshot(Snapshot{Scope: sc, Blob: []byte("abcdef"), TS: time.Now()})
	m.Undo(sc, []byte("ghi"))
	m.Redo(sc, []byte("abcdef"))
	tb, scopes, total := m.Stats()
	if tb == 0 || scopes != 1 || total != 1 {
		t.Fatalf("unexpected stats before clear: tb=%d scopes=%d total=%d", tb, scopes, total)
	}
	m.Clear(sc)
	tb2, scopes2, total2 := m.Stats()
	if tb2 != 0 || scopes2 != 0 || total2 != 0 {
		t.Fatalf("expected cleared stats to be zero, got tb=%d scopes=%d total=%d", tb2, scopes2, total2)
	}
}
