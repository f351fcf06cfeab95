/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import "testing"

func TestPushUndoRedo(t *testing.T) {
	s := New(Config{}, "")
	s.Push("a", "add", "1")
	s.Push("ab", "add", "2")
	if n, c := s.Stats(); n != 3 || c != 2 {
		t.Fatalf("expected 3 entries at cursor 2, got %d at %d", n, c)
	}
	st, ok := s.Undo()
	if !ok || st != "a" {
		t.Fatalf("undo expected 'a', got ok=%v state=%q", ok, st)
	}
	st, ok = s.Redo()
	if !ok || st != "ab" {
		t.Fatalf("redo expected 'ab', got ok=%v state=%q", ok, st)
	}
	if _, ok := s.Redo(); ok {
		t.Fatalf("redo past the head must be a no-op")
	}
}

func TestUndoFloor(t *testing.T) {
	s := New(Config{}, "empty")
	s.Push("x", "add", "")
	s.Undo()
	st, ok := s.Undo()
	if ok || st != "empty" {
		t.Fatalf("undo at floor should be a no-op returning the initial state, got ok=%v %q", ok, st)
	}
	if s.CanUndo() {
		t.Fatalf("CanUndo at floor")
	}
}

func TestPushTruncatesRedoBranch(t *testing.T) {
	s := New(Config{}, 0)
	s.Push(1, "", "")
	s.Push(2, "", "")
	s.Undo()
	s.Push(3, "", "")
	if s.CanRedo() {
		t.Fatalf("redo branch should be pruned after push")
	}
	if n, _ := s.Stats(); n != 3 {
		t.Fatalf("expected 3 entries after truncation, got %d", n)
	}
	if got := s.Current().State; got != 3 {
		t.Fatalf("current = %d, want 3", got)
	}
}

func TestAmendAndDrop(t *testing.T) {
	s := New(Config{}, 0)
	s.Push(1, "add", "shape-1")
	s.Amend(10)
	cur := s.Current()
	if cur.State != 10 || cur.Label != "add" || cur.Origin != "shape-1" {
		t.Fatalf("amend lost metadata or state: %+v", cur)
	}
	st, ok := s.Drop()
	if !ok || st != 0 {
		t.Fatalf("drop expected initial state, got ok=%v %d", ok, st)
	}
	if _, ok := s.Drop(); ok {
		t.Fatalf("initial entry must never be dropped")
	}
}

func TestMaxEntriesCap(t *testing.T) {
	s := New(Config{MaxEntries: 3}, 0)
	for i := 1; i <= 10; i++ {
		s.Push(i, "", "")
	}
	n, c := s.Stats()
	if n != 3 || c != 2 {
		t.Fatalf("expected cap of 3 with cursor 2, got %d at %d", n, c)
	}
	for s.CanUndo() {
		s.Undo()
	}
	if got := s.Current().State; got != 8 {
		t.Fatalf("oldest retained state = %d, want 8", got)
	}
}

func TestZeroMaxEntriesKeepsEverything(t *testing.T) {
	s := New(Config{}, 0)
	for i := 1; i <= 500; i++ {
		s.Push(i, "", "")
	}
	if n, c := s.Stats(); n != 501 || c != 500 {
		t.Fatalf("expected 501 entries with cursor 500, got %d at %d", n, c)
	}
	for s.CanUndo() {
		s.Undo()
	}
	if got := s.Current().State; got != 0 {
		t.Fatalf("floor state = %d, want initial 0", got)
	}
}
