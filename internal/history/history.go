/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history implements a linear snapshot history with a cursor.
// Entries past the cursor are the redo branch and are pruned on the next push.
package history

import "time"

// Entry is one recorded state. State must not be mutated after it is pushed.
type Entry[T any] struct {
	State T
	// Label names the mutation that produced the state, e.g. "add" or "delete".
	Label string
	// Origin is the id of the object the mutation was about, if any.
	Origin string
	TS     time.Time
}

// Config controls the depth cap.
type Config struct {
	// MaxEntries caps the number of retained entries. Zero or less keeps
	// every entry.
	MaxEntries int
}

// Stack is a cursor-based undo/redo history. The cursor always indexes a valid
// entry. Stack is not safe for concurrent use; callers serialize access.
type Stack[T any] struct {
	cfg     Config
	entries []Entry[T]
	cursor  int
	now     func() time.Time
}

// New returns a stack holding the single initial state.
func New[T any](cfg Config, initial T) *Stack[T] {
	s := &Stack[T]{cfg: cfg, now: time.Now}
	s.Reset(initial)
	return s
}

// Reset discards all entries and starts over from state.
func (s *Stack[T]) Reset(state T) {
	s.entries = []Entry[T]{{State: state, Label: "init", TS: s.now()}}
	s.cursor = 0
}

// Push truncates any redo branch, appends a new entry and advances the cursor.
func (s *Stack[T]) Push(state T, label, origin string) {
	s.entries = append(s.entries[:s.cursor+1], Entry[T]{State: state, Label: label, Origin: origin, TS: s.now()})
	s.cursor = len(s.entries) - 1
	s.enforceCap()
}

// Amend replaces the state of the entry at the cursor and drops any redo
// branch. The label and origin are kept.
func (s *Stack[T]) Amend(state T) {
	s.entries = s.entries[:s.cursor+1]
	e := &s.entries[s.cursor]
	e.State = state
	e.TS = s.now()
}

// Drop removes the entry at the cursor together with any redo branch and
// returns the state now current. The initial entry is never dropped.
func (s *Stack[T]) Drop() (T, bool) {
	if s.cursor == 0 {
		return s.entries[0].State, false
	}
	s.entries = s.entries[:s.cursor]
	s.cursor--
	return s.entries[s.cursor].State, true
}

// Undo moves the cursor back one entry. It is a no-op at the floor.
func (s *Stack[T]) Undo() (T, bool) {
	if !s.CanUndo() {
		return s.entries[s.cursor].State, false
	}
	s.cursor--
	return s.entries[s.cursor].State, true
}

// Redo moves the cursor forward one entry if a redo branch exists.
func (s *Stack[T]) Redo() (T, bool) {
	if !s.CanRedo() {
		return s.entries[s.cursor].State, false
	}
	s.cursor++
	return s.entries[s.cursor].State, true
}

// Current returns the entry at the cursor.
func (s *Stack[T]) Current() Entry[T] { return s.entries[s.cursor] }

func (s *Stack[T]) CanUndo() bool { return s.cursor > 0 }
func (s *Stack[T]) CanRedo() bool { return s.cursor < len(s.entries)-1 }

// Stats returns the number of retained entries and the cursor position.
func (s *Stack[T]) Stats() (entries, cursor int) { return len(s.entries), s.cursor }

// enforceCap drops the oldest entries beyond MaxEntries and shifts the cursor.
func (s *Stack[T]) enforceCap() {
	if s.cfg.MaxEntries <= 0 {
		return
	}
	over := len(s.entries) - s.cfg.MaxEntries
	if over <= 0 {
		return
	}
	s.entries = append([]Entry[T](nil), s.entries[over:]...)
	s.cursor -= over
	if s.cursor < 0 {
		s.cursor = 0
	}
}
