/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"testing"

	"whiteboard/internal/board"
	"whiteboard/internal/vector"
)

func storeWithText(t *testing.T, content string) (*board.Store, string) {
	t.Helper()
	s := board.NewStore(board.Options{})
	id := s.AddShape(board.Shape{X: 10, Y: 10, Body: board.Note{W: 100, H: 60, Content: content}})
	return s, id
}

func content(t *testing.T, s *board.Store, id string) string {
	t.Helper()
	sh, ok := s.Shape(id)
	if !ok {
		t.Fatalf("shape %s missing", id)
	}
	c, _ := sh.Content()
	return c
}

func TestEditorEnterCommits(t *testing.T) {
	s, id := storeWithText(t, "")
	e, ok := OpenEditor(s, id)
	if !ok {
		t.Fatalf("open failed")
	}
	e.Insert("hello")
	e.Enter(true)
	e.Insert("world")
	e.Enter(false)
	if !e.Closed() {
		t.Fatalf("enter should close the editor")
	}
	if got := content(t, s, id); got != "hello\nworld" {
		t.Fatalf("content = %q", got)
	}
}

func TestEditorEscapeBeforeEditDiscards(t *testing.T) {
	s, id := storeWithText(t, "keep")
	rev := s.View().Revision
	e, _ := OpenEditor(s, id)
	e.Escape()
	if !e.Closed() || s.View().Revision != rev {
		t.Fatalf("escape without edits must not touch the store")
	}
}

func TestEditorEscapeAfterEditCommits(t *testing.T) {
	s, id := storeWithText(t, "abc")
	e, _ := OpenEditor(s, id)
	e.Backspace()
	e.Escape()
	if got := content(t, s, id); got != "ab" {
		t.Fatalf("content = %q, want ab", got)
	}
	s.Undo()
	if got := content(t, s, id); got != "abc" {
		t.Fatalf("text edit should be undoable, got %q", got)
	}
}

func TestEditorBlurWithoutChangeDoesNothing(t *testing.T) {
	s, id := storeWithText(t, "same")
	rev := s.View().Revision
	e, _ := OpenEditor(s, id)
	e.Insert("x")
	e.Backspace()
	e.Blur()
	if s.View().Revision != rev {
		t.Fatalf("blur with unchanged text wrote to the store")
	}
	e.Insert("late")
	if e.Text() != "same" {
		t.Fatalf("closed editor accepted input")
	}
}

func TestEditorBoundsFollowViewport(t *testing.T) {
	s, id := storeWithText(t, "")
	e, _ := OpenEditor(s, id)
	r, ok := e.Bounds(vector.Viewport{OffsetX: 10, Scale: 2})
	if !ok || r != vector.R(30, 20, 200, 120) {
		t.Fatalf("bounds = %+v", r)
	}
}

func TestOpenEditorRejectsNonText(t *testing.T) {
	s := board.NewStore(board.Options{})
	id := s.AddShape(board.Shape{Body: board.Rectangle{W: 10, H: 10}})
	if _, ok := OpenEditor(s, id); ok {
		t.Fatalf("rectangles have no text to edit")
	}
	if _, ok := OpenEditor(s, "missing"); ok {
		t.Fatalf("unknown ids cannot be edited")
	}
}
