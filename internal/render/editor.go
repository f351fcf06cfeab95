/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"unicode/utf8"

	"whiteboard/internal/board"
	"whiteboard/internal/vector"
)

// TextStore is the part of the board the editor writes through.
type TextStore interface {
	Shape(id string) (board.Shape, bool)
	UpdateShape(id string, p board.Patch)
}

// TextEditor is the transient overlay for editing a text or note shape in
// place. It writes to the store only when it commits a changed text.
type TextEditor struct {
	store    TextStore
	id       string
	original string
	text     string
	edited   bool
	closed   bool
}

// OpenEditor starts editing id. It fails for unknown ids and for shapes that
// carry no text.
func OpenEditor(store TextStore, id string) (*TextEditor, bool) {
	s, ok := store.Shape(id)
	if !ok {
		return nil, false
	}
	content, ok := s.Content()
	if !ok {
		return nil, false
	}
	return &TextEditor{store: store, id: id, original: content, text: content}, true
}

func (e *TextEditor) ShapeID() string { return e.id }
func (e *TextEditor) Text() string    { return e.text }
func (e *TextEditor) Edited() bool    { return e.edited }
func (e *TextEditor) Closed() bool    { return e.closed }

// Bounds returns the overlay rectangle: the shape's bounding box in screen space.
func (e *TextEditor) Bounds(vp vector.Viewport) (vector.Rect, bool) {
	s, ok := e.store.Shape(e.id)
	if !ok {
		return vector.Rect{}, false
	}
	return vp.RectToScreen(s.Bounds()), true
}

// Insert appends typed text at the end.
func (e *TextEditor) Insert(s string) {
	if e.closed || s == "" {
		return
	}
	e.text += s
	e.edited = true
}

// Backspace removes the last character.
func (e *TextEditor) Backspace() {
	if e.closed || e.text == "" {
		return
	}
	_, n := utf8.DecodeLastRuneInString(e.text)
	e.text = e.text[:len(e.text)-n]
	e.edited = true
}

// SetText replaces the whole buffer, for hosts that own a native entry widget.
func (e *TextEditor) SetText(s string) {
	if e.closed || s == e.text {
		return
	}
	e.text = s
	e.edited = true
}

// Enter commits, or inserts a newline when shift is held.
func (e *TextEditor) Enter(shift bool) {
	if shift {
		e.Insert("\n")
		return
	}
	e.commit()
}

// Escape cancels an untouched editor and commits one that has edits.
func (e *TextEditor) Escape() {
	if !e.edited {
		e.closed = true
		return
	}
	e.commit()
}

// Blur is focus leaving the overlay.
func (e *TextEditor) Blur() { e.commit() }

func (e *TextEditor) commit() {
	if e.closed {
		return
	}
	e.closed = true
	if e.text == e.original {
		return
	}
	e.store.UpdateShape(e.id, board.Patch{Text: board.String(e.text)})
}
