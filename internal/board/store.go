/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import (
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"

	"whiteboard/internal/history"
	applog "whiteboard/internal/log"
	"whiteboard/internal/vector"
)

// DefaultColor is the fill used when neither the shape nor the store sets one.
const DefaultColor = "#1e1e1e"

// hitTolerance is the freehand hit distance in screen pixels.
const hitTolerance = 4

// Options configures a Store. Zero values select defaults.
type Options struct {
	BoardID         string
	MinScale        float64
	MaxScale        float64
	DuplicateOffset float64
	MaxHistory      int // 0 keeps every entry
	Color           string
	Diagnostics     Diagnostics
	Logger          *slog.Logger
	// NewID generates shape ids; defaults to random UUIDs.
	NewID func() string
}

func (o Options) withDefaults() Options {
	if o.MinScale <= 0 {
		o.MinScale = vector.DefaultMinScale
	}
	if o.MaxScale < o.MinScale {
		o.MaxScale = max(vector.DefaultMaxScale, o.MinScale)
	}
	if o.DuplicateOffset == 0 {
		o.DuplicateOffset = 20
	}
	if o.Color == "" {
		o.Color = DefaultColor
	}
	if o.Logger == nil {
		o.Logger = applog.WithBoard(applog.WithComponent("board"), o.BoardID)
	}
	if o.Diagnostics == nil {
		o.Diagnostics = LogDiagnostics{Logger: o.Logger}
	}
	if o.NewID == nil {
		o.NewID = func() string { return uuid.New().String() }
	}
	return o
}

// View is an immutable snapshot of the store handed to readers.
type View struct {
	BoardID  string
	Revision uint64
	Shapes   []Shape
	Selected []string
	Tool     Tool
	Color    string
	Viewport vector.Viewport
	Drawing  bool
	CanUndo  bool
	CanRedo  bool
}

// IsSelected reports whether id is in the selection.
func (v View) IsSelected(id string) bool { return slices.Contains(v.Selected, id) }

// Shape looks up a shape by id.
func (v View) Shape(id string) (Shape, bool) {
	for _, s := range v.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return Shape{}, false
}

// Store owns the board. All operations are total: ids that no longer exist
// are ignored and reported to Diagnostics. Methods are safe for concurrent
// use; subscribers are called after the lock is released.
type Store struct {
	opts Options

	mu       sync.Mutex
	shapes   []Shape
	selected []string
	tool     Tool
	color    string
	viewport vector.Viewport
	drawing  bool
	hist     *history.Stack[[]Shape]
	revision uint64

	subs    map[int]func(View)
	nextSub int
}

// NewStore returns an empty board with the select tool active.
func NewStore(opts Options) *Store {
	opts = opts.withDefaults()
	return &Store{
		opts:     opts,
		shapes:   []Shape{},
		tool:     ToolSelect,
		color:    opts.Color,
		viewport: vector.IdentityViewport.Clamp(opts.MinScale, opts.MaxScale),
		hist:     history.New(history.Config{MaxEntries: opts.MaxHistory}, []Shape{}),
		subs:     make(map[int]func(View)),
	}
}

// BoardID returns the id of the board the store is bound to.
func (s *Store) BoardID() string { return s.opts.BoardID }

// Subscribe registers fn to receive a View after every change. The returned
// function unregisters it.
func (s *Store) Subscribe(fn func(View)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// update runs fn under the lock and notifies subscribers if it reports a change.
func (s *Store) update(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.revision++
	v := s.viewLocked()
	subs := make([]func(View), 0, len(s.subs))
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
}

func (s *Store) viewLocked() View {
	return View{
		BoardID:  s.opts.BoardID,
		Revision: s.revision,
		Shapes:   cloneShapes(s.shapes),
		Selected: slices.Clone(s.selected),
		Tool:     s.tool,
		Color:    s.color,
		Viewport: s.viewport,
		Drawing:  s.drawing,
		CanUndo:  s.hist.CanUndo(),
		CanRedo:  s.hist.CanRedo(),
	}
}

// View returns a snapshot of the current state.
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Shape returns a copy of the shape with the given id.
func (s *Store) Shape(id string) (Shape, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.shapes[i].Clone(), true
	}
	return Shape{}, false
}

// HitTest returns the topmost shape under the world point p.
func (s *Store) HitTest(p vector.Pt) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tol := hitTolerance / s.viewport.Scale
	for i := len(s.shapes) - 1; i >= 0; i-- {
		if s.shapes[i].Contains(p, tol) {
			return s.shapes[i].ID, true
		}
	}
	return "", false
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.shapes, func(sh Shape) bool { return sh.ID == id })
}

// pushLocked records the current shapes as a new history entry.
func (s *Store) pushLocked(label, origin string) {
	s.hist.Push(cloneShapes(s.shapes), label, origin)
}

func (s *Store) pruneSelectionLocked() {
	s.selected = slices.DeleteFunc(s.selected, func(id string) bool { return s.indexLocked(id) < 0 })
}

// AddShape inserts a copy of sh on top of the board under a fresh id and
// returns that id. A shape without a body is ignored and "" is returned.
func (s *Store) AddShape(sh Shape) string {
	if sh.Body == nil {
		s.opts.Logger.Debug("add ignored: shape has no type")
		return ""
	}
	var id string
	s.update(func() bool {
		sh = sh.Clone()
		sh.ID = s.opts.NewID()
		if sh.Fill == "" {
			sh.Fill = s.color
		}
		s.shapes = append(s.shapes, sh)
		s.pushLocked("add", sh.ID)
		id = sh.ID
		return true
	})
	return id
}

// UpdateShape merges p into the shape. Only fill or text changes, or an
// explicit Checkpoint, create a history entry; geometry changes are transient
// until Commit.
func (s *Store) UpdateShape(id string, p Patch) {
	stale := false
	s.update(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			stale = true
			return false
		}
		old := s.shapes[i]
		next := p.apply(old)
		changed := !reflect.DeepEqual(old, next)
		if !changed && !p.Checkpoint {
			return false
		}
		s.shapes[i] = next
		if p.significant(old, next) && !s.headMatchesLocked() {
			s.pushLocked("update", id)
		}
		return true
	})
	if stale {
		s.opts.Diagnostics.StaleReference("update", id)
	}
}

// DeleteShape removes the shape and prunes it from the selection.
func (s *Store) DeleteShape(id string) {
	stale := false
	s.update(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			stale = true
			return false
		}
		s.shapes = slices.Delete(s.shapes, i, i+1)
		s.pruneSelectionLocked()
		s.pushLocked("delete", id)
		return true
	})
	if stale {
		s.opts.Diagnostics.StaleReference("delete", id)
	}
}

// DeleteSelected removes every selected shape as one history entry.
func (s *Store) DeleteSelected() {
	s.update(func() bool {
		if len(s.selected) == 0 {
			return false
		}
		sel := s.selected
		s.shapes = slices.DeleteFunc(s.shapes, func(sh Shape) bool { return slices.Contains(sel, sh.ID) })
		s.selected = nil
		s.pushLocked("delete", "")
		return true
	})
}

// SelectShape replaces the selection with id, or toggles id when additive.
func (s *Store) SelectShape(id string, additive bool) {
	stale := false
	s.update(func() bool {
		if s.indexLocked(id) < 0 {
			stale = true
			return false
		}
		if !additive {
			if len(s.selected) == 1 && s.selected[0] == id {
				return false
			}
			s.selected = []string{id}
			return true
		}
		if i := slices.Index(s.selected, id); i >= 0 {
			s.selected = slices.Delete(s.selected, i, i+1)
		} else {
			s.selected = append(s.selected, id)
		}
		return true
	})
	if stale {
		s.opts.Diagnostics.StaleReference("select", id)
	}
}

// ClearSelection empties the selection. Selection is not recorded in history.
func (s *Store) ClearSelection() {
	s.update(func() bool {
		if len(s.selected) == 0 {
			return false
		}
		s.selected = nil
		return true
	})
}

// DuplicateSelected copies every selected shape, in stacking order, offset by
// the duplicate offset. The copies become the selection.
func (s *Store) DuplicateSelected() {
	s.update(func() bool {
		if len(s.selected) == 0 {
			return false
		}
		var copies []string
		for _, sh := range s.shapes {
			if !slices.Contains(s.selected, sh.ID) {
				continue
			}
			c := sh.Clone().Translate(s.opts.DuplicateOffset, s.opts.DuplicateOffset)
			c.ID = s.opts.NewID()
			s.shapes = append(s.shapes, c)
			copies = append(copies, c.ID)
		}
		s.selected = copies
		s.pushLocked("duplicate", "")
		return true
	})
}

// MoveShapes translates the given shapes without recording history. Callers
// Commit when the gesture ends.
func (s *Store) MoveShapes(ids []string, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	s.update(func() bool {
		moved := false
		for i := range s.shapes {
			if slices.Contains(ids, s.shapes[i].ID) {
				s.shapes[i] = s.shapes[i].Translate(dx, dy)
				moved = true
			}
		}
		return moved
	})
}

// Undo restores the previous history entry and clears the selection.
func (s *Store) Undo() {
	s.update(func() bool {
		state, ok := s.hist.Undo()
		if !ok {
			return false
		}
		s.shapes = cloneShapes(state)
		s.selected = nil
		return true
	})
}

// Redo re-applies the next history entry and clears the selection.
func (s *Store) Redo() {
	s.update(func() bool {
		state, ok := s.hist.Redo()
		if !ok {
			return false
		}
		s.shapes = cloneShapes(state)
		s.selected = nil
		return true
	})
}

func (s *Store) headMatchesLocked() bool {
	head := s.hist.Current().State
	if len(head) != len(s.shapes) {
		return false
	}
	for i := range head {
		if !reflect.DeepEqual(head[i], s.shapes[i]) {
			return false
		}
	}
	return true
}

// Commit records the result of a multi-event gesture on id. When the head
// entry is the one that added id, it is amended so the whole drawing is a
// single undo step.
func (s *Store) Commit(id string) {
	s.update(func() bool {
		if s.headMatchesLocked() {
			return false
		}
		head := s.hist.Current()
		if id != "" && head.Label == "add" && head.Origin == id {
			s.hist.Amend(cloneShapes(s.shapes))
		} else {
			s.pushLocked("edit", id)
		}
		return true
	})
}

// DiscardShape removes a draft that turned out too small. If its add is the
// head entry, that entry is dropped so the draft leaves no history.
func (s *Store) DiscardShape(id string) {
	stale := false
	var kind Kind
	s.update(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			stale = true
			return false
		}
		kind = s.shapes[i].Kind()
		s.shapes = slices.Delete(s.shapes, i, i+1)
		s.pruneSelectionLocked()
		head := s.hist.Current()
		if head.Label == "add" && head.Origin == id {
			s.hist.Drop()
		} else {
			s.pushLocked("delete", id)
		}
		return true
	})
	if stale {
		s.opts.Diagnostics.StaleReference("discard", id)
		return
	}
	s.opts.Diagnostics.DegenerateDiscarded(id, kind)
}

// Replace loads shapes as the whole board and resets history to a single
// entry. Missing or duplicate ids are regenerated.
func (s *Store) Replace(shapes []Shape) {
	s.update(func() bool {
		seen := make(map[string]bool, len(shapes))
		next := make([]Shape, 0, len(shapes))
		for _, sh := range shapes {
			if sh.Body == nil {
				continue
			}
			sh = sh.Clone()
			if sh.ID == "" || seen[sh.ID] {
				sh.ID = s.opts.NewID()
			}
			seen[sh.ID] = true
			next = append(next, sh)
		}
		s.shapes = next
		s.selected = nil
		s.hist.Reset(cloneShapes(next))
		return true
	})
}

// SetTool activates t. Unknown tools are ignored.
func (s *Store) SetTool(t Tool) {
	if !t.Valid() {
		s.opts.Logger.Debug("unknown tool ignored", slog.String("tool", string(t)))
		return
	}
	s.update(func() bool {
		if s.tool == t {
			return false
		}
		s.tool = t
		return true
	})
}

// SetColor sets the fill used for new shapes.
func (s *Store) SetColor(c string) {
	s.update(func() bool {
		if c == "" || s.color == c {
			return false
		}
		s.color = c
		return true
	})
}

// SetViewport stores v with its scale clamped to the configured range.
func (s *Store) SetViewport(v vector.Viewport) {
	v = v.Clamp(s.opts.MinScale, s.opts.MaxScale)
	s.update(func() bool {
		if s.viewport == v {
			return false
		}
		s.viewport = v
		return true
	})
}

// ScaleRange returns the configured viewport scale limits.
func (s *Store) ScaleRange() (lo, hi float64) { return s.opts.MinScale, s.opts.MaxScale }

// SetDrawing flags a gesture in progress for readers.
func (s *Store) SetDrawing(on bool) {
	s.update(func() bool {
		if s.drawing == on {
			return false
		}
		s.drawing = on
		return true
	})
}

// HistoryStats reports retained history entries and the cursor.
func (s *Store) HistoryStats() (entries, cursor int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Stats()
}
