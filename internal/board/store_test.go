/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import (
	"reflect"
	"testing"

	"whiteboard/internal/vector"
)

type recordingDiagnostics struct {
	stale      []string
	degenerate []Kind
}

func (r *recordingDiagnostics) StaleReference(op, id string) { r.stale = append(r.stale, op+":"+id) }
func (r *recordingDiagnostics) DegenerateDiscarded(_ string, kind Kind) {
	r.degenerate = append(r.degenerate, kind)
}

func newTestStore(t *testing.T) (*Store, *recordingDiagnostics) {
	t.Helper()
	d := &recordingDiagnostics{}
	return NewStore(Options{BoardID: "test", Diagnostics: d}), d
}

func rect(x, y, w, h float64) Shape {
	return Shape{X: x, Y: y, Body: Rectangle{W: w, H: h}}
}

func TestAddShapeAssignsDistinctIDs(t *testing.T) {
	s, _ := newTestStore(t)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := s.AddShape(rect(float64(i), 0, 10, 10))
		if id == "" || seen[id] {
			t.Fatalf("duplicate or empty id %q at %d", id, i)
		}
		seen[id] = true
	}
	if n := len(s.View().Shapes); n != 50 {
		t.Fatalf("shape count = %d, want 50", n)
	}
}

func TestAddShapeWithoutBodyIsIgnored(t *testing.T) {
	s, _ := newTestStore(t)
	if id := s.AddShape(Shape{X: 1}); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	if v := s.View(); len(v.Shapes) != 0 || v.CanUndo {
		t.Fatalf("untyped shape must leave the board untouched: %+v", v)
	}
}

func TestAddShapeUsesActiveColor(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetColor("#ff0000")
	id := s.AddShape(rect(0, 0, 10, 10))
	sh, _ := s.Shape(id)
	if sh.Fill != "#ff0000" {
		t.Fatalf("fill = %q, want active colour", sh.Fill)
	}
}

func TestUpdateUnknownIDLeavesBoardUnchanged(t *testing.T) {
	s, d := newTestStore(t)
	s.AddShape(rect(0, 0, 10, 10))
	before, _ := MarshalShapes(s.View().Shapes)
	rev := s.View().Revision
	s.UpdateShape("missing", Patch{Fill: String("#000000"), X: Float(99)})
	after, _ := MarshalShapes(s.View().Shapes)
	if string(before) != string(after) {
		t.Fatalf("board changed:\n%s\n%s", before, after)
	}
	if s.View().Revision != rev {
		t.Fatalf("revision bumped for a no-op")
	}
	if len(d.stale) != 1 || d.stale[0] != "update:missing" {
		t.Fatalf("expected stale reference report, got %v", d.stale)
	}
}

func TestGeometryUpdatesAreTransient(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.AddShape(rect(0, 0, 10, 10))
	entries, _ := s.HistoryStats()
	s.UpdateShape(id, Patch{W: Float(50), H: Float(60)})
	s.UpdateShape(id, Patch{X: Float(5)})
	if got, _ := s.HistoryStats(); got != entries {
		t.Fatalf("geometry updates pushed history: %d -> %d", entries, got)
	}
	sh, _ := s.Shape(id)
	if w, h, _ := sh.Size(); w != 50 || h != 60 || sh.X != 5 {
		t.Fatalf("patch not applied: %+v", sh)
	}
	s.UpdateShape(id, Patch{W: Float(-5)})
	sh, _ = s.Shape(id)
	if w, _, _ := sh.Size(); w != 0 {
		t.Fatalf("negative width stored: %v", w)
	}
}

func TestDeleteShapePrunesSelection(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddShape(rect(0, 0, 10, 10))
	b := s.AddShape(rect(20, 0, 10, 10))
	s.SelectShape(a, false)
	s.SelectShape(b, true)
	s.DeleteShape(a)
	v := s.View()
	if _, ok := v.Shape(a); ok {
		t.Fatalf("shape still present after delete")
	}
	if !reflect.DeepEqual(v.Selected, []string{b}) {
		t.Fatalf("selection = %v, want [%s]", v.Selected, b)
	}
}

func TestSelectShapeToggle(t *testing.T) {
	s, d := newTestStore(t)
	a := s.AddShape(rect(0, 0, 10, 10))
	b := s.AddShape(rect(20, 0, 10, 10))
	s.SelectShape(a, false)
	s.SelectShape(b, true)
	s.SelectShape(a, true)
	if got := s.View().Selected; !reflect.DeepEqual(got, []string{b}) {
		t.Fatalf("selection = %v, want [%s]", got, b)
	}
	s.SelectShape(a, false)
	if got := s.View().Selected; !reflect.DeepEqual(got, []string{a}) {
		t.Fatalf("non-additive select should replace, got %v", got)
	}
	s.SelectShape("gone", false)
	if got := s.View().Selected; !reflect.DeepEqual(got, []string{a}) {
		t.Fatalf("unknown id changed selection: %v", got)
	}
	if len(d.stale) != 1 {
		t.Fatalf("expected one stale report, got %v", d.stale)
	}
	entries, _ := s.HistoryStats()
	s.ClearSelection()
	if len(s.View().Selected) != 0 {
		t.Fatalf("selection not cleared")
	}
	if got, _ := s.HistoryStats(); got != entries {
		t.Fatalf("selection changes must not touch history")
	}
}

func TestUndoAllReturnsToEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddShape(rect(0, 0, 10, 10))
	b := s.AddShape(rect(20, 0, 10, 10))
	s.UpdateShape(a, Patch{Fill: String("#00ff00")})
	s.SelectShape(b, false)
	s.DuplicateSelected()
	s.DeleteShape(b)
	const mutations = 5
	for i := 0; i < mutations; i++ {
		s.Undo()
	}
	v := s.View()
	if len(v.Shapes) != 0 || v.CanUndo {
		t.Fatalf("expected empty board at history floor, got %d shapes", len(v.Shapes))
	}
	rev := v.Revision
	s.Undo()
	if s.View().Revision != rev {
		t.Fatalf("undo at floor must be a no-op")
	}
}

func TestUndoClearsSelectionAndRedoWalksForward(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddShape(rect(0, 0, 10, 10))
	s.AddShape(rect(20, 0, 10, 10))
	s.SelectShape(a, false)
	s.Undo()
	v := s.View()
	if len(v.Selected) != 0 || len(v.Shapes) != 1 || !v.CanRedo {
		t.Fatalf("unexpected view after undo: %+v", v)
	}
	s.Redo()
	v = s.View()
	if len(v.Shapes) != 2 || v.CanRedo {
		t.Fatalf("redo did not restore: %+v", v)
	}
}

func TestDuplicateSelected(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddShape(rect(0, 0, 10, 10))
	b := s.AddShape(Shape{X: 100, Y: 50, Body: Freehand{Points: []vector.Pt{{X: 0, Y: 0}, {X: 5, Y: 5}}}})
	s.SelectShape(b, false)
	s.SelectShape(a, true)
	entries, _ := s.HistoryStats()
	s.DuplicateSelected()
	v := s.View()
	if len(v.Shapes) != 4 || len(v.Selected) != 2 {
		t.Fatalf("expected 4 shapes and 2 selected, got %d and %d", len(v.Shapes), len(v.Selected))
	}
	ca, _ := v.Shape(v.Selected[0])
	cb, _ := v.Shape(v.Selected[1])
	if ca.X != 20 || ca.Y != 20 || cb.X != 120 || cb.Y != 70 {
		t.Fatalf("copies misplaced: %+v %+v", ca, cb)
	}
	if ca.ID == a || cb.ID == b {
		t.Fatalf("copies must get new ids")
	}
	if got, _ := s.HistoryStats(); got != entries+1 {
		t.Fatalf("duplicate should add exactly one entry, %d -> %d", entries, got)
	}
	s.Undo()
	if n := len(s.View().Shapes); n != 2 {
		t.Fatalf("one undo should remove both copies, got %d shapes", n)
	}
}

func TestDuplicateWithEmptySelectionIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddShape(rect(0, 0, 10, 10))
	rev := s.View().Revision
	s.DuplicateSelected()
	if s.View().Revision != rev {
		t.Fatalf("duplicate with empty selection changed the board")
	}
}

func TestFillUpdateUndoScenario(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.AddShape(Shape{Fill: "#123456", Body: Rectangle{W: 10, H: 10}})
	s.SelectShape(id, false)
	s.UpdateShape(id, Patch{Fill: String("#ff0000")})
	if n := len(s.View().Shapes); n != 1 {
		t.Fatalf("count changed: %d", n)
	}
	s.Undo()
	sh, ok := s.Shape(id)
	if !ok || sh.Fill != "#123456" {
		t.Fatalf("fill did not revert: %+v", sh)
	}
	if n := len(s.View().Shapes); n != 1 {
		t.Fatalf("count changed: %d", n)
	}
}

func TestCommitAmendsAddSoDrawingIsOneStep(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.AddShape(rect(0, 0, 0, 0))
	s.UpdateShape(id, Patch{W: Float(40), H: Float(30)})
	s.Commit(id)
	if n, _ := s.HistoryStats(); n != 2 {
		t.Fatalf("drawing should be a single entry, have %d entries", n)
	}
	s.Undo()
	if len(s.View().Shapes) != 0 {
		t.Fatalf("undo should remove the drawn shape")
	}
	s.Redo()
	sh, _ := s.Shape(id)
	if w, h, _ := sh.Size(); w != 40 || h != 30 {
		t.Fatalf("redo should restore the final geometry, got %v x %v", w, h)
	}
}

func TestCommitAfterDragPushesEntry(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddShape(rect(0, 0, 10, 10))
	b := s.AddShape(rect(50, 0, 10, 10))
	s.MoveShapes([]string{a}, 5, 5)
	s.Commit(a)
	if n, _ := s.HistoryStats(); n != 4 {
		t.Fatalf("expected a new entry for the drag, have %d", n)
	}
	s.Commit(a)
	if n, _ := s.HistoryStats(); n != 4 {
		t.Fatalf("commit without changes must not push")
	}
	s.Undo()
	sh, _ := s.Shape(a)
	if sh.X != 0 || sh.Y != 0 {
		t.Fatalf("undo should revert the drag, got %+v", sh)
	}
	if _, ok := s.Shape(b); !ok {
		t.Fatalf("undoing the drag must keep b")
	}
}

func TestDiscardShapeLeavesNoHistory(t *testing.T) {
	s, d := newTestStore(t)
	s.AddShape(rect(0, 0, 10, 10))
	before, _ := s.HistoryStats()
	id := s.AddShape(Shape{Body: Freehand{Points: []vector.Pt{{}}}})
	s.DiscardShape(id)
	after, _ := s.HistoryStats()
	if after != before {
		t.Fatalf("discarded draft left history: %d -> %d", before, after)
	}
	if s.View().CanRedo {
		t.Fatalf("discarded draft must not be redoable")
	}
	if len(d.degenerate) != 1 || d.degenerate[0] != KindFreehand {
		t.Fatalf("expected degenerate report, got %v", d.degenerate)
	}
}

func TestSetViewportClampsScale(t *testing.T) {
	s := NewStore(Options{MinScale: 0.5, MaxScale: 2})
	s.SetViewport(vector.Viewport{Scale: 10})
	if got := s.View().Viewport.Scale; got != 2 {
		t.Fatalf("scale = %v, want 2", got)
	}
	s.SetViewport(vector.Viewport{Scale: 0})
	if got := s.View().Viewport.Scale; got != 0.5 {
		t.Fatalf("scale = %v, want 0.5", got)
	}
}

func TestSettersDoNotTouchHistory(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetTool(ToolEllipse)
	s.SetTool("laser")
	s.SetColor("#abcdef")
	s.SetDrawing(true)
	v := s.View()
	if v.Tool != ToolEllipse || v.Color != "#abcdef" || !v.Drawing || v.CanUndo {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestHitTestTopmost(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddShape(rect(0, 0, 100, 100))
	top := s.AddShape(Shape{X: 20, Y: 20, Body: Ellipse{W: 20, H: 20}})
	if id, ok := s.HitTest(vector.Pt{X: 30, Y: 30}); !ok || id != top {
		t.Fatalf("expected ellipse on top, got %q", id)
	}
	if _, ok := s.HitTest(vector.Pt{X: 500, Y: 500}); ok {
		t.Fatalf("expected miss")
	}
}

func TestSubscribeReceivesImmutableViews(t *testing.T) {
	s, _ := newTestStore(t)
	var views []View
	cancel := s.Subscribe(func(v View) { views = append(views, v) })
	id := s.AddShape(rect(0, 0, 10, 10))
	if len(views) != 1 || len(views[0].Shapes) != 1 {
		t.Fatalf("expected one notification, got %d", len(views))
	}
	views[0].Shapes[0].X = 999
	if sh, _ := s.Shape(id); sh.X != 0 {
		t.Fatalf("view mutation leaked into the store")
	}
	cancel()
	s.AddShape(rect(0, 0, 10, 10))
	if len(views) != 1 {
		t.Fatalf("cancelled subscriber still notified")
	}
}

func TestReplaceResetsHistory(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddShape(rect(0, 0, 10, 10))
	s.Replace([]Shape{rect(1, 1, 5, 5), {ID: "dup", Body: Note{W: 10, H: 10}}, {ID: "dup", Body: Text{}}, {ID: "x"}})
	v := s.View()
	if len(v.Shapes) != 3 || v.CanUndo || v.CanRedo {
		t.Fatalf("unexpected board after replace: %+v", v)
	}
	if v.Shapes[0].ID == "" || v.Shapes[1].ID != "dup" || v.Shapes[2].ID == "dup" {
		t.Fatalf("ids not repaired: %v %v %v", v.Shapes[0].ID, v.Shapes[1].ID, v.Shapes[2].ID)
	}
}

func TestHistoryCapKeepsStoreUsable(t *testing.T) {
	s := NewStore(Options{MaxHistory: 3})
	for i := 0; i < 10; i++ {
		s.AddShape(rect(float64(i), 0, 10, 10))
	}
	for i := 0; i < 10; i++ {
		s.Undo()
	}
	if n := len(s.View().Shapes); n != 8 {
		t.Fatalf("expected 8 shapes at the capped floor, got %d", n)
	}
}

func TestUndoEveryAddReturnsToEmpty(t *testing.T) {
	s := NewStore(Options{BoardID: "long"})
	const n = 250
	for i := 0; i < n; i++ {
		s.AddShape(rect(float64(i), 0, 10, 10))
	}
	for i := 0; i < n; i++ {
		s.Undo()
	}
	v := s.View()
	if len(v.Shapes) != 0 || v.CanUndo {
		t.Fatalf("after %d adds and %d undos: %d shapes remain, want 0", n, n, len(v.Shapes))
	}
}
