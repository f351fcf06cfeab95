/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"whiteboard/internal/vector"
)

func TestShapesJSONRoundTrip(t *testing.T) {
	in := []Shape{
		{ID: "r", X: 1, Y: 2, Fill: "#ff0000", Body: Rectangle{W: 3, H: 4}},
		{ID: "e", Fill: "#00ff00", Body: Ellipse{W: 5, H: 6}},
		{ID: "f", X: 10, Y: 10, Fill: "#000000", Body: Freehand{Points: []vector.Pt{{X: 0, Y: 0}, {X: 1, Y: 2}}}},
		{ID: "t", Body: Text{W: 80, H: 20, Content: "hello"}},
		{ID: "n", Body: Note{W: 100, H: 100, Content: "line1\nline2"}},
	}
	data, err := MarshalShapes(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out, err := UnmarshalShapes(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n%#v\n%#v", in, out)
	}
}

func TestRecordWireShape(t *testing.T) {
	data, err := MarshalShapes([]Shape{{ID: "f", Body: Freehand{Points: []vector.Pt{{X: 1, Y: 2}}}}})
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"type":"freehand"`, `"fillColor":""`, `"points":[{"x":1,"y":2}]`} {
		if !strings.Contains(s, want) {
			t.Fatalf("%s missing %s", s, want)
		}
	}
	if strings.Contains(s, "width") || strings.Contains(s, "text") {
		t.Fatalf("freehand record must not carry size or text: %s", s)
	}
}

func TestFromRecordAliasesAndUnknown(t *testing.T) {
	s, err := FromRecord(Record{ID: "p", Type: "path", Points: []vector.Pt{{}, {X: 1}}})
	if err != nil || s.Kind() != KindFreehand {
		t.Fatalf("path alias not accepted: %v %v", s.Kind(), err)
	}
	if _, err := FromRecord(Record{ID: "z", Type: "star"}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := UnmarshalShapes([]byte(`[{"id":"a","type":"hexagon"}]`)); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind from array decode, got %v", err)
	}
}

func TestUnmarshalNullIsEmpty(t *testing.T) {
	out, err := UnmarshalShapes([]byte("null"))
	if err != nil || out == nil || len(out) != 0 {
		t.Fatalf("null should decode to an empty board, got %v %v", out, err)
	}
}

func TestDegenerate(t *testing.T) {
	cases := []struct {
		s    Shape
		want bool
	}{
		{rect(0, 0, 4, 4), true},
		{rect(0, 0, 4, 30), false},
		{Shape{Body: Ellipse{W: 0, H: 0}}, true},
		{Shape{Body: Freehand{Points: []vector.Pt{{}}}}, true},
		{Shape{Body: Freehand{Points: []vector.Pt{{}, {X: 1}}}}, false},
		{Shape{}, true},
	}
	for i, c := range cases {
		if got := c.s.Degenerate(5); got != c.want {
			t.Fatalf("case %d: Degenerate = %v, want %v", i, got, c.want)
		}
	}
}

func TestToolForDigit(t *testing.T) {
	if tool, ok := ToolForDigit('1'); !ok || tool != ToolSelect {
		t.Fatalf("1 -> %v", tool)
	}
	if tool, ok := ToolForDigit('7'); !ok || tool != ToolPan {
		t.Fatalf("7 -> %v", tool)
	}
	if _, ok := ToolForDigit('8'); ok {
		t.Fatalf("8 should not map to a tool")
	}
}
