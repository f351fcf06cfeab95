/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

// Tool governs how pointer input is interpreted. Exactly one is active.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolRectangle Tool = "rectangle"
	ToolEllipse   Tool = "ellipse"
	ToolFreehand  Tool = "freehand"
	ToolText      Tool = "text"
	ToolNote      Tool = "note"
	ToolPan       Tool = "pan"
)

// Tools lists every tool in shortcut order: digit 1 selects Tools[0].
var Tools = []Tool{ToolSelect, ToolRectangle, ToolEllipse, ToolFreehand, ToolText, ToolNote, ToolPan}

// Valid reports whether t is a known tool.
func (t Tool) Valid() bool {
	for _, k := range Tools {
		if k == t {
			return true
		}
	}
	return false
}

// Draws reports whether the tool creates shapes, and of which kind.
func (t Tool) Draws() (Kind, bool) {
	switch t {
	case ToolRectangle:
		return KindRectangle, true
	case ToolEllipse:
		return KindEllipse, true
	case ToolFreehand:
		return KindFreehand, true
	case ToolText:
		return KindText, true
	case ToolNote:
		return KindNote, true
	}
	return "", false
}

// ToolForDigit maps '1'..'7' to a tool.
func ToolForDigit(d rune) (Tool, bool) {
	i := int(d - '1')
	if i < 0 || i >= len(Tools) {
		return "", false
	}
	return Tools[i], true
}
