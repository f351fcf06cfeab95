/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"strings"

	"whiteboard/internal/board"
)

// Mods are the modifier keys held during an event. Ctrl stands for the
// platform's primary modifier, so hosts map Cmd to it on macOS.
type Mods struct {
	Shift bool
	Ctrl  bool
}

// Command is a keyboard action.
type Command string

const (
	CmdDelete    Command = "delete"
	CmdUndo      Command = "undo"
	CmdRedo      Command = "redo"
	CmdDuplicate Command = "duplicate"
	CmdEscape    Command = "escape"
)

// ToolCommand is the command that activates t.
func ToolCommand(t board.Tool) Command { return Command("tool:" + string(t)) }

func (c Command) tool() (board.Tool, bool) {
	t, ok := strings.CutPrefix(string(c), "tool:")
	return board.Tool(t), ok && board.Tool(t).Valid()
}

// Named keys. Printable keys use their lower-case character.
const (
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
	KeyEscape    = "Escape"
	KeyEnter     = "Enter"
	KeySpace     = "Space"
)

// Chord is a key plus modifiers.
type Chord struct {
	Key   string
	Ctrl  bool
	Shift bool
}

// Keymap binds chords to commands. Hosts may rebind entries.
type Keymap map[Chord]Command

// DefaultKeymap returns the standard shortcuts.
func DefaultKeymap() Keymap {
	km := Keymap{
		{Key: KeyDelete}:                    CmdDelete,
		{Key: KeyBackspace}:                 CmdDelete,
		{Key: "z", Ctrl: true}:              CmdUndo,
		{Key: "z", Ctrl: true, Shift: true}: CmdRedo,
		{Key: "y", Ctrl: true}:              CmdRedo,
		{Key: "d", Ctrl: true}:              CmdDuplicate,
		{Key: KeyEscape}:                    CmdEscape,
	}
	for i, t := range board.Tools {
		km[Chord{Key: string(rune('1' + i))}] = ToolCommand(t)
	}
	return km
}

// Bind maps chord to cmd, replacing any previous binding.
func (k Keymap) Bind(c Chord, cmd Command) { k[normalize(c)] = cmd }

// Lookup resolves a key event to a command.
func (k Keymap) Lookup(key string, m Mods) (Command, bool) {
	cmd, ok := k[normalize(Chord{Key: key, Ctrl: m.Ctrl, Shift: m.Shift})]
	return cmd, ok
}

func normalize(c Chord) Chord {
	if len([]rune(c.Key)) == 1 {
		c.Key = strings.ToLower(c.Key)
	}
	return c
}
