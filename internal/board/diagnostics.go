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

	applog "whiteboard/internal/log"
)

// Diagnostics receives reports about input the store ignored. Reports never
// change board state.
type Diagnostics interface {
	// StaleReference is called when op named a shape id that is not present.
	StaleReference(op, id string)
	// DegenerateDiscarded is called when a drawn draft was too small to keep.
	DegenerateDiscarded(id string, kind Kind)
}

// LogDiagnostics writes reports at debug level.
type LogDiagnostics struct{ Logger *slog.Logger }

func (d LogDiagnostics) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return applog.WithComponent("board")
}

func (d LogDiagnostics) StaleReference(op, id string) {
	d.logger().Debug("stale shape reference", slog.String("op", op), slog.String("shape", id))
}

func (d LogDiagnostics) DegenerateDiscarded(id string, kind Kind) {
	d.logger().Debug("degenerate shape discarded", slog.String("shape", id), slog.String("kind", string(kind)))
}

// MultiDiagnostics fans reports out to several sinks.
type MultiDiagnostics []Diagnostics

func (m MultiDiagnostics) StaleReference(op, id string) {
	for _, d := range m {
		d.StaleReference(op, id)
	}
}

func (m MultiDiagnostics) DegenerateDiscarded(id string, kind Kind) {
	for _, d := range m {
		d.DegenerateDiscarded(id, kind)
	}
}
