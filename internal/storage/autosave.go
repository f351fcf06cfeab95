/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"

	"whiteboard/internal/board"
	applog "whiteboard/internal/log"
)

// DefaultAutosaveDelay is the quiet period before a changed board is written.
const DefaultAutosaveDelay = 500 * time.Millisecond

// Autosaver writes a board to a backend once its shapes stop changing.
// Saves are fire-and-forget: failures are logged and retried on the next
// change or Flush, and the in-memory board stays authoritative.
type Autosaver struct {
	backend   Backend
	boardID   string
	log       *slog.Logger
	debounced func(func())

	saveMu sync.Mutex // orders writes
	mu     sync.Mutex
	last   []board.Shape
	dirty  bool

	saves  atomic.Int64
	errors atomic.Int64
}

// NewAutosaver returns an autosaver for boardID. A delay <= 0 selects
// DefaultAutosaveDelay.
func NewAutosaver(b Backend, boardID string, delay time.Duration) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{
		backend:   b,
		boardID:   boardID,
		log:       applog.WithBoard(applog.WithComponent("autosave"), boardID),
		debounced: debounce.New(delay),
	}
}

// Attach subscribes to s and seeds the last known shapes from it, so
// attaching alone never triggers a write.
func (a *Autosaver) Attach(s *board.Store) (detach func()) {
	a.mu.Lock()
	a.last = s.View().Shapes
	a.mu.Unlock()
	return s.Subscribe(a.Observe)
}

// Observe schedules a save when the shapes of v differ from the last seen.
// Views taken mid-gesture are skipped; the gesture's commit follows.
func (a *Autosaver) Observe(v board.View) {
	if v.Drawing {
		return
	}
	a.mu.Lock()
	if reflect.DeepEqual(a.last, v.Shapes) {
		a.mu.Unlock()
		return
	}
	a.last = v.Shapes
	a.dirty = true
	a.mu.Unlock()
	a.debounced(func() { _ = a.Flush(context.Background()) })
}

// Flush writes pending changes now. It returns the backend error, if any,
// after logging it.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()
		return nil
	}
	shapes := a.last
	a.dirty = false
	a.mu.Unlock()

	start := time.Now()
	if err := a.backend.Save(ctx, a.boardID, shapes); err != nil {
		a.errors.Add(1)
		a.log.Error("autosave failed", slog.Any("err", err))
		a.mu.Lock()
		a.dirty = true
		a.mu.Unlock()
		return err
	}
	a.saves.Add(1)
	a.log.Debug("board saved", slog.Int("shapes", len(shapes)), slog.Duration("took", time.Since(start)))
	return nil
}

// Pending reports whether changes are waiting to be written.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

// Stats returns the number of successful and failed writes.
func (a *Autosaver) Stats() (saves, failures int64) { return a.saves.Load(), a.errors.Load() }
