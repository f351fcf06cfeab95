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
	"errors"
	"sync"
	"testing"
	"time"

	"whiteboard/internal/board"
)

type countingBackend struct {
	mu    sync.Mutex
	saves [][]board.Shape
	fail  error
}

func (c *countingBackend) Load(context.Context, string) ([]board.Shape, error) {
	return nil, ErrNotFound
}

func (c *countingBackend) Save(_ context.Context, _ string, shapes []board.Shape) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.saves = append(c.saves, shapes)
	return nil
}

func (c *countingBackend) List(context.Context) ([]BoardInfo, error) { return nil, nil }
func (c *countingBackend) Delete(context.Context, string) error      { return nil }
func (c *countingBackend) Close() error                              { return nil }

func (c *countingBackend) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.saves)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAutosaverDebounces(t *testing.T) {
	be := &countingBackend{}
	s := board.NewStore(board.Options{BoardID: "a"})
	as := NewAutosaver(be, "a", 30*time.Millisecond)
	detach := as.Attach(s)
	defer detach()

	for i := 0; i < 5; i++ {
		s.AddShape(board.Shape{Body: board.Rectangle{W: 10, H: 10}})
	}
	waitFor(t, func() bool { return be.count() == 1 })
	time.Sleep(60 * time.Millisecond)
	if n := be.count(); n != 1 {
		t.Fatalf("burst should produce one save, got %d", n)
	}
	be.mu.Lock()
	got := len(be.saves[0])
	be.mu.Unlock()
	if got != 5 {
		t.Fatalf("saved %d shapes, want 5", got)
	}
	if saves, _ := as.Stats(); saves != 1 {
		t.Fatalf("stats saves = %d", saves)
	}
}

func TestAutosaverIgnoresNonShapeChanges(t *testing.T) {
	be := &countingBackend{}
	s := board.NewStore(board.Options{BoardID: "a"})
	as := NewAutosaver(be, "a", time.Hour)
	defer as.Attach(s)()

	s.SetTool(board.ToolEllipse)
	s.SetColor("#ff0000")
	if as.Pending() {
		t.Fatalf("tool and colour changes must not schedule a save")
	}
	s.SetDrawing(true)
	s.AddShape(board.Shape{Body: board.Rectangle{W: 10, H: 10}})
	if as.Pending() {
		t.Fatalf("views taken while drawing are skipped")
	}
	s.SetDrawing(false)
	if !as.Pending() {
		t.Fatalf("end of drawing should schedule a save")
	}
	if err := as.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if be.count() != 1 || as.Pending() {
		t.Fatalf("flush should write once, got %d", be.count())
	}
	if err := as.Flush(context.Background()); err != nil || be.count() != 1 {
		t.Fatalf("second flush has nothing to do")
	}
}

func TestAutosaverKeepsDirtyOnFailure(t *testing.T) {
	boom := errors.New("disk full")
	be := &countingBackend{fail: boom}
	s := board.NewStore(board.Options{BoardID: "a"})
	as := NewAutosaver(be, "a", time.Hour)
	defer as.Attach(s)()

	s.AddShape(board.Shape{Body: board.Rectangle{W: 10, H: 10}})
	if err := as.Flush(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if !as.Pending() {
		t.Fatalf("failed save must stay pending")
	}
	be.mu.Lock()
	be.fail = nil
	be.mu.Unlock()
	if err := as.Flush(context.Background()); err != nil || be.count() != 1 {
		t.Fatalf("retry: %v, %d saves", err, be.count())
	}
	if _, failures := as.Stats(); failures != 1 {
		t.Fatalf("failures = %d", failures)
	}
}
