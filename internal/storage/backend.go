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
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"whiteboard/internal/board"
	"whiteboard/internal/config"
	applog "whiteboard/internal/log"
)

// BoardInfo summarizes a stored board.
type BoardInfo struct {
	ID      string
	Shapes  int
	Updated time.Time
}

// Backend stores board snapshots keyed by board id.
type Backend interface {
	// Load returns ErrNotFound when the board has never been saved.
	Load(ctx context.Context, id string) ([]board.Shape, error)
	Save(ctx context.Context, id string, shapes []board.Shape) error
	List(ctx context.Context) ([]BoardInfo, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

const (
	BoardsDirName  = "boards"
	SQLiteFileName = "boards.sqlite"
)

// Open returns the backend selected by cfg, rooted at dataDir.
func Open(cfg config.StorageConfig, dataDir string) (Backend, error) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, errors.New("data dir is required")
	}
	switch cfg.Backend {
	case config.BackendSQLite:
		return OpenSQLite(filepath.Join(dataDir, SQLiteFileName), cfg.KeepRevisions)
	case config.BackendFile, "":
		return NewFileStore(filepath.Join(dataDir, BoardsDirName), cfg.KeepRevisions)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// LoadOrEmpty loads board id. A missing or invalid snapshot yields an empty
// board; anything other than a missing board is logged.
func LoadOrEmpty(ctx context.Context, b Backend, id string) []board.Shape {
	l := applog.WithBoard(applog.WithOperation(applog.WithComponent("storage"), "load"), id)
	shapes, err := b.Load(ctx, id)
	switch {
	case err == nil:
		return shapes
	case errors.Is(err, ErrNotFound):
		l.Debug("no snapshot, starting empty")
	default:
		l.Warn("snapshot unreadable, starting empty", slog.Any("err", err))
	}
	return []board.Shape{}
}
