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
	"io"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"whiteboard/internal/board"
	applog "whiteboard/internal/log"
)

const (
	BackupsDirName = "backups"
	boardExt       = ".json"
	backupStamp    = "20060102-150405.000000"
)

// FileStore keeps one JSON file per board under Root, with timestamped
// backups of replaced snapshots under Root/backups.
type FileStore struct {
	Root string
	// KeepBackups bounds the backups kept per board. Zero keeps all.
	KeepBackups int
}

// NewFileStore creates root and its backups folder if needed.
func NewFileStore(root string, keepBackups int) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(filepath.Join(root, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create boards dir: %w", err)
	}
	return &FileStore{Root: root, KeepBackups: keepBackups}, nil
}

// Path returns the snapshot file of board id.
func (f *FileStore) Path(id string) string { return filepath.Join(f.Root, id+boardExt) }

func (f *FileStore) backupsDir() string { return filepath.Join(f.Root, BackupsDirName) }

// Load reads board id. If the current snapshot is unreadable the latest
// backup is tried before giving up.
func (f *FileStore) Load(ctx context.Context, id string) ([]board.Shape, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("board %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	shapes, derr := Decode(data)
	if derr == nil {
		return shapes, nil
	}
	l := applog.WithBoard(applog.WithOperation(applog.WithComponent("storage"), "load"), id)
	shapes, berr := f.latestBackup(id)
	if berr != nil {
		return nil, fmt.Errorf("board %q: %w; backup attempt: %v", id, derr, berr)
	}
	l.Warn("snapshot invalid, restored latest backup", slog.Any("err", derr))
	return shapes, nil
}

// Save writes board id transactionally, backing up the previous snapshot.
func (f *FileStore) Save(ctx context.Context, id string, shapes []board.Shape) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(shapes)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.backupsDir(), 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	target := f.Path(id)
	if _, statErr := os.Stat(target); statErr == nil {
		bpath := filepath.Join(f.backupsDir(), fmt.Sprintf("%s%s.%s.bak", id, boardExt, time.Now().Format(backupStamp)))
		if cerr := copyFile(target, bpath); cerr != nil {
			return fmt.Errorf("backup current snapshot: %w", cerr)
		}
		f.pruneBackups(id)
	}

	temp := filepath.Join(f.Root, fmt.Sprintf(".%s%s.tmp-%d-%d", id, boardExt, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp snapshot: %w", werr)
	}
	if rerr := os.Rename(temp, target); rerr != nil {
		// Windows cannot rename over an existing file.
		_ = os.Remove(target)
		if rerr = os.Rename(temp, target); rerr != nil {
			_ = os.Remove(temp)
			return fmt.Errorf("replace snapshot: %w", rerr)
		}
	}
	return nil
}

// List returns every stored board sorted by id.
func (f *FileStore) List(ctx context.Context) ([]BoardInfo, error) {
	ents, err := os.ReadDir(f.Root)
	if err != nil {
		return nil, fmt.Errorf("read boards dir: %w", err)
	}
	var out []BoardInfo
	for _, e := range ents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, boardExt) {
			continue
		}
		info := BoardInfo{ID: strings.TrimSuffix(name, boardExt)}
		if st, err := e.Info(); err == nil {
			info.Updated = st.ModTime()
		}
		if data, err := os.ReadFile(filepath.Join(f.Root, name)); err == nil {
			if shapes, err := Decode(data); err == nil {
				info.Shapes = len(shapes)
			}
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes board id and its backups.
func (f *FileStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(f.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("board %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	for _, b := range f.backups(id) {
		_ = os.Remove(b)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

// backups lists the backups of id, oldest first.
func (f *FileStore) backups(id string) []string {
	ents, err := os.ReadDir(f.backupsDir())
	if err != nil {
		return nil
	}
	prefix := id + boardExt + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(f.backupsDir(), name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out
}

func (f *FileStore) pruneBackups(id string) {
	if f.KeepBackups <= 0 {
		return
	}
	all := f.backups(id)
	for len(all) > f.KeepBackups {
		_ = os.Remove(all[0])
		all = all[1:]
	}
}

func (f *FileStore) latestBackup(id string) ([]board.Shape, error) {
	all := f.backups(id)
	if len(all) == 0 {
		return nil, errors.New("no backups found")
	}
	data, err := os.ReadFile(all[len(all)-1])
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	return Decode(data)
}

// writeFileSync writes data to path and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
