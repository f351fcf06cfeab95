/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a fatal panic into a crash report, a last autosave of
// the open board and, when the user opted in, an uploaded report.
package crash

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "whiteboard/internal/log"
	"whiteboard/internal/telemetry"
	"whiteboard/internal/version"
)

// CrashDirName is the folder under the data dir holding crash reports.
const CrashDirName = "crashes"

// exitFn is replaced in tests.
var exitFn = os.Exit

// Sink describes what Recover can rescue. All fields are optional.
type Sink struct {
	// DataDir receives crash reports under CrashDirName. Empty uses the
	// system temp dir.
	DataDir string
	BoardID string
	// Save writes the live board, typically storage.Autosaver.Flush.
	Save func(ctx context.Context) error
	// Telemetry uploads the report. Nil uses telemetry.Default.
	Telemetry *telemetry.Client
}

// Recover handles a panic in the calling goroutine. Use it directly:
//
//	defer crash.Recover(sink)
func Recover(s *Sink) {
	r := recover()
	if r == nil {
		return
	}
	if s == nil {
		s = &Sink{}
	}
	l := applog.WithBoard(applog.WithComponent("crash"), s.BoardID)
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	report := buildReport(s, r, stack)
	reportPath, err := writeReport(s.DataDir, report)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if s.Save != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := s.Save(ctx); err != nil {
			l.Error("crash autosave failed", slog.Any("err", err))
		} else {
			l.Info("board saved after crash")
		}
		cancel()
	}
	tc := s.Telemetry
	if tc == nil {
		tc = telemetry.Default()
	}
	tc.UploadCrash(report)
	tc.Flush(context.Background())

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func buildReport(s *Sink, panicVal any, stack []byte) []byte {
	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Whiteboard Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if s.BoardID != "" {
		_, _ = fmt.Fprintf(&buf, "Board: %s\n", s.BoardID)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", stack)
	return buf.Bytes()
}

// writeReport stores report as crash-<stamp>.log and returns its path.
func writeReport(dataDir string, report []byte) (string, error) {
	dir := os.TempDir()
	if dataDir != "" {
		dir = filepath.Join(dataDir, CrashDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create crash dir: %w", err)
		}
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(report); err != nil {
		return path, err
	}
	return path, f.Sync()
}
