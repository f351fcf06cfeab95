/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command whiteboard opens, renders and manages locally stored boards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"whiteboard/internal/board"
	"whiteboard/internal/config"
	applog "whiteboard/internal/log"
	"whiteboard/internal/render"
	"whiteboard/internal/storage"
	"whiteboard/internal/telemetry"
	"whiteboard/internal/ui"
	"whiteboard/internal/version"
)

// DefaultBoard is opened when no board id is given.
const DefaultBoard = "default"

func usage(w io.Writer) {
	fmt.Fprintln(w, "Whiteboard")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  whiteboard version|-v|--version              Show version")
	fmt.Fprintln(w, "  whiteboard ui [<board>]                      Open a board in the desktop UI (build with -tags fyne)")
	fmt.Fprintln(w, "  whiteboard render [-w N] [-h N] <board> <png>  Write a PNG snapshot of a board")
	fmt.Fprintln(w, "  whiteboard list                              List stored boards")
	fmt.Fprintln(w, "  whiteboard show <board>                      Print a board as JSON")
	fmt.Fprintln(w, "  whiteboard reset <board>                     Delete a stored board")
	fmt.Fprintln(w, "  whiteboard config                            Print the effective configuration path and write defaults if missing")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, cerr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Console:   stderr,
	})
	defer func() { _ = applog.Close() }()
	l := applog.WithComponent("cli")
	if cerr != nil {
		l.Warn("config not fully loaded, using defaults", slog.Any("err", cerr))
	}
	tc := telemetry.New(telemetry.FromConfig(cfg.General))
	telemetry.SetDefault(tc)
	defer tc.Close()

	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	l.Debug("start", slog.String("cmd", args[0]), slog.Int("args", len(args)))
	ctx := context.Background()

	var err error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, version.String())
		return 0
	case "ui":
		err = cmdUI(ctx, cfg, tc, args[1:])
	case "render":
		err = cmdRender(ctx, cfg, args[1:], stdout)
	case "list":
		err = cmdList(ctx, cfg, stdout)
	case "show":
		err = cmdShow(ctx, cfg, args[1:], stdout)
	case "reset":
		err = cmdReset(ctx, cfg, args[1:], stdout)
	case "config":
		err = cmdConfig(cfg, stdout)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}
	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		fmt.Fprintln(stderr, "Error:", err)
		usage(stderr)
		return 2
	default:
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

func openBackend(cfg config.AppConfig) (storage.Backend, error) {
	b, err := storage.Open(cfg.Storage, cfg.General.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return b, nil
}

func boardArg(args []string, i int, def string) (string, error) {
	id := def
	if len(args) > i {
		id = strings.TrimSpace(args[i])
	}
	if id == "" {
		return "", usageError("a board id is required")
	}
	if !storage.ValidID(id) {
		return "", usageError(fmt.Sprintf("invalid board id %q: use letters, digits, '-', '_' or '.'", id))
	}
	return id, nil
}

func cmdUI(ctx context.Context, cfg config.AppConfig, tc *telemetry.Client, args []string) error {
	id, err := boardArg(args, 0, DefaultBoard)
	if err != nil {
		return err
	}
	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()
	diag := board.MultiDiagnostics{board.LogDiagnostics{}, telemetry.NewDiagnostics(tc)}
	s := ui.NewSession(ctx, cfg, id, b, diag)
	if err := ui.Run(s); err != nil {
		_ = s.Close(ctx)
		return err
	}
	return s.Close(ctx)
}

func cmdRender(ctx context.Context, cfg config.AppConfig, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	w := fs.Int("w", 1280, "image width in pixels")
	h := fs.Int("h", 800, "image height in pixels")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return usageError("render requires <board> and <png>")
	}
	if *w <= 0 || *h <= 0 {
		return usageError("width and height must be positive")
	}
	id, err := boardArg(rest, 0, "")
	if err != nil {
		return err
	}
	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()
	shapes, err := b.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load board %s: %w", id, err)
	}

	st := board.NewStore(ui.StoreOptions(cfg, id, nil))
	st.Replace(shapes)
	v := st.View()
	v.Viewport = render.FitViewport(v, *w, *h, 24)

	out := rest[1]
	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := render.WritePNG(f, v, *w, *h, ui.RasterOptions(cfg.Render)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}
	fmt.Fprintf(stdout, "Rendered %d shapes to %s\n", len(v.Shapes), out)
	return nil
}

func cmdList(ctx context.Context, cfg config.AppConfig, stdout io.Writer) error {
	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()
	boards, err := b.List(ctx)
	if err != nil {
		return err
	}
	if len(boards) == 0 {
		fmt.Fprintln(stdout, "No boards stored in", cfg.General.DataDir)
		return nil
	}
	for _, info := range boards {
		fmt.Fprintf(stdout, "%-36s %4d shapes  %s\n", info.ID, info.Shapes, info.Updated.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func cmdShow(ctx context.Context, cfg config.AppConfig, args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return usageError("show requires <board>")
	}
	id, err := boardArg(args, 0, "")
	if err != nil {
		return err
	}
	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()
	shapes, err := b.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load board %s: %w", id, err)
	}
	data, err := storage.Encode(shapes)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

func cmdReset(ctx context.Context, cfg config.AppConfig, args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return usageError("reset requires <board>")
	}
	id, err := boardArg(args, 0, "")
	if err != nil {
		return err
	}
	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()
	if err := b.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted board %s\n", id)
	return nil
}

func cmdConfig(cfg config.AppConfig, stdout io.Writer) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintln(stdout, "Wrote default configuration to", path)
		return nil
	}
	fmt.Fprintln(stdout, "Configuration:", path)
	fmt.Fprintln(stdout, "Data dir:", cfg.General.DataDir)
	fmt.Fprintln(stdout, "Storage backend:", cfg.Storage.Backend)
	return nil
}
