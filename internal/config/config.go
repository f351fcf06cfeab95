/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: defaults, then the YAML file in
// the user config directory, then WB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the location of the YAML file.
const EnvConfigPath = "WB_CONFIG"

// CurrentVersion is bumped when the file layout changes incompatibly.
const CurrentVersion = 1

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in" env:"WB_TELEMETRY_OPT_IN"`
	TelemetryURL   string `yaml:"telemetry_url" env:"WB_TELEMETRY_URL"`
	CrashURL       string `yaml:"crash_url" env:"WB_CRASH_UPLOAD_URL"`
	DataDir        string `yaml:"data_dir" env:"WB_DATA_DIR"`
}

// BoardConfig tunes the interactive engine.
type BoardConfig struct {
	MinScale        float64 `yaml:"min_scale" env:"WB_MIN_SCALE"`
	MaxScale        float64 `yaml:"max_scale" env:"WB_MAX_SCALE"`
	ZoomStep        float64 `yaml:"zoom_step" env:"WB_ZOOM_STEP"`
	DuplicateOffset float64 `yaml:"duplicate_offset" env:"WB_DUPLICATE_OFFSET"`
	MinShapeSize    float64 `yaml:"min_shape_size" env:"WB_MIN_SHAPE_SIZE"`
	DefaultColor    string  `yaml:"default_color" env:"WB_DEFAULT_COLOR"`
}

type HistoryConfig struct {
	// MaxEntries caps undo depth; 0 keeps the full history.
	MaxEntries int `yaml:"max_entries" env:"WB_HISTORY_MAX_ENTRIES"`
}

type StorageConfig struct {
	Backend            string `yaml:"backend" env:"WB_STORAGE_BACKEND"` // "file" | "sqlite"
	AutosaveDebounceMs int    `yaml:"autosave_debounce_ms" env:"WB_AUTOSAVE_DEBOUNCE_MS"`
	KeepRevisions      int    `yaml:"keep_revisions" env:"WB_KEEP_REVISIONS"`
}

// RenderConfig controls the raster snapshot and freehand outlining.
type RenderConfig struct {
	FontFile   string  `yaml:"font_file" env:"WB_FONT_FILE"`
	StrokeSize float64 `yaml:"stroke_size" env:"WB_STROKE_SIZE"`
	Thinning   float64 `yaml:"thinning" env:"WB_STROKE_THINNING"`
	Smoothing  float64 `yaml:"smoothing" env:"WB_STROKE_SMOOTHING"`
	Streamline float64 `yaml:"streamline" env:"WB_STROKE_STREAMLINE"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"WB_LOG_LEVEL"`
	Format string `yaml:"format" env:"WB_LOG_FORMAT"`
	Source bool   `yaml:"source" env:"WB_LOG_SOURCE"`
	File   string `yaml:"file" env:"WB_LOG_FILE"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Board         BoardConfig   `yaml:"board"`
	History       HistoryConfig `yaml:"history"`
	Storage       StorageConfig `yaml:"storage"`
	Render        RenderConfig  `yaml:"render"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: CurrentVersion,
		General:       GeneralConfig{DataDir: defaultDataDir()},
		Board: BoardConfig{
			MinScale:        0.1,
			MaxScale:        8,
			ZoomStep:        1.1,
			DuplicateOffset: 20,
			MinShapeSize:    5,
			DefaultColor:    "#1e1e1e",
		},
		History: HistoryConfig{MaxEntries: 0},
		Storage: StorageConfig{Backend: BackendFile, AutosaveDebounceMs: 500, KeepRevisions: 20},
		Render:  RenderConfig{StrokeSize: 8, Thinning: 0.5, Smoothing: 0.5, Streamline: 0.5},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "whiteboard", "config.yaml"), nil
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return filepath.Join(os.TempDir(), "whiteboard")
	}
	return filepath.Join(base, "whiteboard", "data")
}

// Load reads the user config file if present, applies environment overrides
// and repairs out-of-range values. A missing file is not an error; a file that
// fails to parse is reported but the defaults plus env are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var fileErr error
	if data, err := os.ReadFile(path); err == nil {
		fileErr = decodeInto(&cfg, data)
	} else if !errors.Is(err, os.ErrNotExist) {
		fileErr = fmt.Errorf("read config: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg.normalized(), fmt.Errorf("parse env: %w", err)
	}
	return cfg.normalized(), fileErr
}

// decodeInto unmarshals YAML on top of cfg so absent keys keep their current value.
func decodeInto(cfg *AppConfig, data []byte) error {
	next := *cfg
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	*cfg = next
	return nil
}

// Save writes cfg as YAML to the config path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// normalized replaces invalid values with defaults so the engine never runs
// with, for example, an inverted scale range.
func (c AppConfig) normalized() AppConfig {
	d := Defaults()
	if c.ConfigVersion == 0 {
		c.ConfigVersion = d.ConfigVersion
	}
	if strings.TrimSpace(c.General.DataDir) == "" {
		c.General.DataDir = d.General.DataDir
	}
	b := &c.Board
	if b.MinScale <= 0 || b.MaxScale <= 0 || b.MinScale > b.MaxScale {
		b.MinScale, b.MaxScale = d.Board.MinScale, d.Board.MaxScale
	}
	if b.ZoomStep <= 1 {
		b.ZoomStep = d.Board.ZoomStep
	}
	if b.MinShapeSize < 0 {
		b.MinShapeSize = d.Board.MinShapeSize
	}
	if strings.TrimSpace(b.DefaultColor) == "" {
		b.DefaultColor = d.Board.DefaultColor
	}
	if c.History.MaxEntries < 0 {
		c.History.MaxEntries = 0
	}
	s := &c.Storage
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.Backend != BackendFile && s.Backend != BackendSQLite {
		s.Backend = d.Storage.Backend
	}
	if s.AutosaveDebounceMs < 0 {
		s.AutosaveDebounceMs = d.Storage.AutosaveDebounceMs
	}
	if s.KeepRevisions <= 0 {
		s.KeepRevisions = d.Storage.KeepRevisions
	}
	if c.Render.StrokeSize <= 0 {
		c.Render.StrokeSize = d.Render.StrokeSize
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	return c
}
