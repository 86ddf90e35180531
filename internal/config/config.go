/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type GeneralConfig struct {
	DataDir string `yaml:"data_dir"`
	Store   string `yaml:"store"` // "file" | "sqlite" | "memory"
}

type UnitsConfig struct {
	DPI            float64 `yaml:"dpi"`
	RatioReference float64 `yaml:"ratio_reference"`
}

type CanvasConfig struct {
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Unit        string  `yaml:"unit"`
	Orientation string  `yaml:"orientation"`
}

type EditorConfig struct {
	Snap          bool    `yaml:"snap"`
	SnapThreshold float64 `yaml:"snap_threshold"`
	UndoMaxBytes  int     `yaml:"undo_max_bytes"`
	UndoMaxDepth  int     `yaml:"undo_max_depth"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Units         UnitsConfig   `yaml:"units"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Editor        EditorConfig  `yaml:"editor"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{DataDir: defaultDataDir(), Store: StoreFile},
		Units:         UnitsConfig{DPI: 96, RatioReference: 100},
		Canvas:        CanvasConfig{Width: 400, Height: 200, Unit: "px", Orientation: "landscape"},
		Editor:        EditorConfig{Snap: false, SnapThreshold: 6, UndoMaxBytes: 8 << 20, UndoMaxDepth: 100},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvDataDir = "LBL_DATA_DIR"
	EnvStore   = "LBL_STORE"
	EnvDPI     = "LBL_DPI"
	EnvSnap    = "LBL_SNAP"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "LBL_LOG_LEVEL"
	EnvLogFormat = "LBL_LOG_FORMAT"
	EnvLogSource = "LBL_LOG_SOURCE"
	EnvLogFile   = "LBL_LOG_FILE"
)

func configBase() string {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(base, "Labelmaker")
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Labelmaker")
	default: // linux and others
		return filepath.Join(os.Getenv("HOME"), ".config", "labelmaker")
	}
}

func defaultDataDir() string {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return filepath.Join(configBase(), "data")
	}
	if x := os.Getenv("XDG_DATA_HOME"); x != "" {
		return filepath.Join(x, "labelmaker")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "labelmaker")
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	base := configBase()
	if base == "" || !filepath.IsAbs(base) {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file at path (if present), applies defaults, and merges environment
// overrides. An empty path means ConfigPath(). A malformed file is reported; a missing one is not.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			applyEnvOverrides(&cfg)
			return cfg, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, err
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML. An empty path means ConfigPath().
func Save(path string, cfg AppConfig) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
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

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.General.DataDir) != "" {
		dst.General.DataDir = strings.TrimSpace(src.General.DataDir)
	}
	if s := strings.ToLower(strings.TrimSpace(src.General.Store)); s != "" {
		dst.General.Store = s
	}
	if src.Units.DPI > 0 {
		dst.Units.DPI = src.Units.DPI
	}
	if src.Units.RatioReference > 0 {
		dst.Units.RatioReference = src.Units.RatioReference
	}
	if src.Canvas.Width > 0 {
		dst.Canvas.Width = src.Canvas.Width
	}
	if src.Canvas.Height > 0 {
		dst.Canvas.Height = src.Canvas.Height
	}
	if s := strings.ToLower(strings.TrimSpace(src.Canvas.Unit)); s != "" {
		dst.Canvas.Unit = s
	}
	if s := strings.ToLower(strings.TrimSpace(src.Canvas.Orientation)); s != "" {
		dst.Canvas.Orientation = s
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Editor.Snap = src.Editor.Snap
	if src.Editor.SnapThreshold > 0 {
		dst.Editor.SnapThreshold = src.Editor.SnapThreshold
	}
	if src.Editor.UndoMaxBytes > 0 {
		dst.Editor.UndoMaxBytes = src.Editor.UndoMaxBytes
	}
	if src.Editor.UndoMaxDepth > 0 {
		dst.Editor.UndoMaxDepth = src.Editor.UndoMaxDepth
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.General.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStore)); v != "" {
		cfg.General.Store = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDPI)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.Units.DPI = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnap)); v != "" {
		cfg.Editor.Snap = truthy(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "general.data_dir":
		env = EnvDataDir
	case "general.store":
		env = EnvStore
	case "units.dpi":
		env = EnvDPI
	case "editor.snap":
		env = EnvSnap
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// CatalogFile returns the path of the JSON catalog for the file store.
func (g GeneralConfig) CatalogFile() string { return filepath.Join(g.DataDir, "catalog.json") }

// CatalogDB returns the path of the SQLite catalog database.
func (g GeneralConfig) CatalogDB() string { return filepath.Join(g.DataDir, "catalog.db") }
