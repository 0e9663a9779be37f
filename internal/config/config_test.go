package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ember.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.FrameTime != 33*time.Millisecond {
		t.Fatalf("FrameTime = %v, want 33ms", cfg.Engine.FrameTime)
	}
	if cfg.Input.QuitKey != "escape" {
		t.Fatalf("QuitKey = %q, want escape", cfg.Input.QuitKey)
	}
	if cfg.Persistence.Backend != "file" {
		t.Fatalf("Backend = %q, want file", cfg.Persistence.Backend)
	}
	if !cfg.Scene.AutosaveOnExit {
		t.Fatal("AutosaveOnExit default = false, want true")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[engine]
frame_time = 16000000
asset_dir = "data"

[input]
quit_key = "q"

[logging]
level = "debug"
format = "json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.FrameTime != 16*time.Millisecond {
		t.Fatalf("FrameTime = %v, want 16ms", cfg.Engine.FrameTime)
	}
	if cfg.Engine.AssetDir != "data" {
		t.Fatalf("AssetDir = %q, want data", cfg.Engine.AssetDir)
	}
	if cfg.Input.QuitKey != "q" {
		t.Fatalf("QuitKey = %q, want q", cfg.Input.QuitKey)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("Logging = %+v", cfg.Logging)
	}
	// Untouched sections keep defaults.
	if cfg.Scripting.Dir != "scripts" {
		t.Fatalf("Scripting.Dir = %q, want scripts", cfg.Scripting.Dir)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "info"
`)
	t.Setenv("EMBER_LOGGING_LEVEL", "warn")
	t.Setenv("EMBER_INPUT_QUIT_KEY", "f10")
	t.Setenv("EMBER_ENGINE_FRAME_TIME", "20ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Input.QuitKey != "f10" {
		t.Fatalf("QuitKey = %q, want f10", cfg.Input.QuitKey)
	}
	if cfg.Engine.FrameTime != 20*time.Millisecond {
		t.Fatalf("FrameTime = %v, want 20ms", cfg.Engine.FrameTime)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		toml string
		want string
	}{
		{name: "zero frame time", toml: "[engine]\nframe_time = 0\n", want: "frame_time"},
		{name: "empty quit key", toml: "[input]\nquit_key = \"\"\n", want: "quit_key"},
		{name: "unknown backend", toml: "[persistence]\nbackend = \"redis\"\n", want: "backend"},
		{name: "postgres without dsn", toml: "[persistence]\nbackend = \"postgres\"\n", want: "dsn"},
		{name: "bad level", toml: "[logging]\nlevel = \"loud\"\n", want: "level"},
		{name: "bad format", toml: "[logging]\nformat = \"xml\"\n", want: "format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.toml))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	if _, err := Load(writeConfig(t, "[engine\nframe_time = 1\n")); err == nil {
		t.Fatal("Load succeeded on malformed TOML")
	}
}

func TestWatcherReloadAppliesLevel(t *testing.T) {
	path := writeConfig(t, "[logging]\nlevel = \"info\"\n")
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	w := NewWatcher(path, level, zap.NewNop())

	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	w.reload()

	if got := level.Level(); got != zapcore.DebugLevel {
		t.Fatalf("level = %v after reload, want debug", got)
	}
}

func TestWatcherReloadKeepsLevelOnBadFile(t *testing.T) {
	path := writeConfig(t, "[logging]\nlevel = \"info\"\n")
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	w := NewWatcher(path, level, zap.NewNop())

	if err := os.WriteFile(path, []byte("[logging\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	w.reload()

	if got := level.Level(); got != zapcore.InfoLevel {
		t.Fatalf("level = %v after bad reload, want info", got)
	}
}

func TestWatcherStartStop(t *testing.T) {
	path := writeConfig(t, "[logging]\nlevel = \"info\"\n")
	w := NewWatcher(path, zap.NewAtomicLevel(), zap.NewNop())

	if err := w.StartUp(); err != nil {
		t.Fatalf("StartUp: %v", err)
	}
	w.ShutDown()
	w.ShutDown() // idempotent
}
