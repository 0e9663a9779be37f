package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

// Config is the full engine configuration. Values come from defaults,
// then the TOML file, then EMBER_-prefixed environment variables, each
// layer overriding the last.
type Config struct {
	Engine      EngineConfig      `toml:"engine" envPrefix:"ENGINE_"`
	Input       InputConfig       `toml:"input" envPrefix:"INPUT_"`
	Scene       SceneConfig       `toml:"scene" envPrefix:"SCENE_"`
	Persistence PersistenceConfig `toml:"persistence" envPrefix:"PERSISTENCE_"`
	Scripting   ScriptingConfig   `toml:"scripting" envPrefix:"SCRIPTING_"`
	Logging     LoggingConfig     `toml:"logging" envPrefix:"LOGGING_"`
}

type EngineConfig struct {
	// FrameTime is the target duration of one frame. In TOML it is an
	// integer nanosecond count; the environment accepts "33ms" forms.
	FrameTime time.Duration `toml:"frame_time" env:"FRAME_TIME"`
	AssetDir  string        `toml:"asset_dir" env:"ASSET_DIR"`
}

type InputConfig struct {
	// QuitKey names the key whose press requests termination:
	// "escape", "q", "f10", ...
	QuitKey string `toml:"quit_key" env:"QUIT_KEY"`
}

type SceneConfig struct {
	// Name is the logical asset name of the world snapshot, resolved
	// against the asset directory.
	Name string `toml:"name" env:"NAME"`

	// AutosaveOnExit snapshots the world when the frame loop ends.
	AutosaveOnExit bool `toml:"autosave_on_exit" env:"AUTOSAVE_ON_EXIT"`

	// AutosaveEvery snapshots the world every N completed steps.
	// Zero disables periodic autosave.
	AutosaveEvery uint64 `toml:"autosave_every" env:"AUTOSAVE_EVERY"`
}

type PersistenceConfig struct {
	// Backend selects the snapshot store: "file" or "postgres".
	Backend         string        `toml:"backend" env:"BACKEND"`
	DSN             string        `toml:"dsn" env:"DSN"`
	MaxOpenConns    int           `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Dir     string `toml:"dir" env:"DIR"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"` // "json" or "console"

	// File is the diagnostic record file written by the engine core.
	File string `toml:"file" env:"FILE"`

	// Flush syncs the record file after every write.
	Flush bool `toml:"flush" env:"FLUSH"`

	// Watch re-reads the config file on change and applies the level
	// to the running process.
	Watch bool `toml:"watch" env:"WATCH"`
}

// Load reads the configuration. A missing file is not an error: the
// engine runs on defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults + env only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "EMBER_"}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Engine.FrameTime <= 0 {
		return fmt.Errorf("engine.frame_time must be positive, got %v", c.Engine.FrameTime)
	}
	if c.Engine.AssetDir == "" {
		return fmt.Errorf("engine.asset_dir must not be empty")
	}
	if c.Input.QuitKey == "" {
		return fmt.Errorf("input.quit_key must not be empty")
	}
	switch c.Persistence.Backend {
	case "file", "postgres":
	default:
		return fmt.Errorf("persistence.backend must be file or postgres, got %q", c.Persistence.Backend)
	}
	if c.Persistence.Backend == "postgres" && c.Persistence.DSN == "" {
		return fmt.Errorf("persistence.dsn required for the postgres backend")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level %q: %w", c.Logging.Level, err)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			FrameTime: 33 * time.Millisecond,
			AssetDir:  "assets",
		},
		Input: InputConfig{
			QuitKey: "escape",
		},
		Scene: SceneConfig{
			Name:           "scene/game.scn",
			AutosaveOnExit: true,
		},
		Persistence: PersistenceConfig{
			Backend:         "file",
			MaxOpenConns:    8,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Scripting: ScriptingConfig{
			Enabled: true,
			Dir:     "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "ember.log",
		},
	}
}
