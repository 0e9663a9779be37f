package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/embercore/ember/internal/asset"
	"github.com/embercore/ember/internal/config"
	"github.com/embercore/ember/internal/core/clock"
	"github.com/embercore/ember/internal/core/ecs"
	"github.com/embercore/ember/internal/core/event"
	"github.com/embercore/ember/internal/core/lifecycle"
	"github.com/embercore/ember/internal/core/system"
	"github.com/embercore/ember/internal/diag"
	"github.com/embercore/ember/internal/game"
	"github.com/embercore/ember/internal/input"
	"github.com/embercore/ember/internal/persist"
	"github.com/embercore/ember/internal/scripting"
	"github.com/embercore/ember/internal/term"
)

// Options adjusts the assembly. The zero value gives the production
// wiring: terminal input and the store named by the config.
type Options struct {
	// ConfigPath enables live config reload when Logging.Watch is set.
	// Requires Level.
	ConfigPath string

	// Level is the running process's log level, adjusted by the config
	// watcher.
	Level zap.AtomicLevel

	// Source overrides the input source. Tests inject scripted sources
	// here; nil selects the terminal.
	Source input.Source

	// Store overrides the snapshot store. Nil selects the configured
	// backend.
	Store persist.Store
}

// Runtime is the assembled engine: every subsystem constructed and
// registered, ready for one StartUp / frame loop / ShutDown cycle.
// Assembly happens in New so a wiring mistake surfaces before anything
// starts; Run owns the loop.
type Runtime struct {
	cfg *config.Config
	log *zap.Logger

	orch      *lifecycle.Orchestrator
	scenes    *persist.Manager
	scenePath string
	updaters  []lifecycle.Updater

	db *persist.DB // postgres backend only
}

// New assembles a Runtime from the configuration. ctx bounds the
// database connection attempt for the postgres backend; the file
// backend never blocks.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (*Runtime, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runtime{cfg: cfg, log: log}

	quit, err := input.ParseKey(cfg.Input.QuitKey)
	if err != nil {
		return nil, fmt.Errorf("input.quit_key: %w", err)
	}

	scenePath, err := asset.NewResolver(cfg.Engine.AssetDir).Path(cfg.Scene.Name)
	if err != nil {
		return nil, fmt.Errorf("scene.name: %w", err)
	}
	r.scenePath = scenePath

	store := opts.Store
	if store == nil {
		store, err = r.openStore(ctx)
		if err != nil {
			return nil, err
		}
	}

	source := opts.Source
	if source == nil {
		source = term.NewSource(log)
	}

	topics := event.NewTopics()
	sink := diag.New(diag.Config{Path: cfg.Logging.File, Flush: cfg.Logging.Flush})
	in := input.NewManager(source, quit, log)
	world := ecs.NewManager(log)
	comps := game.NewComponents(world.World())
	scenes := persist.NewManager(store, world.World(), comps, topics, log)
	r.scenes = scenes

	regs := []lifecycle.Registration{
		{Subsystem: sink},
		{Subsystem: in},
		{Subsystem: world},
		{Subsystem: scenes},
	}

	systems := []system.System{
		game.NewControlSystem(in, comps),
		game.NewEventPumpSystem(topics),
		game.NewMotionSystem(comps),
		game.NewLifetimeSystem(world.World(), comps, topics),
		game.NewCleanupSystem(world.World()),
	}

	if cfg.Scripting.Enabled {
		scripts := scripting.NewEngine(cfg.Scripting.Dir, log)
		regs = append(regs, lifecycle.Registration{Subsystem: scripts, Optional: true})
		systems = append(systems, scripting.NewScriptSystem(scripts, topics))
	}
	if cfg.Logging.Watch && opts.ConfigPath != "" {
		w := config.NewWatcher(opts.ConfigPath, opts.Level, log)
		regs = append(regs, lifecycle.Registration{Subsystem: w, Optional: true})
	}

	for _, reg := range regs {
		if u, ok := reg.Subsystem.(lifecycle.Updater); ok {
			r.updaters = append(r.updaters, u)
		}
	}

	wire := func() error {
		for _, s := range systems {
			if _, err := world.RegisterSystem(s); err != nil {
				return fmt.Errorf("register %s: %w", s.Name(), err)
			}
		}
		return nil
	}

	r.orch = lifecycle.New(
		lifecycle.Config{ScenePath: scenePath},
		lifecycle.Deps{
			Diag:        sink,
			Input:       in,
			World:       world,
			Scenes:      scenes,
			WireSystems: wire,
			Events:      topics,
		},
		regs,
	)
	return r, nil
}

// openStore builds the snapshot store the config names. The postgres
// backend connects and migrates here, so a bad DSN fails assembly
// instead of the first save.
func (r *Runtime) openStore(ctx context.Context) (persist.Store, error) {
	switch r.cfg.Persistence.Backend {
	case "postgres":
		db, err := persist.NewDB(ctx, r.cfg.Persistence, r.log)
		if err != nil {
			return nil, fmt.Errorf("persistence: %w", err)
		}
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		r.db = db
		return persist.NewPGStore(db), nil
	default:
		return persist.FileStore{}, nil
	}
}

// Run starts every subsystem and drives the frame loop until the
// termination key is pressed or ctx is canceled. A startup failure is
// returned after the already-started subsystems are rolled back; a
// normal stop returns nil after everything shuts down.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.orch.StartUp(); err != nil {
		return err
	}
	defer r.orch.ShutDown()

	frame := r.cfg.Engine.FrameTime
	r.log.Info("engine running",
		zap.Duration("frame_time", frame),
		zap.String("scene", r.scenePath),
	)

	clk := clock.New()
	for r.orch.Running() {
		select {
		case <-ctx.Done():
			r.orch.RequestStop("signal")
			continue
		default:
		}

		// A backwards step from an injected source reads as -1; the
		// frame still runs, with zero elapsed time.
		us := clk.Delta()
		if us < 0 {
			us = 0
		}
		dt := time.Duration(us) * time.Microsecond

		for _, u := range r.updaters {
			u.Update(dt)
		}
		r.orch.Update(dt)
		r.autosave()

		if sp := clk.Split(); sp >= 0 {
			if rest := frame - time.Duration(sp)*time.Microsecond; rest > 0 {
				time.Sleep(rest)
			}
		}
	}

	if r.cfg.Scene.AutosaveOnExit {
		if err := r.scenes.SaveScene(r.scenePath); err != nil {
			r.log.Warn("exit snapshot failed", zap.Error(err))
		}
	}
	r.log.Info("frame loop ended", zap.Uint64("steps", r.orch.StepCount()))
	return nil
}

func (r *Runtime) autosave() {
	every := r.cfg.Scene.AutosaveEvery
	if every == 0 || r.orch.StepCount()%every != 0 {
		return
	}
	if err := r.scenes.SaveScene(r.scenePath); err != nil {
		r.log.Warn("autosave failed", zap.Error(err))
	}
}

// Close releases connections held across the Run cycle. Call after Run
// returns.
func (r *Runtime) Close() {
	if r.db != nil {
		r.db.Close()
	}
}
