package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/embercore/ember/internal/core/event"
)

// Capability views of the collaborators the orchestrator drives.
// Concrete implementations live in internal/diag, internal/input,
// internal/core/ecs and internal/persist; tests substitute fakes.
type (
	// Diagnostics is the append-only record sink. Writes are
	// best-effort; a dead sink reports -1 and the engine keeps going.
	Diagnostics interface {
		Writef(format string, args ...any) int
	}

	// InputPoller answers whether the designated termination key was
	// newly pressed this frame.
	InputPoller interface {
		TerminationRequested() bool
	}

	// SystemHost dispatches all registered gameplay systems for one tick.
	SystemHost interface {
		UpdateSystems(dt time.Duration)
	}

	// SceneStore loads and saves world snapshots.
	SceneStore interface {
		LoadScene(path string) error
		SaveScene(path string) error
	}
)

// Deps carries the collaborators injected into the orchestrator. A nil
// entry disables the corresponding action rather than crashing, so
// partial assemblies (tests, tools) stay usable.
type Deps struct {
	Diag   Diagnostics
	Input  InputPoller
	World  SystemHost
	Scenes SceneStore

	// WireSystems registers the engine's gameplay systems with the
	// entity-component subsystem once every subsystem is up. A failure
	// is recorded and startup continues.
	WireSystems func() error

	// Events receives StepMilestone and StopRequested publications.
	Events *event.Topics
}

// Config holds the orchestrator's own settings.
type Config struct {
	// ScenePath is where the world snapshot is loaded from during
	// startup. Empty disables snapshot loading.
	ScenePath string
}

// ErrAlreadyRunning is returned by StartUp while the engine runs.
var ErrAlreadyRunning = errors.New("lifecycle: already running")

// stepLogInterval is the heartbeat cadence in completed frames.
const stepLogInterval = 100

// Orchestrator brings the engine's subsystems up in registration
// order, drives the per-frame update cycle, and tears everything down
// in reverse. Startup is all-or-nothing: the first required failure
// rolls back every subsystem already started, in reverse, and reports
// the failure.
//
// All methods assume the single engine goroutine calling
// StartUp, Update..., ShutDown in that order.
type Orchestrator struct {
	cfg  Config
	deps Deps
	regs []Registration

	started []Subsystem // prefix actually running, in startup order
	running bool
	steps   uint64
}

func New(cfg Config, deps Deps, regs []Registration) *Orchestrator {
	return &Orchestrator{
		cfg:  cfg,
		deps: deps,
		regs: append([]Registration(nil), regs...),
	}
}

// Running reports whether the frame loop should continue. True only
// between a successful StartUp and the first termination request or
// ShutDown.
func (o *Orchestrator) Running() bool { return o.running }

// StepCount reports the number of completed Update calls since the
// last successful StartUp.
func (o *Orchestrator) StepCount() uint64 { return o.steps }

// StartUp starts every registered subsystem in order. On the first
// required failure it shuts the already-started prefix down in reverse
// and returns the failure; optional subsystems that fail are skipped.
// After all subsystems are up it wires the gameplay systems and
// restores the world snapshot, neither of which can fail startup.
func (o *Orchestrator) StartUp() error {
	if o.running {
		return ErrAlreadyRunning
	}
	o.started = o.started[:0]

	for _, reg := range o.regs {
		sub := reg.Subsystem
		if err := sub.StartUp(); err != nil {
			if reg.Optional {
				o.writef("startUp: optional subsystem %s failed, continuing: %v", sub.Name(), err)
				continue
			}
			o.writef("startUp: %s failed: %v", sub.Name(), err)
			o.unwind()
			return fmt.Errorf("start %s: %w", sub.Name(), err)
		}
		o.started = append(o.started, sub)
		o.writef("startUp: %s started", sub.Name())
	}

	o.wireSystems()
	o.loadScene()

	o.steps = 0
	o.running = true
	return nil
}

// Update advances the engine by one frame. dt is the caller-measured
// elapsed time for this frame. The full cycle always runs, even on the
// frame where termination is requested, so the last frame is whole.
func (o *Orchestrator) Update(dt time.Duration) {
	o.steps++
	if o.steps%stepLogInterval == 0 {
		o.writef("update: step count %d", o.steps)
		if o.deps.Events != nil {
			o.deps.Events.StepMilestone.Publish(event.StepMilestone{Step: o.steps})
		}
	}
	if o.deps.Input != nil && o.deps.Input.TerminationRequested() {
		o.stop("termination key")
	}
	if o.deps.World != nil {
		o.deps.World.UpdateSystems(dt)
	}
}

// RequestStop asks the frame loop to end after the current frame.
// External interrupts (signals) come in through here.
func (o *Orchestrator) RequestStop(reason string) {
	if !o.running {
		return
	}
	o.stop(reason)
}

// ShutDown stops the frame loop and shuts the started subsystems down
// in reverse startup order. Safe without a prior StartUp, and safe to
// call repeatedly; subsystems that never started are never touched.
func (o *Orchestrator) ShutDown() {
	o.running = false
	if len(o.started) == 0 {
		return
	}
	o.writef("shutDown: stopping %d subsystems", len(o.started))
	o.unwind()
}

func (o *Orchestrator) stop(reason string) {
	o.running = false
	o.writef("update: stop requested at step %d: %s", o.steps, reason)
	if o.deps.Events != nil {
		o.deps.Events.StopRequested.Publish(event.StopRequested{Reason: reason})
	}
}

// unwind shuts down every started subsystem in reverse, leaving
// nothing running.
func (o *Orchestrator) unwind() {
	for i := len(o.started) - 1; i >= 0; i-- {
		o.started[i].ShutDown()
		o.writef("shutDown: %s stopped", o.started[i].Name())
	}
	o.started = o.started[:0]
}

func (o *Orchestrator) wireSystems() {
	if o.deps.WireSystems == nil {
		return
	}
	if err := o.deps.WireSystems(); err != nil {
		o.writef("startUp: system registration failed, continuing: %v", err)
		return
	}
	o.writef("startUp: gameplay systems registered")
}

// loadScene restores the world snapshot. A failed load falls back to
// persisting a default snapshot and retrying the load once; neither
// path fails startup, a failed retry is only recorded as a warning.
func (o *Orchestrator) loadScene() {
	if o.deps.Scenes == nil || o.cfg.ScenePath == "" {
		return
	}
	path := o.cfg.ScenePath
	err := o.deps.Scenes.LoadScene(path)
	if err == nil {
		o.writef("startUp: scene restored from %s", path)
		return
	}
	o.writef("startUp: scene load from %s failed (%v), writing default scene", path, err)
	if err := o.deps.Scenes.SaveScene(path); err != nil {
		o.writef("startUp: default scene save failed: %v", err)
	}
	if err := o.deps.Scenes.LoadScene(path); err != nil {
		o.writef("startUp: WARNING: default scene load failed: %v", err)
		return
	}
	o.writef("startUp: default scene restored from %s", path)
}

func (o *Orchestrator) writef(format string, args ...any) {
	if o.deps.Diag != nil {
		o.deps.Diag.Writef(format, args...)
	}
}
