package ecs

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/embercore/ember/internal/core/system"
)

var (
	// ErrNotStarted is returned when a system is registered before the
	// subsystem has started.
	ErrNotStarted = errors.New("ecs: not started")

	// ErrAlreadyStarted is returned on a second StartUp without an
	// intervening ShutDown.
	ErrAlreadyStarted = errors.New("ecs: already started")
)

// Manager is the entity-component subsystem. It owns the World and the
// system Runner, gates system registration on lifecycle state, and
// dispatches the registered systems once per tick.
//
// The World exists from construction so collaborators can wire stores
// against it before startup; gameplay systems register only while the
// subsystem is running.
type Manager struct {
	log     *zap.Logger
	world   *World
	runner  *system.Runner
	started bool
}

func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:    log,
		world:  NewWorld(),
		runner: system.NewRunner(),
	}
}

func (m *Manager) Name() string { return "entity-component" }

// World returns the entity container. Valid from construction.
func (m *Manager) World() *World { return m.world }

// StartUp arms the subsystem. Storage is already allocated, so this
// only transitions state and never fails on a first call.
func (m *Manager) StartUp() error {
	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true
	m.log.Debug("entity storage ready")
	return nil
}

// ShutDown drops every registered system and all entity data.
// Safe to call without a prior StartUp, and safe to call twice.
func (m *Manager) ShutDown() {
	if !m.started {
		return
	}
	m.started = false
	m.log.Debug("releasing entity storage",
		zap.Int("systems", m.runner.Len()),
		zap.Int("entities", m.world.Live()),
	)
	m.runner = system.NewRunner()
	m.world.Reset()
}

// RegisterSystem adds a gameplay system and returns an opaque handle.
// Fails if the subsystem is not running, so callers wire systems only
// into a live world.
func (m *Manager) RegisterSystem(s system.System) (system.Handle, error) {
	if !m.started {
		return 0, ErrNotStarted
	}
	h, err := m.runner.Register(s)
	if err != nil {
		return 0, err
	}
	m.log.Debug("system registered", zap.String("system", s.Name()), zap.Stringer("phase", s.Phase()))
	return h, nil
}

// System returns the system a handle refers to, or nil for a handle
// that was never issued or has been dropped by a shutdown.
func (m *Manager) System(h system.Handle) system.System {
	return m.runner.Get(h)
}

// UpdateSystems runs one tick over every registered system in phase
// order. A no-op before startup or after shutdown.
func (m *Manager) UpdateSystems(dt time.Duration) {
	if !m.started {
		return
	}
	m.runner.Tick(dt)
}
