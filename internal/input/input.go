package input

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Event is one key state transition reported by a Source.
type Event struct {
	Key     Key
	Pressed bool // press when true, release when false
}

// Source feeds key transitions into the manager. Poll must not block:
// it returns whatever arrived since the last call, in order.
type Source interface {
	Open() error
	Close()
	Poll() []Event
}

// ErrNoSource is returned by StartUp when no source was injected.
var ErrNoSource = errors.New("input: no source")

// Manager tracks per-key state across frames. Update folds the
// source's pending transitions into this frame's state; JustPressed
// and JustReleased are edge-triggered and stable for the rest of the
// frame, Held is level-triggered.
//
// The manager owns the configured termination key: the engine core
// asks TerminationRequested and never sees raw keys.
type Manager struct {
	log    *zap.Logger
	source Source
	quit   Key

	held         map[Key]bool
	justPressed  map[Key]bool
	justReleased map[Key]bool
	started      bool
}

func NewManager(source Source, quit Key, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:    log,
		source: source,
		quit:   quit,
	}
}

func (m *Manager) Name() string { return "input" }

// StartUp opens the source and allocates key state.
func (m *Manager) StartUp() error {
	if m.source == nil {
		return ErrNoSource
	}
	if err := m.source.Open(); err != nil {
		return fmt.Errorf("open input source: %w", err)
	}
	m.held = make(map[Key]bool)
	m.justPressed = make(map[Key]bool)
	m.justReleased = make(map[Key]bool)
	m.started = true
	m.log.Debug("input source open", zap.Stringer("quit_key", m.quit))
	return nil
}

// ShutDown closes the source and drops all key state. Safe without a
// prior StartUp.
func (m *Manager) ShutDown() {
	if !m.started {
		return
	}
	m.started = false
	m.source.Close()
	m.held = nil
	m.justPressed = nil
	m.justReleased = nil
}

// Update drains the source and recomputes edge state for this frame.
// Called once per frame by the driver; dt is unused.
func (m *Manager) Update(_ time.Duration) {
	if !m.started {
		return
	}
	clear(m.justPressed)
	clear(m.justReleased)
	for _, ev := range m.source.Poll() {
		if ev.Key == KeyNone {
			continue
		}
		if ev.Pressed {
			if !m.held[ev.Key] {
				m.held[ev.Key] = true
				m.justPressed[ev.Key] = true
			}
		} else if m.held[ev.Key] {
			delete(m.held, ev.Key)
			m.justReleased[ev.Key] = true
		}
	}
}

// Held reports whether the key is currently down.
func (m *Manager) Held(k Key) bool { return m.held[k] }

// JustPressed reports whether the key transitioned to pressed this
// frame. True for exactly one frame per press, no matter how long the
// key stays down.
func (m *Manager) JustPressed(k Key) bool { return m.justPressed[k] }

// JustReleased reports whether the key transitioned to released this
// frame.
func (m *Manager) JustReleased(k Key) bool { return m.justReleased[k] }

// TerminationRequested reports an edge-triggered press of the
// configured termination key this frame.
func (m *Manager) TerminationRequested() bool {
	return m.justPressed[m.quit]
}
