package persist

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/embercore/ember/internal/core/ecs"
	"github.com/embercore/ember/internal/core/event"
	"github.com/embercore/ember/internal/game"
)

// ErrNotStarted is returned by scene operations outside the started
// window.
var ErrNotStarted = errors.New("persist: not started")

// Manager is the persistence subsystem. It snapshots the entity world
// to a Store and restores it, verifying integrity on the way in.
//
// StartUp seeds the world with the default scene, so the engine always
// has a playable world even when no snapshot exists yet; a successful
// load then replaces it wholesale.
type Manager struct {
	log     *zap.Logger
	store   Store
	world   *ecs.World
	comps   *game.Components
	topics  *event.Topics
	started bool
}

func NewManager(store Store, world *ecs.World, comps *game.Components, topics *event.Topics, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:    log,
		store:  store,
		world:  world,
		comps:  comps,
		topics: topics,
	}
}

func (m *Manager) Name() string { return "persistence" }

func (m *Manager) StartUp() error {
	if m.store == nil {
		return errors.New("persist: no store")
	}
	if m.world == nil || m.comps == nil {
		return errors.New("persist: no world")
	}
	m.started = true
	m.apply(DefaultScene())
	m.log.Debug("world seeded with default scene", zap.Int("entities", m.world.Live()))
	return nil
}

func (m *Manager) ShutDown() {
	m.started = false
}

// LoadScene replaces the world with the snapshot at path. On any
// failure the world keeps its current content.
func (m *Manager) LoadScene(path string) error {
	if !m.started {
		return ErrNotStarted
	}
	data, err := m.store.Read(path)
	if err != nil {
		return fmt.Errorf("read scene %s: %w", path, err)
	}
	scene, err := DecodeScene(data)
	if err != nil {
		return fmt.Errorf("scene %s: %w", path, err)
	}
	m.apply(scene)
	m.log.Info("scene loaded", zap.String("path", path), zap.Int("entities", len(scene.Entities)))
	if m.topics != nil {
		m.topics.SceneLoaded.Publish(event.SceneLoaded{Path: path, Entities: len(scene.Entities)})
	}
	return nil
}

// SaveScene snapshots the current world to path.
func (m *Manager) SaveScene(path string) error {
	if !m.started {
		return ErrNotStarted
	}
	scene := m.snapshot()
	data, err := EncodeScene(scene)
	if err != nil {
		return err
	}
	if err := m.store.Write(path, data); err != nil {
		return fmt.Errorf("write scene %s: %w", path, err)
	}
	m.log.Info("scene saved", zap.String("path", path), zap.Int("entities", len(scene.Entities)))
	return nil
}

// apply replaces the world content with the scene's entities.
func (m *Manager) apply(s *Scene) {
	m.world.Reset()
	for _, rec := range s.Entities {
		id := m.world.Create()
		m.comps.Names.Set(id, &game.Name{Value: rec.Name})
		if rec.Transform != nil {
			tr := *rec.Transform
			m.comps.Transforms.Set(id, &tr)
		}
		if rec.Velocity != nil {
			v := *rec.Velocity
			m.comps.Velocities.Set(id, &v)
		}
		if rec.Lifetime != nil {
			lt := *rec.Lifetime
			m.comps.Lifetimes.Set(id, &lt)
		}
		if rec.Control != nil {
			ctl := *rec.Control
			m.comps.Controls.Set(id, &ctl)
		}
	}
}

// snapshot captures every named entity. Records are sorted by name so
// repeated saves of the same world produce identical files.
func (m *Manager) snapshot() *Scene {
	s := &Scene{Version: SceneVersion}
	m.comps.Names.Each(func(id ecs.EntityID, n *game.Name) {
		rec := EntityRecord{Name: n.Value}
		if tr, ok := m.comps.Transforms.Get(id); ok {
			v := *tr
			rec.Transform = &v
		}
		if vel, ok := m.comps.Velocities.Get(id); ok {
			v := *vel
			rec.Velocity = &v
		}
		if lt, ok := m.comps.Lifetimes.Get(id); ok {
			v := *lt
			rec.Lifetime = &v
		}
		if ctl, ok := m.comps.Controls.Get(id); ok {
			v := *ctl
			rec.Control = &v
		}
		s.Entities = append(s.Entities, rec)
	})
	sort.Slice(s.Entities, func(i, j int) bool {
		return s.Entities[i].Name < s.Entities[j].Name
	})
	return s
}
