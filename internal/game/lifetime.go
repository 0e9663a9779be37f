package game

import (
	"time"

	"github.com/embercore/ember/internal/core/ecs"
	"github.com/embercore/ember/internal/core/event"
	"github.com/embercore/ember/internal/core/system"
)

// LifetimeSystem counts lifetimes down and queues expired entities for
// the end-of-tick flush. Expiry is published on the event bus, so
// script hooks see it next tick.
type LifetimeSystem struct {
	world  *ecs.World
	comps  *Components
	topics *event.Topics
}

func NewLifetimeSystem(world *ecs.World, comps *Components, topics *event.Topics) *LifetimeSystem {
	return &LifetimeSystem{world: world, comps: comps, topics: topics}
}

func (s *LifetimeSystem) Name() string        { return "lifetime" }
func (s *LifetimeSystem) Phase() system.Phase { return system.PhasePostUpdate }

func (s *LifetimeSystem) Update(dt time.Duration) {
	s.comps.Lifetimes.Each(func(id ecs.EntityID, lt *Lifetime) {
		lt.Remaining -= dt
		if lt.Remaining > 0 {
			return
		}
		if s.topics != nil {
			var name string
			if n, ok := s.comps.Names.Get(id); ok {
				name = n.Value
			}
			s.topics.EntityExpired.Publish(event.EntityExpired{Name: name})
		}
		s.world.Destroy(id)
	})
}
