package game

import (
	"time"

	"github.com/embercore/ember/internal/core/ecs"
	"github.com/embercore/ember/internal/core/system"
)

// CleanupSystem flushes the deferred entity destruction queue at tick
// end, releasing slots and component data.
type CleanupSystem struct {
	world *ecs.World
}

func NewCleanupSystem(world *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Name() string        { return "cleanup" }
func (s *CleanupSystem) Phase() system.Phase { return system.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.Flush()
}
