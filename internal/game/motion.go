package game

import (
	"time"

	"github.com/embercore/ember/internal/core/ecs"
	"github.com/embercore/ember/internal/core/system"
)

// MotionSystem integrates velocities into transforms.
type MotionSystem struct {
	comps *Components
}

func NewMotionSystem(comps *Components) *MotionSystem {
	return &MotionSystem{comps: comps}
}

func (s *MotionSystem) Name() string        { return "motion" }
func (s *MotionSystem) Phase() system.Phase { return system.PhaseUpdate }

func (s *MotionSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	ecs.Each2(s.comps.Velocities, s.comps.Transforms, func(_ ecs.EntityID, v *Velocity, tr *Transform) {
		tr.X += v.X * secs
		tr.Y += v.Y * secs
	})
}
