package game

import (
	"time"

	"github.com/embercore/ember/internal/core/ecs"
	"github.com/embercore/ember/internal/core/system"
	"github.com/embercore/ember/internal/input"
)

// ControlSystem applies key presses to player-driven entities. Each
// directional press nudges the transform by the entity's step, so
// movement is per press, not per frame held. Arrows and hjkl both work.
type ControlSystem struct {
	input *input.Manager
	comps *Components
}

func NewControlSystem(in *input.Manager, comps *Components) *ControlSystem {
	return &ControlSystem{input: in, comps: comps}
}

func (s *ControlSystem) Name() string        { return "control" }
func (s *ControlSystem) Phase() system.Phase { return system.PhaseInput }

func (s *ControlSystem) Update(_ time.Duration) {
	var dx, dy float64
	if s.pressed(input.KeyLeft, 'h') {
		dx--
	}
	if s.pressed(input.KeyRight, 'l') {
		dx++
	}
	if s.pressed(input.KeyUp, 'k') {
		dy--
	}
	if s.pressed(input.KeyDown, 'j') {
		dy++
	}
	if dx == 0 && dy == 0 {
		return
	}
	ecs.Each2(s.comps.Controls, s.comps.Transforms, func(_ ecs.EntityID, ctl *Control, tr *Transform) {
		tr.X += dx * ctl.Step
		tr.Y += dy * ctl.Step
	})
}

func (s *ControlSystem) pressed(k input.Key, alias rune) bool {
	return s.input.JustPressed(k) || s.input.JustPressed(input.KeyRune(alias))
}
