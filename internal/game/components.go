package game

import (
	"time"

	"github.com/embercore/ember/internal/core/ecs"
)

// Component set for the built-in simulation. Fields carry yaml tags
// because the persistence layer snapshots them as-is.

// Name labels an entity for scene round-trips and script callbacks.
type Name struct {
	Value string `yaml:"value"`
}

// Transform is an entity's position in world units.
type Transform struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Velocity is a displacement rate in world units per second.
type Velocity struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Lifetime retires an entity once Remaining reaches zero.
type Lifetime struct {
	Remaining time.Duration `yaml:"remaining"`
}

// Control marks an entity as player-driven. Step is how far one key
// press moves it.
type Control struct {
	Step float64 `yaml:"step"`
}

// Components bundles the built-in component stores, registered on the
// world so destroys and resets reach all of them.
type Components struct {
	Names      *ecs.Store[Name]
	Transforms *ecs.Store[Transform]
	Velocities *ecs.Store[Velocity]
	Lifetimes  *ecs.Store[Lifetime]
	Controls   *ecs.Store[Control]
}

func NewComponents(w *ecs.World) *Components {
	c := &Components{
		Names:      ecs.NewStore[Name](),
		Transforms: ecs.NewStore[Transform](),
		Velocities: ecs.NewStore[Velocity](),
		Lifetimes:  ecs.NewStore[Lifetime](),
		Controls:   ecs.NewStore[Control](),
	}
	reg := w.Registry()
	reg.Register(c.Names)
	reg.Register(c.Transforms)
	reg.Register(c.Velocities)
	reg.Register(c.Lifetimes)
	reg.Register(c.Controls)
	return c
}

// FindByName returns a live entity labeled name, or false when none
// exists. Labels are not unique; any match wins.
func (c *Components) FindByName(name string) (ecs.EntityID, bool) {
	var found ecs.EntityID
	ok := false
	c.Names.Each(func(id ecs.EntityID, n *Name) {
		if !ok && n.Value == name {
			found = id
			ok = true
		}
	})
	return found, ok
}
