package game

import (
	"time"

	"github.com/embercore/ember/internal/core/event"
	"github.com/embercore/ember/internal/core/system"
)

// EventPumpSystem delivers the previous tick's events at the start of
// this one. Runs before simulation so handlers see a settled world.
type EventPumpSystem struct {
	topics *event.Topics
}

func NewEventPumpSystem(topics *event.Topics) *EventPumpSystem {
	return &EventPumpSystem{topics: topics}
}

func (s *EventPumpSystem) Name() string        { return "event-pump" }
func (s *EventPumpSystem) Phase() system.Phase { return system.PhasePreUpdate }

func (s *EventPumpSystem) Update(_ time.Duration) {
	s.topics.Bus.Pump()
}
