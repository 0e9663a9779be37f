package scripting

import (
	"time"

	"github.com/embercore/ember/internal/core/event"
	"github.com/embercore/ember/internal/core/system"
)

// ScriptSystem bridges the entity-component tick into the script VM.
// Each update fires the per-frame hook; entity expiries arriving on
// the event bus are forwarded to the expiry hook. Constructed once per
// process so the bus subscription is never duplicated.
type ScriptSystem struct {
	engine *Engine
}

func NewScriptSystem(engine *Engine, topics *event.Topics) *ScriptSystem {
	s := &ScriptSystem{engine: engine}
	if topics != nil {
		topics.EntityExpired.Subscribe(func(ev event.EntityExpired) {
			engine.OnEntityExpired(ev.Name)
		})
	}
	return s
}

func (s *ScriptSystem) Name() string        { return "script" }
func (s *ScriptSystem) Phase() system.Phase { return system.PhaseUpdate }

func (s *ScriptSystem) Update(dt time.Duration) {
	s.engine.OnUpdate(dt)
}
