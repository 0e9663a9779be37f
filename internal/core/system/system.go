package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: apply player intent
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: simulation
	PhasePostUpdate              // 3: expiry, bookkeeping
	PhaseCleanup                 // 4: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// System is the interface every per-tick unit of work implements.
// Systems capture their collaborators at construction and run on the
// single engine goroutine.
type System interface {
	Name() string
	Phase() Phase
	Update(dt time.Duration)
}
